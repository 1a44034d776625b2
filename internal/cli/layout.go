package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/shokodash/internal/layout"
)

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect or reset the persisted dashboard layout",
	}
	cmd.AddCommand(newLayoutShowCmd(), newLayoutResetCmd(), newLayoutDiffCmd())
	return cmd
}

func newLayoutShowCmd() *cobra.Command {
	var (
		format     string
		breakpoint string
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the layout stored in the server's WebUI settings",
		Long: `Print the dashboard layout. When the server has no layout stored the
default layout is printed instead.

Examples:
  shokodash layout show
  shokodash layout show --format yaml --breakpoint lg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if IsJSONOutput() {
				format = "json"
			}
			a := newApp(cfg, nil)
			if err := a.requireLogin(); err != nil {
				return err
			}
			l, err := a.settings.Layout(cmd.Context())
			if err != nil {
				return err
			}
			var v any = l
			if breakpoint != "" {
				bp := layout.Breakpoint(strings.ToLower(breakpoint))
				if !bp.Valid() {
					return fmt.Errorf("%w: %q", layout.ErrUnknownBreakpoint, breakpoint)
				}
				v = l[bp]
			}
			return encodeLayout(cmd.OutOrStdout(), format, v)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml or toml")
	cmd.Flags().StringVarP(&breakpoint, "breakpoint", "b", "", "only print one breakpoint (lg, md, sm)")
	return cmd
}

// encodeLayout writes v in the requested format. TOML needs a table at the
// top level, so a bare placement list is wrapped under "items".
func encodeLayout(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "", "json":
		return printJSON(w, v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		if items, ok := v.([]layout.Placement); ok {
			v = map[string][]layout.Placement{"items": items}
		}
		return toml.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or toml)", format)
	}
}

func newLayoutResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Overwrite the persisted layout with the default layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cfg, nil)
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.settings.SaveLayout(cmd.Context(), layout.Default()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Layout reset to default.")
			return nil
		},
	}
}

func newLayoutDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show how the persisted layout differs from the default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cfg, nil)
			if err := a.requireLogin(); err != nil {
				return err
			}
			doc, err := a.settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			persisted, ok, err := doc.Layout()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No layout stored; the default layout is in use.")
				return nil
			}
			before, err := indentJSON(layout.Default())
			if err != nil {
				return err
			}
			after, err := indentJSON(persisted)
			if err != nil {
				return err
			}
			diff := lineDiff(before, after)
			if diff == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Persisted layout matches the default.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), diff)
			return nil
		},
	}
}

func indentJSON(v any) (string, error) {
	var buf bytes.Buffer
	if err := printJSON(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
