package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/shokodash/internal/config"
	"github.com/Dicklesworthstone/shokodash/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config

	// Global flags - inherited by all subcommands
	serverURL  string
	apiKey     string
	logLevel   string
	jsonOutput bool

	// Build information - set by goreleaser via ldflags
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
	BuiltBy = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "shokodash",
	Short: "Terminal dashboard for a Shoko anime server",
	Long: `shokodash shows a Shoko server's dashboard in the terminal: a grid of
panels with a live command queue fed by the server's push channel.

Quick Start:
  shokodash login --user admin          # Store an API key
  shokodash dashboard                   # Open the dashboard (e to edit the layout)
  shokodash events --json               # Stream queue updates as JSON lines
  shokodash layout show --format yaml   # Print the persisted layout`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		applyFlagOverrides(loaded)
		cfg = loaded

		// The dashboard owns the terminal and logs to a file instead.
		if cmd.Name() == dashboardCmdName {
			return nil
		}
		_, err = logging.Setup(cfg.Log.Level)
		return err
	},
}

// applyFlagOverrides lets persistent flags win over file and env values.
func applyFlagOverrides(c *config.Config) {
	if serverURL != "" {
		c.Server.URL = serverURL
	}
	if apiKey != "" {
		c.Server.APIKey = apiKey
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set so JSON mode can keep stderr clean.
		if !jsonOutput {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

// IsJSONOutput reports whether --json was given.
func IsJSONOutput() bool {
	return jsonOutput
}

func goVersion() string {
	return runtime.Version()
}

func goPlatform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/shokodash/config.toml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "Shoko server URL (overrides server.url)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "apikey", "", "API key (overrides stored credentials)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (machine-readable)")

	rootCmd.AddCommand(
		newDashboardCmd(),
		newEventsCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newLayoutCmd(),
		newSeriesCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}

type versionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuiltAt   string `json:"built_at"`
	BuiltBy   string `json:"built_by"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if IsJSONOutput() {
				return printJSON(w, versionResponse{
					Version:   Version,
					Commit:    Commit,
					BuiltAt:   Date,
					BuiltBy:   BuiltBy,
					GoVersion: goVersion(),
					Platform:  goPlatform(),
				})
			}

			if short {
				fmt.Fprintln(w, Version)
				return nil
			}
			fmt.Fprintf(w, "shokodash version %s\n", Version)
			fmt.Fprintf(w, "  commit:    %s\n", Commit)
			fmt.Fprintf(w, "  built:     %s\n", Date)
			fmt.Fprintf(w, "  builder:   %s\n", BuiltBy)
			fmt.Fprintf(w, "  go:        %s\n", goVersion())
			fmt.Fprintf(w, "  platform:  %s\n", goPlatform())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefault()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			path := cfgFile
			if path == "" {
				path = config.DefaultPath()
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			effective := *cfg
			if effective.Server.APIKey != "" {
				effective.Server.APIKey = "********"
			}
			if IsJSONOutput() {
				return printJSON(cmd.OutOrStdout(), effective)
			}
			return config.Print(&effective, cmd.OutOrStdout())
		},
	})

	return cmd
}
