package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/shokodash/internal/api"
	"github.com/Dicklesworthstone/shokodash/internal/notify"
	"github.com/Dicklesworthstone/shokodash/internal/series"
)

// lineNotifier prints toasts as plain lines, for commands without a UI.
type lineNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func (n *lineNotifier) Show(t notify.Toast) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "[%s] %s\n", t.Kind, t.Text())
	return t.ID
}

type seriesDeleteResult struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Errors    map[int]string `json:"errors,omitempty"`
}

func newSeriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Series maintenance utilities",
	}
	without := &cobra.Command{
		Use:     "without-files",
		Aliases: []string{"wf"},
		Short:   "Series that no longer have any files",
	}
	without.AddCommand(newSeriesListCmd(), newSeriesDeleteCmd())
	cmd.AddCommand(without)
	return cmd
}

func newSeriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List series without files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cfg, nil)
			if err := a.requireLogin(); err != nil {
				return err
			}
			list, err := series.New(a.api, nil, series.WithLogger(a.logger)).List(cmd.Context())
			if err != nil {
				return err
			}
			if IsJSONOutput() {
				return printJSON(cmd.OutOrStdout(), list)
			}
			printSeriesTable(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func printSeriesTable(w io.Writer, list []api.Series) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No series without files.")
		return
	}
	sort.Slice(list, func(i, j int) bool { return list[i].IDs.ID < list[j].IDs.ID })
	fmt.Fprintf(w, "%-8s %-8s %-20s %s\n", "ID", "ANIDB", "CREATED", "NAME")
	for _, s := range list {
		created := "-"
		if !s.Created.IsZero() {
			created = s.Created.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-8d %-8d %-20s %s\n", s.IDs.ID, s.IDs.AniDB, created, s.Name)
	}
	fmt.Fprintf(w, "\n%d series\n", len(list))
}

func newSeriesDeleteCmd() *cobra.Command {
	var (
		all         bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete series without files, keeping anything on disk",
		Long: `Delete the given series. Files on disk are never touched.

Each delete succeeds or fails independently; one summary line is printed
for the failures and one for the successes.

Examples:
  shokodash series without-files delete 12 40
  shokodash series without-files delete --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("pass series ids or --all, not both or neither")
			}
			a := newApp(cfg, nil)
			if err := a.requireLogin(); err != nil {
				return err
			}
			notifier := &lineNotifier{w: cmd.ErrOrStderr()}
			u := series.New(a.api, notifier,
				series.WithConcurrency(concurrency),
				series.WithLogger(a.logger),
			)

			if all {
				list, err := u.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range list {
					u.Selection.Select(s.IDs.ID)
				}
			} else {
				for _, arg := range args {
					id, err := strconv.Atoi(arg)
					if err != nil || id <= 0 {
						return fmt.Errorf("invalid series id %q", arg)
					}
					u.Selection.Select(id)
				}
			}

			if u.Selection.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to delete.")
				return nil
			}
			res := u.DeleteSelected(cmd.Context())

			if IsJSONOutput() {
				out := seriesDeleteResult{Succeeded: res.Succeeded, Failed: res.Failed}
				if len(res.Errors) > 0 {
					out.Errors = make(map[int]string, len(res.Errors))
					for id, err := range res.Errors {
						out.Errors[id] = err.Error()
					}
				}
				if err := printJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			}
			if res.Failed > 0 {
				return fmt.Errorf("%d of %d deletes failed", res.Failed, res.Failed+res.Succeeded)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every series without files")
	cmd.Flags().IntVar(&concurrency, "concurrency", series.DefaultConcurrency, "parallel deletes")
	return cmd
}
