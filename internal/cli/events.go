package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/shokodash/internal/queue"
	"github.com/Dicklesworthstone/shokodash/internal/signalr"
	"github.com/Dicklesworthstone/shokodash/internal/store"
)

// eventLine is one line of `events --json` output.
type eventLine struct {
	Time   time.Time    `json:"time"`
	Event  string       `json:"event"`
	State  string       `json:"state,omitempty"`
	Status queue.Status `json:"status,omitempty"`
}

// eventPrinter serializes output from the store and channel goroutines.
type eventPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	json bool
}

func (p *eventPrinter) print(line eventLine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.json {
		b, err := json.Marshal(line)
		if err != nil {
			return
		}
		fmt.Fprintf(p.w, "%s\n", b)
		return
	}
	ts := line.Time.Format(time.TimeOnly)
	if line.State != "" {
		fmt.Fprintf(p.w, "%s  channel %s\n", ts, line.State)
		return
	}
	fmt.Fprintf(p.w, "%s  %s  total=%d\n", ts, line.Event, line.Status.Total())
	for _, name := range line.Status.Names() {
		info := line.Status[name]
		fmt.Fprintf(p.w, "    %-24s %-12s %d\n", name, info.State, info.Count)
	}
}

func newEventsCmd() *cobra.Command {
	var transport string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream queue status updates from the push channel",
		Long: `Connect to the server's push channel and print every queue status
change. With --json each update is one JSON object per line.

The channel reconnects on its own with exponential backoff; stop with Ctrl-C.

Examples:
  shokodash events
  shokodash events --json | jq .status
  shokodash events --transport longpolling`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if transport != "" {
				cfg.Channel.Transport = transport
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runEvents(ctx, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "auto, websockets or longpolling (overrides channel.transport)")
	return cmd
}

func runEvents(ctx context.Context, w io.Writer) error {
	logger := slog.Default()
	a := newApp(cfg, logger)
	if err := a.requireLogin(); err != nil {
		return err
	}

	printer := &eventPrinter{w: w, json: IsJSONOutput()}
	queueStore := queue.NewStore()
	unsubscribe := queueStore.Subscribe(func(s queue.Status, action store.Action) {
		printer.print(eventLine{Time: time.Now(), Event: action.ActionType(), Status: s})
	})
	defer unsubscribe()

	channel := a.channel(queue.Handlers(queueStore, logger),
		signalr.WithStateListener(func(s signalr.State) {
			printer.print(eventLine{Time: time.Now(), Event: "channel", State: s.String()})
		}),
	)
	if err := channel.Start(ctx); err != nil {
		return err
	}
	defer channel.Stop()

	<-ctx.Done()
	return nil
}
