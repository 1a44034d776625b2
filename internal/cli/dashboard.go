package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/shokodash/internal/config"
	"github.com/Dicklesworthstone/shokodash/internal/logging"
	"github.com/Dicklesworthstone/shokodash/internal/notify"
	"github.com/Dicklesworthstone/shokodash/internal/queue"
	"github.com/Dicklesworthstone/shokodash/internal/tui/dashboard"
	"github.com/Dicklesworthstone/shokodash/internal/tui/theme"
)

const dashboardCmdName = "dashboard"

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     dashboardCmdName,
		Aliases: []string{"dash", "d"},
		Short:   "Open the interactive dashboard",
		Long: `Open the Shoko dashboard in the terminal.

The dashboard shows:
- The panel grid persisted in the server's WebUI settings
- A live Queue Processor panel fed by the server's push channel
- Toast notifications for layout saves and errors

Press e to edit the layout: arrows move the focused panel, shift+arrows
resize it, s saves, R resets to the default layout and c or esc cancels.

Logs go to the file configured in [log] so they do not disturb the screen.

Examples:
  shokodash dashboard
  shokodash dash --url http://nas:8111`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context())
		},
	}
}

func runDashboard(parent context.Context) error {
	if !IsInteractive(os.Stdout) {
		return errors.New("the dashboard needs a terminal; use 'shokodash events' for headless output")
	}

	levelVar, closeLog, err := logging.SetupFile(config.ExpandHome(cfg.Log.File), cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := slog.Default()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, logger)
	if err := a.requireLogin(); err != nil {
		return err
	}

	toastOpts := []notify.Option{
		notify.WithDuration(cfg.UI.ToastDuration()),
		notify.WithLogger(logger),
	}
	if cfg.UI.Notifications {
		toastOpts = append(toastOpts, notify.WithSink(notify.DesktopSink{Title: "shokodash"}))
	}
	toasts := notify.New(toastOpts...)

	queueStore := queue.NewStore()
	channel := a.channel(queue.Handlers(queueStore, logger))
	if err := channel.Start(ctx); err != nil {
		return err
	}
	defer channel.Stop()

	// Log level follows config edits while the dashboard runs.
	if stopWatch, err := config.Watch(cfgFile, func(next *config.Config) {
		if lvl, err := logging.ParseLevel(next.Log.Level); err == nil {
			levelVar.Set(lvl)
			logger.Info("log level changed", "level", lvl)
		}
	}); err != nil {
		logger.Debug("config watch unavailable", "error", err)
	} else {
		defer stopWatch()
	}

	return dashboard.Run(ctx, dashboard.Options{
		Settings:    a.settings,
		Toasts:      toasts,
		Queue:       queueStore,
		Channel:     channel,
		Styles:      theme.NewStyles(theme.Resolve(cfg.UI.Theme)),
		ServerURL:   cfg.Server.URL,
		ToastsOnTop: strings.EqualFold(cfg.UI.ToastPosition, "top"),
		Logger:      logger,
	})
}
