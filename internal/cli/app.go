package cli

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/Dicklesworthstone/shokodash/internal/api"
	"github.com/Dicklesworthstone/shokodash/internal/config"
	"github.com/Dicklesworthstone/shokodash/internal/session"
	"github.com/Dicklesworthstone/shokodash/internal/settings"
	"github.com/Dicklesworthstone/shokodash/internal/signalr"
)

var errNotLoggedIn = errors.New("not logged in: run 'shokodash login' or pass --apikey")

// app bundles the clients a command needs, built from the loaded config.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	session  *session.Session
	api      *api.Client
	settings *settings.Service
}

// newApp resolves credentials and builds the REST clients. The API key
// comes from --apikey, then the config file or SHOKO_APIKEY, then the
// credentials stored by login.
func newApp(c *config.Config, logger *slog.Logger) *app {
	if logger == nil {
		logger = slog.Default()
	}
	sess := session.New(c.Server.APIKey)
	if !sess.LoggedIn() {
		creds, err := session.Load()
		switch {
		case err == nil:
			sess = session.FromCredentials(creds)
		case errors.Is(err, session.ErrNoCredentials):
		default:
			logger.Warn("reading stored credentials", "path", session.Path(), "error", err)
		}
	}

	client := api.NewClient(
		api.WithBaseURL(c.Server.URL),
		api.WithTokenFunc(sess.Token),
		api.WithTimeout(c.Server.Timeout()),
		api.WithLogger(logger),
	)
	return &app{
		cfg:      c,
		logger:   logger,
		session:  sess,
		api:      client,
		settings: settings.NewService(client, settings.DefaultTTL, logger),
	}
}

// requireLogin fails early with a hint when no API key is known.
func (a *app) requireLogin() error {
	if a.session.LoggedIn() {
		return nil
	}
	return errNotLoggedIn
}

// channel builds the push channel client from the [channel] section.
func (a *app) channel(handlers signalr.Handlers, opts ...signalr.Option) *signalr.Client {
	ch := a.cfg.Channel
	base := []signalr.Option{
		signalr.WithEndpoint(ch.Endpoint),
		signalr.WithTransport(strings.ToLower(ch.Transport)),
		signalr.WithTokenFunc(a.session.Token),
		signalr.WithBackoff(signalr.Backoff{
			Unit:        ch.Unit(),
			Ceiling:     ch.Ceiling(),
			MaxAttempts: ch.MaxAttempts,
			Debounce:    ch.Debounce(),
		}),
		signalr.WithLogger(a.logger),
	}
	return signalr.NewClient(a.cfg.Server.URL, handlers, append(base, opts...)...)
}
