package signalr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

// DefaultEndpoint is the hub path relative to the server URL.
const DefaultEndpoint = "/signalr/events"

// ErrNoTransport is returned when negotiate offers no usable transport.
var ErrNoTransport = errors.New("signalr: no usable transport")

// TokenFunc returns the bearer token for the next attempt.
type TokenFunc func() string

// Client keeps one channel connection alive. Attempts run one at a time:
// the initial one from Start, later ones from the reconnect policy.
type Client struct {
	baseURL       string
	endpoint      string
	mode          string
	handlers      Handlers
	token         TokenFunc
	httpClient    *http.Client
	dialer        *websocket.Dialer
	clock         clockwork.Clock
	logger        *slog.Logger
	backoff       Backoff
	keepAlive     time.Duration
	serverTimeout time.Duration
	listeners     []func(State)

	policy *Policy

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	conn     *Connection
	attempts int
	started  bool
	stopped  bool
}

// Option configures the Client.
type Option func(*Client)

// WithEndpoint sets the hub path.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithTransport selects auto, websockets or longpolling.
func WithTransport(mode string) Option {
	return func(c *Client) {
		if mode != "" {
			c.mode = strings.ToLower(mode)
		}
	}
}

// WithTokenFunc sets the token factory consulted on every attempt.
func WithTokenFunc(fn TokenFunc) Option {
	return func(c *Client) {
		c.token = fn
	}
}

// WithHTTPClient sets the client used for negotiate and long polling.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithDialer sets the WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithClock sets the clock for retries and keep-alives.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithBackoff sets the reconnect curve.
func WithBackoff(b Backoff) Option {
	return func(c *Client) {
		c.backoff = b
	}
}

// WithKeepAlive sets the ping interval and the server timeout. Zero
// disables the respective check.
func WithKeepAlive(interval, serverTimeout time.Duration) Option {
	return func(c *Client) {
		c.keepAlive = interval
		c.serverTimeout = serverTimeout
	}
}

// WithStateListener registers a callback for connection state changes.
func WithStateListener(fn func(State)) Option {
	return func(c *Client) {
		c.listeners = append(c.listeners, fn)
	}
}

// NewClient creates a client for the hub at baseURL. handlers is the
// dispatch table for server invocations.
func NewClient(baseURL string, handlers Handlers, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		endpoint:      DefaultEndpoint,
		mode:          ModeAuto,
		handlers:      handlers,
		token:         func() string { return "" },
		httpClient:    &http.Client{Timeout: 2 * time.Minute},
		dialer:        websocket.DefaultDialer,
		clock:         clockwork.NewRealClock(),
		logger:        slog.Default(),
		backoff:       DefaultBackoff(),
		keepAlive:     DefaultKeepAlive,
		serverTimeout: DefaultServerTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.handlers == nil {
		c.handlers = Handlers{}
	}
	c.logger = c.logger.With("component", "signalr")
	c.policy = NewPolicy(c.attempt, c.backoff, c.clock, c.logger)
	return c
}

// URL returns the absolute hub URL.
func (c *Client) URL() string {
	return c.baseURL + "/" + strings.TrimPrefix(c.endpoint, "/")
}

// Policy returns the reconnect policy.
func (c *Client) Policy() *Policy {
	return c.policy
}

// Start opens the first connection in the background. Failures are logged
// and retried; Start itself only fails when called twice.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("signalr: client already started")
	}
	c.started = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	go c.attempt()
	return nil
}

// Stop closes the current connection and cancels pending retries.
func (c *Client) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	conn := c.conn
	cancel := c.cancel
	c.mu.Unlock()

	c.policy.Stop()
	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
}

// State returns the state of the current connection.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return StateClosed
	}
	return c.conn.State()
}

// Connection returns the current connection, if any.
func (c *Client) Connection() *Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// attempt starts a new connection unless one is Connecting or Open.
func (c *Client) attempt() {
	c.mu.Lock()
	if c.stopped || c.ctx == nil {
		c.mu.Unlock()
		return
	}
	if c.conn != nil {
		if st := c.conn.State(); st == StateConnecting || st == StateOpen {
			c.mu.Unlock()
			c.logger.Debug("channel attempt skipped", "state", st)
			return
		}
	}
	c.attempts++
	conn := newConnection(c.ctx, c.attempts, c)
	c.conn = conn
	c.mu.Unlock()

	c.emit(StateConnecting)
	c.logger.Debug("channel connecting", "attempt", conn.attempt, "url", c.URL())

	if err := c.connect(conn); err != nil {
		conn.close(err)
		return
	}

	if !conn.markOpen() {
		c.logger.Debug("channel closed while connecting", "attempt", conn.attempt)
		return
	}
	c.policy.Opened()
	c.logger.Info("channel connected", "attempt", conn.attempt, "transport", conn.Transport())
	c.emit(StateOpen)
	conn.run()
}

func (c *Client) connect(conn *Connection) error {
	token := c.token()
	endpoint := c.URL()

	neg, err := negotiate(conn.ctx, c.httpClient, endpoint, token)
	if err != nil {
		return err
	}

	tr, err := c.openTransport(conn.ctx, neg, endpoint, token)
	if err != nil {
		return err
	}
	return conn.handshake(tr)
}

func (c *Client) openTransport(ctx context.Context, neg *negotiateResponse, endpoint, token string) (transport, error) {
	wsAllowed := c.mode != ModeLongPolling && neg.offers(TransportWebSockets)
	lpAllowed := c.mode != ModeWebSockets && neg.offers(TransportLongPolling)

	var wsErr error
	if wsAllowed {
		tr, err := dialWebSocket(ctx, c.dialer, endpoint, neg.id(), token)
		if err == nil {
			return tr, nil
		}
		wsErr = err
		if lpAllowed {
			c.logger.Debug("websocket unavailable, falling back to long polling", "error", err)
		}
	}
	if lpAllowed {
		return newLongPolling(c.httpClient, endpoint, neg.id(), token)
	}
	if wsErr != nil {
		return nil, wsErr
	}
	return nil, fmt.Errorf("%w (mode %s)", ErrNoTransport, c.mode)
}

// connectionClosed runs once per connection, for failed starts as well as
// for drops after open.
func (c *Client) connectionClosed(conn *Connection, err error) {
	c.mu.Lock()
	current := c.conn == conn
	stopped := c.stopped
	c.mu.Unlock()

	if err != nil && !stopped {
		c.logger.Warn("channel connection error", "attempt", conn.attempt, "error", err)
	}
	if current {
		c.emit(StateClosed)
	}
	if !stopped && current {
		c.policy.Closed()
	}
}

func (c *Client) emit(s State) {
	for _, fn := range c.listeners {
		fn(s)
	}
}
