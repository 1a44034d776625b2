package signalr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// State is the lifecycle state of one connection attempt.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Keep-alive defaults follow the hub's own defaults.
const (
	DefaultKeepAlive     = 15 * time.Second
	DefaultServerTimeout = 30 * time.Second
)

var (
	// ErrServerClosed is the close cause when the server sends a close message.
	ErrServerClosed = errors.New("signalr: closed by server")
	// ErrServerTimeout is the close cause when nothing arrived within the
	// server timeout.
	ErrServerTimeout = errors.New("signalr: server timeout")
)

// Connection is one logical connection attempt. It is never reused after
// it reaches StateClosed.
type Connection struct {
	attempt int
	started time.Time

	state    atomic.Int32
	lastSeen atomic.Int64

	clock         clockwork.Clock
	logger        *slog.Logger
	handlers      Handlers
	keepAlive     time.Duration
	serverTimeout time.Duration

	trMu   sync.Mutex
	tr     transport
	buf    recordBuffer
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	err       error
	done      chan struct{}
	onClose   func(*Connection, error)
}

func newConnection(parent context.Context, attempt int, c *Client) *Connection {
	ctx, cancel := context.WithCancel(parent)
	conn := &Connection{
		attempt:       attempt,
		started:       c.clock.Now(),
		clock:         c.clock,
		logger:        c.logger.With("attempt", attempt),
		handlers:      c.handlers,
		keepAlive:     c.keepAlive,
		serverTimeout: c.serverTimeout,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
		onClose:       c.connectionClosed,
	}
	conn.state.Store(int32(StateConnecting))
	return conn
}

// Attempt returns the attempt number of this connection.
func (c *Connection) Attempt() int { return c.attempt }

// Started returns when the attempt began.
func (c *Connection) Started() time.Time { return c.started }

// State returns the current lifecycle state.
func (c *Connection) State() State { return State(c.state.Load()) }

// Transport returns the wire name of the transport, or "" before one was
// chosen.
func (c *Connection) Transport() string {
	tr := c.transport()
	if tr == nil {
		return ""
	}
	return tr.Name()
}

func (c *Connection) transport() transport {
	c.trMu.Lock()
	defer c.trMu.Unlock()
	return c.tr
}

// Done is closed once the connection reaches StateClosed.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Err returns the close cause. It is nil for a local close.
func (c *Connection) Err() error {
	<-c.done
	return c.err
}

// Close closes the connection locally.
func (c *Connection) Close() {
	c.close(nil)
}

func (c *Connection) close(err error) {
	c.closeOnce.Do(func() {
		c.err = err
		c.state.Store(int32(StateClosed))
		c.cancel()
		if tr := c.transport(); tr != nil {
			_ = tr.Close()
		}
		close(c.done)
		if c.onClose != nil {
			c.onClose(c, err)
		}
	})
}

// handshake sends the protocol handshake and waits for the response.
// Records that arrive in the same frame after the response stay buffered.
func (c *Connection) handshake(tr transport) error {
	c.trMu.Lock()
	c.tr = tr
	c.trMu.Unlock()
	if c.State() == StateClosed {
		_ = tr.Close()
		return ErrTransportClosed
	}
	if err := tr.Send(c.ctx, handshakeRecord()); err != nil {
		return fmt.Errorf("signalr: send handshake: %w", err)
	}
	for {
		if rec, ok := c.buf.next(); ok {
			return parseHandshake(rec)
		}
		data, err := tr.Receive(c.ctx)
		if err != nil {
			return fmt.Errorf("signalr: read handshake: %w", err)
		}
		c.buf.write(data)
	}
}

// markOpen moves Connecting to Open. It fails when the connection was
// closed while starting.
func (c *Connection) markOpen() bool {
	c.touch()
	return c.state.CompareAndSwap(int32(StateConnecting), int32(StateOpen))
}

// run starts the read and keep-alive loops.
func (c *Connection) run() {
	go c.readLoop()
	go c.keepAliveLoop()
}

func (c *Connection) touch() {
	c.lastSeen.Store(c.clock.Now().UnixNano())
}

func (c *Connection) readLoop() {
	for {
		for {
			rec, ok := c.buf.next()
			if !ok {
				break
			}
			if done := c.handleRecord(rec); done {
				return
			}
		}

		data, err := c.transport().Receive(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil {
				c.close(nil)
			} else {
				c.close(err)
			}
			return
		}
		c.touch()
		c.buf.write(data)
	}
}

// handleRecord processes one record and reports whether the connection
// ended.
func (c *Connection) handleRecord(rec []byte) bool {
	if len(rec) == 0 {
		return false
	}
	msg, err := parseMessage(rec)
	if err != nil {
		c.logger.Warn("channel message dropped", "error", err)
		return false
	}

	switch msg.Type {
	case MessageInvocation:
		c.dispatch(msg)
	case MessagePing:
	case MessageClose:
		cause := ErrServerClosed
		if msg.Error != "" {
			cause = fmt.Errorf("%w: %s", ErrServerClosed, msg.Error)
		}
		c.close(cause)
		return true
	default:
		c.logger.Debug("channel message ignored", "type", msg.Type)
	}
	return false
}

func (c *Connection) dispatch(msg Message) {
	h, ok := c.handlers[msg.Target]
	if !ok {
		c.logger.Debug("no handler for channel event", "target", msg.Target)
		return
	}
	if err := h(msg.Arguments); err != nil {
		c.logger.Warn("channel event handler failed", "target", msg.Target, "error", err)
	}
}

func (c *Connection) keepAliveLoop() {
	if c.keepAlive <= 0 {
		return
	}
	ticker := c.clock.NewTicker(c.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.Chan():
			if c.serverTimeout > 0 {
				last := time.Unix(0, c.lastSeen.Load())
				if c.clock.Since(last) > c.serverTimeout {
					c.close(ErrServerTimeout)
					return
				}
			}
			if err := c.transport().Send(c.ctx, pingRecord()); err != nil {
				if c.ctx.Err() == nil {
					c.close(err)
				}
				return
			}
		}
	}
}
