package signalr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrTransportClosed is returned by a transport after the server ended
// the connection.
var ErrTransportClosed = errors.New("signalr: transport closed")

// transport moves raw frames; framing into records happens above it.
type transport interface {
	Name() string
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// wsTransport is a WebSocket carrying text frames.
type wsTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func dialWebSocket(ctx context.Context, dialer *websocket.Dialer, endpoint, id, token string) (*wsTransport, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("signalr: websocket url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("id", id)
	if token != "" {
		q.Set("access_token", token)
	}
	u.RawQuery = q.Encode()

	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("signalr: websocket dial: %w", err)
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) Name() string { return TransportWebSockets }

func (t *wsTransport) Send(_ context.Context, data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Receive(_ context.Context) ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, ErrTransportClosed
		}
		return nil, err
	}
	return data, nil
}

func (t *wsTransport) Close() error {
	t.writeMu.Lock()
	_ = t.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	t.writeMu.Unlock()
	return t.conn.Close()
}

// lpTransport polls the endpoint with GET and sends with POST.
type lpTransport struct {
	hc       *http.Client
	endpoint string
	token    string

	closeOnce sync.Once
	closed    chan struct{}
}

func newLongPolling(hc *http.Client, endpoint, id, token string) (*lpTransport, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("signalr: long polling url: %w", err)
	}
	q := u.Query()
	q.Set("id", id)
	u.RawQuery = q.Encode()
	return &lpTransport{
		hc:       hc,
		endpoint: u.String(),
		token:    token,
		closed:   make(chan struct{}),
	}, nil
}

func (t *lpTransport) Name() string { return TransportLongPolling }

func (t *lpTransport) Send(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	setAuth(req, t.token)

	resp, err := t.hc.Do(req)
	if err != nil {
		return fmt.Errorf("signalr: long polling send: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("signalr: long polling send: unexpected status %s", resp.Status)
	}
	return nil
}

// Receive issues polls until one returns data. An empty 200 is a poll
// timeout; 204 means the server closed the connection.
func (t *lpTransport) Receive(ctx context.Context) ([]byte, error) {
	for {
		select {
		case <-t.closed:
			return nil, ErrTransportClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint, nil)
		if err != nil {
			return nil, err
		}
		setAuth(req, t.token)

		resp, err := t.hc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("signalr: long polling receive: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("signalr: long polling receive: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			if len(body) > 0 {
				return body, nil
			}
		case http.StatusNoContent:
			return nil, ErrTransportClosed
		default:
			return nil, fmt.Errorf("signalr: long polling receive: unexpected status %s: %s",
				resp.Status, strings.TrimSpace(string(body)))
		}
	}
}

func (t *lpTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closed)
		req, err := http.NewRequest(http.MethodDelete, t.endpoint, nil)
		if err != nil {
			return
		}
		setAuth(req, t.token)
		if resp, err := t.hc.Do(req); err == nil {
			resp.Body.Close()
		}
	})
	return nil
}
