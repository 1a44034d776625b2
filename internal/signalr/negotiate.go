package signalr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Wire names of the transports offered by negotiate.
const (
	TransportWebSockets  = "WebSockets"
	TransportLongPolling = "LongPolling"
)

// Transport selection modes accepted by WithTransport.
const (
	ModeAuto        = "auto"
	ModeWebSockets  = "websockets"
	ModeLongPolling = "longpolling"
)

type availableTransport struct {
	Transport       string   `json:"transport"`
	TransferFormats []string `json:"transferFormats"`
}

type negotiateResponse struct {
	ConnectionID        string               `json:"connectionId"`
	ConnectionToken     string               `json:"connectionToken"`
	NegotiateVersion    int                  `json:"negotiateVersion"`
	AvailableTransports []availableTransport `json:"availableTransports"`
	Error               string               `json:"error,omitempty"`
}

func (n negotiateResponse) offers(name string) bool {
	for _, t := range n.AvailableTransports {
		if strings.EqualFold(t.Transport, name) {
			return true
		}
	}
	return false
}

// id is the value used in the id query parameter of transport requests.
func (n negotiateResponse) id() string {
	if n.ConnectionToken != "" {
		return n.ConnectionToken
	}
	return n.ConnectionID
}

func negotiate(ctx context.Context, hc *http.Client, endpoint, token string) (*negotiateResponse, error) {
	u, err := url.Parse(strings.TrimSuffix(endpoint, "/") + "/negotiate")
	if err != nil {
		return nil, fmt.Errorf("signalr: negotiate url: %w", err)
	}
	q := u.Query()
	q.Set("negotiateVersion", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("signalr: negotiate: %w", err)
	}
	setAuth(req, token)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("signalr: negotiate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("signalr: negotiate: unexpected status %s", resp.Status)
	}

	var n negotiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&n); err != nil {
		return nil, fmt.Errorf("signalr: decode negotiate: %w", err)
	}
	if n.Error != "" {
		return nil, fmt.Errorf("signalr: negotiate: %s", n.Error)
	}
	return &n, nil
}

func setAuth(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
