// Package session holds the API key used for REST calls and as the push
// channel's bearer token, and persists it between runs.
package session

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Credentials is what a login produces.
type Credentials struct {
	APIKey   string    `json:"apikey"`
	Username string    `json:"username,omitempty"`
	Device   string    `json:"device,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
}

// Session is the in-memory credential holder. It is safe for concurrent
// use; the channel reads Token on every connection attempt.
type Session struct {
	mu    sync.RWMutex
	creds Credentials
}

// New returns a session for apiKey. An empty key means logged out.
func New(apiKey string) *Session {
	return &Session{creds: Credentials{APIKey: apiKey}}
}

// FromCredentials returns a session holding c.
func FromCredentials(c Credentials) *Session {
	return &Session{creds: c}
}

// Token returns the current API key.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.APIKey
}

// Credentials returns a copy of the held credentials.
func (s *Session) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Set replaces the credentials.
func (s *Session) Set(c Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = c
}

// Clear logs the session out.
func (s *Session) Clear() {
	s.Set(Credentials{})
}

// LoggedIn reports whether an API key is held.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// DeviceName returns the device string sent on login. Each install gets a
// stable suffix so the server can tell keys apart.
func DeviceName(existing string) string {
	if existing != "" {
		return existing
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "terminal"
	}
	return "shokodash-" + host + "-" + uuid.NewString()[:8]
}
