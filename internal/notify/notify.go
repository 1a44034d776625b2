// Package notify provides the toast center shown by the dashboard:
// transient notices that expire on their own and persistent ones that stay
// until dismissed. Notices can also be forwarded to desktop notifications.
package notify

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// DefaultDuration is how long a transient toast stays visible.
const DefaultDuration = 4 * time.Second

// Kind is the severity of a toast.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Toast is one notice.
type Toast struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Title      string    `json:"title,omitempty"`
	Message    string    `json:"message,omitempty"`
	Actions    []string  `json:"actions,omitempty"`
	Persistent bool      `json:"persistent,omitempty"`
	Created    time.Time `json:"created"`
}

// Text returns title and message joined for one-line display.
func (t Toast) Text() string {
	switch {
	case t.Title == "":
		return t.Message
	case t.Message == "":
		return t.Title
	default:
		return t.Title + ": " + t.Message
	}
}

// Sink receives toasts as they are shown.
type Sink interface {
	Send(Toast) error
}

// Center holds the visible toasts.
type Center struct {
	toasts   *ttlcache.Cache[string, Toast]
	duration time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	sinks []Sink
}

// Option configures a Center.
type Option func(*Center)

// WithDuration sets the lifetime of transient toasts.
func WithDuration(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.duration = d
		}
	}
}

// WithSink forwards every new toast to s.
func WithSink(s Sink) Option {
	return func(c *Center) {
		if s != nil {
			c.sinks = append(c.sinks, s)
		}
	}
}

// WithLogger sets the logger used for sink failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Center) {
		c.logger = l
	}
}

// New creates a toast center.
func New(opts ...Option) *Center {
	c := &Center{
		duration: DefaultDuration,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.toasts = ttlcache.New[string, Toast](
		ttlcache.WithTTL[string, Toast](c.duration),
		ttlcache.WithDisableTouchOnHit[string, Toast](),
	)
	return c
}

// Info shows a transient info toast and returns its id.
func (c *Center) Info(title, message string) string {
	return c.Show(Toast{Kind: KindInfo, Title: title, Message: message})
}

// Success shows a transient success toast and returns its id.
func (c *Center) Success(title, message string) string {
	return c.Show(Toast{Kind: KindSuccess, Title: title, Message: message})
}

// Error shows a transient error toast and returns its id.
func (c *Center) Error(title, message string) string {
	return c.Show(Toast{Kind: KindError, Title: title, Message: message})
}

// Show displays t. A toast with an existing id replaces it in place;
// an empty id gets a fresh one.
func (c *Center) Show(t Toast) string {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Kind == "" {
		t.Kind = KindInfo
	}

	c.mu.Lock()
	if existing := c.toasts.Get(t.ID); existing != nil {
		t.Created = existing.Value().Created
	} else if t.Created.IsZero() {
		t.Created = time.Now()
	}
	sinks := append([]Sink(nil), c.sinks...)
	c.mu.Unlock()

	ttl := ttlcache.DefaultTTL
	if t.Persistent {
		ttl = ttlcache.NoTTL
	}
	c.toasts.Set(t.ID, t, ttl)

	for _, s := range sinks {
		if err := s.Send(t); err != nil {
			c.logger.Debug("toast sink failed", "id", t.ID, "error", err)
		}
	}
	return t.ID
}

// Dismiss removes a toast. Unknown ids are ignored.
func (c *Center) Dismiss(id string) {
	c.toasts.Delete(id)
}

// Get returns a visible toast by id.
func (c *Center) Get(id string) (Toast, bool) {
	item := c.toasts.Get(id)
	if item == nil || item.IsExpired() {
		return Toast{}, false
	}
	return item.Value(), true
}

// Active returns the visible toasts, oldest first.
func (c *Center) Active() []Toast {
	items := c.toasts.Items()
	out := make([]Toast, 0, len(items))
	for _, item := range items {
		if item.IsExpired() {
			continue
		}
		out = append(out, item.Value())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// Prune drops expired toasts.
func (c *Center) Prune() {
	c.toasts.DeleteExpired()
}
