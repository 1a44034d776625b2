package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/wI2L/jsondiff"

	"github.com/Dicklesworthstone/shokodash/internal/layout"
)

// DefaultTTL is how long a fetched document is trusted.
const DefaultTTL = 5 * time.Minute

const cacheKey = "settings"

// Client is the REST surface the service needs.
type Client interface {
	GetSettings(ctx context.Context) (json.RawMessage, error)
	PatchSettings(ctx context.Context, patch jsondiff.Patch) error
}

// Service caches the settings document and saves changes as patches.
type Service struct {
	client Client
	cache  *ttlcache.Cache[string, Document]
	logger *slog.Logger

	// saveMu keeps read-modify-patch cycles from interleaving.
	saveMu sync.Mutex
}

// NewService creates a service. A ttl of 0 uses DefaultTTL.
func NewService(client Client, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		cache: ttlcache.New[string, Document](
			ttlcache.WithTTL[string, Document](ttl),
			ttlcache.WithDisableTouchOnHit[string, Document](),
		),
		logger: logger.With("component", "settings"),
	}
}

// Get returns the cached document, fetching it when missing or expired.
func (s *Service) Get(ctx context.Context) (Document, error) {
	if item := s.cache.Get(cacheKey); item != nil {
		return item.Value(), nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches the document and replaces the cached copy.
func (s *Service) Refresh(ctx context.Context) (Document, error) {
	raw, err := s.client.GetSettings(ctx)
	if err != nil {
		return Document{}, err
	}
	doc, err := Parse(raw)
	if err != nil {
		return Document{}, fmt.Errorf("settings: server document: %w", err)
	}
	s.cache.Set(cacheKey, doc, ttlcache.DefaultTTL)
	return doc, nil
}

// Invalidate drops the cached document.
func (s *Service) Invalidate() {
	s.cache.Delete(cacheKey)
}

// Save sends the difference between the cached document and next. On
// success next becomes the cached document.
func (s *Service) Save(ctx context.Context, next Document) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.saveLocked(ctx, next)
}

func (s *Service) saveLocked(ctx context.Context, next Document) error {
	current, err := s.Get(ctx)
	if err != nil {
		return err
	}
	patch, err := current.Diff(next)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		s.logger.Debug("settings unchanged, nothing to save")
		return nil
	}
	if err := s.client.PatchSettings(ctx, patch); err != nil {
		return err
	}
	s.logger.Info("settings saved", "operations", len(patch))
	s.cache.Set(cacheKey, next, ttlcache.DefaultTTL)
	return nil
}

// Layout returns the persisted dashboard layout, or the default one when
// nothing is persisted.
func (s *Service) Layout(ctx context.Context) (layout.Layouts, error) {
	doc, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return doc.LayoutOrDefault()
}

// SaveLayout writes l into the document and saves it.
func (s *Service) SaveLayout(ctx context.Context, l layout.Layouts) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	doc, err := s.Get(ctx)
	if err != nil {
		return err
	}
	next, err := doc.WithLayout(l)
	if err != nil {
		return err
	}
	return s.saveLocked(ctx, next)
}

// Flags returns the dashboard flags of the cached document.
func (s *Service) Flags(ctx context.Context) (Flags, error) {
	doc, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Flags()
}

// SetFlag changes one dashboard flag and saves it.
func (s *Service) SetFlag(ctx context.Context, name string, value bool) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	doc, err := s.Get(ctx)
	if err != nil {
		return err
	}
	next, err := doc.WithFlag(name, value)
	if err != nil {
		return err
	}
	return s.saveLocked(ctx, next)
}
