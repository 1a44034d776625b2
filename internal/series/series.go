// Package series implements the "series without files" utility: browse the
// series that lost all their files and delete a selection of them.
package series

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/shokodash/internal/api"
	"github.com/Dicklesworthstone/shokodash/internal/notify"
)

// DefaultConcurrency bounds parallel deletes.
const DefaultConcurrency = 4

// Client is the REST surface the utility needs.
type Client interface {
	AllSeriesWithoutFiles(ctx context.Context, pageSize int) ([]api.Series, error)
	DeleteSeries(ctx context.Context, id int, deleteFiles bool) error
}

// Notifier shows the outcome of a bulk delete.
type Notifier interface {
	Show(t notify.Toast) string
}

// Result is the tally of one bulk delete.
type Result struct {
	Succeeded int
	Failed    int
	Errors    map[int]error
}

// Selection is a set of series ids.
type Selection struct {
	mu  sync.Mutex
	ids map[int]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[int]struct{})}
}

// Toggle flips one id and reports whether it is now selected.
func (s *Selection) Toggle(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Select adds ids.
func (s *Selection) Select(ids ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Selected reports whether id is selected.
func (s *Selection) Selected(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected ids in ascending order.
func (s *Selection) IDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[int]struct{})
}

// Utility binds the client, the selection and the notifier.
type Utility struct {
	client      Client
	notifier    Notifier
	logger      *slog.Logger
	concurrency int
	pageSize    int

	Selection *Selection
}

// Option configures a Utility.
type Option func(*Utility)

// WithConcurrency bounds parallel deletes.
func WithConcurrency(n int) Option {
	return func(u *Utility) {
		if n > 0 {
			u.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(u *Utility) {
		u.logger = l
	}
}

// New creates the utility.
func New(client Client, notifier Notifier, opts ...Option) *Utility {
	u := &Utility{
		client:      client,
		notifier:    notifier,
		logger:      slog.Default(),
		concurrency: DefaultConcurrency,
		pageSize:    25,
		Selection:   NewSelection(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// List returns every series without files.
func (u *Utility) List(ctx context.Context) ([]api.Series, error) {
	return u.client.AllSeriesWithoutFiles(ctx, u.pageSize)
}

// DeleteSelected deletes every selected series, keeping files on disk.
// Each delete succeeds or fails on its own; the tallies are reported as at
// most one error and one success toast. The selection is always cleared.
func (u *Utility) DeleteSelected(ctx context.Context) Result {
	ids := u.Selection.IDs()
	defer u.Selection.Clear()

	res := Result{Errors: make(map[int]error)}
	if len(ids) == 0 {
		return res
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			err := u.client.DeleteSeries(gctx, id, false)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				res.Errors[id] = err
				u.logger.Warn("series delete failed", "series", id, "error", err)
				return nil
			}
			res.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	u.report(res)
	return res
}

func (u *Utility) report(res Result) {
	if u.notifier == nil {
		return
	}
	if res.Failed > 0 {
		u.notifier.Show(notify.Toast{
			Kind:  notify.KindError,
			Title: fmt.Sprintf("Error deleting %d series!", res.Failed),
		})
	}
	if res.Succeeded > 0 {
		u.notifier.Show(notify.Toast{
			Kind:  notify.KindSuccess,
			Title: fmt.Sprintf("%d series deleted!", res.Succeeded),
		})
	}
}
