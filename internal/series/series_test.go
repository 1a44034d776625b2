package series

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/Dicklesworthstone/shokodash/internal/api"
	"github.com/Dicklesworthstone/shokodash/internal/notify"
)

type fakeClient struct {
	mu      sync.Mutex
	series  []api.Series
	deleted []int
	failIDs map[int]bool
}

func (f *fakeClient) AllSeriesWithoutFiles(context.Context, int) ([]api.Series, error) {
	return f.series, nil
}

func (f *fakeClient) DeleteSeries(_ context.Context, id int, deleteFiles bool) error {
	if deleteFiles {
		return errors.New("files must be kept")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[id] {
		return api.NewAPIError("delete_series", 500, errors.New("boom"))
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func titles(c *notify.Center) []string {
	var out []string
	for _, t := range c.Active() {
		out = append(out, string(t.Kind)+":"+t.Title)
	}
	sort.Strings(out)
	return out
}

func TestDeleteSelectedIsolatesFailures(t *testing.T) {
	fc := &fakeClient{failIDs: map[int]bool{2: true}}
	center := notify.New()
	u := New(fc, center, WithLogger(quiet()))

	u.Selection.Select(1, 2, 3)
	res := u.DeleteSelected(context.Background())

	if res.Succeeded != 2 || res.Failed != 1 {
		t.Errorf("result = %+v, want 2 succeeded 1 failed", res)
	}
	if _, ok := res.Errors[2]; !ok {
		t.Errorf("errors = %v", res.Errors)
	}
	if u.Selection.Len() != 0 {
		t.Errorf("selection not cleared: %v", u.Selection.IDs())
	}

	want := []string{"error:Error deleting 1 series!", "success:2 series deleted!"}
	got := titles(center)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("toasts = %v, want %v", got, want)
	}
}

func TestDeleteSelectedAllFail(t *testing.T) {
	fc := &fakeClient{failIDs: map[int]bool{1: true, 2: true}}
	center := notify.New()
	u := New(fc, center, WithLogger(quiet()), WithConcurrency(1))

	u.Selection.Select(1, 2)
	res := u.DeleteSelected(context.Background())

	if res.Succeeded != 0 || res.Failed != 2 {
		t.Errorf("result = %+v", res)
	}
	got := titles(center)
	if len(got) != 1 || got[0] != "error:Error deleting 2 series!" {
		t.Errorf("toasts = %v", got)
	}
	if u.Selection.Len() != 0 {
		t.Error("selection not cleared")
	}
}

func TestDeleteSelectedEmpty(t *testing.T) {
	center := notify.New()
	u := New(&fakeClient{}, center)
	res := u.DeleteSelected(context.Background())
	if res.Succeeded != 0 || res.Failed != 0 || len(center.Active()) != 0 {
		t.Errorf("result = %+v, toasts = %v", res, center.Active())
	}
}

func TestSelection(t *testing.T) {
	s := NewSelection()
	if !s.Toggle(5) || !s.Selected(5) {
		t.Error("toggle on failed")
	}
	if s.Toggle(5) || s.Selected(5) {
		t.Error("toggle off failed")
	}
	s.Select(3, 1, 2)
	ids := s.IDs()
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Errorf("IDs() = %v", ids)
	}
}

func TestList(t *testing.T) {
	fc := &fakeClient{series: []api.Series{{Name: "A"}, {Name: "B"}}}
	u := New(fc, nil)
	got, err := u.List(context.Background())
	if err != nil || len(got) != 2 {
		t.Errorf("List() = %v, %v", got, err)
	}
}
