package notify

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu   sync.Mutex
	got  []Toast
	fail bool
}

func (r *recordingSink) Send(t Toast) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, t)
	if r.fail {
		return errors.New("sink down")
	}
	return nil
}

func TestTransientToastExpires(t *testing.T) {
	c := New(WithDuration(30 * time.Millisecond))
	id := c.Success("Layout Saved!", "")

	if _, ok := c.Get(id); !ok {
		t.Fatal("toast not visible right after Show")
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get(id); ok {
		t.Error("transient toast still visible after its duration")
	}
	if len(c.Active()) != 0 {
		t.Errorf("Active() = %v", c.Active())
	}
}

func TestPersistentToastStaysUntilDismissed(t *testing.T) {
	c := New(WithDuration(20 * time.Millisecond))
	c.Show(Toast{ID: "layoutEditMode", Title: "Edit Mode Enabled", Persistent: true})

	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get("layoutEditMode"); !ok {
		t.Fatal("persistent toast expired")
	}

	c.Dismiss("layoutEditMode")
	if _, ok := c.Get("layoutEditMode"); ok {
		t.Error("toast visible after Dismiss")
	}
	c.Dismiss("layoutEditMode")
}

func TestShowWithSameIDReplaces(t *testing.T) {
	c := New()
	c.Show(Toast{ID: "x", Title: "first", Persistent: true})
	first, _ := c.Get("x")
	c.Show(Toast{ID: "x", Title: "second", Persistent: true})

	active := c.Active()
	if len(active) != 1 || active[0].Title != "second" {
		t.Fatalf("Active() = %+v", active)
	}
	if !active[0].Created.Equal(first.Created) {
		t.Error("replacement changed the creation time")
	}
}

func TestActiveIsOldestFirst(t *testing.T) {
	c := New()
	a := c.Info("a", "")
	time.Sleep(2 * time.Millisecond)
	b := c.Error("b", "boom")

	active := c.Active()
	if len(active) != 2 || active[0].ID != a || active[1].ID != b {
		t.Fatalf("Active() = %+v", active)
	}
	if active[1].Kind != KindError || active[1].Text() != "b: boom" {
		t.Errorf("error toast = %+v", active[1])
	}
}

func TestSinkReceivesToasts(t *testing.T) {
	sink := &recordingSink{fail: true}
	c := New(WithSink(sink))
	c.Success("2 series deleted!", "")
	c.Error("Error deleting 1 series!", "")

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.got) != 2 {
		t.Fatalf("sink got %d toasts", len(sink.got))
	}
}

func TestDesktopSinkSkipsInfoAndPersistent(t *testing.T) {
	d := DesktopSink{}
	if err := d.Send(Toast{Kind: KindInfo}); err != nil {
		t.Errorf("info: %v", err)
	}
	if err := d.Send(Toast{Kind: KindError, Persistent: true}); err != nil {
		t.Errorf("persistent: %v", err)
	}
}

func TestToastText(t *testing.T) {
	tests := []struct {
		toast Toast
		want  string
	}{
		{Toast{Title: "T"}, "T"},
		{Toast{Message: "M"}, "M"},
		{Toast{Title: "T", Message: "M"}, "T: M"},
	}
	for _, tt := range tests {
		if got := tt.toast.Text(); got != tt.want {
			t.Errorf("Text() = %q, want %q", got, tt.want)
		}
	}
}
