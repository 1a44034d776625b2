package settings

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/wI2L/jsondiff"

	"github.com/Dicklesworthstone/shokodash/internal/layout"
)

const sampleDoc = `{
  "AniDb": {"Username": "someone"},
  "WebUI_Settings": {
    "theme": "dark",
    "dashboard": {
      "hideQueueProcessor": false,
      "hideShokoNews": true,
      "combineContinueWatching": true,
      "recentlyImportedView": "episodes"
    },
    "layout": {
      "dashboard": {
        "lg": [{"i": "queueProcessor", "x": 0, "y": 0, "w": 6, "h": 11, "moved": false}],
        "xl": [{"i": "queueProcessor", "x": 0, "y": 0, "w": 6, "h": 11}]
      }
    }
  }
}`

type fakeClient struct {
	mu      sync.Mutex
	doc     json.RawMessage
	gets    int
	patches []jsondiff.Patch
	fail    error
}

func (f *fakeClient) GetSettings(context.Context) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	return f.doc, nil
}

func (f *fakeClient) PatchSettings(_ context.Context, p jsondiff.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.patches = append(f.patches, p)
	return nil
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseRejectsNonObject(t *testing.T) {
	for _, in := range []string{`[]`, `3`, `null`, `{`} {
		if _, err := Parse([]byte(in)); !errors.Is(err, ErrNotObject) {
			t.Errorf("Parse(%s) = %v", in, err)
		}
	}
}

func TestDocumentLayout(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	l, ok, err := doc.Layout()
	if err != nil || !ok {
		t.Fatalf("Layout() = %v, %v", ok, err)
	}
	if _, found := l["xl"]; found {
		t.Error("unknown breakpoint kept")
	}
	p, found := l.Find(layout.LG, layout.QueueProcessor)
	if !found || p.W != 6 || p.H != 11 {
		t.Errorf("queueProcessor = %+v, %v", p, found)
	}
}

func TestLayoutOrDefaultWhenMissing(t *testing.T) {
	doc, _ := Parse([]byte(`{"WebUI_Settings":{}}`))
	l, err := doc.LayoutOrDefault()
	if err != nil {
		t.Fatal(err)
	}
	if !l.Equal(layout.Default()) {
		t.Error("missing layout did not fall back to default")
	}
}

func TestDocumentFlags(t *testing.T) {
	doc, _ := Parse([]byte(sampleDoc))
	flags, err := doc.Flags()
	if err != nil {
		t.Fatal(err)
	}
	if !flags["hideShokoNews"] || flags["hideQueueProcessor"] || !flags["combineContinueWatching"] {
		t.Errorf("flags = %v", flags)
	}
	if _, ok := flags["recentlyImportedView"]; ok {
		t.Error("non-boolean entry reported as flag")
	}
}

func TestWithLayoutPatchesOnlyLayout(t *testing.T) {
	doc, _ := Parse([]byte(sampleDoc))
	next, err := doc.WithLayout(layout.Default())
	if err != nil {
		t.Fatal(err)
	}

	got, _, _ := next.Layout()
	if !got.Equal(layout.Default()) {
		t.Error("layout not replaced")
	}

	patch, err := doc.Diff(next)
	if err != nil {
		t.Fatal(err)
	}
	if len(patch) == 0 {
		t.Fatal("empty patch")
	}
	for _, op := range patch {
		if len(op.Path) < len("/WebUI_Settings/layout/dashboard") ||
			op.Path[:len("/WebUI_Settings/layout/dashboard")] != "/WebUI_Settings/layout/dashboard" {
			t.Errorf("patch touches %s", op.Path)
		}
	}

	var m map[string]any
	_ = json.Unmarshal(next.Raw(), &m)
	if m["AniDb"].(map[string]any)["Username"] != "someone" {
		t.Error("unrelated settings lost")
	}
}

func TestWithFlagCreatesSections(t *testing.T) {
	doc, _ := Parse([]byte(`{}`))
	next, err := doc.WithFlag("hideNextUp", true)
	if err != nil {
		t.Fatal(err)
	}
	flags, _ := next.Flags()
	if !flags["hideNextUp"] {
		t.Errorf("flags = %v", flags)
	}
}

func TestServiceCachesAndSavesLayout(t *testing.T) {
	fc := &fakeClient{doc: json.RawMessage(sampleDoc)}
	svc := NewService(fc, time.Minute, quiet())
	ctx := context.Background()

	if _, err := svc.Layout(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Flags(ctx); err != nil {
		t.Fatal(err)
	}
	if fc.gets != 1 {
		t.Errorf("gets = %d, want 1 (cached)", fc.gets)
	}

	l := layout.Default()
	if err := svc.SaveLayout(ctx, l); err != nil {
		t.Fatal(err)
	}
	if len(fc.patches) != 1 {
		t.Fatalf("patches = %d", len(fc.patches))
	}

	got, err := svc.Layout(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(l) {
		t.Error("cache not updated after save")
	}

	// saving the same layout again is a no-op
	if err := svc.SaveLayout(ctx, l); err != nil {
		t.Fatal(err)
	}
	if len(fc.patches) != 1 {
		t.Errorf("unchanged save sent a patch")
	}
}

func TestServiceSaveFailureKeepsCache(t *testing.T) {
	fc := &fakeClient{doc: json.RawMessage(sampleDoc), fail: errors.New("boom")}
	svc := NewService(fc, time.Minute, quiet())
	ctx := context.Background()

	before, _ := svc.Layout(ctx)
	if err := svc.SaveLayout(ctx, layout.Default()); err == nil {
		t.Fatal("expected error")
	}
	after, _ := svc.Layout(ctx)
	if !after.Equal(before) {
		t.Error("failed save changed the cached layout")
	}
}

func TestServiceInvalidateRefetches(t *testing.T) {
	fc := &fakeClient{doc: json.RawMessage(sampleDoc)}
	svc := NewService(fc, time.Minute, quiet())
	ctx := context.Background()

	_, _ = svc.Get(ctx)
	svc.Invalidate()
	_, _ = svc.Get(ctx)
	if fc.gets != 2 {
		t.Errorf("gets = %d, want 2", fc.gets)
	}
}

func TestServiceSetFlag(t *testing.T) {
	fc := &fakeClient{doc: json.RawMessage(sampleDoc)}
	svc := NewService(fc, time.Minute, quiet())
	ctx := context.Background()

	if err := svc.SetFlag(ctx, "hideNextUp", true); err != nil {
		t.Fatal(err)
	}
	flags, _ := svc.Flags(ctx)
	if !flags["hideNextUp"] {
		t.Errorf("flags = %v", flags)
	}
	if len(fc.patches) != 1 || len(fc.patches[0]) != 1 || fc.patches[0][0].Path != "/WebUI_Settings/dashboard/hideNextUp" {
		t.Errorf("patches = %+v", fc.patches)
	}
}
