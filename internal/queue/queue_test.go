package queue

import (
	"encoding/json"
	"io"
	"log/slog"
	"reflect"
	"testing"
)

func args(t *testing.T, vals ...any) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(vals))
	for i, v := range vals {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = b
	}
	return out
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStateThenCountPatchesOnlyThatQueue(t *testing.T) {
	s := NewStore()
	s.Dispatch(Replaced{Status: Status{
		"general": {State: "Idle", Count: 2},
		"import":  {State: "Idle", Count: 0},
	}})
	h := Handlers(s, quiet())

	if err := h[EventStateChanged](args(t, "import", "Running")); err != nil {
		t.Fatal(err)
	}
	if err := h[EventCountChanged](args(t, "import", 5)); err != nil {
		t.Fatal(err)
	}

	got := s.State()
	if got["import"] != (Info{State: "Running", Count: 5}) {
		t.Errorf("import = %+v", got["import"])
	}
	if got["general"] != (Info{State: "Idle", Count: 2}) {
		t.Errorf("general changed: %+v", got["general"])
	}
}

func TestUnknownQueueIsInserted(t *testing.T) {
	s := NewStore()
	h := Handlers(s, quiet())

	_ = h[EventCountChanged](args(t, "hasher", 7))
	if got := s.State()["hasher"]; got != (Info{Count: 7}) {
		t.Errorf("hasher = %+v", got)
	}
}

func TestProcessingStatusReplacesMapping(t *testing.T) {
	s := NewStore()
	h := Handlers(s, quiet())
	_ = h[EventCountChanged](args(t, "old", 1))

	full := map[string]Info{
		"general": {State: "Running", Count: 3},
		"hasher":  {State: "Paused", Count: 9},
	}
	_ = h[EventProcessingStatus](args(t, full))

	if !reflect.DeepEqual(s.State(), Status(full)) {
		t.Errorf("State() = %+v", s.State())
	}
}

func TestUpdatesAreCopyOnWrite(t *testing.T) {
	s := NewStore()
	_ = Handlers(s, quiet())[EventStateChanged](args(t, "import", "Idle"))

	before := s.State()
	s.Dispatch(CountChanged{Queue: "import", Count: 4})

	if before["import"].Count != 0 {
		t.Errorf("previous snapshot mutated: %+v", before["import"])
	}
	if s.State()["import"].Count != 4 {
		t.Errorf("new state = %+v", s.State()["import"])
	}
}

func TestMalformedPayloadIsDropped(t *testing.T) {
	s := NewStore()
	h := Handlers(s, quiet())

	tests := []struct {
		name  string
		event string
		args  []json.RawMessage
	}{
		{"missing count", EventCountChanged, args(t, "import")},
		{"count not a number", EventCountChanged, args(t, "import", "five")},
		{"queue not a string", EventStateChanged, args(t, 3, "Running")},
		{"mapping not an object", EventProcessingStatus, args(t, []int{1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := h[tt.event](tt.args); err != nil {
				t.Errorf("handler returned %v", err)
			}
			if len(s.State()) != 0 {
				t.Errorf("state changed: %+v", s.State())
			}
		})
	}
}

func TestStatusHelpers(t *testing.T) {
	st := Status{"b": {Count: 2}, "a": {Count: 3}}
	if !reflect.DeepEqual(st.Names(), []string{"a", "b"}) {
		t.Errorf("Names() = %v", st.Names())
	}
	if st.Total() != 5 {
		t.Errorf("Total() = %d", st.Total())
	}
}
