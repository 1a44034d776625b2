// Package queue keeps the server's command-queue status and translates
// push channel events into store actions.
package queue

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dicklesworthstone/shokodash/internal/signalr"
	"github.com/Dicklesworthstone/shokodash/internal/store"
)

// Channel event names.
const (
	EventStateChanged     = "QueueStateChanged"
	EventCountChanged     = "QueueCountChanged"
	EventProcessingStatus = "CommandProcessingStatus"
)

// Info is the status of one queue.
type Info struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

// Status maps queue names to their info. Values are never mutated in place;
// every change produces a new map.
type Status map[string]Info

// Names returns the queue names in sorted order.
func (s Status) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Total returns the sum of all queue counts.
func (s Status) Total() int {
	n := 0
	for _, info := range s {
		n += info.Count
	}
	return n
}

func (s Status) clone() Status {
	out := make(Status, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}

// StateChanged patches the state of one queue.
type StateChanged struct {
	Queue string
	State string
}

// CountChanged patches the count of one queue.
type CountChanged struct {
	Queue string
	Count int
}

// Replaced swaps in a full status mapping.
type Replaced struct {
	Status Status
}

func (StateChanged) ActionType() string { return EventStateChanged }
func (CountChanged) ActionType() string { return EventCountChanged }
func (Replaced) ActionType() string     { return EventProcessingStatus }

// Reduce applies queue actions. Other actions return prev unchanged.
func Reduce(prev Status, action store.Action) Status {
	switch a := action.(type) {
	case StateChanged:
		next := prev.clone()
		info := next[a.Queue]
		info.State = a.State
		next[a.Queue] = info
		return next
	case CountChanged:
		next := prev.clone()
		info := next[a.Queue]
		info.Count = a.Count
		next[a.Queue] = info
		return next
	case Replaced:
		return a.Status.clone()
	default:
		return prev
	}
}

// NewStore returns an empty queue status store.
func NewStore() *store.Store[Status] {
	return store.New(Status{}, Reduce)
}

// Handlers returns the channel dispatch table that feeds s.
func Handlers(s *store.Store[Status], logger *slog.Logger) signalr.Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "queue")

	wrap := func(name string, decode func([]json.RawMessage) (store.Action, error)) signalr.Handler {
		return func(args []json.RawMessage) error {
			action, err := decode(args)
			if err != nil {
				logger.Warn("malformed queue event dropped", "event", name, "error", err)
				return nil
			}
			s.Dispatch(action)
			return nil
		}
	}

	return signalr.Handlers{
		EventStateChanged:     wrap(EventStateChanged, decodeStateChanged),
		EventCountChanged:     wrap(EventCountChanged, decodeCountChanged),
		EventProcessingStatus: wrap(EventProcessingStatus, decodeProcessingStatus),
	}
}

func decodeStateChanged(args []json.RawMessage) (store.Action, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("want 2 arguments, got %d", len(args))
	}
	var a StateChanged
	if err := json.Unmarshal(args[0], &a.Queue); err != nil {
		return nil, fmt.Errorf("queue name: %w", err)
	}
	if err := json.Unmarshal(args[1], &a.State); err != nil {
		return nil, fmt.Errorf("queue state: %w", err)
	}
	return a, nil
}

func decodeCountChanged(args []json.RawMessage) (store.Action, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("want 2 arguments, got %d", len(args))
	}
	var a CountChanged
	if err := json.Unmarshal(args[0], &a.Queue); err != nil {
		return nil, fmt.Errorf("queue name: %w", err)
	}
	if err := json.Unmarshal(args[1], &a.Count); err != nil {
		return nil, fmt.Errorf("queue count: %w", err)
	}
	return a, nil
}

func decodeProcessingStatus(args []json.RawMessage) (store.Action, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("want 1 argument, got %d", len(args))
	}
	var status Status
	if err := json.Unmarshal(args[0], &status); err != nil {
		return nil, fmt.Errorf("status mapping: %w", err)
	}
	if status == nil {
		status = Status{}
	}
	return Replaced{Status: status}, nil
}
