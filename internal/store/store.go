// Package store provides a small serialized state container: state changes
// only through Dispatch, which runs a pure reducer and then notifies
// subscribers with the new state.
package store

import (
	"sync"
	"sync/atomic"
)

// Action is anything a reducer understands.
type Action interface {
	ActionType() string
}

// Reducer computes the next state. It must not mutate prev.
type Reducer[S any] func(prev S, action Action) S

// Listener is called after every dispatch with the new state. A listener
// may Dispatch; the nested notification is delivered after the current
// round of listeners returns.
type Listener[S any] func(state S, action Action)

// UnsubscribeFunc is returned from Subscribe and removes the listener.
type UnsubscribeFunc func()

type listenerEntry[S any] struct {
	id uint64
	fn Listener[S]
}

type notification[S any] struct {
	state  S
	action Action
}

// Store holds state of type S.
type Store[S any] struct {
	reducer Reducer[S]

	dispatchMu sync.Mutex
	stateMu    sync.RWMutex
	state      S
	// pending notifications in reduction order, guarded by dispatchMu
	pending  []notification[S]
	draining bool

	nextID    atomic.Uint64
	listeners []listenerEntry[S]
	listenMu  sync.RWMutex
}

// New creates a store with an initial state.
func New[S any](initial S, reducer Reducer[S]) *Store[S] {
	return &Store[S]{
		reducer: reducer,
		state:   initial,
	}
}

// State returns the current state.
func (s *Store[S]) State() S {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Dispatch applies an action and returns the new state. Reductions are
// serialized. Listeners run outside the dispatch lock, one notification at
// a time and in reduction order, on the goroutine that found no delivery
// in progress; a Dispatch made while another goroutine is delivering
// returns once its state is reduced.
func (s *Store[S]) Dispatch(action Action) S {
	s.dispatchMu.Lock()
	s.stateMu.Lock()
	next := s.reducer(s.state, action)
	s.state = next
	s.stateMu.Unlock()

	s.pending = append(s.pending, notification[S]{state: next, action: action})
	if s.draining {
		s.dispatchMu.Unlock()
		return next
	}
	s.draining = true
	s.dispatchMu.Unlock()

	s.drain()
	return next
}

func (s *Store[S]) drain() {
	for {
		s.dispatchMu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.dispatchMu.Unlock()
			return
		}
		n := s.pending[0]
		s.pending = s.pending[1:]
		s.dispatchMu.Unlock()

		s.listenMu.RLock()
		entries := make([]listenerEntry[S], len(s.listeners))
		copy(entries, s.listeners)
		s.listenMu.RUnlock()

		for _, e := range entries {
			e.fn(n.state, n.action)
		}
	}
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store[S]) Subscribe(fn Listener[S]) UnsubscribeFunc {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()

	id := s.nextID.Add(1)
	s.listeners = append(s.listeners, listenerEntry[S]{id: id, fn: fn})

	return func() {
		s.listenMu.Lock()
		defer s.listenMu.Unlock()
		for i, e := range s.listeners {
			if e.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}
