package client

import (
	"sync"

	"github.com/kiliankoe/drawguess/internal/game"
	"github.com/rs/zerolog"
)

type Listener func(game.SessionState)

// Store owns the session state. It only changes through Apply.
type Store struct {
	applyMu sync.Mutex // serializes Apply including notification

	mu        sync.RWMutex
	state     game.SessionState
	listeners []*listenerEntry

	log zerolog.Logger
}

type listenerEntry struct{ fn Listener }

func NewStore(log zerolog.Logger) *Store {
	return &Store{state: game.NewSessionState(), log: log}
}

// Apply reduces ev into the state and notifies listeners in registration
// order. Malformed events are returned and leave the state untouched. A
// capacity error is returned after the reduced state was committed.
func (s *Store) Apply(ev game.Event) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	next, err := game.Reduce(s.state, ev)
	if game.IsMalformed(err) {
		s.mu.Unlock()
		return err
	}
	s.state = next
	listeners := make([]*listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	s.log.Debug().Str("event", ev.Kind()).Str("phase", string(next.Phase)).Int("players", len(next.Roster)).Msg("applied")

	for _, l := range listeners {
		l.fn(next.Clone())
	}
	return err
}

// Snapshot returns a copy the caller may keep.
func (s *Store) Snapshot() game.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	e := &listenerEntry{fn: fn}
	s.mu.Lock()
	s.listeners = append(s.listeners, e)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l == e {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}
