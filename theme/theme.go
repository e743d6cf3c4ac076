// Package theme holds the reader's light/dark preference.
package theme

import (
	"context"
	"strings"
	"sync"
)

// Preference is the color scheme the site renders with.
type Preference string

const (
	Light Preference = "light"
	Dark  Preference = "dark"
)

// Parse returns the preference named by s, case-insensitively.
func Parse(s string) (Preference, bool) {
	switch Preference(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// Toggle returns the opposite preference.
func (p Preference) Toggle() Preference {
	if p == Dark {
		return Light
	}
	return Dark
}

// State is the single authoritative preference for one reader. Toggle is its
// only writer; Get may be called from anywhere.
type State struct {
	mu   sync.RWMutex
	pref Preference
	subs map[int]func(Preference)
	next int
}

// NewState returns a State initialized to p, or Light if p is not valid.
func NewState(p Preference) *State {
	if _, ok := Parse(string(p)); !ok {
		p = Light
	}
	return &State{pref: p, subs: make(map[int]func(Preference))}
}

// Get returns the current preference.
func (s *State) Get() Preference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pref
}

// Toggle flips the preference, notifies subscribers and returns the new value.
// Subscribers run synchronously after the write, outside the lock.
func (s *State) Toggle() Preference {
	s.mu.Lock()
	s.pref = s.pref.Toggle()
	p := s.pref
	subs := make([]func(Preference), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
	return p
}

// Subscribe registers fn to be called after every toggle. The returned
// function removes the subscription.
func (s *State) Subscribe(fn func(Preference)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

type ctxKey struct{}

// WithState returns a copy of ctx carrying s.
func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// StateFrom returns the State carried by ctx, if any.
func StateFrom(ctx context.Context) (*State, bool) {
	s, ok := ctx.Value(ctxKey{}).(*State)
	return s, ok
}

// FromContext returns the preference carried by ctx, defaulting to Light.
func FromContext(ctx context.Context) Preference {
	if s, ok := StateFrom(ctx); ok {
		return s.Get()
	}
	return Light
}
