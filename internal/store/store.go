// Package store holds the client-side cache: one container per domain,
// each mutated only through its reducer methods. A mutex per container
// serializes reducers, and readers work on snapshots, so no goroutine ever
// observes a half-applied update.
package store

import (
	"sort"
	"sync"
)

// Change names the container that was mutated
type Change string

const (
	ChangeAuth     Change = "auth"
	ChangeBookings Change = "bookings"
	ChangeAdmin    Change = "admin"
)

// Status is the request lifecycle flag of the auth container
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Options tunes container defaults
type Options struct {
	AdminPageLimit int
}

// Store aggregates the containers and fans out change notifications
type Store struct {
	Auth     *AuthContainer
	Bookings *BookingsContainer
	Admin    *AdminContainer

	mu        sync.RWMutex
	nextID    int
	listeners map[int]func(Change)
}

// New creates a store with every container in its initial state
func New(opts Options) *Store {
	limit := opts.AdminPageLimit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	s := &Store{listeners: make(map[int]func(Change))}
	s.Auth = newAuthContainer(s.emit)
	s.Bookings = newBookingsContainer(s.emit)
	s.Admin = newAdminContainer(limit, s.emit)
	return s
}

// Subscribe registers fn to run after every reducer. Listeners run on the
// mutating goroutine after the container lock is released.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) emit(c Change) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
