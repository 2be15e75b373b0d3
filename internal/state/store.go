// Package state holds the in-memory View State shared by the loader and the renderer.
package state

import (
	"sync"
	"time"

	"resourcefinda/internal/models"
)

// ViewState is the result of one successful load. A committed ViewState is never
// modified; a new load replaces it.
type ViewState struct {
	Records  []models.Facility
	Query    string
	LoadedAt time.Time
}

// Snapshot is what readers see: the current ViewState, the most recent load failure that
// happened after it, and a version that increases on every applied change.
type Snapshot struct {
	State     ViewState
	LastError error
	Version   uint64
}

// Ticket identifies one load attempt. Tickets are ordered by the time Begin was called.
type Ticket uint64

// Store serialises updates to the View State. The most recently started load wins: once a
// ticket has been applied, results from older tickets are discarded.
type Store struct {
	mu      sync.RWMutex
	snap    Snapshot
	issued  Ticket
	applied Ticket
}

func NewStore() *Store {
	return &Store{}
}

// Begin issues a ticket for a new load.
func (s *Store) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Commit replaces the View State with vs. It reports false when a newer load has already
// been applied.
func (s *Store) Commit(t Ticket, vs ViewState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t <= s.applied {
		return false
	}
	s.applied = t
	s.snap = Snapshot{State: vs, Version: s.snap.Version + 1}
	return true
}

// Fail records a failed load and keeps the current View State. It reports false when a
// newer load has already been applied.
func (s *Store) Fail(t Ticket, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t <= s.applied {
		return false
	}
	s.applied = t
	s.snap = Snapshot{State: s.snap.State, LastError: err, Version: s.snap.Version + 1}
	return true
}

// Current returns the latest snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
