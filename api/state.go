package api

import (
	"context"
	"sync"
	"time"

	"weather-dashboard/cache"
	"weather-dashboard/models"
	"weather-dashboard/units"
)

// State holds the dashboard's single-user state: display unit, the bundle currently
// shown, and the latest recent-search snapshots.
type State struct {
	mutex   sync.RWMutex
	unit    units.Unit
	bundle  *models.Bundle
	notice  string
	updated time.Time
	recent  []cache.Snapshot

	ticket uint64
	cancel context.CancelFunc
}

// NewState creates state showing temperatures in unit
func NewState(unit units.Unit) *State {
	if unit == "" {
		unit = units.Celsius
	}
	return &State{unit: unit}
}

// Begin starts a primary request. The previous one, if still running, is canceled and
// can no longer publish. The returned cancel must be called when the request ends.
func (s *State) Begin(parent context.Context) (context.Context, uint64, context.CancelFunc) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.ticket++
	s.cancel = cancel
	return ctx, s.ticket, cancel
}

// Current reports whether ticket still belongs to the latest request
func (s *State) Current(ticket uint64) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return ticket == s.ticket
}

// Publish stores the bundle of a finished request. A superseded ticket is dropped
// and Publish returns false.
func (s *State) Publish(ticket uint64, bundle models.Bundle, notice string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if ticket != s.ticket {
		return false
	}
	s.bundle = &bundle
	s.notice = notice
	s.updated = time.Now()
	return true
}

// Bundle returns the bundle currently shown
func (s *State) Bundle() (models.Bundle, string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.bundle == nil {
		return models.Bundle{}, "", false
	}
	return *s.bundle, s.notice, true
}

// Unit returns the display unit
func (s *State) Unit() units.Unit {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.unit
}

// SetUnit changes the display unit. Stored data is Celsius, so nothing is refetched.
func (s *State) SetUnit(unit units.Unit) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.unit = unit
}

// SetRecent replaces the recent-search snapshots
func (s *State) SetRecent(snapshots []cache.Snapshot) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.recent = append([]cache.Snapshot(nil), snapshots...)
}

// Recent returns the latest recent-search snapshots
func (s *State) Recent() []cache.Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]cache.Snapshot(nil), s.recent...)
}

// Updated returns when the shown bundle was published
func (s *State) Updated() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.updated
}
