package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"weather-dashboard/models"
)

const (
	// RecentSearchesKey is the store key holding the serialized history
	RecentSearchesKey = "RecentlySearchedCities"

	// DefaultRecentCapacity is the number of places remembered
	DefaultRecentCapacity = 6
)

// KeyValueStore persists whole values under a key
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SnapshotFetcher fetches current conditions only, for history rehydration
type SnapshotFetcher interface {
	Snapshot(ctx context.Context, query models.LocationQuery) (models.CurrentConditions, error)
}

// Snapshot is the current-conditions view of one remembered place
type Snapshot struct {
	Entry   models.RecentSearchEntry `json:"entry"`
	Current models.CurrentConditions `json:"current"`
}

// RecentSearches is a bounded, most-recent-first list of searched places
type RecentSearches struct {
	mu       sync.Mutex
	store    KeyValueStore
	capacity int
	entries  []models.RecentSearchEntry
	logger   *slog.Logger
}

// NewRecentSearches creates an empty history. Call Load to restore the persisted one.
func NewRecentSearches(store KeyValueStore, capacity int, logger *slog.Logger) *RecentSearches {
	if capacity <= 0 {
		capacity = DefaultRecentCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecentSearches{store: store, capacity: capacity, logger: logger}
}

func normalize(e models.RecentSearchEntry) models.RecentSearchEntry {
	return models.RecentSearchEntry{
		City:    strings.TrimSpace(e.City),
		State:   strings.TrimSpace(e.State),
		Country: strings.TrimSpace(e.Country),
	}
}

// Load restores the persisted history. A missing or unreadable value leaves the history
// empty; the problem is logged and not returned.
func (r *RecentSearches) Load(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil

	data, ok, err := r.store.Get(ctx, RecentSearchesKey)
	if err != nil {
		r.logger.Warn("recent searches unavailable", "error", err)
		return
	}
	if !ok {
		return
	}

	var stored []models.RecentSearchEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		r.logger.Warn("recent searches corrupt, starting empty", "error", err)
		return
	}

	seen := make(map[string]bool, len(stored))
	for _, e := range stored {
		e = normalize(e)
		if e.City == "" || seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		r.entries = append(r.entries, e)
		if len(r.entries) == r.capacity {
			break
		}
	}
	r.logger.Debug("recent searches loaded", "entries", len(r.entries))
}

// Record moves entry to the front, evicting the oldest place beyond capacity, and
// persists the whole list. On a persist error the in-memory history stays updated.
func (r *RecentSearches) Record(ctx context.Context, entry models.RecentSearchEntry) error {
	entry = normalize(entry)
	if entry.City == "" {
		return errors.New("recent search entry needs a city")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]models.RecentSearchEntry, 0, r.capacity)
	next = append(next, entry)
	for _, e := range r.entries {
		if e.Key() == entry.Key() {
			continue
		}
		if len(next) == r.capacity {
			break
		}
		next = append(next, e)
	}
	r.entries = next

	return r.persistLocked(ctx)
}

// Remove drops entry from the history
func (r *RecentSearches) Remove(ctx context.Context, entry models.RecentSearchEntry) error {
	key := normalize(entry).Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.entries[:0:0]
	for _, e := range r.entries {
		if e.Key() != key {
			next = append(next, e)
		}
	}
	r.entries = next

	return r.persistLocked(ctx)
}

// Clear empties the history and removes the stored value
func (r *RecentSearches) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	if err := r.store.Delete(ctx, RecentSearchesKey); err != nil {
		return fmt.Errorf("clear recent searches: %w", err)
	}
	return nil
}

func (r *RecentSearches) persistLocked(ctx context.Context) error {
	entries := r.entries
	if entries == nil {
		entries = []models.RecentSearchEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode recent searches: %w", err)
	}
	if err := r.store.Set(ctx, RecentSearchesKey, data); err != nil {
		return fmt.Errorf("persist recent searches: %w", err)
	}
	return nil
}

// Entries returns a copy of the history, most recent first
func (r *RecentSearches) Entries() []models.RecentSearchEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.RecentSearchEntry(nil), r.entries...)
}

// Rehydrate fetches current conditions for each remembered place, one at a time, in
// history order. A failed place is logged and left out; the history itself is unchanged.
func (r *RecentSearches) Rehydrate(ctx context.Context, fetcher SnapshotFetcher) []Snapshot {
	entries := r.Entries()
	snapshots := make([]Snapshot, 0, len(entries))

	for _, e := range entries {
		if ctx.Err() != nil {
			r.logger.Debug("rehydration stopped", "error", ctx.Err())
			break
		}
		cur, err := fetcher.Snapshot(ctx, e.Query())
		if err != nil {
			r.logger.Warn("recent search snapshot failed", "city", e.City, "error", err)
			continue
		}
		snapshots = append(snapshots, Snapshot{Entry: e, Current: cur})
	}
	return snapshots
}
