// Package collector keeps the recent-search snapshots fresh in the background.
package collector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"weather-dashboard/cache"
)

// Rehydrator refreshes the current-conditions snapshots of every remembered place.
// It runs once on start, on every Trigger, and on the refresh interval when one is set.
type Rehydrator struct {
	recent      *cache.RecentSearches
	fetcher     cache.SnapshotFetcher
	outputChan  chan []cache.Snapshot
	triggerChan chan struct{}
	interval    time.Duration
	passTimeout time.Duration
	logger      *slog.Logger
}

// NewRehydrator creates a rehydrator. An interval of zero disables periodic refresh.
func NewRehydrator(recent *cache.RecentSearches, fetcher cache.SnapshotFetcher, interval time.Duration, logger *slog.Logger) *Rehydrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rehydrator{
		recent:      recent,
		fetcher:     fetcher,
		outputChan:  make(chan []cache.Snapshot, 1),
		triggerChan: make(chan struct{}, 1),
		interval:    interval,
		passTimeout: 30 * time.Second, // Default timeout for a whole pass
		logger:      logger,
	}
}

// SetPassTimeout changes the timeout for one rehydration pass
func (r *Rehydrator) SetPassTimeout(timeout time.Duration) {
	r.passTimeout = timeout
}

// OutputChannel returns the channel that emits the snapshots of each pass
func (r *Rehydrator) OutputChannel() <-chan []cache.Snapshot {
	return r.outputChan
}

// Trigger requests a pass. Requests made while one is pending are merged.
func (r *Rehydrator) Trigger() {
	select {
	case r.triggerChan <- struct{}{}:
	default:
	}
}

// Start begins rehydrating in the background.
// The returned function can be called to stop it; the output channel is closed afterwards.
func (r *Rehydrator) Start(ctx context.Context) func() {
	runCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(r.outputChan)
		r.run(runCtx)
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

func (r *Rehydrator) run(ctx context.Context) {
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	// Do an initial pass immediately
	r.passOnce(ctx)

	for {
		select {
		case <-r.triggerChan:
			r.passOnce(ctx)
		case <-tick:
			r.passOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Rehydrator) passOnce(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, r.passTimeout)
	defer cancel()

	start := time.Now()
	snapshots := r.recent.Rehydrate(passCtx, r.fetcher)
	if ctx.Err() != nil {
		return
	}

	r.logger.Debug("recent searches rehydrated",
		"snapshots", len(snapshots),
		"entries", len(r.recent.Entries()),
		"duration", time.Since(start),
	)

	// Replace an unread pass so consumers only see the latest one
	select {
	case <-r.outputChan:
	default:
	}
	select {
	case r.outputChan <- snapshots:
	case <-ctx.Done():
	}
}
