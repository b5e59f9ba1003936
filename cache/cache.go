package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"weather-dashboard/datasource"
	"weather-dashboard/models"
)

// CachedProvider wraps a Provider and caches geocoding and current conditions.
// Forecast and air quality always go to the wrapped provider.
type CachedProvider struct {
	source    datasource.Provider
	geocodes  *ttlCache[[]models.GeocodeResult]
	currents  *ttlCache[models.CurrentConditions]
	logger    *slog.Logger
	mutex     sync.RWMutex
	geoHits   int
	geoMisses int
	curHits   int
	curMisses int
}

// Stats reports cache hits and misses per endpoint
type Stats struct {
	GeocodeHits   int `json:"geocodeHits"`
	GeocodeMisses int `json:"geocodeMisses"`
	CurrentHits   int `json:"currentHits"`
	CurrentMisses int `json:"currentMisses"`
}

// NewCachedProvider creates a new cached wrapper around a provider
func NewCachedProvider(source datasource.Provider, currentTTL, geocodeTTL time.Duration, logger *slog.Logger) *CachedProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedProvider{
		source:   source,
		geocodes: newTTLCache[[]models.GeocodeResult](geocodeTTL),
		currents: newTTLCache[models.CurrentConditions](currentTTL),
		logger:   logger,
	}
}

// Name returns the name of the underlying provider with [Cached] suffix
func (c *CachedProvider) Name() string {
	return c.source.Name() + " [Cached]"
}

// Geocode resolves a place, using the cache when available. Empty results are not cached.
func (c *CachedProvider) Geocode(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	key := fmt.Sprintf("%s:%d", query, limit)

	if results, age, ok := c.geocodes.get(key); ok {
		c.mutex.Lock()
		c.geoHits++
		c.mutex.Unlock()
		c.logger.Debug("geocode cache hit", "query", query, "age", age.Round(time.Second))
		return append([]models.GeocodeResult(nil), results...), nil
	}

	c.mutex.Lock()
	c.geoMisses++
	c.mutex.Unlock()
	c.logger.Debug("geocode cache miss", "query", query, "source", c.source.Name())

	results, err := c.source.Geocode(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		c.geocodes.put(key, append([]models.GeocodeResult(nil), results...))
	}
	return results, nil
}

// FetchCurrent fetches current conditions, using the cache when available
func (c *CachedProvider) FetchCurrent(ctx context.Context, coords models.Coordinates) (models.CurrentConditions, error) {
	key := coords.String()

	if cur, age, ok := c.currents.get(key); ok {
		c.mutex.Lock()
		c.curHits++
		c.mutex.Unlock()
		c.logger.Debug("current conditions cache hit", "coords", key, "age", age.Round(time.Second))
		return cur, nil
	}

	c.mutex.Lock()
	c.curMisses++
	c.mutex.Unlock()
	c.logger.Debug("current conditions cache miss", "coords", key, "source", c.source.Name())

	cur, err := c.source.FetchCurrent(ctx, coords)
	if err != nil {
		return models.CurrentConditions{}, err
	}
	c.currents.put(key, cur)
	return cur, nil
}

// FetchForecast is not cached
func (c *CachedProvider) FetchForecast(ctx context.Context, coords models.Coordinates) ([]models.RawForecastEntry, error) {
	return c.source.FetchForecast(ctx, coords)
}

// FetchAirQuality is not cached
func (c *CachedProvider) FetchAirQuality(ctx context.Context, coords models.Coordinates) (int, error) {
	return c.source.FetchAirQuality(ctx, coords)
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedProvider) CacheStats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return Stats{
		GeocodeHits:   c.geoHits,
		GeocodeMisses: c.geoMisses,
		CurrentHits:   c.curHits,
		CurrentMisses: c.curMisses,
	}
}

// Ensure CachedProvider implements the Provider interface
var _ datasource.Provider = (*CachedProvider)(nil)
