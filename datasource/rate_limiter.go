package datasource

import (
	"context"
	"fmt"

	"weather-dashboard/models"

	"golang.org/x/time/rate"
)

// OpenWeatherMap free tier: 60 calls per minute
const (
	DefaultRPS   = 1.0
	DefaultBurst = 5
)

// RateLimitedProvider wraps a Provider with a single limiter shared by every endpoint,
// since the upstream quota is counted per account and not per endpoint
type RateLimitedProvider struct {
	provider Provider
	limiter  *rate.Limiter
	name     string
}

// NewRateLimitedProvider creates a new rate limited provider
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedProvider(provider Provider, rps float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		name:     fmt.Sprintf("%s [Rate Limited]", provider.Name()),
	}
}

func (r *RateLimitedProvider) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return nil
}

// Geocode implements Geocoder with rate limiting
func (r *RateLimitedProvider) Geocode(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.Geocode(ctx, query, limit)
}

// FetchCurrent implements CurrentSource with rate limiting
func (r *RateLimitedProvider) FetchCurrent(ctx context.Context, coords models.Coordinates) (models.CurrentConditions, error) {
	if err := r.wait(ctx); err != nil {
		return models.CurrentConditions{}, err
	}
	return r.provider.FetchCurrent(ctx, coords)
}

// FetchForecast implements ForecastSource with rate limiting
func (r *RateLimitedProvider) FetchForecast(ctx context.Context, coords models.Coordinates) ([]models.RawForecastEntry, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.FetchForecast(ctx, coords)
}

// FetchAirQuality implements AirQualitySource with rate limiting
func (r *RateLimitedProvider) FetchAirQuality(ctx context.Context, coords models.Coordinates) (int, error) {
	if err := r.wait(ctx); err != nil {
		return 0, err
	}
	return r.provider.FetchAirQuality(ctx, coords)
}

// Name returns the provider name
func (r *RateLimitedProvider) Name() string {
	return r.name
}

// Verify that the rate limited provider implements the required interfaces
var (
	_ Provider = (*RateLimitedProvider)(nil)
)
