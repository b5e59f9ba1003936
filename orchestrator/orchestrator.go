// Package orchestrator turns a location query into the data the dashboard shows:
// it resolves coordinates and fans out to the provider endpoints.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"weather-dashboard/cache"
	"weather-dashboard/datasource"
	"weather-dashboard/forecast"
	"weather-dashboard/models"
)

// SuggestionLimit is the number of geocoding matches offered while typing
const SuggestionLimit = 5

// Orchestrator coordinates geocoding and the weather, forecast and air-quality fetches
type Orchestrator struct {
	provider datasource.Provider
	logger   *slog.Logger
}

var _ cache.SnapshotFetcher = (*Orchestrator)(nil)

// New creates an orchestrator over a provider
func New(provider datasource.Provider, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{provider: provider, logger: logger}
}

// Resolve returns the coordinates for a query. Coordinate queries are returned as-is;
// place queries take the first geocoding match.
func (o *Orchestrator) Resolve(ctx context.Context, q models.LocationQuery) (models.Coordinates, error) {
	if err := q.Validate(); err != nil {
		return models.Coordinates{}, fmt.Errorf("invalid location query: %w", err)
	}
	if coords, ok := q.Coordinates(); ok {
		return coords, nil
	}

	results, err := o.provider.Geocode(ctx, q.Text(), 1)
	var upstream *models.UpstreamError
	if errors.As(err, &upstream) {
		return models.Coordinates{}, &models.NotFoundError{Query: q.Text(), Err: err}
	}
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("resolve %q: %w", q.Text(), err)
	}
	if len(results) == 0 {
		return models.Coordinates{}, &models.NotFoundError{Query: q.Text()}
	}

	o.logger.Debug("location resolved", "query", q.Text(), "match", results[0].Label())
	return results[0].Coordinates(), nil
}

// FetchCurrentConditions issues the single current-conditions request
func (o *Orchestrator) FetchCurrentConditions(ctx context.Context, coords models.Coordinates) (models.CurrentConditions, error) {
	cur, err := o.provider.FetchCurrent(ctx, coords)
	if err != nil {
		return models.CurrentConditions{}, fmt.Errorf("current conditions: %w", err)
	}
	return cur, nil
}

// FetchFullBundle fetches current conditions, forecast and air quality concurrently.
// All three requests run to completion; any failure fails the bundle.
func (o *Orchestrator) FetchFullBundle(ctx context.Context, coords models.Coordinates) (models.Bundle, error) {
	start := time.Now()
	bundle := models.Bundle{Coordinates: coords}

	var g errgroup.Group

	g.Go(func() error {
		cur, err := o.provider.FetchCurrent(ctx, coords)
		if err != nil {
			return fmt.Errorf("current conditions: %w", err)
		}
		bundle.Current = cur
		return nil
	})

	g.Go(func() error {
		raw, err := o.provider.FetchForecast(ctx, coords)
		if err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		window, err := forecast.Window(raw)
		if err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		bundle.Forecast = window
		return nil
	})

	g.Go(func() error {
		index, err := o.provider.FetchAirQuality(ctx, coords)
		if err != nil {
			return fmt.Errorf("air quality: %w", err)
		}
		aq, err := models.NewAirQuality(index)
		if err != nil {
			return fmt.Errorf("air quality: %w", err)
		}
		bundle.AirQuality = aq
		return nil
	})

	if err := g.Wait(); err != nil {
		o.logger.Warn("bundle fetch failed", "coords", coords.String(), "error", err)
		return models.Bundle{}, err
	}

	o.logger.Info("bundle fetched",
		"coords", coords.String(),
		"location", bundle.Current.Location(),
		"forecast_days", len(bundle.Forecast),
		"duration", time.Since(start),
	)
	return bundle, nil
}

// Query resolves the location and fetches the full bundle
func (o *Orchestrator) Query(ctx context.Context, q models.LocationQuery) (models.Bundle, error) {
	coords, err := o.Resolve(ctx, q)
	if err != nil {
		return models.Bundle{}, err
	}
	return o.FetchFullBundle(ctx, coords)
}

// Snapshot resolves the location and fetches current conditions only
func (o *Orchestrator) Snapshot(ctx context.Context, q models.LocationQuery) (models.CurrentConditions, error) {
	coords, err := o.Resolve(ctx, q)
	if err != nil {
		return models.CurrentConditions{}, err
	}
	return o.FetchCurrentConditions(ctx, coords)
}

// Suggest returns up to SuggestionLimit places matching partial input
func (o *Orchestrator) Suggest(ctx context.Context, text string) ([]models.GeocodeResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []models.GeocodeResult{}, nil
	}
	results, err := o.provider.Geocode(ctx, text, SuggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", text, err)
	}
	if len(results) > SuggestionLimit {
		results = results[:SuggestionLimit]
	}
	return results, nil
}
