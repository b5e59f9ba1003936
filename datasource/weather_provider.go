package datasource

import (
	"context"

	"weather-dashboard/models"
)

// Geocoder resolves free-text places to coordinates
type Geocoder interface {
	// Geocode returns up to limit matches for a "city,state,country" query
	Geocode(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error)

	// Name returns the provider's name
	Name() string
}

// CurrentSource is an interface for services that can fetch current conditions
type CurrentSource interface {
	// FetchCurrent fetches current conditions at the given coordinates
	FetchCurrent(ctx context.Context, coords models.Coordinates) (models.CurrentConditions, error)

	// Name returns the source's name
	Name() string
}

// ForecastSource is an interface for services that can fetch the 3-hour forecast series
type ForecastSource interface {
	// FetchForecast fetches the raw forecast series at the given coordinates
	FetchForecast(ctx context.Context, coords models.Coordinates) ([]models.RawForecastEntry, error)

	// Name returns the source's name
	Name() string
}

// AirQualitySource is an interface for services that report an air-quality index
type AirQualitySource interface {
	// FetchAirQuality returns the provider's 1-5 air-quality index at the given coordinates
	FetchAirQuality(ctx context.Context, coords models.Coordinates) (int, error)

	// Name returns the source's name
	Name() string
}

// Provider is a weather service that serves every endpoint the dashboard needs
type Provider interface {
	Geocoder
	CurrentSource
	ForecastSource
	AirQualitySource
}
