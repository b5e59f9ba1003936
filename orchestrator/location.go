package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"weather-dashboard/models"
)

// DefaultFallback is the place shown when the device location cannot be determined
var DefaultFallback = models.NewPlaceQuery("Hyderabad", "Telangana", "IN")

// ErrGeolocationUnavailable reports a client that cannot provide its position at all
var ErrGeolocationUnavailable = errors.New("geolocation is not supported")

// Locator provides the device position
type Locator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

// LocatorFunc adapts a function to Locator
type LocatorFunc func(ctx context.Context) (models.Coordinates, error)

func (f LocatorFunc) Locate(ctx context.Context) (models.Coordinates, error) { return f(ctx) }

// ResolveCurrentLocationOrFallback asks the locator for the device position. When there is
// no locator, or it fails, the fallback query is returned with a notice for the user.
func ResolveCurrentLocationOrFallback(ctx context.Context, loc Locator, fallback models.LocationQuery) (models.LocationQuery, string) {
	if loc == nil {
		return fallback, "Geolocation is not supported. Fallback to default city"
	}

	coords, err := loc.Locate(ctx)
	if errors.Is(err, ErrGeolocationUnavailable) {
		return fallback, "Geolocation is not supported. Fallback to default city"
	}
	if err != nil {
		return fallback, fmt.Sprintf("Geolocation failed or denied: %s. Fallback to default city", err)
	}

	q := models.NewCoordinateQuery(coords.Latitude, coords.Longitude)
	if err := q.Validate(); err != nil {
		return fallback, fmt.Sprintf("Geolocation failed or denied: %s. Fallback to default city", err)
	}
	return q, ""
}
