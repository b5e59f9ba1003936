package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"weather-dashboard/models"
)

func TestResolveCurrentLocationOrFallback(t *testing.T) {
	ctx := context.Background()

	q, notice := ResolveCurrentLocationOrFallback(ctx, nil, DefaultFallback)
	assert.Equal(t, "Hyderabad,Telangana,IN", q.Text())
	assert.Contains(t, notice, "Fallback to default city")

	denied := LocatorFunc(func(context.Context) (models.Coordinates, error) {
		return models.Coordinates{}, errors.New("User denied Geolocation")
	})
	q, notice = ResolveCurrentLocationOrFallback(ctx, denied, DefaultFallback)
	assert.True(t, q.IsPlace())
	assert.Equal(t, "Geolocation failed or denied: User denied Geolocation. Fallback to default city", notice)

	unsupported := LocatorFunc(func(context.Context) (models.Coordinates, error) {
		return models.Coordinates{}, ErrGeolocationUnavailable
	})
	_, notice = ResolveCurrentLocationOrFallback(ctx, unsupported, DefaultFallback)
	assert.Equal(t, "Geolocation is not supported. Fallback to default city", notice)

	here := LocatorFunc(func(context.Context) (models.Coordinates, error) {
		return models.Coordinates{Latitude: 17.385, Longitude: 78.4867}, nil
	})
	q, notice = ResolveCurrentLocationOrFallback(ctx, here, DefaultFallback)
	assert.Empty(t, notice)
	coords, ok := q.Coordinates()
	assert.True(t, ok)
	assert.Equal(t, 17.385, coords.Latitude)
}
