package openweathermap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-dashboard/models"
)

const currentBody = `{
  "name": "Paris", "dt": 1705330800, "timezone": 3600, "visibility": 10000,
  "main": {"temp": 4.6, "feels_like": 1.2, "pressure": 1021, "humidity": 81},
  "wind": {"speed": 4.1},
  "weather": [{"id": 803, "description": "broken clouds", "icon": "04d"}],
  "sys": {"country": "FR", "sunrise": 1705304160, "sunset": 1705335960}
}`

const forecastBody = `{"list": [
  {"dt": 1705330800, "dt_txt": "2024-01-15 15:00:00",
   "main": {"temp_min": 3.1, "temp_max": 4.8, "feels_like": 1.0, "humidity": 80},
   "weather": [{"id": 803, "description": "broken clouds", "icon": "04d"}], "wind": {"speed": 3.9}},
  {"dt": 1705341600, "dt_txt": "2024-01-15 18:00:00",
   "main": {"temp_min": 2.2, "temp_max": 2.9, "feels_like": 0.1, "humidity": 84},
   "weather": [{"id": 500, "description": "light rain", "icon": "10n"}], "wind": {"speed": 3.1}}
]}`

func newTestSource(t *testing.T, handler http.HandlerFunc) *OpenWeatherMapSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenWeatherMapSource("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestGeocode(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, geocodePath, r.URL.Path)
		assert.Equal(t, "Paris,,FR", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"Paris","state":"Ile-de-France","country":"FR","lat":48.8589,"lon":2.32}]`))
	})

	results, err := src.Geocode(context.Background(), "Paris,,FR", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Paris, Ile-de-France, FR", results[0].Label())
	assert.Equal(t, models.Coordinates{Latitude: 48.8589, Longitude: 2.32}, results[0].Coordinates())
}

func TestGeocode_NoMatch(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	results, err := src.Geocode(context.Background(), "Atlantis", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFetchCurrent(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, currentPath, r.URL.Path)
		assert.Equal(t, "48.85", r.URL.Query().Get("lat"))
		assert.Equal(t, "2.35", r.URL.Query().Get("lon"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(currentBody))
	})

	cur, err := src.FetchCurrent(context.Background(), models.Coordinates{Latitude: 48.85, Longitude: 2.35})
	require.NoError(t, err)

	assert.Equal(t, "Paris, FR", cur.Location())
	assert.Equal(t, 4.6, cur.TempCelsius)
	assert.Equal(t, 1.2, cur.FeelsLikeCelsius)
	assert.Equal(t, 81, cur.HumidityPercent)
	assert.Equal(t, 1021, cur.PressureHpa)
	assert.Equal(t, 10000, cur.VisibilityMeters)
	assert.Equal(t, 803, cur.ConditionCode)
	assert.Equal(t, "04d", cur.ConditionIconID)
	assert.Equal(t, 3600, cur.TimezoneOffsetSeconds)
	assert.Equal(t, int64(1705304160), cur.Sunrise.Unix())
}

func TestFetchCurrent_NoCondition(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Paris","weather":[]}`))
	})

	_, err := src.FetchCurrent(context.Background(), models.Coordinates{})
	var formatErr *models.DataFormatError
	assert.True(t, errors.As(err, &formatErr))
}

func TestFetchForecast(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, forecastPath, r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(forecastBody))
	})

	entries, err := src.FetchForecast(context.Background(), models.Coordinates{Latitude: 48.85, Longitude: 2.35})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "2024-01-15 15:00:00", entries[0].DateText)
	assert.Equal(t, 4.8, entries[0].TempMax)
	assert.Equal(t, 3.1, entries[0].TempMin)
	assert.Equal(t, "10n", entries[1].IconID)
	assert.Equal(t, "light rain", entries[1].Description)
	assert.Equal(t, 500, entries[1].ConditionCode)
}

func TestFetchForecast_EntryWithoutCondition(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"list":[{"dt":1,"dt_txt":"2024-01-15 15:00:00","weather":[{"icon":"01d"}]},{"dt":2,"dt_txt":"2024-01-15 18:00:00","weather":[]}]}`))
	})

	_, err := src.FetchForecast(context.Background(), models.Coordinates{})
	var formatErr *models.DataFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, 1, formatErr.Index)
}

func TestFetchAirQuality(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, airQualityPath, r.URL.Path)
		_, _ = w.Write([]byte(`{"list":[{"main":{"aqi":4}}]}`))
	})

	aqi, err := src.FetchAirQuality(context.Background(), models.Coordinates{})
	require.NoError(t, err)
	assert.Equal(t, 4, aqi)
}

func TestFetchAirQuality_EmptyList(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"list":[]}`))
	})

	_, err := src.FetchAirQuality(context.Background(), models.Coordinates{})
	var formatErr *models.DataFormatError
	assert.True(t, errors.As(err, &formatErr))
}

func TestUpstreamStatus(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	})

	_, err := src.FetchCurrent(context.Background(), models.Coordinates{})
	var upstream *models.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Equal(t, "current weather", upstream.Operation)
	assert.Contains(t, upstream.Body, "Invalid API key")

	_, err = src.Geocode(context.Background(), "Paris", 1)
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "geocode", upstream.Operation)
}

func TestMalformedBody(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := src.FetchForecast(context.Background(), models.Coordinates{})
	var formatErr *models.DataFormatError
	assert.True(t, errors.As(err, &formatErr))
}

func TestMissingAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	src := NewOpenWeatherMapSource("", WithBaseURL(srv.URL))
	_, err := src.FetchCurrent(context.Background(), models.Coordinates{})

	var cfgErr *models.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, APIKeySetting, cfgErr.Setting)
	assert.False(t, called)
}
