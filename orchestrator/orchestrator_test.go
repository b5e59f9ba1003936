package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-dashboard/models"
	"weather-dashboard/providers/openweathermap"
)

// fakeProvider serves canned responses. When barrier is set, each bundle fetch blocks
// until all three have started.
type fakeProvider struct {
	mu           sync.Mutex
	geocodes     map[string][]models.GeocodeResult
	geocodeErr   error
	geocodeCalls []string
	current      models.CurrentConditions
	currentErr   error
	forecast     []models.RawForecastEntry
	forecastErr  error
	aqi          int
	aqiErr       error
	barrier      *sync.WaitGroup
	completed    int
}

func (f *fakeProvider) Name() string { return "Fake" }

func (f *fakeProvider) arrive() {
	if f.barrier == nil {
		return
	}
	f.barrier.Done()
	f.barrier.Wait()
}

func (f *fakeProvider) done() {
	f.mu.Lock()
	f.completed++
	f.mu.Unlock()
}

func (f *fakeProvider) Geocode(_ context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	f.mu.Lock()
	f.geocodeCalls = append(f.geocodeCalls, fmt.Sprintf("%s:%d", query, limit))
	f.mu.Unlock()
	if f.geocodeErr != nil {
		return nil, f.geocodeErr
	}
	return f.geocodes[query], nil
}

func (f *fakeProvider) FetchCurrent(context.Context, models.Coordinates) (models.CurrentConditions, error) {
	f.arrive()
	defer f.done()
	return f.current, f.currentErr
}

func (f *fakeProvider) FetchForecast(context.Context, models.Coordinates) ([]models.RawForecastEntry, error) {
	f.arrive()
	defer f.done()
	return f.forecast, f.forecastErr
}

func (f *fakeProvider) FetchAirQuality(context.Context, models.Coordinates) (int, error) {
	f.arrive()
	defer f.done()
	return f.aqi, f.aqiErr
}

func forecastSeries() []models.RawForecastEntry {
	start := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	out := make([]models.RawForecastEntry, 0, 40)
	for i := 0; i < 40; i++ {
		ts := start.Add(time.Duration(i) * 3 * time.Hour)
		out = append(out, models.RawForecastEntry{
			Timestamp: ts,
			DateText:  ts.Format("2006-01-02 15:04:05"),
			TempMax:   10,
			TempMin:   4,
			IconID:    "01d",
		})
	}
	return out
}

func newFake() *fakeProvider {
	return &fakeProvider{
		geocodes: map[string][]models.GeocodeResult{
			"Paris,FR": {{Name: "Paris", Country: "FR", Latitude: 48.8566, Longitude: 2.3522}},
		},
		current:  models.CurrentConditions{Name: "Paris", CountryCode: "FR", TempCelsius: 11.4, ConditionCode: 800},
		forecast: forecastSeries(),
		aqi:      2,
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	p := newFake()
	o := New(p, nil)

	coords, err := o.Resolve(ctx, models.NewCoordinateQuery(10, 20))
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Latitude: 10, Longitude: 20}, coords)
	assert.Empty(t, p.geocodeCalls)

	coords, err = o.Resolve(ctx, models.NewPlaceQuery("Paris", "", "FR"))
	require.NoError(t, err)
	assert.Equal(t, 48.8566, coords.Latitude)
	assert.Equal(t, []string{"Paris,FR:1"}, p.geocodeCalls)
}

func TestResolve_NotFound(t *testing.T) {
	o := New(newFake(), nil)

	_, err := o.Resolve(context.Background(), models.NewPlaceQuery("Atlantis", "", ""))
	var notFound *models.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Atlantis", notFound.Query)
	assert.Equal(t, `Could not find location data for "Atlantis"`, UserMessage(err))
}

func TestResolve_GeocodeStatusIsNotFound(t *testing.T) {
	p := newFake()
	p.geocodeErr = &models.UpstreamError{Operation: "geocode", StatusCode: 404}
	o := New(p, nil)

	_, err := o.Resolve(context.Background(), models.NewPlaceQuery("Atlantis", "", ""))
	var notFound *models.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Atlantis", notFound.Query)
	assert.Equal(t, `Could not find location data for "Atlantis"`, UserMessage(err))

	// the provider failure stays available as the cause
	var upstream *models.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, 404, upstream.StatusCode)
}

func TestResolve_GeocodeEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":"404","message":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	src := openweathermap.NewOpenWeatherMapSource("test-key",
		openweathermap.WithBaseURL(srv.URL), openweathermap.WithHTTPClient(srv.Client()))
	o := New(src, nil)

	_, err := o.Resolve(context.Background(), models.NewPlaceQuery("Atlantis", "", ""))
	var notFound *models.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, `Could not find location data for "Atlantis"`, UserMessage(err))
}

func TestResolve_ConfigurationErrorPropagates(t *testing.T) {
	p := newFake()
	p.geocodeErr = &models.ConfigurationError{Setting: "OPENWEATHERMAP_API_KEY", Reason: "is not set"}
	o := New(p, nil)

	_, err := o.Resolve(context.Background(), models.NewPlaceQuery("Paris", "", ""))
	var cfgErr *models.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	var notFound *models.NotFoundError
	assert.False(t, errors.As(err, &notFound))
}

func TestResolve_InvalidQuery(t *testing.T) {
	o := New(newFake(), nil)

	_, err := o.Resolve(context.Background(), models.NewPlaceQuery("", "", ""))
	assert.Error(t, err)

	_, err = o.Resolve(context.Background(), models.NewCoordinateQuery(91, 0))
	assert.Error(t, err)
}

func TestFetchFullBundle(t *testing.T) {
	o := New(newFake(), nil)

	bundle, err := o.Query(context.Background(), models.NewPlaceQuery("Paris", "", "FR"))
	require.NoError(t, err)

	assert.Equal(t, "Paris, FR", bundle.Current.Location())
	assert.Len(t, bundle.Forecast, 5)
	assert.Equal(t, "2024-01-16", bundle.Forecast[0].Date)
	assert.Equal(t, models.AirQualityFair, bundle.AirQuality.Category)
	assert.Equal(t, 48.8566, bundle.Coordinates.Latitude)
}

func TestFetchFullBundle_RunsConcurrently(t *testing.T) {
	p := newFake()
	p.barrier = &sync.WaitGroup{}
	p.barrier.Add(3)
	o := New(p, nil)

	done := make(chan error, 1)
	go func() {
		_, err := o.FetchFullBundle(context.Background(), models.Coordinates{Latitude: 1, Longitude: 2})
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bundle fetches did not run concurrently")
	}
}

func TestFetchFullBundle_AirQualityFailureFailsBundle(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeProvider)
	}{
		{name: "air quality status", mutate: func(p *fakeProvider) {
			p.aqiErr = &models.UpstreamError{Operation: "air pollution", StatusCode: 500}
		}},
		{name: "air quality out of range", mutate: func(p *fakeProvider) { p.aqi = 9 }},
		{name: "forecast failure", mutate: func(p *fakeProvider) {
			p.forecastErr = &models.UpstreamError{Operation: "forecast", StatusCode: 503}
		}},
		{name: "malformed forecast", mutate: func(p *fakeProvider) { p.forecast[3].DateText = "" }},
		{name: "current failure", mutate: func(p *fakeProvider) { p.currentErr = errors.New("connection reset") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFake()
			tt.mutate(p)
			o := New(p, nil)

			bundle, err := o.FetchFullBundle(context.Background(), models.Coordinates{})
			require.Error(t, err)
			assert.Empty(t, bundle.Current.Name)
			assert.Nil(t, bundle.Forecast)
			// every request ran to completion despite the failure
			assert.Equal(t, 3, p.completed)
		})
	}
}

func TestSnapshot(t *testing.T) {
	o := New(newFake(), nil)

	cur, err := o.Snapshot(context.Background(), models.NewPlaceQuery("Paris", "", "FR"))
	require.NoError(t, err)
	assert.Equal(t, "Paris", cur.Name)

	_, err = o.Snapshot(context.Background(), models.NewPlaceQuery("Atlantis", "", ""))
	var notFound *models.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestSuggest(t *testing.T) {
	p := newFake()
	p.geocodes["Par"] = []models.GeocodeResult{
		{Name: "Paris", Country: "FR"}, {Name: "Paris", State: "Texas", Country: "US"},
		{Name: "Parma", Country: "IT"}, {Name: "Paraná", Country: "AR"},
		{Name: "Parla", Country: "ES"}, {Name: "Parnu", Country: "EE"},
	}
	o := New(p, nil)

	res, err := o.Suggest(context.Background(), "  Par ")
	require.NoError(t, err)
	assert.Len(t, res, SuggestionLimit)
	assert.Equal(t, "Paris, Texas, US", res[1].Label())
	assert.Equal(t, []string{"Par:5"}, p.geocodeCalls)

	res, err = o.Suggest(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Len(t, p.geocodeCalls, 1)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "configuration", err: &models.ConfigurationError{Setting: "OPENWEATHERMAP_API_KEY", Reason: "is not set"}, want: "OpenWeatherMap API Key is missing"},
		{name: "upstream wrapped", err: fmt.Errorf("current conditions: %w", &models.UpstreamError{Operation: "current weather", StatusCode: 429}), want: "Failed to fetch current weather. Status: 429"},
		{name: "data format", err: &models.DataFormatError{Source: "forecast", Index: 2, Reason: "missing dt_txt"}, want: "Failed to fetch weather/forecast/air quality"},
		{name: "canceled", err: fmt.Errorf("forecast: %w", context.Canceled), want: "Request was replaced by a newer one"},
		{name: "unknown", err: errors.New("boom"), want: "Something went wrong while fetching the weather"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
