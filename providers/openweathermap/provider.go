// Package openweathermap implements the dashboard's data sources on top of the
// OpenWeatherMap geocoding, weather, forecast and air pollution endpoints.
package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"weather-dashboard/datasource"
	"weather-dashboard/models"
)

const (
	defaultBaseURL = "https://api.openweathermap.org"

	geocodePath    = "/geo/1.0/direct"
	currentPath    = "/data/2.5/weather"
	forecastPath   = "/data/2.5/forecast"
	airQualityPath = "/data/2.5/air_pollution"

	// APIKeySetting names the credential in configuration errors
	APIKeySetting = "OPENWEATHERMAP_API_KEY"

	maxErrorBody = 512
)

// OpenWeatherMapSource is an implementation of datasource.Provider for OpenWeatherMap
type OpenWeatherMapSource struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Ensure OpenWeatherMapSource implements datasource.Provider
var _ datasource.Provider = (*OpenWeatherMapSource)(nil)

// Option configures an OpenWeatherMapSource
type Option func(*OpenWeatherMapSource)

// WithBaseURL points the source at another host, e.g. a test server
func WithBaseURL(baseURL string) Option {
	return func(o *OpenWeatherMapSource) { o.baseURL = baseURL }
}

// WithHTTPClient replaces the default client
func WithHTTPClient(client *http.Client) Option {
	return func(o *OpenWeatherMapSource) { o.client = client }
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) Option {
	return func(o *OpenWeatherMapSource) { o.logger = logger }
}

// NewOpenWeatherMapSource creates a new OpenWeatherMap data source
func NewOpenWeatherMapSource(apiKey string, opts ...Option) *OpenWeatherMapSource {
	o := &OpenWeatherMapSource{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name returns the name of this data source
func (o *OpenWeatherMapSource) Name() string {
	return "OpenWeatherMap"
}

// getJSON issues a GET against path and decodes the body into out.
// Failures are reported with the models error taxonomy.
func (o *OpenWeatherMapSource) getJSON(ctx context.Context, operation, path string, params url.Values, out any) error {
	if o.apiKey == "" {
		return &models.ConfigurationError{Setting: APIKeySetting, Reason: "is not set"}
	}

	params.Set("appid", o.apiKey)
	endpoint := o.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", operation, err)
	}
	defer resp.Body.Close()

	rawData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response body: %w", operation, err)
	}

	o.logger.Debug("provider request",
		"operation", operation,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode != http.StatusOK {
		body := string(rawData)
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &models.UpstreamError{Operation: operation, StatusCode: resp.StatusCode, Body: body}
	}

	if err := json.Unmarshal(rawData, out); err != nil {
		return &models.DataFormatError{Source: operation, Index: -1, Reason: err.Error()}
	}
	return nil
}

func coordParams(coords models.Coordinates) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	return params
}

type geocodeResponse []struct {
	Name    string  `json:"name"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Geocode resolves a place query. No match yields an empty slice and no error.
func (o *OpenWeatherMapSource) Geocode(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	if limit < 1 {
		limit = 1
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var resp geocodeResponse
	if err := o.getJSON(ctx, "geocode", geocodePath, params, &resp); err != nil {
		return nil, err
	}

	results := make([]models.GeocodeResult, 0, len(resp))
	for _, r := range resp {
		results = append(results, models.GeocodeResult{
			Name:      r.Name,
			State:     r.State,
			Country:   r.Country,
			Latitude:  r.Lat,
			Longitude: r.Lon,
		})
	}
	return results, nil
}

// currentResponse represents the current weather response structure
type currentResponse struct {
	Name       string `json:"name"`
	Dt         int64  `json:"dt"`
	Timezone   int    `json:"timezone"`
	Visibility int    `json:"visibility"`
	Main       struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
}

// FetchCurrent fetches current conditions in metric units
func (o *OpenWeatherMapSource) FetchCurrent(ctx context.Context, coords models.Coordinates) (models.CurrentConditions, error) {
	params := coordParams(coords)
	params.Set("units", "metric")

	var resp currentResponse
	if err := o.getJSON(ctx, "current weather", currentPath, params, &resp); err != nil {
		return models.CurrentConditions{}, err
	}
	if len(resp.Weather) == 0 {
		return models.CurrentConditions{}, &models.DataFormatError{Source: "current weather", Index: -1, Reason: "no weather condition"}
	}

	return models.CurrentConditions{
		Name:                     resp.Name,
		CountryCode:              resp.Sys.Country,
		Timestamp:                time.Unix(resp.Dt, 0).UTC(),
		TimezoneOffsetSeconds:    resp.Timezone,
		TempCelsius:              resp.Main.Temp,
		FeelsLikeCelsius:         resp.Main.FeelsLike,
		HumidityPercent:          resp.Main.Humidity,
		PressureHpa:              resp.Main.Pressure,
		VisibilityMeters:         resp.Visibility,
		WindSpeedMetersPerSecond: resp.Wind.Speed,
		Sunrise:                  time.Unix(resp.Sys.Sunrise, 0).UTC(),
		Sunset:                   time.Unix(resp.Sys.Sunset, 0).UTC(),
		ConditionCode:            resp.Weather[0].ID,
		ConditionIconID:          resp.Weather[0].Icon,
		ConditionDescription:     resp.Weather[0].Description,
	}, nil
}

type airPollutionResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
	} `json:"list"`
}

// FetchAirQuality returns the 1-5 air-quality index of the first reading
func (o *OpenWeatherMapSource) FetchAirQuality(ctx context.Context, coords models.Coordinates) (int, error) {
	var resp airPollutionResponse
	if err := o.getJSON(ctx, "air pollution", airQualityPath, coordParams(coords), &resp); err != nil {
		return 0, err
	}
	if len(resp.List) == 0 {
		return 0, &models.DataFormatError{Source: "air pollution", Index: -1, Reason: "empty reading list"}
	}
	return resp.List[0].Main.AQI, nil
}
