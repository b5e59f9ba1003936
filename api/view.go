package api

import (
	"errors"
	"log/slog"
	"time"

	"weather-dashboard/cache"
	"weather-dashboard/models"
	"weather-dashboard/units"
	"weather-dashboard/warning"
)

const (
	dateLayout     = "Monday, January 2"
	clockLayout    = "03:04 PM"
	forecastLayout = "2006-01-02"
)

// AssetLookup resolves provider icon ids to presentation URLs
type AssetLookup interface {
	IconURL(iconID string) string
	BackgroundURL(iconID string) string
}

// CurrentView is the current-conditions panel
type CurrentView struct {
	Location      string            `json:"location"`
	LocalDate     string            `json:"localDate"`
	Description   string            `json:"description"`
	Temperature   units.Temperature `json:"temperature"`
	FeelsLike     units.Temperature `json:"feelsLike"`
	Humidity      int               `json:"humidityPercent"`
	Pressure      int               `json:"pressureHpa"`
	WindKmh       float64           `json:"windKmh"`
	VisibilityKm  float64           `json:"visibilityKm"`
	Sunrise       string            `json:"sunrise"`
	Sunset        string            `json:"sunset"`
	IconURL       string            `json:"iconUrl,omitempty"`
	BackgroundURL string            `json:"backgroundUrl,omitempty"`
}

// ForecastDayView is one day card of the forecast strip
type ForecastDayView struct {
	Date        string            `json:"date"`
	Weekday     string            `json:"weekday"`
	Description string            `json:"description"`
	TempMax     units.Temperature `json:"tempMax"`
	TempMin     units.Temperature `json:"tempMin"`
	Humidity    int               `json:"humidityPercent"`
	WindKmh     float64           `json:"windKmh"`
	IconURL     string            `json:"iconUrl,omitempty"`
}

// AirQualityView carries the category and its presentation token
type AirQualityView struct {
	Index    int    `json:"index"`
	Category string `json:"category"`
	Token    string `json:"token"`
}

// DashboardView is everything the dashboard page renders
type DashboardView struct {
	Unit        units.Unit         `json:"unit"`
	Coordinates models.Coordinates `json:"coordinates"`
	Current     CurrentView        `json:"current"`
	Forecast    []ForecastDayView  `json:"forecast"`
	AirQuality  AirQualityView     `json:"airQuality"`
	Warning     *models.Warning    `json:"warning,omitempty"`
	Notice      string             `json:"notice,omitempty"`
}

// RecentView is one recent-search card
type RecentView struct {
	City        string            `json:"city"`
	State       string            `json:"state,omitempty"`
	Country     string            `json:"country,omitempty"`
	Location    string            `json:"location"`
	Description string            `json:"description"`
	Temperature units.Temperature `json:"temperature"`
	IconURL     string            `json:"iconUrl,omitempty"`
}

// Renderer turns stored Celsius data into views in the requested unit
type Renderer struct {
	assets     AssetLookup
	classifier *warning.Classifier
	logger     *slog.Logger
}

// NewRenderer creates a renderer
func NewRenderer(assets AssetLookup, classifier *warning.Classifier, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{assets: assets, classifier: classifier, logger: logger}
}

// Dashboard renders a bundle. A warning lookup miss hides the warning.
func (r *Renderer) Dashboard(b models.Bundle, unit units.Unit, notice string) DashboardView {
	cur := b.Current
	view := DashboardView{
		Unit:        unit,
		Coordinates: b.Coordinates,
		Current: CurrentView{
			Location:      cur.Location(),
			LocalDate:     cur.LocalTime(cur.Timestamp).Format(dateLayout),
			Description:   cur.ConditionDescription,
			Temperature:   units.ToDisplay(cur.TempCelsius, unit),
			FeelsLike:     units.ToDisplay(cur.FeelsLikeCelsius, unit),
			Humidity:      cur.HumidityPercent,
			Pressure:      cur.PressureHpa,
			WindKmh:       units.MetersPerSecondToKmh(cur.WindSpeedMetersPerSecond),
			VisibilityKm:  units.MetersToKm(cur.VisibilityMeters),
			Sunrise:       cur.LocalTime(cur.Sunrise).Format(clockLayout),
			Sunset:        cur.LocalTime(cur.Sunset).Format(clockLayout),
			IconURL:       r.assets.IconURL(cur.ConditionIconID),
			BackgroundURL: r.assets.BackgroundURL(cur.ConditionIconID),
		},
		Forecast: make([]ForecastDayView, 0, len(b.Forecast)),
		AirQuality: AirQualityView{
			Index:    b.AirQuality.Index,
			Category: string(b.AirQuality.Category),
			Token:    b.AirQuality.Token(),
		},
		Notice: notice,
	}

	for _, day := range b.Forecast {
		view.Forecast = append(view.Forecast, r.forecastDay(day, unit))
	}

	w, err := r.classifier.ClassifyCurrent(cur)
	var miss *models.LookupMissError
	switch {
	case err == nil:
		view.Warning = &w
	case errors.As(err, &miss):
		// hidden
	default:
		r.logger.Warn("warning classification failed", "error", err)
	}

	return view
}

func (r *Renderer) forecastDay(day models.DailyForecast, unit units.Unit) ForecastDayView {
	weekday := ""
	if t, err := time.Parse(forecastLayout, day.Date); err == nil {
		weekday = t.Weekday().String()
	}
	return ForecastDayView{
		Date:        day.Date,
		Weekday:     weekday,
		Description: day.Representative.Description,
		TempMax:     units.ToDisplay(day.TempMax, unit),
		TempMin:     units.ToDisplay(day.TempMin, unit),
		Humidity:    day.Representative.Humidity,
		WindKmh:     units.MetersPerSecondToKmh(day.Representative.WindSpeed),
		IconURL:     r.assets.IconURL(day.DominantIconID),
	}
}

// Recent renders recent-search snapshots
func (r *Renderer) Recent(snapshots []cache.Snapshot, unit units.Unit) []RecentView {
	views := make([]RecentView, 0, len(snapshots))
	for _, s := range snapshots {
		views = append(views, RecentView{
			City:        s.Entry.City,
			State:       s.Entry.State,
			Country:     s.Entry.Country,
			Location:    s.Current.Location(),
			Description: s.Current.ConditionDescription,
			Temperature: units.ToDisplay(s.Current.TempCelsius, unit),
			IconURL:     r.assets.IconURL(s.Current.ConditionIconID),
		})
	}
	return views
}
