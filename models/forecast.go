package models

import (
	"time"
)

// RawForecastEntry is one 3-hour forecast sample as reported by the provider
type RawForecastEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	DateText      string    `json:"dateText"`  // provider local date text, "2006-01-02 15:04:05"
	TempMax       float64   `json:"tempMax"`   // in Celsius
	TempMin       float64   `json:"tempMin"`   // in Celsius
	FeelsLike     float64   `json:"feelsLike"` // in Celsius
	Humidity      int       `json:"humidity"`  // percentage
	WindSpeed     float64   `json:"windSpeed"` // in m/s
	ConditionCode int       `json:"conditionCode"`
	IconID        string    `json:"iconId"`
	Description   string    `json:"description"`
}

// DailyForecast is one aggregated calendar day
type DailyForecast struct {
	Date           string           `json:"date"`
	Representative RawForecastEntry `json:"representative"`
	TempMax        float64          `json:"tempMax"`
	TempMin        float64          `json:"tempMin"`
	DominantIconID string           `json:"dominantIconId"`
	Samples        int              `json:"samples"`
}

// ForecastWindow is the days following today, in chronological order
type ForecastWindow []DailyForecast

// ForecastWindowDays is the maximum length of a ForecastWindow
const ForecastWindowDays = 5
