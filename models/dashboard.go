package models

import (
	"strings"
)

// AirQualityCategory is the categorical reading of the provider's five-point index
type AirQualityCategory string

const (
	AirQualityGood     AirQualityCategory = "Good"
	AirQualityFair     AirQualityCategory = "Fair"
	AirQualityModerate AirQualityCategory = "Moderate"
	AirQualityPoor     AirQualityCategory = "Poor"
	AirQualityVeryPoor AirQualityCategory = "Very Poor"
)

var airQualityScale = map[int]AirQualityCategory{
	1: AirQualityGood,
	2: AirQualityFair,
	3: AirQualityModerate,
	4: AirQualityPoor,
	5: AirQualityVeryPoor,
}

// AirQuality is the reduced air-quality reading for a location
type AirQuality struct {
	Index    int                `json:"index"`
	Category AirQualityCategory `json:"category"`
}

// NewAirQuality maps a provider index (1-5) to its category.
// Any other index is a DataFormatError.
func NewAirQuality(index int) (AirQuality, error) {
	category, ok := airQualityScale[index]
	if !ok {
		return AirQuality{}, &DataFormatError{Source: "air quality", Index: -1, Reason: "index out of range 1-5"}
	}
	return AirQuality{Index: index, Category: category}, nil
}

// Token returns a presentation token for the category, e.g. "very-poor"
func (a AirQuality) Token() string {
	return strings.ReplaceAll(strings.ToLower(string(a.Category)), " ", "-")
}

// WarningTier is the severity of a weather warning
type WarningTier string

const (
	WarningLow    WarningTier = "low"
	WarningMedium WarningTier = "medium"
	WarningHigh   WarningTier = "high"
)

// Valid reports whether the tier is one of low, medium, high
func (t WarningTier) Valid() bool {
	switch t {
	case WarningLow, WarningMedium, WarningHigh:
		return true
	}
	return false
}

// Synthetic warning keys that take precedence over provider condition codes
const (
	ExtremeHeat = "EXTREME_HEAT"
	ExtremeCold = "EXTREME_COLD"
)

// Warning is a classified weather warning
type Warning struct {
	Key     string      `json:"key"`
	Tier    WarningTier `json:"tier"`
	Message string      `json:"message"`
}

// RecentSearchEntry is one remembered place search
type RecentSearchEntry struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Key returns the canonical cache key: trimmed, case-insensitive city|state|country
func (e RecentSearchEntry) Key() string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return norm(e.City) + "|" + norm(e.State) + "|" + norm(e.Country)
}

// Query converts the entry back into a place query
func (e RecentSearchEntry) Query() LocationQuery {
	return NewPlaceQuery(e.City, e.State, e.Country)
}

// Bundle is the result of a full weather query
type Bundle struct {
	Coordinates Coordinates       `json:"coordinates"`
	Current     CurrentConditions `json:"current"`
	Forecast    ForecastWindow    `json:"forecast"`
	AirQuality  AirQuality        `json:"airQuality"`
}
