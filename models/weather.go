package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Coordinates is a resolved geographic position
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// LocationQuery is either a coordinate pair or a free-text place.
// Build it with NewCoordinateQuery or NewPlaceQuery; it is not modified afterwards.
type LocationQuery struct {
	coords  *Coordinates
	city    string
	state   string
	country string
}

// NewCoordinateQuery creates a query that needs no geocoding
func NewCoordinateQuery(lat, lon float64) LocationQuery {
	return LocationQuery{coords: &Coordinates{Latitude: lat, Longitude: lon}}
}

// NewPlaceQuery creates a query resolved through the geocoding lookup.
// State and country are optional refinements.
func NewPlaceQuery(city, state, country string) LocationQuery {
	return LocationQuery{
		city:    strings.TrimSpace(city),
		state:   strings.TrimSpace(state),
		country: strings.TrimSpace(country),
	}
}

// ParsePlaceQuery splits "city, state, country" input the way the search box does
func ParsePlaceQuery(input string) LocationQuery {
	parts := strings.Split(input, ",")
	get := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}
	return NewPlaceQuery(get(0), get(1), get(2))
}

// Coordinates returns the coordinates of a coordinate query
func (q LocationQuery) Coordinates() (Coordinates, bool) {
	if q.coords == nil {
		return Coordinates{}, false
	}
	return *q.coords, true
}

func (q LocationQuery) City() string    { return q.city }
func (q LocationQuery) State() string   { return q.state }
func (q LocationQuery) Country() string { return q.country }

// IsPlace reports whether the query carries a place name
func (q LocationQuery) IsPlace() bool {
	return q.coords == nil && q.city != ""
}

// Validate checks that exactly one form of the query is set
func (q LocationQuery) Validate() error {
	switch {
	case q.coords != nil && q.city != "":
		return errors.New("location query has both coordinates and a place")
	case q.coords == nil && q.city == "":
		return errors.New("location query needs coordinates or a city")
	}
	if q.coords != nil {
		if q.coords.Latitude < -90 || q.coords.Latitude > 90 {
			return fmt.Errorf("latitude out of range: %f", q.coords.Latitude)
		}
		if q.coords.Longitude < -180 || q.coords.Longitude > 180 {
			return fmt.Errorf("longitude out of range: %f", q.coords.Longitude)
		}
	}
	return nil
}

// Text returns the geocoding query string, e.g. "Hyderabad,Telangana,IN"
func (q LocationQuery) Text() string {
	if q.coords != nil {
		return q.coords.String()
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{q.city, q.state, q.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ",")
}

// Entry converts a place query into a recent-search entry
func (q LocationQuery) Entry() RecentSearchEntry {
	return RecentSearchEntry{City: q.city, State: q.state, Country: q.country}
}

// GeocodeResult is one match of the geocoding lookup
type GeocodeResult struct {
	Name      string  `json:"name"`
	State     string  `json:"state,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Coordinates returns the match position
func (g GeocodeResult) Coordinates() Coordinates {
	return Coordinates{Latitude: g.Latitude, Longitude: g.Longitude}
}

// Label formats the match as "Name, State, Country"
func (g GeocodeResult) Label() string {
	label := g.Name
	if g.State != "" {
		label += ", " + g.State
	}
	if g.Country != "" {
		label += ", " + g.Country
	}
	return label
}

// CurrentConditions represents the current weather reported by the provider
type CurrentConditions struct {
	Name                     string    `json:"name"`
	CountryCode              string    `json:"countryCode"`
	Timestamp                time.Time `json:"timestamp"`
	TimezoneOffsetSeconds    int       `json:"timezoneOffsetSeconds"`
	TempCelsius              float64   `json:"tempCelsius"`
	FeelsLikeCelsius         float64   `json:"feelsLikeCelsius"`
	HumidityPercent          int       `json:"humidityPercent"`
	PressureHpa              int       `json:"pressureHpa"`
	VisibilityMeters         int       `json:"visibilityMeters"`
	WindSpeedMetersPerSecond float64   `json:"windSpeedMetersPerSecond"`
	Sunrise                  time.Time `json:"sunrise"`
	Sunset                   time.Time `json:"sunset"`
	ConditionCode            int       `json:"conditionCode"`
	ConditionIconID          string    `json:"conditionIconId"`
	ConditionDescription     string    `json:"conditionDescription"`
}

// Location formats the reported place as "Name, CC"
func (c CurrentConditions) Location() string {
	if c.CountryCode == "" {
		return c.Name
	}
	return fmt.Sprintf("%s, %s", c.Name, c.CountryCode)
}

// LocalTime shifts an instant by the location's timezone offset.
// The result is expressed in UTC so formatting shows the local wall clock.
func (c CurrentConditions) LocalTime(t time.Time) time.Time {
	return t.UTC().Add(time.Duration(c.TimezoneOffsetSeconds) * time.Second)
}
