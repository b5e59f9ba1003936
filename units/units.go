// Package units converts Celsius readings into display temperatures.
package units

import (
	"fmt"
	"math"
	"strings"
)

// Unit is a display temperature unit
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

// Symbol returns the display symbol, e.g. "°C"
func (u Unit) Symbol() string {
	return "°" + string(u)
}

// Temperature is a display value paired with its unit
type Temperature struct {
	Value  int    `json:"value"`
	Unit   Unit   `json:"unit"`
	Symbol string `json:"symbol"`
}

func (t Temperature) String() string {
	return fmt.Sprintf("%d %s", t.Value, t.Symbol)
}

// ParseUnit accepts "C", "F", "°C" or "°F" in any case
func ParseUnit(s string) (Unit, error) {
	switch strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "°")) {
	case "C":
		return Celsius, nil
	case "F":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("invalid unit %q (allowed: C, F)", s)
	}
}

// Round rounds to the nearest integer with halves going up (-2.5 -> -2)
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// ToDisplay formats a Celsius reading in the requested unit.
// Fahrenheit is derived from the rounded Celsius value, so 36.6°C shows as 99°F
// through 37°C and conversions do not round-trip exactly.
func ToDisplay(tempCelsius float64, unit Unit) Temperature {
	c := Round(tempCelsius)
	if unit == Fahrenheit {
		return Temperature{Value: Round(float64(c)*9/5) + 32, Unit: Fahrenheit, Symbol: Fahrenheit.Symbol()}
	}
	return Temperature{Value: c, Unit: Celsius, Symbol: Celsius.Symbol()}
}

// MetersPerSecondToKmh converts wind speed, rounded to one decimal
func MetersPerSecondToKmh(ms float64) float64 {
	return math.Round(ms*3.6*10) / 10
}

// MetersToKm converts visibility, rounded to one decimal
func MetersToKm(m int) float64 {
	return math.Round(float64(m)/100) / 10
}
