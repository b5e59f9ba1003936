// Package warning derives the warning tier shown for the current conditions.
package warning

import (
	"log/slog"
	"strconv"

	"weather-dashboard/models"
	"weather-dashboard/units"
)

const (
	extremeHeatCelsius = 40
	extremeColdCelsius = 0
)

// Table resolves a condition code or synthetic key to a warning
type Table interface {
	Warning(key string) (models.Warning, error)
}

// Classifier maps conditions to warnings
type Classifier struct {
	table  Table
	logger *slog.Logger
}

// NewClassifier creates a classifier over a warnings table
func NewClassifier(table Table, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{table: table, logger: logger}
}

// Key returns the table key for the conditions. Extreme temperatures, judged on the
// rounded Celsius reading, override the provider's condition code.
func Key(conditionCode string, currentTempCelsius float64) string {
	c := units.Round(currentTempCelsius)
	switch {
	case c >= extremeHeatCelsius:
		return models.ExtremeHeat
	case c <= extremeColdCelsius:
		return models.ExtremeCold
	default:
		return conditionCode
	}
}

// Classify returns the warning for the conditions. A table miss is logged and returned as
// a *models.LookupMissError; callers hide the warning in that case.
func (c *Classifier) Classify(conditionCode string, currentTempCelsius float64) (models.Warning, error) {
	key := Key(conditionCode, currentTempCelsius)
	w, err := c.table.Warning(key)
	if err != nil {
		c.logger.Warn("warning lookup miss", "key", key, "error", err)
		return models.Warning{}, err
	}
	return w, nil
}

// ClassifyCurrent classifies provider current conditions
func (c *Classifier) ClassifyCurrent(current models.CurrentConditions) (models.Warning, error) {
	return c.Classify(strconv.Itoa(current.ConditionCode), current.TempCelsius)
}
