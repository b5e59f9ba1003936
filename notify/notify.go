// Package notify publishes warning events raised while serving the dashboard.
package notify

import (
	"context"
	"strings"
	"time"

	"weather-dashboard/models"
)

// WarningEvent is emitted when a location's conditions carry a warning
type WarningEvent struct {
	Location    string             `json:"location"`
	Coordinates models.Coordinates `json:"coordinates"`
	Key         string             `json:"key"`
	Tier        models.WarningTier `json:"tier"`
	Message     string             `json:"message"`
	ObservedAt  time.Time          `json:"observed_at"`
	PublishedAt time.Time          `json:"published_at"`
}

// Publisher delivers warning events
type Publisher interface {
	PublishWarning(ctx context.Context, event WarningEvent) error
	Close()
}

// Nop discards every event
type Nop struct{}

func (Nop) PublishWarning(context.Context, WarningEvent) error { return nil }
func (Nop) Close()                                             {}

// Topic returns the topic an event is published on, e.g. "weather/warnings/high/extreme_heat"
func Topic(base string, event WarningEvent) string {
	base = strings.TrimSuffix(base, "/")
	return base + "/" + string(event.Tier) + "/" + strings.ToLower(event.Key)
}
