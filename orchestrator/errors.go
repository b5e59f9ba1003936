package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"weather-dashboard/models"
)

// UserMessage turns any failure from a query into the single message shown to the user
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		cfgErr     *models.ConfigurationError
		notFound   *models.NotFoundError
		upstream   *models.UpstreamError
		formatErr  *models.DataFormatError
		lookupMiss *models.LookupMissError
	)

	switch {
	case errors.As(err, &cfgErr):
		return "OpenWeatherMap API Key is missing"
	case errors.As(err, &notFound):
		return fmt.Sprintf("Could not find location data for %q", notFound.Query)
	case errors.As(err, &upstream):
		return fmt.Sprintf("Failed to fetch %s. Status: %d", upstream.Operation, upstream.StatusCode)
	case errors.As(err, &formatErr):
		return "Failed to fetch weather/forecast/air quality"
	case errors.As(err, &lookupMiss):
		return "Some weather details are unavailable"
	case errors.Is(err, context.Canceled):
		return "Request was replaced by a newer one"
	case errors.Is(err, context.DeadlineExceeded):
		return "The weather service took too long to respond"
	default:
		return "Something went wrong while fetching the weather"
	}
}
