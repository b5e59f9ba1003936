package forecast

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-dashboard/models"
)

// series builds a 3-hour series starting at start, spanning the given number of samples
func series(start time.Time, samples int) []models.RawForecastEntry {
	out := make([]models.RawForecastEntry, 0, samples)
	for i := 0; i < samples; i++ {
		ts := start.Add(time.Duration(i) * 3 * time.Hour)
		out = append(out, models.RawForecastEntry{
			Timestamp:     ts,
			DateText:      ts.Format("2006-01-02 15:04:05"),
			TempMax:       float64(10 + i%8),
			TempMin:       float64(5 + i%8),
			ConditionCode: 800,
			IconID:        "01d",
			Description:   fmt.Sprintf("sample %d", i),
		})
	}
	return out
}

func TestAggregate_DayCountAndWindowLength(t *testing.T) {
	tests := []struct {
		name       string
		start      time.Time
		samples    int
		wantDays   int
		wantWindow int
	}{
		{name: "single sample", start: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), samples: 1, wantDays: 1, wantWindow: 0},
		{name: "two days", start: time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC), samples: 2, wantDays: 2, wantWindow: 1},
		{name: "typical 40 samples from midday", start: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), samples: 40, wantDays: 6, wantWindow: 5},
		{name: "40 samples from midnight", start: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), samples: 40, wantDays: 5, wantWindow: 4},
		{name: "eight days capped at five", start: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), samples: 64, wantDays: 8, wantWindow: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := series(tt.start, tt.samples)

			daily, err := Aggregate(entries)
			require.NoError(t, err)
			assert.Len(t, daily, tt.wantDays)

			window, err := Window(entries)
			require.NoError(t, err)
			assert.Len(t, window, tt.wantWindow)
		})
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	daily, err := Aggregate(nil)
	require.NoError(t, err)
	assert.Empty(t, daily)

	window, err := Window(nil)
	require.NoError(t, err)
	assert.NotNil(t, window)
	assert.Empty(t, window)
}

func TestAggregate_MaxMinDominateSamples(t *testing.T) {
	entries := []models.RawForecastEntry{
		{DateText: "2024-01-15 00:00:00", TempMax: 4.2, TempMin: 1.1, IconID: "04n"},
		{DateText: "2024-01-15 03:00:00", TempMax: 3.9, TempMin: -0.5, IconID: "04n"},
		{DateText: "2024-01-15 12:00:00", TempMax: 9.7, TempMin: 6.3, IconID: "03d"},
		{DateText: "2024-01-15 21:00:00", TempMax: 5.0, TempMin: 2.0, IconID: "01n"},
	}

	daily, err := Aggregate(entries)
	require.NoError(t, err)
	require.Len(t, daily, 1)

	day := daily[0]
	assert.Equal(t, "2024-01-15", day.Date)
	assert.Equal(t, 9.7, day.TempMax)
	assert.Equal(t, -0.5, day.TempMin)
	assert.GreaterOrEqual(t, day.TempMax, day.TempMin)
	assert.Equal(t, 4, day.Samples)
	for _, e := range entries {
		assert.GreaterOrEqual(t, day.TempMax, e.TempMax)
		assert.LessOrEqual(t, day.TempMin, e.TempMin)
	}
}

func TestAggregate_DominantIconTieFirstSeenWins(t *testing.T) {
	entries := []models.RawForecastEntry{
		{DateText: "2024-01-15 00:00:00", IconID: "a"},
		{DateText: "2024-01-15 03:00:00", IconID: "b"},
		{DateText: "2024-01-15 06:00:00", IconID: "b"},
		{DateText: "2024-01-15 09:00:00", IconID: "a"},
		{DateText: "2024-01-15 12:00:00", IconID: "a"},
		{DateText: "2024-01-15 15:00:00", IconID: "b"},
	}

	daily, err := Aggregate(entries)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "a", daily[0].DominantIconID)

	// Same counts, b seen first
	entries[0].IconID, entries[1].IconID = "b", "a"
	daily, err = Aggregate(entries)
	require.NoError(t, err)
	assert.Equal(t, "b", daily[0].DominantIconID)
}

func TestAggregate_DominantIconHighestFrequency(t *testing.T) {
	entries := []models.RawForecastEntry{
		{DateText: "2024-01-15 00:00:00", IconID: "01n"},
		{DateText: "2024-01-15 03:00:00", IconID: "10n"},
		{DateText: "2024-01-15 06:00:00", IconID: "10d"},
		{DateText: "2024-01-15 09:00:00", IconID: "10d"},
	}

	daily, err := Aggregate(entries)
	require.NoError(t, err)
	assert.Equal(t, "10d", daily[0].DominantIconID)
}

func TestAggregate_RepresentativePrefersNoon(t *testing.T) {
	entries := []models.RawForecastEntry{
		{DateText: "2024-01-15 09:00:00", Description: "morning"},
		{DateText: "2024-01-15 12:00:00", Description: "noon"},
		{DateText: "2024-01-15 15:00:00", Description: "afternoon"},
		{DateText: "2024-01-16 18:00:00", Description: "evening only"},
		{DateText: "2024-01-16 21:00:00", Description: "night"},
	}

	daily, err := Aggregate(entries)
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, "noon", daily[0].Representative.Description)
	assert.Equal(t, "evening only", daily[1].Representative.Description)
}

func TestAggregate_LastNoonMatchWins(t *testing.T) {
	entries := []models.RawForecastEntry{
		{DateText: "2024-01-15 12:00:00", Description: "first noon"},
		{DateText: "2024-01-15 12:00:00", Description: "second noon"},
	}

	daily, err := Aggregate(entries)
	require.NoError(t, err)
	assert.Equal(t, "second noon", daily[0].Representative.Description)
}

func TestWindow_DropsTodayKeepsOrder(t *testing.T) {
	entries := series(time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC), 40)

	window, err := Window(entries)
	require.NoError(t, err)
	require.Len(t, window, 5)

	want := []string{"2024-01-16", "2024-01-17", "2024-01-18", "2024-01-19", "2024-01-20"}
	for i, day := range window {
		assert.Equal(t, want[i], day.Date)
	}
}

func TestAggregate_MissingDateTextFails(t *testing.T) {
	entries := series(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 10)
	entries[4].DateText = ""

	_, err := Aggregate(entries)
	require.Error(t, err)

	var formatErr *models.DataFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, 4, formatErr.Index)

	_, err = Window(entries)
	assert.True(t, errors.As(err, &formatErr))
}

func TestAggregate_InvertedSampleFails(t *testing.T) {
	entries := []models.RawForecastEntry{
		{DateText: "2024-01-15 00:00:00", TempMax: 1, TempMin: 5},
	}

	_, err := Aggregate(entries)
	var formatErr *models.DataFormatError
	assert.True(t, errors.As(err, &formatErr))
}
