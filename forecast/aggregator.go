// Package forecast reduces the provider's 3-hour forecast series into daily records.
package forecast

import (
	"strings"

	"weather-dashboard/models"
)

// noonMarker identifies the local-noon sample in the provider's date text
const noonMarker = "12:00:00"

// dayAccumulator collects the samples of one calendar date
type dayAccumulator struct {
	date           string
	representative models.RawForecastEntry
	tempMax        float64
	tempMin        float64
	iconCounts     map[string]int
	iconOrder      []string // first-seen order, used to break frequency ties
	samples        int
}

func newDayAccumulator(date string, first models.RawForecastEntry) *dayAccumulator {
	return &dayAccumulator{
		date:           date,
		representative: first,
		tempMax:        first.TempMax,
		tempMin:        first.TempMin,
		iconCounts:     make(map[string]int),
	}
}

func (d *dayAccumulator) add(entry models.RawForecastEntry) {
	if entry.TempMax > d.tempMax {
		d.tempMax = entry.TempMax
	}
	if entry.TempMin < d.tempMin {
		d.tempMin = entry.TempMin
	}

	if _, seen := d.iconCounts[entry.IconID]; !seen {
		d.iconOrder = append(d.iconOrder, entry.IconID)
	}
	d.iconCounts[entry.IconID]++

	if strings.Contains(entry.DateText, noonMarker) {
		d.representative = entry
	}
	d.samples++
}

func (d *dayAccumulator) dominantIcon() string {
	best := ""
	bestCount := 0
	for _, icon := range d.iconOrder {
		if count := d.iconCounts[icon]; count > bestCount {
			best = icon
			bestCount = count
		}
	}
	return best
}

func (d *dayAccumulator) daily() models.DailyForecast {
	return models.DailyForecast{
		Date:           d.date,
		Representative: d.representative,
		TempMax:        d.tempMax,
		TempMin:        d.tempMin,
		DominantIconID: d.dominantIcon(),
		Samples:        d.samples,
	}
}

// Aggregate collapses the forecast series into one record per calendar date, in input order.
// The date is read from each entry's local date text. An entry without date text fails the
// whole call, since skipping it would change the number of days.
func Aggregate(entries []models.RawForecastEntry) ([]models.DailyForecast, error) {
	var days []*dayAccumulator
	byDate := make(map[string]*dayAccumulator)

	for i, entry := range entries {
		date, err := entryDate(i, entry)
		if err != nil {
			return nil, err
		}
		if entry.TempMax < entry.TempMin {
			return nil, &models.DataFormatError{Source: "forecast", Index: i, Reason: "temp_max below temp_min"}
		}

		day, exists := byDate[date]
		if !exists {
			day = newDayAccumulator(date, entry)
			byDate[date] = day
			days = append(days, day)
		}
		day.add(entry)
	}

	daily := make([]models.DailyForecast, 0, len(days))
	for _, day := range days {
		daily = append(daily, day.daily())
	}
	return daily, nil
}

// Window aggregates the series and returns the days after today, at most five.
// The first aggregated day is today and is already covered by current conditions.
func Window(entries []models.RawForecastEntry) (models.ForecastWindow, error) {
	daily, err := Aggregate(entries)
	if err != nil {
		return nil, err
	}
	if len(daily) <= 1 {
		return models.ForecastWindow{}, nil
	}

	daily = daily[1:]
	if len(daily) > models.ForecastWindowDays {
		daily = daily[:models.ForecastWindowDays]
	}
	return models.ForecastWindow(daily), nil
}

func entryDate(index int, entry models.RawForecastEntry) (string, error) {
	text := strings.TrimSpace(entry.DateText)
	if text == "" {
		return "", &models.DataFormatError{Source: "forecast", Index: index, Reason: "missing date text"}
	}
	date, _, _ := strings.Cut(text, " ")
	return date, nil
}
