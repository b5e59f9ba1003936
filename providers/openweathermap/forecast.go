package openweathermap

import (
	"context"
	"time"

	"weather-dashboard/models"
)

// forecastResponse represents the 5 day / 3 hour forecast structure
type forecastResponse struct {
	List []struct {
		Dt     int64  `json:"dt"`
		DtText string `json:"dt_txt"`
		Main   struct {
			TempMin   float64 `json:"temp_min"`
			TempMax   float64 `json:"temp_max"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			ID          int    `json:"id"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
}

// FetchForecast gets the raw 3-hour forecast series in metric units.
// Entries keep provider order; grouping into days happens in the forecast package.
func (o *OpenWeatherMapSource) FetchForecast(ctx context.Context, coords models.Coordinates) ([]models.RawForecastEntry, error) {
	params := coordParams(coords)
	params.Set("units", "metric")

	var resp forecastResponse
	if err := o.getJSON(ctx, "forecast", forecastPath, params, &resp); err != nil {
		return nil, err
	}

	entries := make([]models.RawForecastEntry, 0, len(resp.List))
	for i, item := range resp.List {
		if len(item.Weather) == 0 {
			return nil, &models.DataFormatError{Source: "forecast", Index: i, Reason: "no weather condition"}
		}
		if item.DtText == "" {
			return nil, &models.DataFormatError{Source: "forecast", Index: i, Reason: "missing dt_txt"}
		}

		entries = append(entries, models.RawForecastEntry{
			Timestamp:     time.Unix(item.Dt, 0).UTC(),
			DateText:      item.DtText,
			TempMax:       item.Main.TempMax,
			TempMin:       item.Main.TempMin,
			FeelsLike:     item.Main.FeelsLike,
			Humidity:      item.Main.Humidity,
			WindSpeed:     item.Wind.Speed,
			ConditionCode: item.Weather[0].ID,
			IconID:        item.Weather[0].Icon,
			Description:   item.Weather[0].Description,
		})
	}

	o.logger.Debug("forecast series fetched", "coords", coords.String(), "entries", len(entries))
	return entries, nil
}
