package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

type temperature struct {
	Value  int    `json:"value"`
	Symbol string `json:"symbol"`
}

func (t temperature) String() string {
	return fmt.Sprintf("%d %s", t.Value, t.Symbol)
}

type dashboard struct {
	Unit    string `json:"unit"`
	Notice  string `json:"notice"`
	Current struct {
		Location    string      `json:"location"`
		LocalDate   string      `json:"localDate"`
		Description string      `json:"description"`
		Temperature temperature `json:"temperature"`
		FeelsLike   temperature `json:"feelsLike"`
		Sunrise     string      `json:"sunrise"`
		Sunset      string      `json:"sunset"`
	} `json:"current"`
	Forecast []struct {
		Date        string      `json:"date"`
		Weekday     string      `json:"weekday"`
		Description string      `json:"description"`
		TempMax     temperature `json:"tempMax"`
		TempMin     temperature `json:"tempMin"`
	} `json:"forecast"`
	AirQuality struct {
		Index    int    `json:"index"`
		Category string `json:"category"`
	} `json:"airQuality"`
	Warning *struct {
		Tier    string `json:"tier"`
		Message string `json:"message"`
	} `json:"warning"`
}

func main() {
	fmt.Println("Weather Dashboard Client")
	fmt.Println("========================")

	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the dashboard API")
	city := flag.String("city", "", "City to search; empty uses the server's fallback city")
	state := flag.String("state", "", "State or region")
	country := flag.String("country", "", "Country code")
	unit := flag.String("unit", "", "Switch the display unit (C or F) after loading")
	flag.Parse()

	client := &http.Client{Timeout: 30 * time.Second}

	params := url.Values{}
	if *city != "" {
		params.Set("city", *city)
		params.Set("state", *state)
		params.Set("country", *country)
	}

	fmt.Println("Fetching dashboard...")
	body, err := call(client, http.MethodGet, *baseURL+"/api/weather?"+params.Encode())
	if err != nil {
		fmt.Printf("Error fetching weather: %v\n", err)
		os.Exit(1)
	}

	if *unit != "" {
		body, err = call(client, http.MethodPost, *baseURL+"/api/unit?unit="+url.QueryEscape(*unit))
		if err != nil {
			fmt.Printf("Error switching unit: %v\n", err)
			os.Exit(1)
		}
	}

	var d dashboard
	if err := json.Unmarshal(body, &d); err != nil {
		fmt.Printf("Unexpected response: %v\n", err)
		os.Exit(1)
	}
	printDashboard(d)

	recent, err := call(client, http.MethodGet, *baseURL+"/api/recent")
	if err != nil {
		fmt.Printf("Error fetching recent searches: %v\n", err)
		return
	}
	var pretty map[string]any
	if err := json.Unmarshal(recent, &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Printf("\nRecent searches:\n%s\n", out)
	}
}

func call(client *http.Client, method, target string) ([]byte, error) {
	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("%s (status %d)", e.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}

func printDashboard(d dashboard) {
	if d.Notice != "" {
		fmt.Printf("Notice: %s\n", d.Notice)
	}
	fmt.Printf("\n%s\n%s\n", d.Current.Location, d.Current.LocalDate)
	fmt.Printf("%s (feels like %s), %s\n", d.Current.Temperature, d.Current.FeelsLike, d.Current.Description)
	fmt.Printf("Sunrise %s, sunset %s\n", d.Current.Sunrise, d.Current.Sunset)
	fmt.Printf("Air quality: %s (%d)\n", d.AirQuality.Category, d.AirQuality.Index)
	if d.Warning != nil {
		fmt.Printf("Warning [%s]: %s\n", d.Warning.Tier, d.Warning.Message)
	}

	fmt.Println("\nForecast:")
	for _, day := range d.Forecast {
		fmt.Printf("  %-9s %s  %s / %s  %s\n", day.Weekday, day.Date, day.TempMax, day.TempMin, day.Description)
	}
}
