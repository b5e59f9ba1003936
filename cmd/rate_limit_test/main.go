package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"weather-dashboard/datasource"
	"weather-dashboard/models"
	"weather-dashboard/orchestrator"
)

// MockProvider simulates provider latency and counts calls per endpoint
type MockProvider struct {
	mutex     sync.Mutex
	callCount int
	latency   time.Duration
}

func NewMockProvider(latency time.Duration) *MockProvider {
	return &MockProvider{latency: latency}
}

func (m *MockProvider) Name() string {
	return "MockProvider"
}

func (m *MockProvider) call(ctx context.Context, endpoint string) error {
	m.mutex.Lock()
	m.callCount++
	currentCount := m.callCount
	m.mutex.Unlock()

	fmt.Printf("%s - Processing request #%d (%s)\n", time.Now().Format("15:04:05.000"), currentCount, endpoint)

	// Simulate work/latency
	select {
	case <-time.After(m.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockProvider) Geocode(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	if err := m.call(ctx, "geocode"); err != nil {
		return nil, err
	}
	return []models.GeocodeResult{{Name: query, Latitude: 1, Longitude: 1}}, nil
}

func (m *MockProvider) FetchCurrent(ctx context.Context, coords models.Coordinates) (models.CurrentConditions, error) {
	if err := m.call(ctx, "weather"); err != nil {
		return models.CurrentConditions{}, err
	}
	return models.CurrentConditions{
		Name:                 coords.String(),
		Timestamp:            time.Now(),
		TempCelsius:          22.5,
		ConditionCode:        800,
		ConditionIconID:      "01d",
		ConditionDescription: "mocked weather data",
	}, nil
}

func (m *MockProvider) FetchForecast(ctx context.Context, coords models.Coordinates) ([]models.RawForecastEntry, error) {
	if err := m.call(ctx, "forecast"); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return []models.RawForecastEntry{{
		Timestamp: now,
		DateText:  now.Format("2006-01-02") + " 12:00:00",
		TempMax:   24,
		TempMin:   18,
		IconID:    "01d",
	}}, nil
}

func (m *MockProvider) FetchAirQuality(ctx context.Context, coords models.Coordinates) (int, error) {
	if err := m.call(ctx, "air_pollution"); err != nil {
		return 0, err
	}
	return 2, nil
}

func (m *MockProvider) GetCallCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.callCount
}

func main() {
	// Parse command-line flags
	requestsPerSecond := flag.Float64("rps", datasource.DefaultRPS, "Rate limit in requests per second")
	burstSize := flag.Int("burst", datasource.DefaultBurst, "Maximum burst size")
	totalBundles := flag.Int("bundles", 4, "Total number of dashboard bundles to fetch")
	concurrentWorkers := flag.Int("concurrent", 2, "Number of concurrent workers")
	flag.Parse()

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Create a mock provider with 200ms response time
	mockProvider := NewMockProvider(200 * time.Millisecond)

	// Wrap with rate limiter
	rateLimited := datasource.NewRateLimitedProvider(mockProvider, *requestsPerSecond, *burstSize)
	orch := orchestrator.New(rateLimited, nil)

	// Each bundle is three provider calls
	totalRequests := *totalBundles * 3

	fmt.Printf("Testing rate limiter with:\n")
	fmt.Printf("- Rate limit: %.2f requests/second\n", *requestsPerSecond)
	fmt.Printf("- Burst size: %d\n", *burstSize)
	fmt.Printf("- Bundles: %d (%d provider requests)\n", *totalBundles, totalRequests)
	fmt.Printf("- Concurrent workers: %d\n", *concurrentWorkers)
	fmt.Println("Starting test...")

	startTime := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *concurrentWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			bundlesPerWorker := *totalBundles / *concurrentWorkers
			if workerID < *totalBundles%*concurrentWorkers {
				bundlesPerWorker++
			}

			for j := 0; j < bundlesPerWorker; j++ {
				coords := models.Coordinates{Latitude: float64(workerID), Longitude: float64(j)}
				before := time.Now()
				_, err := orch.FetchFullBundle(ctx, coords)
				elapsed := time.Since(before)

				if err != nil {
					log.Printf("Worker %d - Bundle %d failed: %v", workerID, j, err)
				} else {
					log.Printf("Worker %d - Bundle %d completed in %v", workerID, j, elapsed)
				}
			}
		}(i)
	}

	wg.Wait()

	totalTime := time.Since(startTime)
	actualRPS := float64(mockProvider.GetCallCount()) / totalTime.Seconds()

	fmt.Println("\nTest completed!")
	fmt.Printf("Total time: %.2f seconds\n", totalTime.Seconds())
	fmt.Printf("Actual requests per second: %.2f\n", actualRPS)
	fmt.Printf("Total requests processed: %d\n", mockProvider.GetCallCount())

	expectedMinTime := float64(totalRequests-*burstSize) / *requestsPerSecond
	if expectedMinTime < 0 {
		expectedMinTime = 0
	}
	fmt.Printf("Expected minimum time (theoretical): %.2f seconds\n", expectedMinTime)

	if actualRPS > *requestsPerSecond*1.5 && totalRequests > *burstSize {
		fmt.Println("\nWARNING: Actual RPS significantly higher than configured rate limit!")
		fmt.Println("Rate limiting may not be working as expected.")
	} else {
		fmt.Println("\nRate limiting appears to be working correctly.")
	}
}
