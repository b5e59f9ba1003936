package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"weather-dashboard/cache"
	"weather-dashboard/config"
	"weather-dashboard/datasource"
	"weather-dashboard/logging"
	"weather-dashboard/orchestrator"
	"weather-dashboard/providers/openweathermap"
	"weather-dashboard/store"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file:", err)
	}

	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	clearAll := flag.Bool("clear", false, "Clear the recent searches")
	refresh := flag.Bool("refresh", false, "Fetch current conditions for each remembered place, twice, to show the cache at work")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg, "dev", "recent-searches")

	kv, err := store.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", cfg.SQLitePath, err)
	}
	defer kv.Close()

	ctx := context.Background()
	recent := cache.NewRecentSearches(kv, cfg.Recent.Capacity, logger)
	recent.Load(ctx)

	if *clearAll {
		if err := recent.Clear(ctx); err != nil {
			log.Fatalf("Failed to clear recent searches: %v", err)
		}
		fmt.Println("Recent searches cleared")
		return
	}

	entries := recent.Entries()
	fmt.Printf("=== %d recent searches in %s ===\n", len(entries), cfg.SQLitePath)
	for i, e := range entries {
		fmt.Printf("%d. %s\n", i+1, e.Query().Text())
	}

	if !*refresh || len(entries) == 0 {
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	source := openweathermap.NewOpenWeatherMapSource(cfg.OpenWeatherMap.APIKey, openweathermap.WithLogger(logger))
	limited := datasource.NewRateLimitedProvider(source, cfg.OpenWeatherMap.RPS, cfg.OpenWeatherMap.Burst)
	cached := cache.NewCachedProvider(limited, cfg.Cache.CurrentTTL, cfg.Cache.GeocodeTTL, logger)
	orch := orchestrator.New(cached, logger)

	for pass := 1; pass <= 2; pass++ {
		fmt.Printf("\n*** Pass %d ***\n", pass)
		start := time.Now()
		for _, snap := range recent.Rehydrate(ctx, orch) {
			fmt.Printf("%-30s %5.1f°C  %s\n", snap.Current.Location(), snap.Current.TempCelsius, snap.Current.ConditionDescription)
		}
		fmt.Printf("took %v\n", time.Since(start).Round(time.Millisecond))
	}

	stats := cached.CacheStats()
	fmt.Printf("\nStats for %s: geocode %d hits / %d misses, current %d hits / %d misses\n",
		cached.Name(), stats.GeocodeHits, stats.GeocodeMisses, stats.CurrentHits, stats.CurrentMisses)
}
