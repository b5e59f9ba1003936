package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"weather-dashboard/api"
	"weather-dashboard/assets"
	"weather-dashboard/cache"
	"weather-dashboard/collector"
	"weather-dashboard/config"
	"weather-dashboard/datasource"
	"weather-dashboard/logging"
	"weather-dashboard/notify"
	"weather-dashboard/orchestrator"
	"weather-dashboard/providers/openweathermap"
	"weather-dashboard/store"
	"weather-dashboard/warning"
)

const appName = "weather-dashboard"

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	// Parse command line arguments
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	port := flag.Int("port", 0, "Port to run the server on (overrides httpAddr)")
	enableRateLimiting := flag.Bool("rate-limit", true, "Enable API rate limiting")
	refreshInterval := flag.Duration("refresh", 0, "Recent searches refresh interval (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port > 0 {
		cfg.HTTPAddr = fmt.Sprintf(":%d", *port)
	}
	if *refreshInterval > 0 {
		cfg.Recent.RefreshInterval = *refreshInterval
	}
	cfg.OpenWeatherMap.RateLimit = cfg.OpenWeatherMap.RateLimit && *enableRateLimiting

	logger := logging.New(cfg, version, appName)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("dashboard stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Provider stack: source, shared rate limiter, read-through cache
	var provider datasource.Provider = openweathermap.NewOpenWeatherMapSource(
		cfg.OpenWeatherMap.APIKey,
		openweathermap.WithLogger(logger),
	)
	if cfg.OpenWeatherMap.RateLimit {
		provider = datasource.NewRateLimitedProvider(provider, cfg.OpenWeatherMap.RPS, cfg.OpenWeatherMap.Burst)
		logger.Info("applied rate limiting", "provider", provider.Name(),
			"rps", cfg.OpenWeatherMap.RPS, "burst", cfg.OpenWeatherMap.Burst)
	}
	cached := cache.NewCachedProvider(provider, cfg.Cache.CurrentTTL, cfg.Cache.GeocodeTTL, logger)
	orch := orchestrator.New(cached, logger)

	kv, err := store.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()

	recent := cache.NewRecentSearches(kv, cfg.Recent.Capacity, logger)
	recent.Load(context.Background())

	tables, err := assets.Load(cfg.AssetsDir, logger)
	if err != nil {
		return fmt.Errorf("load asset tables: %w", err)
	}
	renderer := api.NewRenderer(tables, warning.NewClassifier(tables, logger), logger)

	var publisher notify.Publisher = notify.Nop{}
	if cfg.MQTT.Enabled {
		mqttPub := notify.NewMQTTPublisher(notify.MQTTOptions{
			Broker:   cfg.MQTT.Broker,
			Port:     cfg.MQTT.Port,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
		}, logger)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := mqttPub.Connect(ctx); err != nil {
			logger.Warn("mqtt not connected yet, retrying in background", "error", err)
		}
		cancel()
		publisher = mqttPub
	}
	defer publisher.Close()

	rehydrator := collector.NewRehydrator(recent, orch, cfg.Recent.RefreshInterval, logger)

	server := api.NewServer(cfg.HTTPAddr, api.Deps{
		Service:    orch,
		Recent:     recent,
		Renderer:   renderer,
		State:      api.NewState(""),
		Publisher:  publisher,
		Rehydrator: rehydrator,
		Stats:      cached,
		Fallback:   cfg.FallbackQuery(),
		Logger:     logger,
	})

	stopRehydrator := rehydrator.Start(context.Background())
	go server.ConsumeSnapshots(rehydrator.OutputChannel())

	// Start the API server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Set up channels for graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-shutdownChan:
		logger.Info("shutting down", "signal", sig.String())
	case serveErr = <-errCh:
		logger.Error("server stopped", "error", serveErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("server shutdown incomplete", "error", err)
	}
	stopRehydrator()

	logger.Info("shutdown complete")
	return serveErr
}
