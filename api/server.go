// Package api exposes the dashboard as a JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"weather-dashboard/cache"
	"weather-dashboard/models"
	"weather-dashboard/notify"
	"weather-dashboard/orchestrator"
	"weather-dashboard/units"
)

const publishTimeout = 5 * time.Second

// WeatherService answers location queries
type WeatherService interface {
	Query(ctx context.Context, q models.LocationQuery) (models.Bundle, error)
	Suggest(ctx context.Context, text string) ([]models.GeocodeResult, error)
}

// RecentHistory is the persisted list of searched places
type RecentHistory interface {
	Record(ctx context.Context, entry models.RecentSearchEntry) error
	Clear(ctx context.Context) error
}

// Triggerer schedules a rehydration pass
type Triggerer interface {
	Trigger()
}

// StatsReporter exposes read-through cache statistics
type StatsReporter interface {
	CacheStats() cache.Stats
}

// Deps wires the server to the rest of the application
type Deps struct {
	Service    WeatherService
	Recent     RecentHistory
	Renderer   *Renderer
	State      *State
	Publisher  notify.Publisher
	Rehydrator Triggerer
	Stats      StatsReporter
	Fallback   models.LocationQuery
	Logger     *slog.Logger
}

// Server represents the API server
type Server struct {
	deps   Deps
	state  *State
	logger *slog.Logger
	server *http.Server
}

// NewServer creates a new API server listening on addr
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.State == nil {
		deps.State = NewState(units.Celsius)
	}
	if deps.Publisher == nil {
		deps.Publisher = notify.Nop{}
	}
	if deps.Fallback.Text() == "" {
		deps.Fallback = orchestrator.DefaultFallback
	}

	mux := http.NewServeMux()
	s := &Server{
		deps:   deps,
		state:  deps.State,
		logger: deps.Logger,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	mux.HandleFunc("/api/weather", s.handleWeather)
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/unit", s.handleUnit)
	mux.HandleFunc("/api/recent", s.handleRecent)
	mux.HandleFunc("/api/suggest", s.handleSuggest)

	// Health check
	mux.HandleFunc("/api/health", s.handleHealthCheck)

	return s
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// State returns the dashboard state
func (s *Server) State() *State {
	return s.state
}

// Start begins the API server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ConsumeSnapshots stores each rehydration pass until ch is closed
func (s *Server) ConsumeSnapshots(ch <-chan []cache.Snapshot) {
	for snaps := range ch {
		s.state.SetRecent(snaps)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps the error taxonomy to HTTP status codes
func statusFor(err error) int {
	var (
		cfgErr    *models.ConfigurationError
		notFound  *models.NotFoundError
		upstream  *models.UpstreamError
		formatErr *models.DataFormatError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &upstream), errors.As(err, &formatErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// parseQuery reads either lat/lon or city/state/country. With neither, the device
// location could not be used and the fallback city applies. searched reports a query
// the user typed.
func (s *Server) parseQuery(r *http.Request) (q models.LocationQuery, notice string, searched bool, err error) {
	params := r.URL.Query()

	if city := strings.TrimSpace(params.Get("city")); city != "" {
		return models.NewPlaceQuery(city, params.Get("state"), params.Get("country")), "", true, nil
	}

	latStr, lonStr := params.Get("lat"), params.Get("lon")
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return models.LocationQuery{}, "", false, errors.New("invalid lat")
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return models.LocationQuery{}, "", false, errors.New("invalid lon")
		}
		loc := orchestrator.LocatorFunc(func(context.Context) (models.Coordinates, error) {
			return models.Coordinates{Latitude: lat, Longitude: lon}, nil
		})
		q, notice = orchestrator.ResolveCurrentLocationOrFallback(r.Context(), loc, s.deps.Fallback)
		return q, notice, false, nil
	}

	var loc orchestrator.Locator
	if geoErr := strings.TrimSpace(params.Get("geo_error")); geoErr != "" {
		loc = orchestrator.LocatorFunc(func(context.Context) (models.Coordinates, error) {
			return models.Coordinates{}, errors.New(geoErr)
		})
	}
	q, notice = orchestrator.ResolveCurrentLocationOrFallback(r.Context(), loc, s.deps.Fallback)
	return q, notice, false, nil
}

// handleWeather runs a primary query. A newer primary query cancels this one.
func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q, notice, searched, err := s.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, ticket, cancel := s.state.Begin(r.Context())
	defer cancel()

	bundle, err := s.deps.Service.Query(ctx, q)
	if err != nil {
		if !s.state.Current(ticket) {
			writeError(w, http.StatusConflict, orchestrator.UserMessage(context.Canceled))
			return
		}
		s.logger.Warn("weather query failed", "query", q.Text(), "error", err)
		writeError(w, statusFor(err), orchestrator.UserMessage(err))
		return
	}

	if !s.state.Publish(ticket, bundle, notice) {
		s.logger.Debug("stale weather result dropped", "query", q.Text())
		writeError(w, http.StatusConflict, orchestrator.UserMessage(context.Canceled))
		return
	}

	if searched {
		s.recordSearch(ctx, q.Entry())
	}

	view := s.deps.Renderer.Dashboard(bundle, s.state.Unit(), notice)
	s.publishWarning(view, bundle.Current.Timestamp)
	writeJSON(w, http.StatusOK, view)
}

// recordSearch remembers a successfully fetched place and refreshes the snapshots
func (s *Server) recordSearch(ctx context.Context, entry models.RecentSearchEntry) {
	if s.deps.Recent == nil {
		return
	}
	if err := s.deps.Recent.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("recent search not persisted", "city", entry.City, "error", err)
	}
	if s.deps.Rehydrator != nil {
		s.deps.Rehydrator.Trigger()
	}
}

func (s *Server) publishWarning(view DashboardView, observedAt time.Time) {
	if view.Warning == nil || view.Warning.Tier != models.WarningHigh {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	event := notify.WarningEvent{
		Location:    view.Current.Location,
		Coordinates: view.Coordinates,
		Key:         view.Warning.Key,
		Tier:        view.Warning.Tier,
		Message:     view.Warning.Message,
		ObservedAt:  observedAt,
	}
	if err := s.deps.Publisher.PublishWarning(ctx, event); err != nil {
		s.logger.Warn("warning event not published", "key", event.Key, "error", err)
	}
}

// handleDashboard re-renders the bundle currently shown
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bundle, notice, ok := s.state.Bundle()
	if !ok {
		writeError(w, http.StatusNotFound, "No weather data loaded yet")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Renderer.Dashboard(bundle, s.state.Unit(), notice))
}

// handleUnit switches the display unit without fetching
func (s *Server) handleUnit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	unit, err := units.ParseUnit(r.URL.Query().Get("unit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.state.SetUnit(unit)

	bundle, notice, ok := s.state.Bundle()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"unit": unit})
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Renderer.Dashboard(bundle, unit, notice))
}

// handleRecent lists or clears the recent searches
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		views := s.deps.Renderer.Recent(s.state.Recent(), s.state.Unit())
		writeJSON(w, http.StatusOK, map[string]any{
			"recent": views,
			"count":  len(views),
		})
	case http.MethodDelete:
		if s.deps.Recent != nil {
			if err := s.deps.Recent.Clear(r.Context()); err != nil {
				s.logger.Error("clearing recent searches failed", "error", err)
				writeError(w, http.StatusInternalServerError, "Could not clear recent searches")
				return
			}
		}
		s.state.SetRecent(nil)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type suggestion struct {
	Label string `json:"label"`
	models.GeocodeResult
}

// handleSuggest offers places matching partial input
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	results, err := s.deps.Service.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.logger.Warn("suggestions failed", "error", err)
		writeError(w, statusFor(err), orchestrator.UserMessage(err))
		return
	}

	out := make([]suggestion, 0, len(results))
	for _, res := range results {
		out = append(out, suggestion{Label: res.Label(), GeocodeResult: res})
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": out})
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if s.deps.Stats != nil {
		resp["cache"] = s.deps.Stats.CacheStats()
	}
	if updated := s.state.Updated(); !updated.IsZero() {
		resp["dashboardUpdated"] = updated.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}
