// Package server exposes the tracker state over a localhost HTTP API with
// a small embedded dashboard page.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"tracetime/internal/infrastructure/logging"
	"tracetime/internal/repository"
	"tracetime/internal/settings"
	"tracetime/internal/stats"
	"tracetime/internal/types"
)

//go:embed static/*
var staticFS embed.FS

// DefaultAddr binds to localhost only so no firewall prompt appears.
const DefaultAddr = "127.0.0.1:8472"

// Tracker is the read surface the API serves. *app.App satisfies it.
type Tracker interface {
	Current() types.CurrentActivity
	TodaySeconds() int64
	TodayLabel() string
	Recent() []*types.ActivityRecord
	Stats(ctx context.Context, rng string, detailed bool, expanded map[string]bool) (*stats.View, error)
	HeatMap(ctx context.Context) []types.HeatMapDay
}

// Server serves the dashboard and its JSON API.
type Server struct {
	tracker  Tracker
	settings settings.Store
	logger   logging.Logger
	addr     string
	httpSrv  *http.Server
}

// New creates a server bound to addr, or DefaultAddr when addr is empty.
func New(tracker Tracker, store settings.Store, logger logging.Logger, addr string) *Server {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{
		tracker:  tracker,
		settings: store,
		logger:   logger,
		addr:     addr,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/heatmap", s.handleHeatMap)
	mux.HandleFunc("/api/current", s.handleCurrent)
	mux.HandleFunc("/api/recent", s.handleRecent)
	mux.HandleFunc("/api/ranges", s.handleRanges)
	mux.HandleFunc("/api/settings", s.handleSettings)
	return mux
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	s.httpSrv = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		s.logger.Info("Dashboard listening", "addr", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Dashboard server stopped", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "dashboard asset missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	rng := r.URL.Query().Get("range")
	if rng == "" {
		rng = repository.RangeToday
	}
	detailed := isTruthy(r.URL.Query().Get("detailed"))

	view, err := s.tracker.Stats(r.Context(), rng, detailed, nil)
	if err != nil {
		s.logger.Error("Stats query failed", "range", rng, "error", err)
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"range":        rng,
		"detailed":     detailed,
		"records":      view.Records,
		"totalSeconds": view.TotalSeconds,
		"totalLabel":   view.TotalLabel,
	})
}

func (s *Server) handleHeatMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"days": s.tracker.HeatMap(r.Context())})
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	current := s.tracker.Current()
	writeJSON(w, map[string]any{
		"appName":      current.AppName,
		"title":        current.Title,
		"state":        current.State,
		"todaySeconds": s.tracker.TodaySeconds(),
		"todayLabel":   s.tracker.TodayLabel(),
	})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	recent := s.tracker.Recent()
	if s.settings.PrivacyMode() {
		masked := make([]*types.ActivityRecord, 0, len(recent))
		for _, rec := range recent {
			clone := *rec
			clone.WindowTitle = ""
			masked = append(masked, &clone)
		}
		recent = masked
	}
	writeJSON(w, map[string]any{"recent": recent})
}

func (s *Server) handleRanges(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"ranges": repository.Ranges()})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, map[string]any{
			"language":    s.settings.Language(),
			"privacyMode": s.settings.PrivacyMode(),
			"autostart":   s.settings.AutostartEnabled(),
		})
	case http.MethodPost:
		var body struct {
			Language    *string `json:"language"`
			PrivacyMode *bool   `json:"privacyMode"`
			Autostart   *bool   `json:"autostart"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if body.Language != nil {
			if err := s.settings.SetLanguage(strings.TrimSpace(*body.Language)); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		if body.PrivacyMode != nil {
			if err := s.settings.SetPrivacyMode(*body.PrivacyMode); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		if body.Autostart != nil {
			if err := s.settings.SetAutostart(*body.Autostart); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		writeJSON(w, map[string]string{"status": "ok"})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func isTruthy(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "1" || v == "true" || v == "yes"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
