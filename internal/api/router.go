package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tunequiz/tunequiz/internal/middleware"
	"github.com/tunequiz/tunequiz/internal/services/history"
	"github.com/tunequiz/tunequiz/internal/transport/ws"
)

// RouterConfig holds the dependencies of the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Sessions *ws.Sessions
	History  history.RecorderInterface
}

// NewRouter creates the router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	h := NewHandler(cfg.Sessions, cfg.History, cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{code}/start", h.StartSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{code}/qr", h.SessionQR).Methods(http.MethodGet)
	api.HandleFunc("/games", h.ListGames).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", h.GetGame).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	r.Handle("/ws/{code}", ws.NewHandler(cfg.Sessions, cfg.Logger)).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
