package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/services/history"
	"github.com/tunequiz/tunequiz/internal/transport/ws"
)

const qrSize = 320

// Handler serves the session and game-history HTTP endpoints
type Handler struct {
	sessions *ws.Sessions
	history  history.RecorderInterface
	logger   *slog.Logger
}

// NewHandler creates the API handler
func NewHandler(sessions *ws.Sessions, recorder history.RecorderInterface, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		history:  recorder,
		logger:   logger,
	}
}

// CreateSession handles POST /api/v1/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	code, err := h.sessions.Create()
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"code": code,
		"ws":   "/ws/" + string(code),
	})
}

// StartSession handles POST /api/v1/sessions/{code}/start
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	code := model.SessionCode(mux.Vars(r)["code"])

	if err := h.sessions.Start(code); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"code": code, "started": true})
}

// SessionQR handles GET /api/v1/sessions/{code}/qr with a PNG QR code of
// the session's join URL
func (h *Handler) SessionQR(w http.ResponseWriter, r *http.Request) {
	code := model.SessionCode(mux.Vars(r)["code"])

	if _, _, err := h.sessions.Lookup(code); err != nil {
		h.writeError(w, err)
		return
	}

	scheme := "ws"
	if r.TLS != nil {
		scheme = "wss"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		scheme = "wss"
	}
	joinURL := scheme + "://" + r.Host + "/ws/" + string(code)

	png, err := qrcode.Encode(joinURL, qrcode.Medium, qrSize)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// ListGames handles GET /api/v1/games
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"games": records})
}

// GetGame handles GET /api/v1/games/{id}
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	record, err := h.history.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, record)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response encoding failed", slog.String("error", err.Error()))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrSessionNotFound), errors.Is(err, model.ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrRoundSealed), errors.Is(err, model.ErrGameOver):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", slog.String("error", err.Error()))
	}

	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
