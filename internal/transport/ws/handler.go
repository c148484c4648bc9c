package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/tunequiz/tunequiz/internal/model"
)

// Handler upgrades HTTP requests to websocket connections and attaches
// them to their session
type Handler struct {
	sessions *Sessions
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a websocket handler over the given sessions
func NewHandler(sessions *Sessions, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients connect from whatever host serves the join link
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws-handler")),
	}
}

// ServeHTTP handles GET /ws/{code}
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := model.SessionCode(mux.Vars(r)["code"])

	hub, orch, err := h.sessions.Lookup(code)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("session", string(code)),
			slog.String("error", err.Error()),
		)
		return
	}

	client := newClient(hub, conn, h.logger)
	hub.register(client)

	h.logger.Info("client connected", slog.String("session", string(code)))

	go client.writePump()
	go client.readPump(orch)
}
