package ws

import (
	"log/slog"
	"sync"

	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/services/session"
)

// Sessions pairs every live session with its hub
type Sessions struct {
	mu      sync.Mutex
	manager *session.Manager
	hubs    map[model.SessionCode]*Hub
	logger  *slog.Logger
}

// NewSessions creates an empty session/hub registry
func NewSessions(manager *session.Manager, logger *slog.Logger) *Sessions {
	return &Sessions{
		manager: manager,
		hubs:    make(map[model.SessionCode]*Hub),
		logger:  logger,
	}
}

// Create allocates a session together with the hub carrying its traffic
func (s *Sessions) Create() (model.SessionCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hub := NewHub(s.logger)
	orch, err := s.manager.Create(hub)
	if err != nil {
		return "", err
	}

	s.hubs[orch.Code()] = hub
	return orch.Code(), nil
}

// Start opens the session's first round
func (s *Sessions) Start(code model.SessionCode) error {
	orch, err := s.manager.Get(code)
	if err != nil {
		return err
	}
	return orch.Start()
}

// Lookup returns a session and its hub
func (s *Sessions) Lookup(code model.SessionCode) (*Hub, *session.Orchestrator, error) {
	orch, err := s.manager.Get(code)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	hub := s.hubs[code]
	s.mu.Unlock()

	return hub, orch, nil
}

// Remove tears a session down and disconnects its clients
func (s *Sessions) Remove(code model.SessionCode) {
	s.mu.Lock()
	hub := s.hubs[code]
	delete(s.hubs, code)
	s.mu.Unlock()

	if hub != nil {
		hub.CloseAll()
	}
	s.manager.Remove(code)
}
