package session

import (
	"log/slog"
	"sync"

	"github.com/tunequiz/tunequiz/internal/audio"
	"github.com/tunequiz/tunequiz/internal/dependencies/clock"
	"github.com/tunequiz/tunequiz/internal/dependencies/random"
	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/services/grading"
	"github.com/tunequiz/tunequiz/internal/services/history"
	"github.com/tunequiz/tunequiz/internal/tracks"
)

// Session codes avoid easily confused characters (0/O, 1/I)
const (
	sessionCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	sessionCodeLength   = 5
)

// Manager owns the live sessions, keyed by join code. Sessions share the
// track library and infrastructure but no game state.
type Manager struct {
	mu       sync.Mutex
	sessions map[model.SessionCode]*Orchestrator

	cfg      Config
	library  *tracks.Library
	grader   grading.ServiceInterface
	recorder history.RecorderInterface
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
}

// NewManager creates an empty session manager
func NewManager(
	cfg Config,
	library *tracks.Library,
	grader grading.ServiceInterface,
	recorder history.RecorderInterface,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		sessions: make(map[model.SessionCode]*Orchestrator),
		cfg:      cfg,
		library:  library,
		grader:   grader,
		recorder: recorder,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "session-manager")),
	}
}

// Create allocates a fresh session under an unused join code.
// The emitter carries broadcasts to the session's clients; audio control
// rides the same emitter.
func (m *Manager) Create(emitter Emitter) (*Orchestrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code := m.newCodeLocked()
	player := audio.NewBroadcast(emitter.Broadcast, m.logger)

	orch := NewOrchestrator(
		code, m.cfg, m.library, m.grader, m.recorder,
		player, emitter, m.clock, m.random, m.logger,
	)
	m.sessions[code] = orch

	m.logger.Info("session created", slog.String("session", string(code)))
	return orch, nil
}

// Get returns the session with the given code
func (m *Manager) Get(code model.SessionCode) (*Orchestrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orch, ok := m.sessions[code]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return orch, nil
}

// Remove forgets a finished session
func (m *Manager) Remove(code model.SessionCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, code)
	m.logger.Info("session removed", slog.String("session", string(code)))
}

// List returns the codes of all live sessions
func (m *Manager) List() []model.SessionCode {
	m.mu.Lock()
	defer m.mu.Unlock()

	codes := make([]model.SessionCode, 0, len(m.sessions))
	for code := range m.sessions {
		codes = append(codes, code)
	}
	return codes
}

func (m *Manager) newCodeLocked() model.SessionCode {
	for {
		code := model.SessionCode(m.random.String(sessionCodeLength, sessionCodeAlphabet))
		if _, taken := m.sessions[code]; !taken {
			return code
		}
	}
}
