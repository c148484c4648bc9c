package registry

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tunequiz/tunequiz/internal/dependencies/clock"
	"github.com/tunequiz/tunequiz/internal/model"
)

// ErrNegativeDelta is returned when a score change would decrease a score
var ErrNegativeDelta = errors.New("score delta must be non-negative")

// Notify is invoked after every mutation so the orchestrator can emit
// score updates. The registry itself never talks to the network.
type Notify func(player model.Player)

// Registry tracks the players of one game session: identity, score and
// connection liveness. It is owned by the orchestrator, which serializes
// all access; the registry itself is not safe for concurrent use.
type Registry struct {
	players map[model.PlayerID]*model.Player
	order   []model.PlayerID
	clock   clock.Clock
	logger  *slog.Logger
	notify  Notify
}

// New creates an empty registry
func New(clk clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		players: make(map[model.PlayerID]*model.Player),
		clock:   clk,
		logger:  logger,
	}
}

// SetNotify installs the mutation callback
func (r *Registry) SetNotify(fn Notify) {
	r.notify = fn
}

// Join registers a new player under the given display name.
// Fails with ErrDuplicateName if a connected player already holds the
// name (case-insensitive).
func (r *Registry) Join(name string) (model.PlayerID, error) {
	for _, p := range r.players {
		if p.Connected() && strings.EqualFold(p.DisplayName, name) {
			return "", model.ErrDuplicateName
		}
	}

	player := &model.Player{
		ID:          model.PlayerID(uuid.NewString()),
		DisplayName: name,
		Score:       0,
		Status:      model.StatusConnected,
		JoinedAt:    r.clock.Now(),
	}
	r.players[player.ID] = player
	r.order = append(r.order, player.ID)

	r.logger.Info("player joined",
		slog.String("player_id", string(player.ID)),
		slog.String("display_name", name),
	)

	r.notifyChanged(player)
	return player.ID, nil
}

// MarkDisconnected flags a player's connection as lost.
// The player keeps their score and can rejoin later.
func (r *Registry) MarkDisconnected(id model.PlayerID) error {
	player, ok := r.players[id]
	if !ok {
		return model.ErrUnknownPlayer
	}
	player.Status = model.StatusDisconnected

	r.logger.Info("player disconnected",
		slog.String("player_id", string(id)),
		slog.String("display_name", player.DisplayName),
	)

	r.notifyChanged(player)
	return nil
}

// Rejoin restores a player's connected status without resetting score
func (r *Registry) Rejoin(id model.PlayerID) error {
	player, ok := r.players[id]
	if !ok {
		return model.ErrUnknownPlayer
	}
	player.Status = model.StatusConnected

	r.logger.Info("player rejoined",
		slog.String("player_id", string(id)),
		slog.Int("score", player.Score),
	)

	r.notifyChanged(player)
	return nil
}

// Get returns a copy of the player
func (r *Registry) Get(id model.PlayerID) (model.Player, error) {
	player, ok := r.players[id]
	if !ok {
		return model.Player{}, model.ErrUnknownPlayer
	}
	return *player, nil
}

// ScoreFor returns a player's current score
func (r *Registry) ScoreFor(id model.PlayerID) (int, error) {
	player, ok := r.players[id]
	if !ok {
		return 0, model.ErrUnknownPlayer
	}
	return player.Score, nil
}

// AddScore increments a player's score. Scores are monotonically
// non-decreasing within a game, so negative deltas are rejected.
func (r *Registry) AddScore(id model.PlayerID, delta int) error {
	player, ok := r.players[id]
	if !ok {
		return model.ErrUnknownPlayer
	}
	if delta < 0 {
		return ErrNegativeDelta
	}
	player.Score += delta

	r.notifyChanged(player)
	return nil
}

// ListActive returns the connected players in join order.
// The ordering is stable across calls.
func (r *Registry) ListActive() []model.Player {
	var active []model.Player
	for _, id := range r.order {
		if p := r.players[id]; p.Connected() {
			active = append(active, *p)
		}
	}
	return active
}

// List returns every registered player in join order, including
// disconnected ones (their scores still count at game end)
func (r *Registry) List() []model.Player {
	players := make([]model.Player, 0, len(r.order))
	for _, id := range r.order {
		players = append(players, *r.players[id])
	}
	return players
}

// Has reports whether the player is registered
func (r *Registry) Has(id model.PlayerID) bool {
	_, ok := r.players[id]
	return ok
}

func (r *Registry) notifyChanged(player *model.Player) {
	if r.notify != nil {
		r.notify(*player)
	}
}
