package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tunequiz/tunequiz/internal/audio"
	"github.com/tunequiz/tunequiz/internal/dependencies/clock"
	"github.com/tunequiz/tunequiz/internal/dependencies/random"
	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/protocol"
	"github.com/tunequiz/tunequiz/internal/services/grading"
	"github.com/tunequiz/tunequiz/internal/services/history"
	"github.com/tunequiz/tunequiz/internal/services/registry"
	"github.com/tunequiz/tunequiz/internal/services/round"
	"github.com/tunequiz/tunequiz/internal/tracks"
)

// Emitter delivers protocol messages to the session's clients.
// Implemented by the websocket hub; tests use an in-memory fake.
type Emitter interface {
	Broadcast(msg protocol.Message)
	Send(id model.PlayerID, msg protocol.Message)
}

// Config holds per-session gameplay settings
type Config struct {
	// RoundTimeLimit bounds each round; zero disables the timer
	RoundTimeLimit time.Duration
	// Shuffle randomizes track order at game start
	Shuffle bool
	Policy  round.Policy
}

// DefaultConfig returns the default session settings
func DefaultConfig() Config {
	return Config{
		RoundTimeLimit: 60 * time.Second,
		Shuffle:        true,
		Policy:         round.DefaultPolicy(),
	}
}

// Orchestrator drives one game session: players, rounds, scoring and the
// final record. Every mutating entry point takes the session mutex, so
// client actions and timer expiries are applied one at a time in the
// order the lock admits them.
type Orchestrator struct {
	mu sync.Mutex

	code   model.SessionCode
	gameID model.GameID
	cfg    Config

	registry *registry.Registry
	grader   grading.ServiceInterface
	recorder history.RecorderInterface
	audio    audio.Player
	emitter  Emitter
	clock    clock.Clock
	logger   *slog.Logger

	sequence  []*model.Track
	records   []model.RoundRecord
	current   *round.Machine
	roundIdx  int
	timerGen  int
	startedAt time.Time
	started   bool
	ended     bool
}

// NewOrchestrator assembles a session over the given track library.
// Call Start to open the first round.
func NewOrchestrator(
	code model.SessionCode,
	cfg Config,
	library *tracks.Library,
	grader grading.ServiceInterface,
	recorder history.RecorderInterface,
	player audio.Player,
	emitter Emitter,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Orchestrator {
	logger = logger.With(slog.String("session", string(code)))

	o := &Orchestrator{
		code:     code,
		gameID:   model.GameID(uuid.NewString()),
		cfg:      cfg,
		grader:   grader,
		recorder: recorder,
		audio:    player,
		emitter:  emitter,
		clock:    clk,
		logger:   logger,
		sequence: library.Sequence(rnd, cfg.Shuffle),
	}

	o.registry = registry.New(clk, logger)
	o.registry.SetNotify(func(p model.Player) {
		o.emitter.Broadcast(protocol.MustNew(protocol.TypeScoreUpdate, protocol.ScoreUpdatePayload{
			PlayerID: p.ID,
			Score:    p.Score,
		}))
	})

	return o
}

// Code returns the session's join code
func (o *Orchestrator) Code() model.SessionCode {
	return o.code
}

// Start opens the first round
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return model.ErrRoundSealed
	}
	o.started = true
	o.startedAt = o.clock.Now()

	o.logger.Info("game started", slog.Int("tracks", len(o.sequence)))
	o.startRoundLocked()
	return nil
}

// HandleJoin registers a new player and sends them a welcome plus a
// snapshot of the game in progress
func (o *Orchestrator) HandleJoin(name string) (model.PlayerID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ended {
		return "", model.ErrGameOver
	}

	id, err := o.registry.Join(name)
	if err != nil {
		return "", err
	}

	o.emitter.Broadcast(protocol.MustNew(protocol.TypePlayerJoined, protocol.PlayerJoinedPayload{
		PlayerID:    id,
		DisplayName: name,
	}))
	o.emitter.Send(id, protocol.MustNew(protocol.TypeWelcome, protocol.WelcomePayload{
		PlayerID: id,
		Session:  o.code,
	}))
	o.emitter.Send(id, protocol.MustNew(protocol.TypeSnapshot, o.snapshotLocked()))

	return id, nil
}

// HandleRejoin restores a disconnected player and resynchronizes them
func (o *Orchestrator) HandleRejoin(id model.PlayerID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.registry.Rejoin(id); err != nil {
		return err
	}

	player, _ := o.registry.Get(id)
	o.emitter.Broadcast(protocol.MustNew(protocol.TypePlayerJoined, protocol.PlayerJoinedPayload{
		PlayerID:    id,
		DisplayName: player.DisplayName,
	}))
	o.emitter.Send(id, protocol.MustNew(protocol.TypeWelcome, protocol.WelcomePayload{
		PlayerID: id,
		Session:  o.code,
	}))
	o.emitter.Send(id, protocol.MustNew(protocol.TypeSnapshot, o.snapshotLocked()))

	return nil
}

// HandleLeave marks a player disconnected. Their score is kept and their
// name is freed for reuse; they may rejoin with their player ID.
func (o *Orchestrator) HandleLeave(id model.PlayerID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.registry.MarkDisconnected(id); err != nil {
		return err
	}

	player, _ := o.registry.Get(id)
	o.emitter.Broadcast(protocol.MustNew(protocol.TypePlayerLeft, protocol.PlayerLeftPayload{
		PlayerID:    id,
		DisplayName: player.DisplayName,
	}))

	return nil
}

// HandleSubmit records a guess for one field of the current round.
// When every active player has completed both fields the round advances
// immediately.
func (o *Orchestrator) HandleSubmit(id model.PlayerID, field model.GuessField, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ended {
		return model.ErrGameOver
	}
	if o.current == nil {
		return model.ErrNoActiveRound
	}
	if !o.registry.Has(id) {
		return model.ErrUnknownPlayer
	}

	if err := o.current.Submit(id, field, text); err != nil {
		return err
	}

	if o.current.AllSubmitted(o.registry.ListActive()) {
		o.logger.Info("all players submitted", slog.Int("round", o.current.Number()))
		return o.advanceLocked()
	}
	return nil
}

// HandleRepeat replays the current clip while the round is open
func (o *Orchestrator) HandleRepeat() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ended {
		return model.ErrGameOver
	}
	if o.current == nil {
		return model.ErrNoActiveRound
	}
	if o.current.State() != model.RoundStateGuessing {
		return model.ErrRoundNotOpen
	}
	return o.audio.Play(o.current.Track().AudioRef)
}

// Advance closes the current round, reveals it, applies scores and opens
// the next round. The round timer expires through this same path.
func (o *Orchestrator) Advance() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ended {
		return model.ErrGameOver
	}
	if o.current == nil {
		return model.ErrNoActiveRound
	}
	return o.advanceLocked()
}

// Snapshot returns a consistent view of the session for late joiners
func (o *Orchestrator) Snapshot() protocol.SnapshotPayload {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Ended reports whether the game is over
func (o *Orchestrator) Ended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ended
}

func (o *Orchestrator) snapshotLocked() protocol.SnapshotPayload {
	snap := protocol.SnapshotPayload{
		Session:     o.code,
		TotalRounds: len(o.sequence),
		Players:     o.registry.List(),
	}

	switch {
	case o.current != nil:
		r := o.current.Snapshot()
		snap.RoundNo = r.Number
		snap.RoundState = r.State
		snap.Reveal = r.Reveal
	case o.ended:
		snap.RoundNo = len(o.sequence)
		snap.RoundState = model.RoundStateRevealed
	}

	return snap
}

// startRoundLocked opens the round at roundIdx, or ends the game when
// the track sequence is exhausted
func (o *Orchestrator) startRoundLocked() {
	if o.roundIdx >= len(o.sequence) {
		o.endGameLocked()
		return
	}

	track := o.sequence[o.roundIdx]
	o.current = round.NewMachine(o.roundIdx+1, track, o.logger)
	if err := o.current.Open(o.clock.Now()); err != nil {
		// Freshly created machines always open
		o.logger.Error("round open failed", slog.String("error", err.Error()))
		return
	}

	o.logger.Info("round started",
		slog.Int("round", o.current.Number()),
		slog.String("track_id", string(track.ID)),
	)

	o.emitter.Broadcast(protocol.MustNew(protocol.TypeRoundStarted, protocol.RoundStartedPayload{
		RoundNo:     o.current.Number(),
		TotalRounds: len(o.sequence),
	}))

	if err := o.audio.Play(track.AudioRef); err != nil {
		o.logger.Warn("audio play failed", slog.String("error", err.Error()))
	}

	o.armTimerLocked()
}

// armTimerLocked schedules the round deadline. The generation counter
// invalidates the timer when the round advances for any other reason.
func (o *Orchestrator) armTimerLocked() {
	if o.cfg.RoundTimeLimit <= 0 {
		return
	}

	o.timerGen++
	gen := o.timerGen
	expiry := o.clock.After(o.cfg.RoundTimeLimit)

	go func() {
		<-expiry
		o.timerExpired(gen)
	}()
}

func (o *Orchestrator) timerExpired(gen int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.timerGen || o.ended || o.current == nil {
		return
	}

	o.logger.Info("round time limit reached", slog.Int("round", o.current.Number()))
	if err := o.advanceLocked(); err != nil {
		o.logger.Error("timer advance failed", slog.String("error", err.Error()))
	}
}

func (o *Orchestrator) advanceLocked() error {
	o.timerGen++

	if o.current.State() == model.RoundStateGuessing {
		if err := o.audio.Stop(); err != nil {
			o.logger.Warn("audio stop failed", slog.String("error", err.Error()))
		}
		if err := o.current.Close(o.clock.Now()); err != nil {
			return err
		}
	}

	reveal, err := o.current.Reveal(o.grader, o.cfg.Policy)
	if err != nil {
		if errors.Is(err, model.ErrInvalidTrack) {
			// A track with no gradeable answers cannot score a round.
			// Skip it rather than stalling the whole game.
			o.logger.Warn("skipping ungradeable track",
				slog.Int("round", o.current.Number()),
				slog.String("track_id", string(o.current.Track().ID)),
				slog.String("error", err.Error()),
			)
			o.roundIdx++
			o.startRoundLocked()
			return nil
		}
		return err
	}

	for _, result := range reveal.Results {
		if result.Points <= 0 {
			continue
		}
		if err := o.registry.AddScore(result.PlayerID, result.Points); err != nil {
			o.logger.Error("score update failed",
				slog.String("player_id", string(result.PlayerID)),
				slog.String("error", err.Error()),
			)
		}
	}

	o.emitter.Broadcast(protocol.MustNew(protocol.TypeReveal, protocol.RevealPayload{
		RoundNo:         o.current.Number(),
		CanonicalTitle:  reveal.CanonicalTitle,
		CanonicalArtist: reveal.CanonicalArtist,
		Results:         reveal.Results,
	}))

	o.records = append(o.records, model.RoundRecord{
		Number:          o.current.Number(),
		TrackID:         o.current.Track().ID,
		CanonicalTitle:  reveal.CanonicalTitle,
		CanonicalArtist: reveal.CanonicalArtist,
		Results:         reveal.Results,
	})

	o.roundIdx++
	o.startRoundLocked()
	return nil
}

// endGameLocked seals the session, persists its record and announces the
// final standings. A failed history write is reported through the
// game_ended payload but never blocks the broadcast.
func (o *Orchestrator) endGameLocked() {
	o.ended = true
	o.current = nil

	if err := o.audio.Stop(); err != nil {
		o.logger.Warn("audio stop failed", slog.String("error", err.Error()))
	}

	players := o.registry.List()
	finalScores := make([]model.FinalScore, 0, len(players))
	for _, p := range players {
		finalScores = append(finalScores, model.FinalScore{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
		})
	}

	record := &model.GameRecord{
		ID:          o.gameID,
		Session:     o.code,
		Rounds:      o.records,
		FinalScores: finalScores,
		StartedAt:   o.startedAt,
		CompletedAt: o.clock.Now(),
	}

	recorded := true
	if err := o.recorder.Record(context.Background(), record); err != nil {
		recorded = false
		o.logger.Error("game record not persisted",
			slog.String("game_id", string(o.gameID)),
			slog.String("error", err.Error()),
		)
	}

	o.logger.Info("game ended",
		slog.String("game_id", string(o.gameID)),
		slog.Int("rounds", len(o.records)),
		slog.Bool("recorded", recorded),
	)

	o.emitter.Broadcast(protocol.MustNew(protocol.TypeGameEnded, protocol.GameEndedPayload{
		FinalScores: finalScores,
		Recorded:    recorded,
	}))
}
