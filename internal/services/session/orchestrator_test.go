package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tunequiz/tunequiz/internal/audio"
	"github.com/tunequiz/tunequiz/internal/dependencies/mocks"
	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/protocol"
	"github.com/tunequiz/tunequiz/internal/services/grading"
	"github.com/tunequiz/tunequiz/internal/services/history"
	"github.com/tunequiz/tunequiz/internal/services/round"
	"github.com/tunequiz/tunequiz/internal/storage/memory"
	"github.com/tunequiz/tunequiz/internal/testutil"
	"github.com/tunequiz/tunequiz/internal/tracks"
)

// fakeEmitter records everything the session broadcasts or sends.
// Safe for concurrent use because round timers fire from a goroutine.
type fakeEmitter struct {
	mu         sync.Mutex
	broadcasts []protocol.Message
	direct     map[model.PlayerID][]protocol.Message
}

func newFakeEmitter() *fakeEmitter {
	return &fakeEmitter{direct: make(map[model.PlayerID][]protocol.Message)}
}

func (e *fakeEmitter) Broadcast(msg protocol.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.broadcasts = append(e.broadcasts, msg)
}

func (e *fakeEmitter) Send(id model.PlayerID, msg protocol.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.direct[id] = append(e.direct[id], msg)
}

func (e *fakeEmitter) countBroadcasts(t protocol.MessageType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	count := 0
	for _, msg := range e.broadcasts {
		if msg.Type == t {
			count++
		}
	}
	return count
}

func (e *fakeEmitter) lastBroadcast(t protocol.MessageType) (protocol.Message, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.broadcasts) - 1; i >= 0; i-- {
		if e.broadcasts[i].Type == t {
			return e.broadcasts[i], true
		}
	}
	return protocol.Message{}, false
}

func (e *fakeEmitter) sentTo(id model.PlayerID, t protocol.MessageType) (protocol.Message, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, msg := range e.direct[id] {
		if msg.Type == t {
			return msg, true
		}
	}
	return protocol.Message{}, false
}

// faultyRecorder refuses every write
type faultyRecorder struct{}

func (faultyRecorder) Record(context.Context, *model.GameRecord) error {
	return model.ErrWriteFailed
}

func (faultyRecorder) Get(context.Context, model.GameID) (*model.GameRecord, error) {
	return nil, model.ErrGameNotFound
}

func (faultyRecorder) List(context.Context) ([]*model.GameRecord, error) {
	return nil, nil
}

type OrchestratorTestSuite struct {
	suite.Suite

	clock   *mocks.MockClock
	emitter *fakeEmitter
	store   *memory.Storage
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC))
	s.emitter = newFakeEmitter()
	s.store = memory.New()
}

func (s *OrchestratorTestSuite) newSession(cfg Config, trackList ...model.Track) *Orchestrator {
	logger := testutil.NopLogger()
	library, err := tracks.New(trackList, logger)
	s.Require().NoError(err)

	return NewOrchestrator(
		"GAMES",
		cfg,
		library,
		grading.New(grading.DefaultConfig()),
		history.New(s.store, logger),
		audio.NewBroadcast(s.emitter.Broadcast, logger),
		s.emitter,
		s.clock,
		mocks.NewMockRandom(),
		logger,
	)
}

func twoTracks() []model.Track {
	return []model.Track{
		{Title: "Take On Me", Artist: "a-ha", AudioRef: "clips/take-on-me.ogg"},
		{Title: "Thriller", Artist: "Michael Jackson", AudioRef: "clips/thriller.ogg"},
	}
}

func (s *OrchestratorTestSuite) TestJoinSendsWelcomeAndSnapshot() {
	orch := s.newSession(DefaultConfig(), twoTracks()...)

	id, err := orch.HandleJoin("alice")
	s.Require().NoError(err)

	welcome, ok := s.emitter.sentTo(id, protocol.TypeWelcome)
	s.Require().True(ok)
	var payload protocol.WelcomePayload
	s.Require().NoError(welcome.DecodePayload(&payload))
	s.Equal(id, payload.PlayerID)
	s.Equal(model.SessionCode("GAMES"), payload.Session)

	_, ok = s.emitter.sentTo(id, protocol.TypeSnapshot)
	s.True(ok)
	s.Equal(1, s.emitter.countBroadcasts(protocol.TypePlayerJoined))
}

func (s *OrchestratorTestSuite) TestDuplicateNameRejected() {
	orch := s.newSession(DefaultConfig(), twoTracks()...)

	_, err := orch.HandleJoin("alice")
	s.Require().NoError(err)

	_, err = orch.HandleJoin("ALICE")
	s.ErrorIs(err, model.ErrDuplicateName)
}

func (s *OrchestratorTestSuite) TestStartOpensFirstRoundWithAudio() {
	orch := s.newSession(DefaultConfig(), twoTracks()...)
	s.Require().NoError(orch.Start())

	started, ok := s.emitter.lastBroadcast(protocol.TypeRoundStarted)
	s.Require().True(ok)
	var payload protocol.RoundStartedPayload
	s.Require().NoError(started.DecodePayload(&payload))
	s.Equal(1, payload.RoundNo)
	s.Equal(2, payload.TotalRounds)

	play, ok := s.emitter.lastBroadcast(protocol.TypeAudioPlay)
	s.Require().True(ok)
	var audioPayload protocol.AudioPlayPayload
	s.Require().NoError(play.DecodePayload(&audioPayload))
	s.Equal("clips/take-on-me.ogg", audioPayload.TrackRef)
}

func (s *OrchestratorTestSuite) TestFullGameFlow() {
	orch := s.newSession(Config{Shuffle: false, Policy: round.DefaultPolicy()}, twoTracks()...)

	alice, err := orch.HandleJoin("alice")
	s.Require().NoError(err)
	bob, err := orch.HandleJoin("bob")
	s.Require().NoError(err)

	s.Require().NoError(orch.Start())

	// Round 1: alice correct on both fields, bob misses the artist.
	// The round advances once both players complete both fields.
	s.Require().NoError(orch.HandleSubmit(alice, model.FieldTitle, "Take On Me"))
	s.Require().NoError(orch.HandleSubmit(alice, model.FieldArtist, "a ha"))
	s.Require().NoError(orch.HandleSubmit(bob, model.FieldTitle, "Take On Me"))
	s.Require().NoError(orch.HandleSubmit(bob, model.FieldArtist, "wham"))

	reveal, ok := s.emitter.lastBroadcast(protocol.TypeReveal)
	s.Require().True(ok)
	var revealPayload protocol.RevealPayload
	s.Require().NoError(reveal.DecodePayload(&revealPayload))
	s.Equal(1, revealPayload.RoundNo)
	s.Equal("Take On Me", revealPayload.CanonicalTitle)
	s.Equal("a-ha", revealPayload.CanonicalArtist)

	// First correct in arrival order gets the bonus
	s.Require().Len(revealPayload.Results, 2)
	s.Equal(alice, revealPayload.Results[0].PlayerID)
	s.True(revealPayload.Results[0].Correct)
	s.True(revealPayload.Results[0].FirstCorrect)
	s.Equal(2, revealPayload.Results[0].Points)
	s.False(revealPayload.Results[1].Correct)

	// Round 2 opened automatically
	started, ok := s.emitter.lastBroadcast(protocol.TypeRoundStarted)
	s.Require().True(ok)
	var startedPayload protocol.RoundStartedPayload
	s.Require().NoError(started.DecodePayload(&startedPayload))
	s.Equal(2, startedPayload.RoundNo)

	// Round 2: only bob answers in time
	s.Require().NoError(orch.HandleSubmit(bob, model.FieldTitle, "Thriller"))
	s.Require().NoError(orch.HandleSubmit(bob, model.FieldArtist, "Michael Jackson"))
	s.Require().NoError(orch.HandleSubmit(alice, model.FieldTitle, "Beat It"))
	s.Require().NoError(orch.HandleSubmit(alice, model.FieldArtist, "Michael Jackson"))

	// Track sequence exhausted: game over
	s.True(orch.Ended())

	ended, ok := s.emitter.lastBroadcast(protocol.TypeGameEnded)
	s.Require().True(ok)
	var endedPayload protocol.GameEndedPayload
	s.Require().NoError(ended.DecodePayload(&endedPayload))
	s.True(endedPayload.Recorded)

	scores := make(map[model.PlayerID]int)
	for _, fs := range endedPayload.FinalScores {
		scores[fs.PlayerID] = fs.Score
	}
	s.Equal(2, scores[alice])
	s.Equal(2, scores[bob])

	// The record landed in storage
	records, err := s.store.ListGameRecords(context.Background())
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Len(records[0].Rounds, 2)
	s.Equal(model.SessionCode("GAMES"), records[0].Session)
}

func (s *OrchestratorTestSuite) TestSubmitWithoutRound() {
	orch := s.newSession(DefaultConfig(), twoTracks()...)
	alice, err := orch.HandleJoin("alice")
	s.Require().NoError(err)

	err = orch.HandleSubmit(alice, model.FieldTitle, "anything")
	s.ErrorIs(err, model.ErrNoActiveRound)
}

func (s *OrchestratorTestSuite) TestSubmitFromUnregisteredPlayer() {
	orch := s.newSession(DefaultConfig(), twoTracks()...)
	s.Require().NoError(orch.Start())

	err := orch.HandleSubmit("nobody", model.FieldTitle, "anything")
	s.ErrorIs(err, model.ErrUnknownPlayer)
}

func (s *OrchestratorTestSuite) TestAdvanceBeforeStart() {
	orch := s.newSession(DefaultConfig(), twoTracks()...)
	s.ErrorIs(orch.Advance(), model.ErrNoActiveRound)
}

func (s *OrchestratorTestSuite) TestJoinAfterGameOver() {
	orch := s.newSession(Config{Shuffle: false, Policy: round.DefaultPolicy()},
		model.Track{Title: "Thriller", Artist: "Michael Jackson"})
	s.Require().NoError(orch.Start())
	s.Require().NoError(orch.Advance())
	s.Require().True(orch.Ended())

	_, err := orch.HandleJoin("latecomer")
	s.ErrorIs(err, model.ErrGameOver)
}

func (s *OrchestratorTestSuite) TestTimerExpiryAdvancesRound() {
	cfg := Config{RoundTimeLimit: 30 * time.Second, Shuffle: false, Policy: round.DefaultPolicy()}
	orch := s.newSession(cfg, twoTracks()...)

	alice, err := orch.HandleJoin("alice")
	s.Require().NoError(err)
	s.Require().NoError(orch.Start())

	s.Require().NoError(orch.HandleSubmit(alice, model.FieldTitle, "Take On Me"))

	s.clock.Advance(30 * time.Second)
	s.clock.FireTimers()

	s.Eventually(func() bool {
		return s.emitter.countBroadcasts(protocol.TypeReveal) == 1
	}, time.Second, 5*time.Millisecond)

	started, ok := s.emitter.lastBroadcast(protocol.TypeRoundStarted)
	s.Require().True(ok)
	var payload protocol.RoundStartedPayload
	s.Require().NoError(started.DecodePayload(&payload))
	s.Equal(2, payload.RoundNo)
}

func (s *OrchestratorTestSuite) TestStaleTimerDoesNotDoubleAdvance() {
	cfg := Config{RoundTimeLimit: 30 * time.Second, Shuffle: false, Policy: round.DefaultPolicy()}
	orch := s.newSession(cfg, model.Track{Title: "Thriller", Artist: "Michael Jackson"})
	s.Require().NoError(orch.Start())

	// The round advances by explicit action before the timer fires
	s.Require().NoError(orch.Advance())
	s.Equal(1, s.emitter.countBroadcasts(protocol.TypeReveal))
	s.True(orch.Ended())

	// The stale round 1 timer fires into a finished game and must do
	// nothing
	s.clock.FireTimers()
	time.Sleep(20 * time.Millisecond)
	s.Equal(1, s.emitter.countBroadcasts(protocol.TypeReveal))
	s.Equal(1, s.emitter.countBroadcasts(protocol.TypeGameEnded))
}

func (s *OrchestratorTestSuite) TestLateJoinSnapshot() {
	orch := s.newSession(Config{Shuffle: false, Policy: round.DefaultPolicy()}, twoTracks()...)

	_, err := orch.HandleJoin("alice")
	s.Require().NoError(err)
	s.Require().NoError(orch.Start())

	bob, err := orch.HandleJoin("bob")
	s.Require().NoError(err)

	msg, ok := s.emitter.sentTo(bob, protocol.TypeSnapshot)
	s.Require().True(ok)
	var snap protocol.SnapshotPayload
	s.Require().NoError(msg.DecodePayload(&snap))
	s.Equal(1, snap.RoundNo)
	s.Equal(2, snap.TotalRounds)
	s.Equal(model.RoundStateGuessing, snap.RoundState)
	s.Len(snap.Players, 2)
	s.Nil(snap.Reveal)
}

func (s *OrchestratorTestSuite) TestDisconnectRejoinKeepsScore() {
	orch := s.newSession(Config{Shuffle: false, Policy: round.DefaultPolicy()}, twoTracks()...)

	alice, err := orch.HandleJoin("alice")
	s.Require().NoError(err)
	s.Require().NoError(orch.Start())

	s.Require().NoError(orch.HandleSubmit(alice, model.FieldTitle, "Take On Me"))
	s.Require().NoError(orch.HandleSubmit(alice, model.FieldArtist, "a-ha"))

	s.Require().NoError(orch.HandleLeave(alice))
	s.Equal(1, s.emitter.countBroadcasts(protocol.TypePlayerLeft))

	s.Require().NoError(orch.HandleRejoin(alice))

	snap := orch.Snapshot()
	s.Require().Len(snap.Players, 1)
	s.Equal(2, snap.Players[0].Score)
	s.Equal(model.StatusConnected, snap.Players[0].Status)
}

func (s *OrchestratorTestSuite) TestDisconnectedPlayerDoesNotBlockRound() {
	orch := s.newSession(Config{Shuffle: false, Policy: round.DefaultPolicy()}, twoTracks()...)

	alice, err := orch.HandleJoin("alice")
	s.Require().NoError(err)
	bob, err := orch.HandleJoin("bob")
	s.Require().NoError(err)
	s.Require().NoError(orch.Start())

	s.Require().NoError(orch.HandleLeave(bob))

	// With bob gone, alice alone completing both fields advances the round
	s.Require().NoError(orch.HandleSubmit(alice, model.FieldTitle, "Take On Me"))
	s.Require().NoError(orch.HandleSubmit(alice, model.FieldArtist, "a-ha"))

	s.Equal(1, s.emitter.countBroadcasts(protocol.TypeReveal))
}

func (s *OrchestratorTestSuite) TestHistoryWriteFailureDoesNotLoseSession() {
	logger := testutil.NopLogger()
	library, err := tracks.New([]model.Track{{Title: "Thriller", Artist: "Michael Jackson"}}, logger)
	s.Require().NoError(err)

	orch := NewOrchestrator(
		"GAMES",
		Config{Shuffle: false, Policy: round.DefaultPolicy()},
		library,
		grading.New(grading.DefaultConfig()),
		faultyRecorder{},
		audio.Noop{},
		s.emitter,
		s.clock,
		mocks.NewMockRandom(),
		logger,
	)

	alice, err := orch.HandleJoin("alice")
	s.Require().NoError(err)
	s.Require().NoError(orch.Start())
	s.Require().NoError(orch.HandleSubmit(alice, model.FieldTitle, "Thriller"))
	s.Require().NoError(orch.HandleSubmit(alice, model.FieldArtist, "Michael Jackson"))

	s.True(orch.Ended())

	ended, ok := s.emitter.lastBroadcast(protocol.TypeGameEnded)
	s.Require().True(ok)
	var payload protocol.GameEndedPayload
	s.Require().NoError(ended.DecodePayload(&payload))
	s.False(payload.Recorded)

	// Final scores survive the failed write
	s.Require().Len(payload.FinalScores, 1)
	s.Equal(2, payload.FinalScores[0].Score)
}

func (s *OrchestratorTestSuite) TestUngradeableTrackIsSkipped() {
	// A track whose accepted answers are pure punctuation normalizes to
	// nothing and cannot be graded
	orch := s.newSession(Config{Shuffle: false, Policy: round.DefaultPolicy()},
		model.Track{Title: "???", Artist: "!!!"},
		model.Track{Title: "Thriller", Artist: "Michael Jackson"},
	)
	s.Require().NoError(orch.Start())

	s.Require().NoError(orch.Advance())

	// No reveal for the skipped round; round 2 opened instead
	s.Equal(0, s.emitter.countBroadcasts(protocol.TypeReveal))
	started, ok := s.emitter.lastBroadcast(protocol.TypeRoundStarted)
	s.Require().True(ok)
	var payload protocol.RoundStartedPayload
	s.Require().NoError(started.DecodePayload(&payload))
	s.Equal(2, payload.RoundNo)
	s.False(orch.Ended())
}

func (s *OrchestratorTestSuite) TestUngradeableTrackIsSkippedAfterSubmission() {
	// The skip must not depend on which fields happened to be guessed
	orch := s.newSession(Config{Shuffle: false, Policy: round.DefaultPolicy()},
		model.Track{Title: "???", Artist: "!!!"},
		model.Track{Title: "Thriller", Artist: "Michael Jackson"},
	)
	alice, err := orch.HandleJoin("alice")
	s.Require().NoError(err)
	s.Require().NoError(orch.Start())
	s.Require().NoError(orch.HandleSubmit(alice, model.FieldTitle, "no idea"))

	s.Require().NoError(orch.Advance())

	s.Equal(0, s.emitter.countBroadcasts(protocol.TypeReveal))
	started, ok := s.emitter.lastBroadcast(protocol.TypeRoundStarted)
	s.Require().True(ok)
	var payload protocol.RoundStartedPayload
	s.Require().NoError(started.DecodePayload(&payload))
	s.Equal(2, payload.RoundNo)
}

func (s *OrchestratorTestSuite) TestRepeatReplaysClip() {
	orch := s.newSession(Config{Shuffle: false, Policy: round.DefaultPolicy()}, twoTracks()...)
	s.Require().NoError(orch.Start())
	s.Equal(1, s.emitter.countBroadcasts(protocol.TypeAudioPlay))

	s.Require().NoError(orch.HandleRepeat())
	s.Equal(2, s.emitter.countBroadcasts(protocol.TypeAudioPlay))
}

func (s *OrchestratorTestSuite) TestRepeatWithoutRound() {
	orch := s.newSession(DefaultConfig(), twoTracks()...)
	s.ErrorIs(orch.HandleRepeat(), model.ErrNoActiveRound)
}

func (s *OrchestratorTestSuite) TestScoreUpdatesAreBroadcast() {
	orch := s.newSession(Config{Shuffle: false, Policy: round.DefaultPolicy()}, twoTracks()...)

	alice, err := orch.HandleJoin("alice")
	s.Require().NoError(err)
	s.Require().NoError(orch.Start())
	s.Require().NoError(orch.HandleSubmit(alice, model.FieldTitle, "Take On Me"))
	s.Require().NoError(orch.HandleSubmit(alice, model.FieldArtist, "a-ha"))

	update, ok := s.emitter.lastBroadcast(protocol.TypeScoreUpdate)
	s.Require().True(ok)
	var payload protocol.ScoreUpdatePayload
	s.Require().NoError(update.DecodePayload(&payload))
	s.Equal(alice, payload.PlayerID)
	s.Equal(2, payload.Score)
}
