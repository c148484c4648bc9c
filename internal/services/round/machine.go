package round

import (
	"log/slog"
	"sort"
	"time"

	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/services/grading"
)

// Policy holds the scoring rules applied at reveal
type Policy struct {
	// CloseCountsAsCorrect treats close matches as fully correct
	CloseCountsAsCorrect bool
	// BasePoints is awarded for a correct round result
	BasePoints int
	// BonusPoints is added for the first correct submission in arrival
	// order, when FirstCorrectBonus is enabled
	BonusPoints       int
	FirstCorrectBonus bool
}

// DefaultPolicy returns the default scoring rules
func DefaultPolicy() Policy {
	return Policy{
		CloseCountsAsCorrect: true,
		BasePoints:           1,
		BonusPoints:          1,
		FirstCorrectBonus:    true,
	}
}

// Machine owns the lifecycle of a single song round:
// Selecting -> Guessing -> Closed -> Revealed, terminal per round.
// The orchestrator creates a fresh instance for each round and is the
// only caller of state transitions.
type Machine struct {
	round  model.Round
	seq    int
	logger *slog.Logger
}

// NewMachine creates a round in the Selecting state for the given track
func NewMachine(number int, track *model.Track, logger *slog.Logger) *Machine {
	return &Machine{
		round: model.Round{
			Number:  number,
			Track:   track,
			State:   model.RoundStateSelecting,
			Guesses: make(map[model.PlayerID]*model.Guess),
		},
		logger: logger,
	}
}

// State returns the round's current phase
func (m *Machine) State() model.RoundState {
	return m.round.State
}

// Number returns the round's sequence number
func (m *Machine) Number() int {
	return m.round.Number
}

// Track returns the round's track
func (m *Machine) Track() *model.Track {
	return m.round.Track
}

// Snapshot returns a copy of the round for read-only consumers
func (m *Machine) Snapshot() model.Round {
	snap := m.round
	snap.Guesses = make(map[model.PlayerID]*model.Guess, len(m.round.Guesses))
	for id, g := range m.round.Guesses {
		copied := *g
		snap.Guesses[id] = &copied
	}
	if m.round.Reveal != nil {
		reveal := *m.round.Reveal
		reveal.Results = append([]model.PlayerResult(nil), m.round.Reveal.Results...)
		snap.Reveal = &reveal
	}
	return snap
}

// Open transitions Selecting -> Guessing and starts submission intake
func (m *Machine) Open(now time.Time) error {
	if m.round.State != model.RoundStateSelecting {
		return model.ErrRoundSealed
	}
	m.round.State = model.RoundStateGuessing
	m.round.OpenedAt = now
	return nil
}

// Submit records a guess for one field, overwriting any prior value for
// that field from the same player. Only valid while Guessing.
func (m *Machine) Submit(playerID model.PlayerID, field model.GuessField, text string) error {
	if m.round.State != model.RoundStateGuessing {
		return model.ErrRoundNotOpen
	}
	if !model.ValidField(field) {
		return model.ErrInvalidField
	}

	guess, ok := m.round.Guesses[playerID]
	if !ok {
		guess = &model.Guess{}
		m.round.Guesses[playerID] = guess
	}

	switch field {
	case model.FieldTitle:
		guess.Title = text
		guess.HasTitle = true
	case model.FieldArtist:
		guess.Artist = text
		guess.HasArtist = true
	}

	m.seq++
	guess.LastSeq = m.seq
	return nil
}

// AllSubmitted reports whether every given player has submitted both fields
func (m *Machine) AllSubmitted(players []model.Player) bool {
	if len(players) == 0 {
		return false
	}
	for _, p := range players {
		guess, ok := m.round.Guesses[p.ID]
		if !ok || !guess.Complete() {
			return false
		}
	}
	return true
}

// Close transitions Guessing -> Closed; no further submissions accepted
func (m *Machine) Close(now time.Time) error {
	if m.round.State != model.RoundStateGuessing {
		return model.ErrRoundNotOpen
	}
	m.round.State = model.RoundStateClosed
	m.round.ClosedAt = now
	return nil
}

// Reveal grades every submitted field and seals the round.
// The reveal is computed exactly once and is deterministic given the
// guess mapping; repeat calls return the sealed result.
func (m *Machine) Reveal(grader grading.ServiceInterface, policy Policy) (*model.Reveal, error) {
	if m.round.State == model.RoundStateRevealed {
		return m.round.Reveal, nil
	}
	if m.round.State != model.RoundStateClosed {
		return nil, model.ErrRoundNotOpen
	}

	track := m.round.Track
	if !gradeable(grader, track.AcceptedTitles()) || !gradeable(grader, track.AcceptedArtists()) {
		return nil, model.ErrInvalidTrack
	}

	results, err := m.gradeAll(grader, policy, track)
	if err != nil {
		return nil, err
	}

	m.round.Reveal = &model.Reveal{
		CanonicalTitle:  track.Title,
		CanonicalArtist: track.Artist,
		Results:         results,
	}
	m.round.State = model.RoundStateRevealed

	m.logger.Info("round revealed",
		slog.Int("round", m.round.Number),
		slog.String("track_id", string(track.ID)),
		slog.Int("submissions", len(m.round.Guesses)),
	)

	return m.round.Reveal, nil
}

// gradeable reports whether at least one accepted answer survives
// normalization. A field with no gradeable answers makes the whole
// round ungradeable, whether or not anyone submitted it.
func gradeable(grader grading.ServiceInterface, accepted []string) bool {
	for _, answer := range accepted {
		if grader.Normalize(answer) != "" {
			return true
		}
	}
	return false
}

func (m *Machine) gradeAll(grader grading.ServiceInterface, policy Policy, track *model.Track) ([]model.PlayerResult, error) {
	// Arrival order: players sorted by their latest submission sequence
	ids := make([]model.PlayerID, 0, len(m.round.Guesses))
	for id := range m.round.Guesses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return m.round.Guesses[ids[i]].LastSeq < m.round.Guesses[ids[j]].LastSeq
	})

	acceptable := func(grade model.GradeResult) bool {
		if grade == model.GradeExact {
			return true
		}
		return grade == model.GradeClose && policy.CloseCountsAsCorrect
	}

	results := make([]model.PlayerResult, 0, len(ids))
	firstAwarded := false
	for _, id := range ids {
		guess := m.round.Guesses[id]

		titleGrade := model.GradeMiss
		if guess.HasTitle {
			var err error
			titleGrade, err = grader.Grade(guess.Title, track.AcceptedTitles())
			if err != nil {
				return nil, err
			}
		}

		artistGrade := model.GradeMiss
		if guess.HasArtist {
			var err error
			artistGrade, err = grader.Grade(guess.Artist, track.AcceptedArtists())
			if err != nil {
				return nil, err
			}
		}

		result := model.PlayerResult{
			PlayerID:    id,
			Guess:       *guess,
			TitleGrade:  titleGrade,
			ArtistGrade: artistGrade,
			Correct:     acceptable(titleGrade) && acceptable(artistGrade),
		}

		if result.Correct {
			result.Points = policy.BasePoints
			if policy.FirstCorrectBonus && !firstAwarded {
				result.FirstCorrect = true
				result.Points += policy.BonusPoints
				firstAwarded = true
			}
		}

		results = append(results, result)
	}

	return results, nil
}
