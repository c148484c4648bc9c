package model

import "time"

// RoundState represents the current phase of a round
type RoundState string

const (
	RoundStateSelecting RoundState = "selecting" // Track chosen, intake not yet open
	RoundStateGuessing  RoundState = "guessing"  // Accepting submissions
	RoundStateClosed    RoundState = "closed"    // Intake closed, awaiting grading
	RoundStateRevealed  RoundState = "revealed"  // Graded and sealed
)

// GuessField distinguishes the two answer fields of a round
type GuessField string

const (
	FieldTitle  GuessField = "title"
	FieldArtist GuessField = "artist"
)

// ValidField reports whether f is one of the two submittable fields
func ValidField(f GuessField) bool {
	return f == FieldTitle || f == FieldArtist
}

// GradeResult is the outcome of grading one submitted field
type GradeResult string

const (
	GradeExact GradeResult = "exact"
	GradeClose GradeResult = "close"
	GradeMiss  GradeResult = "miss"
)

// Guess holds one player's submissions for the current round.
// Either field may be unset; a resubmission overwrites the prior value
// for that field until the round closes.
type Guess struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`

	HasTitle  bool `json:"has_title"`
	HasArtist bool `json:"has_artist"`

	// LastSeq is the arrival position of this player's most recent
	// submission, used to break first-correct ties deterministically
	LastSeq int `json:"last_seq"`
}

// Complete reports whether both fields have been submitted
func (g *Guess) Complete() bool {
	return g.HasTitle && g.HasArtist
}

// PlayerResult is the graded outcome for one player in one round
type PlayerResult struct {
	PlayerID     PlayerID    `json:"player_id"`
	Guess        Guess       `json:"guess"`
	TitleGrade   GradeResult `json:"title_grade"`
	ArtistGrade  GradeResult `json:"artist_grade"`
	Correct      bool        `json:"correct"`
	FirstCorrect bool        `json:"first_correct"`
	Points       int         `json:"points"`
}

// Reveal is the sealed outcome of a round: canonical answers plus
// per-player results, computed exactly once
type Reveal struct {
	CanonicalTitle  string         `json:"canonical_title"`
	CanonicalArtist string         `json:"canonical_artist"`
	Results         []PlayerResult `json:"results"`
}

// Round is one song-guessing cycle from track selection to reveal
type Round struct {
	Number   int        `json:"number"`
	Track    *Track     `json:"track"`
	State    RoundState `json:"state"`
	OpenedAt time.Time  `json:"opened_at"`
	ClosedAt time.Time  `json:"closed_at"`

	Guesses map[PlayerID]*Guess `json:"guesses"`
	Reveal  *Reveal             `json:"reveal,omitempty"`
}
