package model

import "time"

// GameID uniquely identifies one completed or in-progress game
type GameID string

// SessionCode is a human-readable identifier for joining game sessions
type SessionCode string

// RoundRecord is the durable summary of one completed round
type RoundRecord struct {
	Number          int            `json:"number"`
	TrackID         TrackID        `json:"track_id"`
	CanonicalTitle  string         `json:"canonical_title"`
	CanonicalArtist string         `json:"canonical_artist"`
	Results         []PlayerResult `json:"results"`
}

// FinalScore is one player's standing at game end
type FinalScore struct {
	PlayerID    PlayerID `json:"player_id"`
	DisplayName string   `json:"display_name"`
	Score       int      `json:"score"`
}

// GameRecord is the durable summary of one completed game.
// Written once at game end, never mutated after write.
type GameRecord struct {
	ID          GameID        `json:"id"`
	Session     SessionCode   `json:"session"`
	Rounds      []RoundRecord `json:"rounds"`
	FinalScores []FinalScore  `json:"final_scores"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}
