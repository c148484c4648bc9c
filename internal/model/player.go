package model

import "time"

// PlayerID uniquely identifies a player within one game session
type PlayerID string

// ConnectionStatus tracks whether a player's connection is live
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// Player represents a game participant.
// Score persists for the lifetime of one game; disconnecting marks the
// player rather than deleting them so the score survives a rejoin.
type Player struct {
	ID          PlayerID         `json:"id"`
	DisplayName string           `json:"display_name"`
	Score       int              `json:"score"`
	Status      ConnectionStatus `json:"status"`
	JoinedAt    time.Time        `json:"joined_at"`
}

// Connected reports whether the player's connection is live
func (p *Player) Connected() bool {
	return p.Status == StatusConnected
}
