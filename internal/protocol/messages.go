package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/tunequiz/tunequiz/internal/model"
)

// MessageType identifies the type of a wire message
type MessageType string

// Client -> server messages
const (
	TypeJoin    MessageType = "join"
	TypeRejoin  MessageType = "rejoin"
	TypeLeave   MessageType = "leave"
	TypeSubmit  MessageType = "submit"
	TypeAdvance MessageType = "advance"
	TypeRepeat  MessageType = "repeat"
)

// Server -> client messages
const (
	TypeWelcome      MessageType = "welcome"
	TypeError        MessageType = "error"
	TypePlayerJoined MessageType = "player_joined"
	TypePlayerLeft   MessageType = "player_left"
	TypeRoundStarted MessageType = "round_started"
	TypeAudioPlay    MessageType = "audio_play"
	TypeAudioStop    MessageType = "audio_stop"
	TypeScoreUpdate  MessageType = "score_update"
	TypeReveal       MessageType = "reveal"
	TypeGameEnded    MessageType = "game_ended"
	TypeSnapshot     MessageType = "snapshot"
)

// Message is the JSON envelope exchanged over a connection
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New builds a message with a JSON-encoded payload
func New(t MessageType, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return Message{Type: t, Payload: data}, nil
}

// MustNew is New for payloads that cannot fail to marshal
func MustNew(t MessageType, payload any) Message {
	msg, err := New(t, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode serializes a message for the wire
func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// Decode parses a wire message envelope
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("decode message: missing type")
	}
	return msg, nil
}

// DecodePayload parses the payload into the given value
func (m Message) DecodePayload(v any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("message %s has no payload", m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", m.Type, err)
	}
	return nil
}

// Client -> server payloads

type JoinPayload struct {
	Name string `json:"name"`
}

type RejoinPayload struct {
	PlayerID model.PlayerID `json:"player_id"`
}

type SubmitPayload struct {
	Field model.GuessField `json:"field"`
	Text  string           `json:"text"`
}

// Server -> client payloads

type WelcomePayload struct {
	PlayerID model.PlayerID    `json:"player_id"`
	Session  model.SessionCode `json:"session"`
}

type PlayerJoinedPayload struct {
	PlayerID    model.PlayerID `json:"player_id"`
	DisplayName string         `json:"display_name"`
}

type PlayerLeftPayload struct {
	PlayerID    model.PlayerID `json:"player_id"`
	DisplayName string         `json:"display_name"`
}

type RoundStartedPayload struct {
	RoundNo     int `json:"round_no"`
	TotalRounds int `json:"total_rounds"`
}

type AudioPlayPayload struct {
	TrackRef string `json:"track_ref"`
}

type ScoreUpdatePayload struct {
	PlayerID model.PlayerID `json:"player_id"`
	Score    int            `json:"score"`
}

type RevealPayload struct {
	RoundNo         int                  `json:"round_no"`
	CanonicalTitle  string               `json:"canonical_title"`
	CanonicalArtist string               `json:"canonical_artist"`
	Results         []model.PlayerResult `json:"results"`
}

type GameEndedPayload struct {
	FinalScores []model.FinalScore `json:"final_scores"`
	// Recorded is false when the history write failed; scores shown are
	// still authoritative for this session
	Recorded bool `json:"recorded"`
}

// SnapshotPayload resynchronizes a late-joining client with the current
// round and standings
type SnapshotPayload struct {
	Session     model.SessionCode `json:"session"`
	RoundNo     int               `json:"round_no"`
	TotalRounds int               `json:"total_rounds"`
	RoundState  model.RoundState  `json:"round_state"`
	Players     []model.Player    `json:"players"`
	Reveal      *model.Reveal     `json:"reveal,omitempty"`
}
