package protocol

import (
	"errors"

	"github.com/tunequiz/tunequiz/internal/model"
)

// ErrorCode is a stable machine-readable identifier sent to clients
type ErrorCode string

const (
	CodeDuplicateName  ErrorCode = "duplicate_name"
	CodeUnknownPlayer  ErrorCode = "unknown_player"
	CodeRoundNotOpen   ErrorCode = "round_not_open"
	CodeInvalidField   ErrorCode = "invalid_field"
	CodeRoundSealed    ErrorCode = "round_sealed"
	CodeNoActiveRound  ErrorCode = "no_active_round"
	CodeGameOver       ErrorCode = "game_over"
	CodeSessionUnknown ErrorCode = "session_not_found"
	CodeBadMessage     ErrorCode = "bad_message"
	CodeInternal       ErrorCode = "internal_error"
)

type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorFor maps a service error onto the wire error vocabulary
func ErrorFor(err error) ErrorPayload {
	code := CodeInternal
	switch {
	case errors.Is(err, model.ErrDuplicateName):
		code = CodeDuplicateName
	case errors.Is(err, model.ErrUnknownPlayer):
		code = CodeUnknownPlayer
	case errors.Is(err, model.ErrRoundNotOpen):
		code = CodeRoundNotOpen
	case errors.Is(err, model.ErrInvalidField):
		code = CodeInvalidField
	case errors.Is(err, model.ErrRoundSealed):
		code = CodeRoundSealed
	case errors.Is(err, model.ErrNoActiveRound):
		code = CodeNoActiveRound
	case errors.Is(err, model.ErrGameOver):
		code = CodeGameOver
	case errors.Is(err, model.ErrSessionNotFound):
		code = CodeSessionUnknown
	}
	return ErrorPayload{Code: code, Message: err.Error()}
}

// ErrorMessage wraps an error into a ready-to-send message
func ErrorMessage(err error) Message {
	return MustNew(TypeError, ErrorFor(err))
}
