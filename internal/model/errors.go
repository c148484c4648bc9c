package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrDuplicateName = errors.New("display name already in use")
	ErrUnknownPlayer = errors.New("unknown player")

	// Round errors
	ErrRoundNotOpen  = errors.New("round is not open for submissions")
	ErrInvalidField  = errors.New("invalid guess field")
	ErrRoundSealed   = errors.New("round is sealed")
	ErrNoActiveRound = errors.New("no round in progress")

	// Track errors
	ErrInvalidTrack    = errors.New("track has no accepted answers")
	ErrLibraryEmpty    = errors.New("track library is empty")
	ErrLibraryNotFound = errors.New("track library not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrGameOver        = errors.New("game is over")
	ErrGameNotFound    = errors.New("game record not found")

	// History errors
	ErrWriteFailed = errors.New("failed to write game record")
)
