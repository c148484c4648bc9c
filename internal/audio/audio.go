package audio

import (
	"log/slog"

	"github.com/tunequiz/tunequiz/internal/protocol"
)

// Player directs playback of the current clip on connected clients
type Player interface {
	Play(ref string) error
	Stop() error
}

// Broadcast implements Player by emitting playback control messages to
// every client in the session
type Broadcast struct {
	emit   func(protocol.Message)
	logger *slog.Logger
}

var _ Player = (*Broadcast)(nil)

func NewBroadcast(emit func(protocol.Message), logger *slog.Logger) *Broadcast {
	return &Broadcast{
		emit:   emit,
		logger: logger.With(slog.String("component", "audio")),
	}
}

func (b *Broadcast) Play(ref string) error {
	b.logger.Debug("Starting playback", slog.String("ref", ref))
	b.emit(protocol.MustNew(protocol.TypeAudioPlay, protocol.AudioPlayPayload{TrackRef: ref}))
	return nil
}

func (b *Broadcast) Stop() error {
	b.logger.Debug("Stopping playback")
	b.emit(protocol.MustNew(protocol.TypeAudioStop, nil))
	return nil
}

// Noop is a Player that does nothing, for sessions without audio
type Noop struct{}

var _ Player = Noop{}

func (Noop) Play(string) error { return nil }
func (Noop) Stop() error       { return nil }
