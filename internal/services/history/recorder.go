package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/storage"
)

// Recorder appends completed game records to durable storage.
// A write failure is reported to the caller but must never block or roll
// back gameplay; the orchestrator logs it and carries on.
type Recorder struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new history recorder
func New(store storage.Storage, logger *slog.Logger) *Recorder {
	return &Recorder{
		storage: store,
		logger:  logger,
	}
}

// Record persists one completed game. Failures are wrapped as
// ErrWriteFailed so callers can match on the taxonomy.
func (r *Recorder) Record(ctx context.Context, record *model.GameRecord) error {
	if err := r.storage.SaveGameRecord(ctx, record); err != nil {
		r.logger.Error("game record write failed",
			slog.String("game_id", string(record.ID)),
			slog.String("session", string(record.Session)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %w", model.ErrWriteFailed, err)
	}

	r.logger.Info("game record written",
		slog.String("game_id", string(record.ID)),
		slog.String("session", string(record.Session)),
		slog.Int("rounds", len(record.Rounds)),
	)
	return nil
}

// Get retrieves a previously recorded game
func (r *Recorder) Get(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	return r.storage.GetGameRecord(ctx, id)
}

// List returns all recorded games in completion order
func (r *Recorder) List(ctx context.Context) ([]*model.GameRecord, error) {
	return r.storage.ListGameRecords(ctx)
}

// Interface for dependency injection
type RecorderInterface interface {
	Record(ctx context.Context, record *model.GameRecord) error
	Get(ctx context.Context, id model.GameID) (*model.GameRecord, error)
	List(ctx context.Context) ([]*model.GameRecord, error)
}

var _ RecorderInterface = (*Recorder)(nil)
