package storage

import (
	"context"

	"github.com/tunequiz/tunequiz/internal/model"
)

// Storage is the append-only sink for completed game records.
// Records are written once at game end and never mutated.
type Storage interface {
	SaveGameRecord(ctx context.Context, record *model.GameRecord) error
	GetGameRecord(ctx context.Context, id model.GameID) (*model.GameRecord, error)
	ListGameRecords(ctx context.Context) ([]*model.GameRecord, error)
}
