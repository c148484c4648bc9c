package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface.
// Game records are stored as JSONB rows in an append-only table.
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and ensures the schema exists
func New(ctx context.Context, dsn string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Storage{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool creates a Postgres storage with an existing pool (for testing)
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close releases the connection pool
func (s *Storage) Close() {
	s.pool.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_records (
			id           TEXT PRIMARY KEY,
			session_code TEXT NOT NULL,
			record       JSONB NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate game_records: %w", err)
	}
	return nil
}

func (s *Storage) SaveGameRecord(ctx context.Context, record *model.GameRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal game record: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO game_records (id, session_code, record, completed_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		string(record.ID), string(record.Session), data, record.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert game record: %w", err)
	}
	return nil
}

func (s *Storage) GetGameRecord(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM game_records WHERE id = $1`,
		string(id),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("select game record: %w", err)
	}

	var record model.GameRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal game record: %w", err)
	}
	return &record, nil
}

func (s *Storage) ListGameRecords(ctx context.Context) ([]*model.GameRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT record FROM game_records ORDER BY completed_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list game records: %w", err)
	}
	defer rows.Close()

	var records []*model.GameRecord
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan game record: %w", err)
		}
		var record model.GameRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("unmarshal game record: %w", err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
