package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL creates the run-history table if it doesn't already exist.
// Kept inline rather than in a separate file since it's small and has
// no migrations to track yet.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS job_runs (
	id          UUID PRIMARY KEY,
	kind        TEXT NOT NULL,
	params      JSONB NOT NULL,
	status      TEXT NOT NULL,
	result      JSONB,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);
`

// HistoryStore persists job run history in Postgres. Entirely optional:
// the service runs history-less if DATABASE_URL is unset.
type HistoryStore struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool and verifies it with a ping.
func Connect(connStr string) (*HistoryStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	log.Println("[service] connected to PostgreSQL for job run history")
	return &HistoryStore{pool: pool}, nil
}

func (s *HistoryStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the job_runs table if necessary.
func (s *HistoryStore) InitSchema() error {
	_, err := s.pool.Exec(context.Background(), schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema migration: %w", err)
	}
	log.Println("[service] job run history schema initialized")
	return nil
}

// RecordStart inserts a new job_runs row in "running" status.
func (s *HistoryStore) RecordStart(ctx context.Context, id, kind string, params []byte, startedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO job_runs (id, kind, params, status, started_at) VALUES ($1, $2, $3, 'running', $4)`,
		id, kind, params, startedAt)
	return err
}

// RecordFinish updates a job_runs row with its outcome.
func (s *HistoryStore) RecordFinish(ctx context.Context, id, status string, result []byte, finishedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE job_runs SET status = $2, result = $3, finished_at = $4 WHERE id = $1`,
		id, status, result, finishedAt)
	return err
}
