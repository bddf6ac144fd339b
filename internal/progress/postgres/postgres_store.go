package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// PostgresStore keeps progress in a shared PostgreSQL database, for
// deployments that run more than one bot or API process.
type PostgresStore struct {
	db     *sql.DB
	now    func() time.Time
	tracer trace.Tracer
}

type Option func(*PostgresStore)

// WithClock overrides the time source used for read and answer timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *PostgresStore) {
		if now != nil {
			s.now = now
		}
	}
}

// Open connects using a lib/pq DSN, verifies the connection and bootstraps
// the schema.
func Open(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}

	store := &PostgresStore{
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
		tracer: otel.Tracer("tale-bot/internal/progress/postgres"),
	}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			registered_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tale_progress (
			user_id BIGINT NOT NULL,
			tale_id INTEGER NOT NULL,
			read_count INTEGER NOT NULL DEFAULT 0,
			last_read_at TIMESTAMPTZ NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (user_id, tale_id)
		)`,
		`CREATE TABLE IF NOT EXISTS test_results (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			tale_id INTEGER NOT NULL,
			question_id INTEGER NOT NULL,
			attempt_id TEXT NOT NULL DEFAULT '',
			is_correct BOOLEAN NOT NULL,
			answered_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tale_progress_user_last_read ON tale_progress (user_id, last_read_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_test_results_user_tale ON test_results (user_id, tale_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
