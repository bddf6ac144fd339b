package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type SQLiteStore struct {
	db     *sql.DB
	now    func() time.Time
	tracer trace.Tracer
}

type Option func(*SQLiteStore)

// WithClock overrides the time source used for read and answer timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSQLiteStore opens (or creates) the database at path and bootstraps the
// schema. ":memory:" gives a private in-process database.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "user_progress.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// One connection serialises writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &SQLiteStore{
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
		tracer: otel.Tracer("tale-bot/internal/progress/sqlite"),
	}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func unixNanoUTC(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
