package sqlite

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	// No FK constraints: progress rows may reference users that never sent /start.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			registered_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tale_progress (
			user_id INTEGER NOT NULL,
			tale_id INTEGER NOT NULL,
			read_count INTEGER NOT NULL DEFAULT 0,
			last_read_at_unix INTEGER NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, tale_id)
		);`,
		`CREATE TABLE IF NOT EXISTS test_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			tale_id INTEGER NOT NULL,
			question_id INTEGER NOT NULL,
			attempt_id TEXT NOT NULL DEFAULT '',
			is_correct INTEGER NOT NULL,
			answered_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tale_progress_user_last_read ON tale_progress(user_id, last_read_at_unix DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_test_results_user_tale ON test_results(user_id, tale_id);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
