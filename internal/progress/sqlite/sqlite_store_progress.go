package sqlite

import (
	"context"

	"tale-bot/internal/progress"
)

func (s *SQLiteStore) RegisterUser(ctx context.Context, user progress.User) (bool, error) {
	if err := progress.ValidateUser(user.ID); err != nil {
		return false, err
	}
	registeredAt := user.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = s.now()
	}

	result, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO users (user_id, username, first_name, last_name, registered_at_unix)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		registeredAt.UnixNano(),
	)
	if err != nil {
		return false, err
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return inserted > 0, nil
}

// RecordRead counts one read of a story.
//
// The upsert and the returned count come from a single statement inside one
// transaction, so two racing reads of the same (user, story) row produce
// counts n+1 and n+2 rather than both observing n+1.
func (s *SQLiteStore) RecordRead(ctx context.Context, userID int64, storyID int) (progress.ReadResult, error) {
	ctx, span := s.tracer.Start(ctx, "progress.sqlite.RecordRead")
	defer span.End()

	if err := progress.ValidateUser(userID); err != nil {
		return progress.ReadResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return progress.ReadResult{}, err
	}
	defer tx.Rollback()

	var readCount int
	if err := tx.QueryRowContext(
		ctx,
		`INSERT INTO tale_progress (user_id, tale_id, read_count, last_read_at_unix, completed)
		 VALUES (?, ?, 1, ?, 0)
		 ON CONFLICT (user_id, tale_id) DO UPDATE SET
			read_count = tale_progress.read_count + 1,
			last_read_at_unix = excluded.last_read_at_unix
		 RETURNING read_count`,
		userID,
		storyID,
		s.now().UnixNano(),
	).Scan(&readCount); err != nil {
		return progress.ReadResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return progress.ReadResult{}, err
	}

	return progress.ReadResult{
		IsFirstRead: readCount == 1,
		ReadCount:   readCount,
	}, nil
}

// MarkCompleted flips the completed flag for a story. Calling it again is a
// no-op apart from refreshing the activity timestamp; a missing row is
// created with zero reads.
func (s *SQLiteStore) MarkCompleted(ctx context.Context, userID int64, storyID int) error {
	ctx, span := s.tracer.Start(ctx, "progress.sqlite.MarkCompleted")
	defer span.End()

	if err := progress.ValidateUser(userID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tale_progress (user_id, tale_id, read_count, last_read_at_unix, completed)
		 VALUES (?, ?, 0, ?, 1)
		 ON CONFLICT (user_id, tale_id) DO UPDATE SET
			completed = 1,
			last_read_at_unix = excluded.last_read_at_unix`,
		userID,
		storyID,
		s.now().UnixNano(),
	)
	return err
}

// Summary aggregates a user's progress. Both queries share one read
// transaction so the counters and the recent list describe the same state.
func (s *SQLiteStore) Summary(ctx context.Context, userID int64) (progress.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "progress.sqlite.Summary")
	defer span.End()

	if err := progress.ValidateUser(userID); err != nil {
		return progress.Summary{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return progress.Summary{}, err
	}
	defer tx.Rollback()

	var summary progress.Summary
	if err := tx.QueryRowContext(
		ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN read_count > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(read_count), 0),
			COALESCE(SUM(completed), 0)
		 FROM tale_progress
		 WHERE user_id = ?`,
		userID,
	).Scan(&summary.StoriesRead, &summary.TotalReads, &summary.StoriesCompleted); err != nil {
		return progress.Summary{}, err
	}

	rows, err := tx.QueryContext(
		ctx,
		`SELECT tale_id, read_count, last_read_at_unix, completed
		 FROM tale_progress
		 WHERE user_id = ?
		 ORDER BY last_read_at_unix DESC, tale_id ASC
		 LIMIT ?`,
		userID,
		progress.RecentLimit,
	)
	if err != nil {
		return progress.Summary{}, err
	}
	defer rows.Close()

	summary.Recent = make([]progress.Record, 0, progress.RecentLimit)
	for rows.Next() {
		var (
			record     progress.Record
			lastReadNs int64
			completed  int
		)
		if err := rows.Scan(&record.StoryID, &record.ReadCount, &lastReadNs, &completed); err != nil {
			return progress.Summary{}, err
		}
		record.LastReadAt = unixNanoUTC(lastReadNs)
		record.Completed = completed != 0
		summary.Recent = append(summary.Recent, record)
	}
	if err := rows.Err(); err != nil {
		return progress.Summary{}, err
	}

	return summary, nil
}
