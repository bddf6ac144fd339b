package postgres

import (
	"context"

	"tale-bot/internal/progress"
)

func (s *PostgresStore) RegisterUser(ctx context.Context, user progress.User) (bool, error) {
	if err := progress.ValidateUser(user.ID); err != nil {
		return false, err
	}
	registeredAt := user.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = s.now()
	}

	result, err := s.db.ExecContext(
		ctx,
		`INSERT INTO users (user_id, username, first_name, last_name, registered_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO NOTHING`,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		registeredAt,
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

// RecordRead counts one read. ON CONFLICT takes the row lock, so concurrent
// reads of the same story serialise on the row and each sees its own count.
func (s *PostgresStore) RecordRead(ctx context.Context, userID int64, storyID int) (progress.ReadResult, error) {
	ctx, span := s.tracer.Start(ctx, "progress.postgres.RecordRead")
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
		`INSERT INTO tale_progress (user_id, tale_id, read_count, last_read_at, completed)
		 VALUES ($1, $2, 1, $3, FALSE)
		 ON CONFLICT (user_id, tale_id) DO UPDATE SET
			read_count = tale_progress.read_count + 1,
			last_read_at = EXCLUDED.last_read_at
		 RETURNING read_count`,
		userID,
		storyID,
		s.now(),
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

func (s *PostgresStore) MarkCompleted(ctx context.Context, userID int64, storyID int) error {
	ctx, span := s.tracer.Start(ctx, "progress.postgres.MarkCompleted")
	defer span.End()

	if err := progress.ValidateUser(userID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tale_progress (user_id, tale_id, read_count, last_read_at, completed)
		 VALUES ($1, $2, 0, $3, TRUE)
		 ON CONFLICT (user_id, tale_id) DO UPDATE SET
			completed = TRUE,
			last_read_at = EXCLUDED.last_read_at`,
		userID,
		storyID,
		s.now(),
	)
	return err
}

func (s *PostgresStore) Summary(ctx context.Context, userID int64) (progress.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "progress.postgres.Summary")
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
			COUNT(*) FILTER (WHERE read_count > 0),
			COALESCE(SUM(read_count), 0),
			COUNT(*) FILTER (WHERE completed)
		 FROM tale_progress
		 WHERE user_id = $1`,
		userID,
	).Scan(&summary.StoriesRead, &summary.TotalReads, &summary.StoriesCompleted); err != nil {
		return progress.Summary{}, err
	}

	rows, err := tx.QueryContext(
		ctx,
		`SELECT tale_id, read_count, last_read_at, completed
		 FROM tale_progress
		 WHERE user_id = $1
		 ORDER BY last_read_at DESC, tale_id ASC
		 LIMIT $2`,
		userID,
		progress.RecentLimit,
	)
	if err != nil {
		return progress.Summary{}, err
	}
	defer rows.Close()

	summary.Recent = make([]progress.Record, 0, progress.RecentLimit)
	for rows.Next() {
		var record progress.Record
		if err := rows.Scan(&record.StoryID, &record.ReadCount, &record.LastReadAt, &record.Completed); err != nil {
			return progress.Summary{}, err
		}
		record.LastReadAt = record.LastReadAt.UTC()
		summary.Recent = append(summary.Recent, record)
	}
	if err := rows.Err(); err != nil {
		return progress.Summary{}, err
	}

	return summary, nil
}

func (s *PostgresStore) RecordAnswer(ctx context.Context, event progress.AnswerEvent) error {
	if err := progress.ValidateUser(event.UserID); err != nil {
		return err
	}
	answeredAt := event.AnsweredAt
	if answeredAt.IsZero() {
		answeredAt = s.now()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO test_results (user_id, tale_id, question_id, attempt_id, is_correct, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.UserID,
		event.StoryID,
		event.QuestionID,
		event.AttemptID,
		event.Correct,
		answeredAt,
	)
	return err
}

func (s *PostgresStore) Answers(ctx context.Context, userID int64, storyID int) ([]progress.AnswerEvent, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT question_id, attempt_id, is_correct, answered_at
		 FROM test_results
		 WHERE user_id = $1 AND tale_id = $2
		 ORDER BY id ASC`,
		userID,
		storyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []progress.AnswerEvent
	for rows.Next() {
		event := progress.AnswerEvent{UserID: userID, StoryID: storyID}
		if err := rows.Scan(&event.QuestionID, &event.AttemptID, &event.Correct, &event.AnsweredAt); err != nil {
			return nil, err
		}
		event.AnsweredAt = event.AnsweredAt.UTC()
		events = append(events, event)
	}
	return events, rows.Err()
}
