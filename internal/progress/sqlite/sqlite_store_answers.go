package sqlite

import (
	"context"

	"tale-bot/internal/progress"
)

// RecordAnswer appends one row to test_results. Rows are never updated.
func (s *SQLiteStore) RecordAnswer(ctx context.Context, event progress.AnswerEvent) error {
	if err := progress.ValidateUser(event.UserID); err != nil {
		return err
	}
	answeredAt := event.AnsweredAt
	if answeredAt.IsZero() {
		answeredAt = s.now()
	}

	correct := 0
	if event.Correct {
		correct = 1
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO test_results (user_id, tale_id, question_id, attempt_id, is_correct, answered_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.UserID,
		event.StoryID,
		event.QuestionID,
		event.AttemptID,
		correct,
		answeredAt.UnixNano(),
	)
	return err
}

// Answers lists a user's answer history for one story in insertion order.
func (s *SQLiteStore) Answers(ctx context.Context, userID int64, storyID int) ([]progress.AnswerEvent, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT question_id, attempt_id, is_correct, answered_at_unix
		 FROM test_results
		 WHERE user_id = ? AND tale_id = ?
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
		var (
			event      progress.AnswerEvent
			correct    int
			answeredNs int64
		)
		if err := rows.Scan(&event.QuestionID, &event.AttemptID, &correct, &answeredNs); err != nil {
			return nil, err
		}
		event.UserID = userID
		event.StoryID = storyID
		event.Correct = correct != 0
		event.AnsweredAt = unixNanoUTC(answeredNs)
		events = append(events, event)
	}
	return events, rows.Err()
}
