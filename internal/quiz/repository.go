package quiz

import (
	"context"
	"errors"

	"tale-bot/internal/catalog"
	"tale-bot/internal/progress"
)

var ErrNoStore = errors.New("progress store is not configured")

// Content is the read-only catalog view the engine needs.
type Content interface {
	Story(id int) (catalog.Story, bool)
	Quiz(storyID int) (catalog.Quiz, bool)
}

// ProgressStore is the durable side of the engine. progress.Store satisfies it.
type ProgressStore interface {
	RegisterUser(ctx context.Context, user progress.User) (bool, error)
	RecordRead(ctx context.Context, userID int64, storyID int) (progress.ReadResult, error)
	MarkCompleted(ctx context.Context, userID int64, storyID int) error
	RecordAnswer(ctx context.Context, event progress.AnswerEvent) error
	Summary(ctx context.Context, userID int64) (progress.Summary, error)
}
