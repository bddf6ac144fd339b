package httpapi

import (
	"context"

	"tale-bot/internal/catalog"
	"tale-bot/internal/progress"
	"tale-bot/internal/quiz"
)

// Engine is the quiz surface exposed over HTTP.
type Engine interface {
	StartQuiz(ctx context.Context, userID int64, storyID int) (quiz.StartResult, error)
	SubmitAnswer(ctx context.Context, userID int64, questionID, choiceIndex int) (quiz.AnswerResult, error)
	Current(userID int64) (*quiz.Prompt, bool)
	Abandon(userID int64) bool
	RecordStoryRead(ctx context.Context, userID int64, storyID int) (progress.ReadResult, error)
	ProgressSummary(ctx context.Context, userID int64) (progress.Summary, error)
}

type Content interface {
	Stories() []catalog.Story
	Story(id int) (catalog.Story, bool)
	HasQuiz(storyID int) bool
	AudioPath(storyID int) (string, bool)
}

// AnswerLister reads the answer audit trail. progress.Store satisfies it.
type AnswerLister interface {
	Answers(ctx context.Context, userID int64, storyID int) ([]progress.AnswerEvent, error)
}

type API struct {
	engine  Engine
	content Content
	answers AnswerLister
}

// NewAPI wires the handlers. answers may be nil, which disables the audit
// trail endpoint.
func NewAPI(engine Engine, content Content, answers AnswerLister) *API {
	return &API{
		engine:  engine,
		content: content,
		answers: answers,
	}
}
