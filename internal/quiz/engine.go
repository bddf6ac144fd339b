package quiz

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tale-bot/internal/catalog"
	"tale-bot/internal/progress"
)

const answerWriteTimeout = 3 * time.Second

// Engine runs quiz sessions against the catalog and records progress.
type Engine struct {
	content  Content
	store    ProgressStore
	sessions Holder
	locks    userLocks

	now       func() time.Time
	attemptID func() string
	tracer    trace.Tracer
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithAttemptIDs replaces the UUID generator used for attempt ids.
func WithAttemptIDs(next func() string) Option {
	return func(e *Engine) {
		if next != nil {
			e.attemptID = next
		}
	}
}

// NewEngine wires the engine. A nil holder gets a fresh MemoryHolder.
func NewEngine(content Content, store ProgressStore, sessions Holder, opts ...Option) *Engine {
	if sessions == nil {
		sessions = NewMemoryHolder()
	}
	e := &Engine{
		content:   content,
		store:     store,
		sessions:  sessions,
		now:       func() time.Time { return time.Now().UTC() },
		attemptID: func() string { return uuid.NewString() },
		tracer:    otel.Tracer("tale-bot/internal/quiz"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State reports whether the user has a quiz in progress.
func (e *Engine) State(userID int64) State {
	if _, ok := e.sessions.Get(userID); ok {
		return StateAwaitingAnswer
	}
	return StateNoSession
}

// Current returns the question the user is expected to answer.
func (e *Engine) Current(userID int64) (*Prompt, bool) {
	unlock := e.locks.lock(userID)
	defer unlock()

	session, ok := e.sessions.Get(userID)
	if !ok {
		return nil, false
	}
	return session.prompt(), true
}

// StartQuiz opens a session at the first question of the story's quiz,
// replacing any session the user already had.
func (e *Engine) StartQuiz(ctx context.Context, userID int64, storyID int) (StartResult, error) {
	_, span := e.tracer.Start(ctx, "quiz.StartQuiz", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int("story.id", storyID),
	))
	defer span.End()

	quiz, ok := e.content.Quiz(storyID)
	if !ok || len(quiz.Questions) == 0 {
		span.SetAttributes(attribute.String("quiz.status", StatusNoQuiz))
		return StartResult{Status: StatusNoQuiz, StoryID: storyID}, nil
	}

	unlock := e.locks.lock(userID)
	defer unlock()

	session := newSession(userID, quiz, e.attemptID(), e.now())
	e.sessions.Put(userID, session)

	span.SetAttributes(attribute.String("quiz.status", StatusStarted))
	return StartResult{
		Status:    StatusStarted,
		StoryID:   storyID,
		AttemptID: session.AttemptID,
		Prompt:    session.prompt(),
	}, nil
}

// SubmitAnswer scores one choice for the user's current question.
//
// A questionID that is not the current question yields StatusStaleAnswer and
// changes nothing. A wrong answer keeps the session on the same question.
// A right answer earns 1 point on the first try and 0.5 after a miss, then
// advances; after the last question the story is marked completed and the
// session is removed. If marking completion fails the error is returned and
// the session stays on the last question so the answer can be resubmitted.
func (e *Engine) SubmitAnswer(ctx context.Context, userID int64, questionID, choiceIndex int) (AnswerResult, error) {
	ctx, span := e.tracer.Start(ctx, "quiz.SubmitAnswer", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int("question.id", questionID),
		attribute.Int("choice.index", choiceIndex),
	))
	defer span.End()

	unlock := e.locks.lock(userID)
	defer unlock()

	session, ok := e.sessions.Get(userID)
	if !ok {
		span.SetAttributes(attribute.String("quiz.status", StatusNoSession))
		return AnswerResult{Status: StatusNoSession, QuestionID: questionID}, nil
	}

	storyID := session.Quiz.StoryID
	question := session.current()
	if question.ID != questionID {
		span.SetAttributes(attribute.String("quiz.status", StatusStaleAnswer))
		return AnswerResult{
			Status:     StatusStaleAnswer,
			StoryID:    storyID,
			QuestionID: questionID,
			Score:      session.Score,
		}, nil
	}
	if choiceIndex < 0 || choiceIndex >= len(question.Choices) {
		span.SetAttributes(attribute.String("quiz.status", StatusInvalidChoice))
		return AnswerResult{
			Status:     StatusInvalidChoice,
			StoryID:    storyID,
			QuestionID: questionID,
			Score:      session.Score,
		}, nil
	}

	correct := MatchAnswer(question.Choices[choiceIndex], question.Correct)
	e.recordAnswer(ctx, progress.AnswerEvent{
		UserID:     userID,
		StoryID:    storyID,
		QuestionID: question.ID,
		AttemptID:  session.AttemptID,
		Correct:    correct,
		AnsweredAt: e.now(),
	})

	result := AnswerResult{
		StoryID:     storyID,
		QuestionID:  question.ID,
		Explanation: question.Explanation,
	}

	if !correct {
		session.Mistakes[session.Index] = struct{}{}
		e.sessions.Put(userID, session)

		result.Status = StatusIncorrect
		result.Score = session.Score
		span.SetAttributes(attribute.String("quiz.status", result.Status))
		return result, nil
	}

	result.AfterMiss = session.missed(session.Index)
	points := firstTryPoints
	if result.AfterMiss {
		points = afterMissPoints
	}
	score := session.Score + points
	nextIndex := session.Index + 1
	total := len(session.Quiz.Questions)

	if nextIndex < total {
		session.Score = score
		session.Index = nextIndex
		e.sessions.Put(userID, session)

		result.Status = StatusNextQuestion
		result.Score = score
		result.Next = session.prompt()
		span.SetAttributes(attribute.String("quiz.status", result.Status))
		return result, nil
	}

	if err := e.requireStore(); err != nil {
		return AnswerResult{}, err
	}
	if err := e.store.MarkCompleted(ctx, userID, storyID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mark completed")
		return AnswerResult{}, fmt.Errorf("mark story %d completed: %w", storyID, err)
	}
	e.sessions.Remove(userID)

	result.Status = StatusCompleted
	result.Score = score
	result.Result = finalResult(score, total)
	span.SetAttributes(
		attribute.String("quiz.status", result.Status),
		attribute.Int("quiz.percent", result.Result.Percent),
	)
	return result, nil
}

// Abandon drops the user's session without scoring it. Answer events already
// written stay in the store.
func (e *Engine) Abandon(userID int64) bool {
	unlock := e.locks.lock(userID)
	defer unlock()

	if _, ok := e.sessions.Get(userID); !ok {
		return false
	}
	e.sessions.Remove(userID)
	return true
}

// RecordStoryRead counts a read of a known story.
func (e *Engine) RecordStoryRead(ctx context.Context, userID int64, storyID int) (progress.ReadResult, error) {
	if _, ok := e.content.Story(storyID); !ok {
		return progress.ReadResult{}, catalog.ErrStoryNotFound
	}
	if err := e.requireStore(); err != nil {
		return progress.ReadResult{}, err
	}
	return e.store.RecordRead(ctx, userID, storyID)
}

func (e *Engine) ProgressSummary(ctx context.Context, userID int64) (progress.Summary, error) {
	if err := e.requireStore(); err != nil {
		return progress.Summary{}, err
	}
	return e.store.Summary(ctx, userID)
}

// RegisterUser records the user on first contact and reports whether the
// user is new.
func (e *Engine) RegisterUser(ctx context.Context, user progress.User) (bool, error) {
	if err := e.requireStore(); err != nil {
		return false, err
	}
	if user.RegisteredAt.IsZero() {
		user.RegisteredAt = e.now()
	}
	return e.store.RegisterUser(ctx, user)
}

// ActiveSessions reports how many users currently hold a session.
func (e *Engine) ActiveSessions() int {
	return e.sessions.Len()
}

// recordAnswer is best effort: a failed audit write is logged and the quiz
// continues. It outlives a cancelled request but not answerWriteTimeout.
func (e *Engine) recordAnswer(ctx context.Context, event progress.AnswerEvent) {
	if e.store == nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), answerWriteTimeout)
	defer cancel()

	if err := e.store.RecordAnswer(writeCtx, event); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		log.Printf("quiz: record answer user=%d story=%d question=%d: %v", event.UserID, event.StoryID, event.QuestionID, err)
	}
}

func (e *Engine) requireStore() error {
	if e.store == nil {
		return ErrNoStore
	}
	return nil
}

func finalResult(score float64, total int) *Result {
	percent := int(math.Round(100 * score / float64(total)))
	return &Result{
		Score:   score,
		Total:   total,
		Percent: percent,
		Passed:  percent >= PassPercent,
	}
}
