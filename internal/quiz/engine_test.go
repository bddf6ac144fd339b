package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tale-bot/internal/catalog"
	"tale-bot/internal/progress"
)

type fakeContent struct {
	stories map[int]catalog.Story
	quizzes map[int]catalog.Quiz
}

func newFakeContent(quizzes ...catalog.Quiz) *fakeContent {
	c := &fakeContent{
		stories: make(map[int]catalog.Story),
		quizzes: make(map[int]catalog.Quiz),
	}
	for _, quiz := range quizzes {
		c.quizzes[quiz.StoryID] = quiz
		c.stories[quiz.StoryID] = catalog.Story{ID: quiz.StoryID}
	}
	return c
}

func (f *fakeContent) Story(id int) (catalog.Story, bool) {
	story, ok := f.stories[id]
	return story, ok
}

func (f *fakeContent) Quiz(storyID int) (catalog.Quiz, bool) {
	quiz, ok := f.quizzes[storyID]
	return quiz, ok
}

type completion struct {
	userID  int64
	storyID int
}

type fakeStore struct {
	mu sync.Mutex

	answers     []progress.AnswerEvent
	completions []completion
	reads       map[completion]int

	answerErr   error
	completeErr error

	registerCalls int
	summaryCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{reads: make(map[completion]int)}
}

func (f *fakeStore) RegisterUser(_ context.Context, _ progress.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	return f.registerCalls == 1, nil
}

func (f *fakeStore) RecordRead(_ context.Context, userID int64, storyID int) (progress.ReadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := completion{userID: userID, storyID: storyID}
	f.reads[key]++
	return progress.ReadResult{IsFirstRead: f.reads[key] == 1, ReadCount: f.reads[key]}, nil
}

func (f *fakeStore) MarkCompleted(_ context.Context, userID int64, storyID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completions = append(f.completions, completion{userID: userID, storyID: storyID})
	return nil
}

func (f *fakeStore) RecordAnswer(_ context.Context, event progress.AnswerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.answerErr != nil {
		return f.answerErr
	}
	f.answers = append(f.answers, event)
	return nil
}

func (f *fakeStore) Summary(_ context.Context, _ int64) (progress.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls++
	return progress.Summary{}, nil
}

func scenarioQuiz() catalog.Quiz {
	return catalog.Quiz{
		StoryID: 1,
		Questions: []catalog.Question{
			{ID: 10, Prompt: "Q1", Choices: []string{"a", "x"}, Correct: []string{"a"}, Explanation: "because a"},
			{ID: 20, Prompt: "Q2", Choices: []string{"wrong", "b", "c"}, Correct: []string{"b", "c"}},
		},
	}
}

// uniformQuiz has n questions whose correct choice is index 0.
func uniformQuiz(storyID, n int) catalog.Quiz {
	quiz := catalog.Quiz{StoryID: storyID}
	for i := 0; i < n; i++ {
		quiz.Questions = append(quiz.Questions, catalog.Question{
			ID:      i + 1,
			Prompt:  fmt.Sprintf("question %d", i+1),
			Choices: []string{"right", "wrong"},
			Correct: []string{"right"},
		})
	}
	return quiz
}

func newTestEngine(store *fakeStore, quizzes ...catalog.Quiz) (*Engine, *MemoryHolder) {
	holder := NewMemoryHolder()
	ids := 0
	engine := NewEngine(newFakeContent(quizzes...), store, holder,
		WithClock(func() time.Time { return time.Unix(1700000000, 0).UTC() }),
		WithAttemptIDs(func() string {
			ids++
			return fmt.Sprintf("attempt-%d", ids)
		}),
	)
	return engine, holder
}

func mustSubmit(t *testing.T, engine *Engine, userID int64, questionID, choice int) AnswerResult {
	t.Helper()

	result, err := engine.SubmitAnswer(context.Background(), userID, questionID, choice)
	if err != nil {
		t.Fatalf("SubmitAnswer(%d, %d, %d) failed: %v", userID, questionID, choice, err)
	}
	return result
}

func TestScenarioCorrectAfterMiss(t *testing.T) {
	store := newFakeStore()
	engine, holder := newTestEngine(store, scenarioQuiz())
	ctx := context.Background()

	start, err := engine.StartQuiz(ctx, 1, 1)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	if start.Status != StatusStarted || start.Prompt == nil || start.Prompt.QuestionID != 10 || start.Prompt.Number != 1 || start.Prompt.Total != 2 {
		t.Fatalf("unexpected start: %+v", start)
	}
	if start.AttemptID != "attempt-1" {
		t.Fatalf("AttemptID = %q, want %q", start.AttemptID, "attempt-1")
	}

	first := mustSubmit(t, engine, 1, 10, 0)
	if first.Status != StatusNextQuestion || first.Score != 1.0 || first.AfterMiss {
		t.Fatalf("unexpected first answer: %+v", first)
	}
	if first.Explanation != "because a" {
		t.Fatalf("Explanation = %q", first.Explanation)
	}
	if first.Next == nil || first.Next.QuestionID != 20 || first.Next.Number != 2 {
		t.Fatalf("expected next question 20, got %+v", first.Next)
	}

	wrong := mustSubmit(t, engine, 1, 20, 0)
	if wrong.Status != StatusIncorrect || wrong.Score != 1.0 {
		t.Fatalf("unexpected wrong answer: %+v", wrong)
	}
	if engine.State(1) != StateAwaitingAnswer {
		t.Fatalf("session must stay open after a wrong answer")
	}

	done := mustSubmit(t, engine, 1, 20, 2)
	if done.Status != StatusCompleted || !done.AfterMiss {
		t.Fatalf("unexpected final answer: %+v", done)
	}
	want := Result{Score: 1.5, Total: 2, Percent: 75, Passed: true}
	if done.Result == nil || *done.Result != want {
		t.Fatalf("Result = %+v, want %+v", done.Result, want)
	}

	if holder.Len() != 0 || engine.State(1) != StateNoSession {
		t.Fatalf("completed session must be removed")
	}
	if len(store.completions) != 1 || store.completions[0] != (completion{userID: 1, storyID: 1}) {
		t.Fatalf("unexpected completions: %+v", store.completions)
	}
	if len(store.answers) != 3 {
		t.Fatalf("expected 3 answer events, got %d", len(store.answers))
	}
	if store.answers[1].Correct || !store.answers[2].Correct || store.answers[2].AttemptID != "attempt-1" {
		t.Fatalf("unexpected answer events: %+v", store.answers)
	}
}

func TestAllFirstTryScoresHundred(t *testing.T) {
	for n := 1; n <= 8; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			engine, _ := newTestEngine(newFakeStore(), uniformQuiz(5, n))
			if _, err := engine.StartQuiz(context.Background(), 2, 5); err != nil {
				t.Fatalf("StartQuiz failed: %v", err)
			}

			var last AnswerResult
			for id := 1; id <= n; id++ {
				last = mustSubmit(t, engine, 2, id, 0)
			}
			if last.Status != StatusCompleted || last.Result.Percent != 100 || last.Result.Score != float64(n) {
				t.Fatalf("unexpected result: %+v", last.Result)
			}
		})
	}
}

func TestOneMissEachScoresFifty(t *testing.T) {
	for n := 1; n <= 8; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			engine, _ := newTestEngine(newFakeStore(), uniformQuiz(5, n))
			if _, err := engine.StartQuiz(context.Background(), 2, 5); err != nil {
				t.Fatalf("StartQuiz failed: %v", err)
			}

			var last AnswerResult
			for id := 1; id <= n; id++ {
				if got := mustSubmit(t, engine, 2, id, 1); got.Status != StatusIncorrect {
					t.Fatalf("expected incorrect, got %+v", got)
				}
				last = mustSubmit(t, engine, 2, id, 0)
			}
			if last.Status != StatusCompleted || last.Result.Percent != 50 || last.Result.Passed {
				t.Fatalf("unexpected result: %+v", last.Result)
			}
		})
	}
}

func TestRepeatedMissesStillScoreHalf(t *testing.T) {
	engine, _ := newTestEngine(newFakeStore(), uniformQuiz(5, 2))
	if _, err := engine.StartQuiz(context.Background(), 2, 5); err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}

	mustSubmit(t, engine, 2, 1, 1)
	mustSubmit(t, engine, 2, 1, 1)
	if got := mustSubmit(t, engine, 2, 1, 0); got.Score != 0.5 {
		t.Fatalf("Score = %v, want 0.5", got.Score)
	}
	// The next question starts with no recorded mistake.
	if got := mustSubmit(t, engine, 2, 2, 0); got.Score != 1.5 || got.AfterMiss {
		t.Fatalf("unexpected second answer: %+v", got)
	}
}

func TestPassThreshold(t *testing.T) {
	tests := []struct {
		score   float64
		total   int
		percent int
		passed  bool
	}{
		{score: 7, total: 10, percent: 70, passed: true},
		{score: 6.5, total: 10, percent: 65, passed: false},
		{score: 2, total: 3, percent: 67, passed: false},
		{score: 2.5, total: 3, percent: 83, passed: true},
		{score: 0, total: 4, percent: 0, passed: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v/%d", tt.score, tt.total), func(t *testing.T) {
			got := finalResult(tt.score, tt.total)
			if got.Percent != tt.percent || got.Passed != tt.passed {
				t.Fatalf("finalResult(%v, %d) = %+v, want percent %d passed %v", tt.score, tt.total, got, tt.percent, tt.passed)
			}
		})
	}
}

func TestStartQuizWithoutQuiz(t *testing.T) {
	empty := catalog.Quiz{StoryID: 2}
	engine, holder := newTestEngine(newFakeStore(), empty)

	for _, storyID := range []int{2, 3} {
		result, err := engine.StartQuiz(context.Background(), 1, storyID)
		if err != nil {
			t.Fatalf("StartQuiz(%d) failed: %v", storyID, err)
		}
		if result.Status != StatusNoQuiz || result.Prompt != nil {
			t.Fatalf("StartQuiz(%d) = %+v, want no_quiz", storyID, result)
		}
	}
	if holder.Len() != 0 {
		t.Fatalf("no session may be created, holder has %d", holder.Len())
	}
}

func TestStaleAnswerLeavesSessionUnchanged(t *testing.T) {
	store := newFakeStore()
	engine, holder := newTestEngine(store, scenarioQuiz())
	if _, err := engine.StartQuiz(context.Background(), 1, 1); err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	mustSubmit(t, engine, 1, 10, 0)

	// Duplicate delivery of the first answer.
	stale := mustSubmit(t, engine, 1, 10, 0)
	if stale.Status != StatusStaleAnswer || stale.Score != 1.0 {
		t.Fatalf("unexpected stale result: %+v", stale)
	}
	session, _ := holder.Get(1)
	if session.Index != 1 || session.Score != 1.0 || len(session.Mistakes) != 0 {
		t.Fatalf("session changed by stale answer: %+v", session)
	}
	if len(store.answers) != 1 {
		t.Fatalf("stale answers must not be recorded, got %d events", len(store.answers))
	}
}

func TestInvalidChoice(t *testing.T) {
	store := newFakeStore()
	engine, holder := newTestEngine(store, scenarioQuiz())
	if _, err := engine.StartQuiz(context.Background(), 1, 1); err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}

	for _, choice := range []int{-1, 2, 99} {
		got := mustSubmit(t, engine, 1, 10, choice)
		if got.Status != StatusInvalidChoice {
			t.Fatalf("choice %d: status = %q, want %q", choice, got.Status, StatusInvalidChoice)
		}
	}
	session, _ := holder.Get(1)
	if session.Index != 0 || len(session.Mistakes) != 0 || len(store.answers) != 0 {
		t.Fatalf("invalid choices must not change state: %+v", session)
	}
}

func TestSubmitWithoutSession(t *testing.T) {
	engine, _ := newTestEngine(newFakeStore(), scenarioQuiz())

	got := mustSubmit(t, engine, 1, 10, 0)
	if got.Status != StatusNoSession {
		t.Fatalf("status = %q, want %q", got.Status, StatusNoSession)
	}
}

func TestRecordAnswerFailureDoesNotBlockQuiz(t *testing.T) {
	store := newFakeStore()
	store.answerErr = errors.New("disk full")
	engine, _ := newTestEngine(store, scenarioQuiz())
	if _, err := engine.StartQuiz(context.Background(), 1, 1); err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}

	if got := mustSubmit(t, engine, 1, 10, 0); got.Status != StatusNextQuestion {
		t.Fatalf("status = %q, want %q", got.Status, StatusNextQuestion)
	}
	if got := mustSubmit(t, engine, 1, 20, 1); got.Status != StatusCompleted {
		t.Fatalf("status = %q, want %q", got.Status, StatusCompleted)
	}
}

func TestMarkCompletedFailureAllowsRetry(t *testing.T) {
	store := newFakeStore()
	store.completeErr = errors.New("db locked")
	engine, holder := newTestEngine(store, uniformQuiz(5, 1))
	if _, err := engine.StartQuiz(context.Background(), 1, 5); err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}

	if _, err := engine.SubmitAnswer(context.Background(), 1, 1, 0); err == nil {
		t.Fatalf("expected completion error")
	}
	session, ok := holder.Get(1)
	if !ok || session.Index != 0 || session.Score != 0 {
		t.Fatalf("session must be untouched after a failed completion: %+v (ok=%v)", session, ok)
	}

	store.mu.Lock()
	store.completeErr = nil
	store.mu.Unlock()

	got := mustSubmit(t, engine, 1, 1, 0)
	if got.Status != StatusCompleted || got.Result.Percent != 100 {
		t.Fatalf("retry result = %+v", got)
	}
}

func TestStartQuizReplacesSession(t *testing.T) {
	engine, holder := newTestEngine(newFakeStore(), scenarioQuiz(), uniformQuiz(5, 3))
	ctx := context.Background()

	if _, err := engine.StartQuiz(ctx, 1, 1); err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	mustSubmit(t, engine, 1, 10, 0)

	restart, err := engine.StartQuiz(ctx, 1, 5)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	if restart.AttemptID != "attempt-2" {
		t.Fatalf("AttemptID = %q, want a fresh attempt", restart.AttemptID)
	}
	session, _ := holder.Get(1)
	if session.Quiz.StoryID != 5 || session.Index != 0 || session.Score != 0 {
		t.Fatalf("expected a fresh session for story 5, got %+v", session)
	}
	if holder.Len() != 1 {
		t.Fatalf("holder must keep one session per user, has %d", holder.Len())
	}

	// Answers for the replaced quiz are stale now.
	if got := mustSubmit(t, engine, 1, 20, 2); got.Status != StatusStaleAnswer {
		t.Fatalf("status = %q, want %q", got.Status, StatusStaleAnswer)
	}
}

func TestAbandon(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(store, scenarioQuiz())
	if _, err := engine.StartQuiz(context.Background(), 1, 1); err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	mustSubmit(t, engine, 1, 10, 1)

	if !engine.Abandon(1) {
		t.Fatalf("Abandon should report a dropped session")
	}
	if engine.Abandon(1) {
		t.Fatalf("second Abandon should find nothing")
	}
	if engine.State(1) != StateNoSession {
		t.Fatalf("state = %v, want no_session", engine.State(1))
	}
	if len(store.answers) != 1 || len(store.completions) != 0 {
		t.Fatalf("abandon must keep answers and skip completion: %+v", store)
	}
}

func TestSessionsBoundedByUsers(t *testing.T) {
	quizzes := []catalog.Quiz{uniformQuiz(1, 2), uniformQuiz(2, 2), uniformQuiz(3, 2)}
	engine, holder := newTestEngine(newFakeStore(), quizzes...)
	ctx := context.Background()

	const users = 20
	for userID := int64(1); userID <= users; userID++ {
		for round := 0; round < 5; round++ {
			storyID := round%len(quizzes) + 1
			if _, err := engine.StartQuiz(ctx, userID, storyID); err != nil {
				t.Fatalf("StartQuiz failed: %v", err)
			}
		}
	}
	if holder.Len() != users || engine.ActiveSessions() != users {
		t.Fatalf("holder has %d sessions, want %d", holder.Len(), users)
	}
}

func TestConcurrentDuplicateSubmissions(t *testing.T) {
	engine, _ := newTestEngine(newFakeStore(), uniformQuiz(5, 3))
	if _, err := engine.StartQuiz(context.Background(), 1, 5); err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}

	const duplicates = 10
	results := make(chan AnswerResult, duplicates)
	var wg sync.WaitGroup
	for i := 0; i < duplicates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := engine.SubmitAnswer(context.Background(), 1, 1, 0)
			if err != nil {
				t.Errorf("SubmitAnswer failed: %v", err)
				return
			}
			results <- result
		}()
	}
	wg.Wait()
	close(results)

	advanced := 0
	for result := range results {
		switch result.Status {
		case StatusNextQuestion:
			advanced++
		case StatusStaleAnswer:
		default:
			t.Fatalf("unexpected status %q", result.Status)
		}
	}
	if advanced != 1 {
		t.Fatalf("expected exactly one advancing submission, got %d", advanced)
	}
}

func TestRecordStoryRead(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(store, scenarioQuiz())
	ctx := context.Background()

	first, err := engine.RecordStoryRead(ctx, 1, 1)
	if err != nil {
		t.Fatalf("RecordStoryRead failed: %v", err)
	}
	second, err := engine.RecordStoryRead(ctx, 1, 1)
	if err != nil {
		t.Fatalf("RecordStoryRead failed: %v", err)
	}
	if !first.IsFirstRead || first.ReadCount != 1 || second.IsFirstRead || second.ReadCount != 2 {
		t.Fatalf("unexpected reads: %+v then %+v", first, second)
	}

	if _, err := engine.RecordStoryRead(ctx, 1, 404); !errors.Is(err, catalog.ErrStoryNotFound) {
		t.Fatalf("unknown story error = %v, want ErrStoryNotFound", err)
	}
}

func TestEngineWithoutStore(t *testing.T) {
	engine := NewEngine(newFakeContent(uniformQuiz(5, 1)), nil, nil)
	ctx := context.Background()

	if _, err := engine.StartQuiz(ctx, 1, 5); err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, 1, 1, 0); !errors.Is(err, ErrNoStore) {
		t.Fatalf("SubmitAnswer error = %v, want ErrNoStore", err)
	}
	if _, err := engine.ProgressSummary(ctx, 1); !errors.Is(err, ErrNoStore) {
		t.Fatalf("ProgressSummary error = %v, want ErrNoStore", err)
	}
}
