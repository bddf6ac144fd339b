// Package storetest holds behaviour checks shared by every progress.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tale-bot/internal/progress"
)

// Factory opens a fresh, empty store whose timestamps come from now.
type Factory func(t *testing.T, now func() time.Time) progress.Store

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Unix(1700000000, 0).UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Run executes the shared store checks as subtests.
func Run(t *testing.T, newStore Factory) {
	t.Run("RecordReadCountsReads", func(t *testing.T) { testRecordRead(t, newStore) })
	t.Run("MarkCompletedIsIdempotent", func(t *testing.T) { testMarkCompleted(t, newStore) })
	t.Run("SummaryAggregates", func(t *testing.T) { testSummary(t, newStore) })
	t.Run("SummaryRecentIsCapped", func(t *testing.T) { testSummaryRecentLimit(t, newStore) })
	t.Run("RegisterUserOnce", func(t *testing.T) { testRegisterUser(t, newStore) })
	t.Run("RecordAnswerAppends", func(t *testing.T) { testRecordAnswer(t, newStore) })
	t.Run("ConcurrentReadsDoNotLoseUpdates", func(t *testing.T) { testConcurrentReads(t, newStore) })
	t.Run("RejectsInvalidUser", func(t *testing.T) { testInvalidUser(t, newStore) })
}

func testRecordRead(t *testing.T, newStore Factory) {
	clock := NewClock()
	store := newStore(t, clock.Now)
	ctx := context.Background()

	first, err := store.RecordRead(ctx, 42, 1)
	if err != nil {
		t.Fatalf("RecordRead failed: %v", err)
	}
	if !first.IsFirstRead || first.ReadCount != 1 {
		t.Fatalf("first read = %+v, want first=true count=1", first)
	}

	clock.Advance(time.Minute)
	second, err := store.RecordRead(ctx, 42, 1)
	if err != nil {
		t.Fatalf("RecordRead failed: %v", err)
	}
	if second.IsFirstRead || second.ReadCount != 2 {
		t.Fatalf("second read = %+v, want first=false count=2", second)
	}

	other, err := store.RecordRead(ctx, 43, 1)
	if err != nil {
		t.Fatalf("RecordRead failed: %v", err)
	}
	if !other.IsFirstRead || other.ReadCount != 1 {
		t.Fatalf("other user read = %+v, want an independent counter", other)
	}

	summary, err := store.Summary(ctx, 42)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if len(summary.Recent) != 1 || !summary.Recent[0].LastReadAt.Equal(clock.Now()) {
		t.Fatalf("expected refreshed timestamp %v, got %+v", clock.Now(), summary.Recent)
	}
}

func testMarkCompleted(t *testing.T, newStore Factory) {
	clock := NewClock()
	store := newStore(t, clock.Now)
	ctx := context.Background()

	if err := store.MarkCompleted(ctx, 7, 3); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	clock.Advance(time.Minute)
	if err := store.MarkCompleted(ctx, 7, 3); err != nil {
		t.Fatalf("second MarkCompleted failed: %v", err)
	}

	summary, err := store.Summary(ctx, 7)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.StoriesCompleted != 1 {
		t.Fatalf("StoriesCompleted = %d, want 1", summary.StoriesCompleted)
	}
	if summary.StoriesRead != 0 || summary.TotalReads != 0 {
		t.Fatalf("completion must not count as a read: %+v", summary)
	}
	if len(summary.Recent) != 1 || !summary.Recent[0].Completed || summary.Recent[0].ReadCount != 0 {
		t.Fatalf("unexpected record: %+v", summary.Recent)
	}
	if !summary.Recent[0].LastReadAt.Equal(clock.Now()) {
		t.Fatalf("LastReadAt = %v, want last completion at %v", summary.Recent[0].LastReadAt, clock.Now())
	}

	// A later read keeps the completed flag and counts as the first read.
	read, err := store.RecordRead(ctx, 7, 3)
	if err != nil {
		t.Fatalf("RecordRead failed: %v", err)
	}
	if !read.IsFirstRead || read.ReadCount != 1 {
		t.Fatalf("read after completion = %+v", read)
	}
	summary, err = store.Summary(ctx, 7)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !summary.Recent[0].Completed {
		t.Fatalf("completed flag was reset by a read")
	}
}

func testSummary(t *testing.T, newStore Factory) {
	clock := NewClock()
	store := newStore(t, clock.Now)
	ctx := context.Background()

	empty, err := store.Summary(ctx, 9)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if empty.StoriesRead != 0 || empty.TotalReads != 0 || empty.StoriesCompleted != 0 || len(empty.Recent) != 0 {
		t.Fatalf("expected empty summary, got %+v", empty)
	}

	mustRead(t, store, 9, 1)
	clock.Advance(time.Second)
	mustRead(t, store, 9, 2)
	clock.Advance(time.Second)
	mustRead(t, store, 9, 1)
	clock.Advance(time.Second)
	if err := store.MarkCompleted(ctx, 9, 2); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	mustRead(t, store, 10, 5)

	summary, err := store.Summary(ctx, 9)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.StoriesRead != 2 || summary.TotalReads != 3 || summary.StoriesCompleted != 1 {
		t.Fatalf("unexpected counters: %+v", summary)
	}
	if len(summary.Recent) != 2 {
		t.Fatalf("expected 2 recent records, got %+v", summary.Recent)
	}
	if summary.Recent[0].StoryID != 2 || summary.Recent[1].StoryID != 1 {
		t.Fatalf("recent not ordered most-recent-first: %+v", summary.Recent)
	}
	if summary.Recent[1].ReadCount != 2 {
		t.Fatalf("story 1 ReadCount = %d, want 2", summary.Recent[1].ReadCount)
	}
}

func testSummaryRecentLimit(t *testing.T, newStore Factory) {
	clock := NewClock()
	store := newStore(t, clock.Now)

	for storyID := 1; storyID <= progress.RecentLimit+2; storyID++ {
		mustRead(t, store, 11, storyID)
		clock.Advance(time.Second)
	}

	summary, err := store.Summary(context.Background(), 11)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.StoriesRead != progress.RecentLimit+2 {
		t.Fatalf("StoriesRead = %d, want %d", summary.StoriesRead, progress.RecentLimit+2)
	}
	if len(summary.Recent) != progress.RecentLimit {
		t.Fatalf("len(Recent) = %d, want %d", len(summary.Recent), progress.RecentLimit)
	}
	if summary.Recent[0].StoryID != progress.RecentLimit+2 {
		t.Fatalf("most recent story = %d, want %d", summary.Recent[0].StoryID, progress.RecentLimit+2)
	}
}

func testRegisterUser(t *testing.T, newStore Factory) {
	clock := NewClock()
	store := newStore(t, clock.Now)
	ctx := context.Background()

	user := progress.User{ID: 5, Username: "reader", FirstName: "Анна"}
	created, err := store.RegisterUser(ctx, user)
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if !created {
		t.Fatalf("expected first registration to create the user")
	}

	user.Username = "renamed"
	created, err = store.RegisterUser(ctx, user)
	if err != nil {
		t.Fatalf("second RegisterUser failed: %v", err)
	}
	if created {
		t.Fatalf("expected second registration to be ignored")
	}
}

func testRecordAnswer(t *testing.T, newStore Factory) {
	clock := NewClock()
	store := newStore(t, clock.Now)
	ctx := context.Background()

	events := []progress.AnswerEvent{
		{UserID: 3, StoryID: 1, QuestionID: 1, AttemptID: "a1", Correct: false},
		{UserID: 3, StoryID: 1, QuestionID: 1, AttemptID: "a1", Correct: true},
		{UserID: 3, StoryID: 2, QuestionID: 1, AttemptID: "a2", Correct: true},
	}
	for _, event := range events {
		if err := store.RecordAnswer(ctx, event); err != nil {
			t.Fatalf("RecordAnswer failed: %v", err)
		}
		clock.Advance(time.Second)
	}

	got, err := store.Answers(ctx, 3, 1)
	if err != nil {
		t.Fatalf("Answers failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events for story 1, got %+v", got)
	}
	if got[0].Correct || !got[1].Correct || got[1].AttemptID != "a1" {
		t.Fatalf("events not in insertion order: %+v", got)
	}
	if !got[0].AnsweredAt.Before(got[1].AnsweredAt) {
		t.Fatalf("expected increasing timestamps: %+v", got)
	}

	summary, err := store.Summary(ctx, 3)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.TotalReads != 0 || summary.StoriesCompleted != 0 {
		t.Fatalf("answers must not touch progress records: %+v", summary)
	}
}

func testConcurrentReads(t *testing.T, newStore Factory) {
	store := newStore(t, time.Now)
	ctx := context.Background()

	const readers = 16
	var (
		wg     sync.WaitGroup
		errsMu sync.Mutex
		errs   []error
		firsts int
	)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := store.RecordRead(ctx, 21, 1)
			errsMu.Lock()
			defer errsMu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if result.IsFirstRead {
				firsts++
			}
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("concurrent RecordRead failed: %v", errs[0])
	}
	if firsts != 1 {
		t.Fatalf("expected exactly one first read, got %d", firsts)
	}
	summary, err := store.Summary(ctx, 21)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.TotalReads != readers {
		t.Fatalf("TotalReads = %d, want %d", summary.TotalReads, readers)
	}
}

func testInvalidUser(t *testing.T, newStore Factory) {
	store := newStore(t, time.Now)
	ctx := context.Background()

	if _, err := store.RecordRead(ctx, 0, 1); !errors.Is(err, progress.ErrInvalidUser) {
		t.Fatalf("RecordRead(0) error = %v, want ErrInvalidUser", err)
	}
	if err := store.MarkCompleted(ctx, -1, 1); !errors.Is(err, progress.ErrInvalidUser) {
		t.Fatalf("MarkCompleted(-1) error = %v, want ErrInvalidUser", err)
	}
	if _, err := store.RegisterUser(ctx, progress.User{}); !errors.Is(err, progress.ErrInvalidUser) {
		t.Fatalf("RegisterUser(0) error = %v, want ErrInvalidUser", err)
	}
}

func mustRead(t *testing.T, store progress.Store, userID int64, storyID int) progress.ReadResult {
	t.Helper()

	result, err := store.RecordRead(context.Background(), userID, storyID)
	if err != nil {
		t.Fatalf("RecordRead(%d, %d) failed: %v", userID, storyID, err)
	}
	return result
}
