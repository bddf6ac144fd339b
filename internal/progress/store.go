package progress

import (
	"context"
	"errors"
	"time"
)

// RecentLimit caps Summary.Recent.
const RecentLimit = 5

var ErrInvalidUser = errors.New("invalid user id")

type User struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	RegisteredAt time.Time
}

// ReadResult reports the state of a progress record after a read was counted.
type ReadResult struct {
	IsFirstRead bool `json:"is_first_read"`
	ReadCount   int  `json:"read_count"`
}

// Record is the durable per user, per story progress row.
type Record struct {
	StoryID    int       `json:"story_id"`
	ReadCount  int       `json:"read_count"`
	// LastReadAt is the time of the last activity on the story: a read or a
	// completed quiz. Completing a quiz without reading also sets it.
	LastReadAt time.Time `json:"last_read_at"`
	Completed  bool      `json:"completed"`
}

// AnswerEvent is one submitted quiz answer. Events are append-only.
type AnswerEvent struct {
	UserID     int64
	StoryID    int
	QuestionID int
	AttemptID  string
	Correct    bool
	AnsweredAt time.Time
}

type Summary struct {
	StoriesRead      int      `json:"stories_read"`
	TotalReads       int      `json:"total_reads"`
	StoriesCompleted int      `json:"stories_completed"`
	Recent           []Record `json:"recent"`
}

// Store is the single reader and writer of durable progress state.
//
// RecordRead and MarkCompleted are atomic per (user, story) row so racing
// writers never lose an update.
type Store interface {
	// RegisterUser inserts the user if absent and reports whether a row was created.
	RegisterUser(ctx context.Context, user User) (bool, error)
	RecordRead(ctx context.Context, userID int64, storyID int) (ReadResult, error)
	MarkCompleted(ctx context.Context, userID int64, storyID int) error
	RecordAnswer(ctx context.Context, event AnswerEvent) error
	// Answers lists a user's answer events for one story, oldest first.
	Answers(ctx context.Context, userID int64, storyID int) ([]AnswerEvent, error)
	Summary(ctx context.Context, userID int64) (Summary, error)
	Close() error
}

// ValidateUser rejects identifiers no transport hands out.
func ValidateUser(userID int64) error {
	if userID <= 0 {
		return ErrInvalidUser
	}
	return nil
}
