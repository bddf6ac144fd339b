package quiz

import (
	"sync"
	"time"

	"tale-bot/internal/catalog"
)

// State is the engine's view of one user.
type State int

const (
	StateNoSession State = iota
	StateAwaitingAnswer
)

func (s State) String() string {
	switch s {
	case StateAwaitingAnswer:
		return "awaiting_answer"
	default:
		return "no_session"
	}
}

// Session is one user's attempt at one quiz. Index always points at an
// existing question while the session is held; the engine removes the
// session in the same step that moves Index past the last question.
type Session struct {
	UserID    int64
	AttemptID string
	Quiz      catalog.Quiz
	Index     int
	Score     float64
	// Mistakes holds indices of questions answered wrong at least once.
	Mistakes  map[int]struct{}
	StartedAt time.Time
}

func newSession(userID int64, quiz catalog.Quiz, attemptID string, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		AttemptID: attemptID,
		Quiz:      quiz,
		Mistakes:  make(map[int]struct{}),
		StartedAt: now,
	}
}

func (s *Session) current() catalog.Question {
	return s.Quiz.Questions[s.Index]
}

func (s *Session) missed(index int) bool {
	_, ok := s.Mistakes[index]
	return ok
}

func (s *Session) prompt() *Prompt {
	question := s.current()
	choices := make([]string, len(question.Choices))
	copy(choices, question.Choices)
	return &Prompt{
		StoryID:    s.Quiz.StoryID,
		QuestionID: question.ID,
		Number:     s.Index + 1,
		Total:      len(s.Quiz.Questions),
		Text:       question.Prompt,
		Choices:    choices,
	}
}

// Holder keeps at most one session per user.
type Holder interface {
	Get(userID int64) (*Session, bool)
	Put(userID int64, session *Session)
	Remove(userID int64)
	Len() int
}

// MemoryHolder is a process-local Holder. Sessions are lost on restart and
// never expire; memory is bounded by the number of distinct users because
// Put replaces any previous session of the same user.
type MemoryHolder struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewMemoryHolder() *MemoryHolder {
	return &MemoryHolder{sessions: make(map[int64]*Session)}
}

func (h *MemoryHolder) Get(userID int64) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	session, ok := h.sessions[userID]
	return session, ok
}

func (h *MemoryHolder) Put(userID int64, session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[userID] = session
}

func (h *MemoryHolder) Remove(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, userID)
}

func (h *MemoryHolder) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// userLocks serialises engine transitions per user while letting different
// users proceed in parallel.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*sync.Mutex)
	}
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
