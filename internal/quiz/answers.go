package quiz

import (
	"strings"

	"golang.org/x/text/cases"
)

// Outcome statuses returned by Engine. None of them is an error: they are the
// ordinary results of a start or a submission.
const (
	StatusStarted       = "started"
	StatusNoQuiz        = "no_quiz"
	StatusNextQuestion  = "next_question"
	StatusIncorrect     = "incorrect"
	StatusCompleted     = "completed"
	StatusStaleAnswer   = "stale_answer"
	StatusInvalidChoice = "invalid_choice"
	StatusNoSession     = "no_session"
)

const (
	// PassPercent is the lowest percentage that counts as passing.
	PassPercent = 70

	firstTryPoints  = 1.0
	afterMissPoints = 0.5
)

// Prompt is one question as shown to the user.
type Prompt struct {
	StoryID    int      `json:"story_id"`
	QuestionID int      `json:"question_id"`
	Number     int      `json:"number"`
	Total      int      `json:"total"`
	Text       string   `json:"text"`
	Choices    []string `json:"choices"`
}

// Result is the final score of a finished quiz.
type Result struct {
	Score   float64 `json:"score"`
	Total   int     `json:"total"`
	Percent int     `json:"percent"`
	Passed  bool    `json:"passed"`
}

type StartResult struct {
	Status    string  `json:"status"`
	StoryID   int     `json:"story_id"`
	AttemptID string  `json:"attempt_id,omitempty"`
	Prompt    *Prompt `json:"prompt,omitempty"`
}

type AnswerResult struct {
	Status     string `json:"status"`
	StoryID    int    `json:"story_id,omitempty"`
	QuestionID int    `json:"question_id"`
	// AfterMiss is set on a correct answer that followed a wrong one.
	AfterMiss   bool    `json:"after_miss,omitempty"`
	Explanation string  `json:"explanation,omitempty"`
	Score       float64 `json:"score"`
	Next        *Prompt `json:"next,omitempty"`
	Result      *Result `json:"result,omitempty"`
}

// MatchAnswer reports whether choice equals any accepted answer after
// trimming and case folding.
func MatchAnswer(choice string, accepted []string) bool {
	folder := cases.Fold()
	normalized := folder.String(strings.TrimSpace(choice))
	for _, answer := range accepted {
		if folder.String(strings.TrimSpace(answer)) == normalized {
			return true
		}
	}
	return false
}
