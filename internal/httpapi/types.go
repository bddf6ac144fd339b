package httpapi

import (
	"time"

	"tale-bot/internal/catalog"
	"tale-bot/internal/progress"
	"tale-bot/internal/quiz"
)

type storySummaryResponse struct {
	StoryID     int    `json:"story_id"`
	Title       string `json:"title"`
	TitleKhanty string `json:"title_khanty"`
	HasQuiz     bool   `json:"has_quiz"`
	HasAudio    bool   `json:"has_audio"`
	HasGrammar  bool   `json:"has_grammar"`
	HasLexicon  bool   `json:"has_lexicon"`
}

type storiesResponse struct {
	StoryCount int                    `json:"story_count"`
	Stories    []storySummaryResponse `json:"stories"`
}

type storyResponse struct {
	storySummaryResponse
	Text       string             `json:"text"`
	TextKhanty string             `json:"text_khanty"`
	Grammar    string             `json:"grammar,omitempty"`
	Words      []catalog.WordPair `json:"words,omitempty"`
}

type startQuizRequest struct {
	StoryID *int `json:"story_id" binding:"required"`
}

type answerRequest struct {
	QuestionID  *int `json:"question_id" binding:"required"`
	ChoiceIndex *int `json:"choice_index" binding:"required"`
}

type currentQuestionResponse struct {
	Status string       `json:"status"`
	Prompt *quiz.Prompt `json:"prompt,omitempty"`
}

type abandonResponse struct {
	Abandoned bool `json:"abandoned"`
}

type readResponse struct {
	StoryID int `json:"story_id"`
	progress.ReadResult
}

type answerEventResponse struct {
	QuestionID int       `json:"question_id"`
	AttemptID  string    `json:"attempt_id"`
	Correct    bool      `json:"correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

type answersResponse struct {
	StoryID int                   `json:"story_id"`
	Answers []answerEventResponse `json:"answers"`
}

type errorResponse struct {
	Error string `json:"error"`
}
