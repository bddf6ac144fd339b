package quiz

import (
	"context"
	"testing"

	"tale-bot/internal/catalog"
)

func TestMatchAnswer(t *testing.T) {
	tests := []struct {
		name     string
		choice   string
		accepted []string
		want     bool
	}{
		{name: "exact", choice: "mother", accepted: []string{"mother"}, want: true},
		{name: "capitalised", choice: "Mother", accepted: []string{"mother"}, want: true},
		{name: "upper", choice: "MOTHER", accepted: []string{"mother"}, want: true},
		{name: "padded", choice: " Mother ", accepted: []string{"mother"}, want: true},
		{name: "padded accepted", choice: "mother", accepted: []string{"  MOTHER\n"}, want: true},
		{name: "cyrillic", choice: "Медведь", accepted: []string{"медведь"}, want: true},
		{name: "second of many", choice: "c", accepted: []string{"b", "c"}, want: true},
		{name: "different", choice: "father", accepted: []string{"mother"}, want: false},
		{name: "no accepted", choice: "mother", accepted: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchAnswer(tt.choice, tt.accepted); got != tt.want {
				t.Fatalf("MatchAnswer(%q, %q) = %v, want %v", tt.choice, tt.accepted, got, tt.want)
			}
		})
	}
}

func TestSubmitAnswerIgnoresCase(t *testing.T) {
	quiz := catalog.Quiz{
		StoryID: 3,
		Questions: []catalog.Question{
			{ID: 1, Prompt: "Who?", Choices: []string{"Father", "Mother"}, Correct: []string{"mother"}},
		},
	}
	engine, _ := newTestEngine(newFakeStore(), quiz)
	if _, err := engine.StartQuiz(context.Background(), 9, 3); err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}

	got := mustSubmit(t, engine, 9, 1, 1)
	if got.Status != StatusCompleted || got.Score != 1.0 || !got.Result.Passed {
		t.Fatalf("unexpected result: %+v", got)
	}
}
