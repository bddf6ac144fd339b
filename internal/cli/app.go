package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"tale-bot/internal/catalog"
	"tale-bot/internal/quiz"
)

const (
	maxAttempts = 3

	// LocalUser is the progress user the terminal player records under.
	LocalUser int64 = 1
)

// Engine is the part of quiz.Engine the terminal player drives.
type Engine interface {
	StartQuiz(ctx context.Context, userID int64, storyID int) (quiz.StartResult, error)
	SubmitAnswer(ctx context.Context, userID int64, questionID, choiceIndex int) (quiz.AnswerResult, error)
	Abandon(userID int64) bool
}

type Content interface {
	Story(id int) (catalog.Story, bool)
}

// Run plays the quiz of one story on in/out. Choices are entered as letters.
// Input ending early abandons the session.
func Run(ctx context.Context, in io.Reader, out io.Writer, engine Engine, content Content, storyID int) error {
	story, ok := content.Story(storyID)
	if !ok {
		return fmt.Errorf("story %d: %w", storyID, catalog.ErrStoryNotFound)
	}

	started, err := engine.StartQuiz(ctx, LocalUser, storyID)
	if err != nil {
		return err
	}
	if started.Status == quiz.StatusNoQuiz {
		fmt.Fprintf(out, "Story %d has no quiz.\n", storyID)
		return nil
	}

	fmt.Fprintf(out, "%s\n", story.Title(catalog.LangRussian))
	reader := bufio.NewReader(in)
	prompt := started.Prompt

	for prompt != nil {
		if err := ctx.Err(); err != nil {
			engine.Abandon(LocalUser)
			return err
		}
		printQuestion(out, prompt)

		choice, ok := getAnswer(reader, out, len(prompt.Choices))
		fmt.Fprintln(out)
		if !ok {
			engine.Abandon(LocalUser)
			fmt.Fprintln(out, "Quiz abandoned.")
			return nil
		}

		result, err := engine.SubmitAnswer(ctx, LocalUser, prompt.QuestionID, choice)
		if err != nil {
			return err
		}

		switch result.Status {
		case quiz.StatusIncorrect:
			fmt.Fprintln(out, "Wrong. Try again.")
		case quiz.StatusNextQuestion:
			printCorrect(out, result)
			prompt = result.Next
		case quiz.StatusCompleted:
			printCorrect(out, result)
			printResult(out, result.Result)
			prompt = nil
		default:
			return fmt.Errorf("unexpected answer status %q", result.Status)
		}
	}
	return nil
}

func printQuestion(out io.Writer, prompt *quiz.Prompt) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Q%d/%d: %s\n\n", prompt.Number, prompt.Total, prompt.Text)
	for idx, choice := range prompt.Choices {
		fmt.Fprintf(out, "%c. %s\n", 'A'+idx, choice)
	}
	fmt.Fprintln(out)
}

func printCorrect(out io.Writer, result quiz.AnswerResult) {
	if result.AfterMiss {
		fmt.Fprintln(out, "Correct now.")
	} else {
		fmt.Fprintln(out, "Correct!")
	}
	if result.Explanation != "" {
		fmt.Fprintln(out, result.Explanation)
	}
}

func printResult(out io.Writer, result *quiz.Result) {
	if result == nil {
		return
	}
	fmt.Fprintf(out, "\nFinal score: %.1f/%d (%d%%)\n", result.Score, result.Total, result.Percent)
	if result.Passed {
		fmt.Fprintln(out, "Passed.")
	} else {
		fmt.Fprintln(out, "Not passed. Read the story again and retry.")
	}
}

func getAnswer(reader *bufio.Reader, out io.Writer, optionCount int) (int, bool) {
	if optionCount < 1 || optionCount > 26 {
		return -1, false
	}

	maxLetter := byte('A' + optionCount - 1)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		userAnswer, err := reader.ReadString('\n')
		if err != nil && userAnswer == "" {
			return -1, false
		}

		userAnswer = strings.ToUpper(strings.TrimSpace(userAnswer))
		if len(userAnswer) == 1 {
			letter := userAnswer[0]
			if letter >= 'A' && letter <= maxLetter {
				return int(letter - 'A'), true
			}
		}

		if err != nil {
			return -1, false
		}
		if attempt < maxAttempts {
			fmt.Fprintf(out, "\nInvalid input. Please enter a letter A-%c.\n", maxLetter)
		}
	}

	return -1, false
}
