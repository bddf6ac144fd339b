package userclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tale-bot/internal/progress"
	"tale-bot/internal/quiz"
)

const (
	defaultServer            = "http://127.0.0.1:8080"
	defaultHTTPTimeout       = 5 * time.Second
	defaultMaxInvalidAnswers = 3
)

type Config struct {
	UserID            int64
	ServerURL         string
	MaxInvalidAnswers int
	HTTPTimeout       time.Duration
}

// Run is an interactive client for tale-service. It reads commands from in
// until "exit" or end of input.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	if err := progress.ValidateUser(cfg.UserID); err != nil {
		return errors.New("user id must be a positive integer")
	}

	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	maxInvalidAnswers := cfg.MaxInvalidAnswers
	if maxInvalidAnswers <= 0 {
		maxInvalidAnswers = defaultMaxInvalidAnswers
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := NewHTTPClient(serverURL, cfg.UserID, &http.Client{Timeout: timeout})
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "tale-client\nuser=%d\nserver=%s\n\n", cfg.UserID, serverURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		var cmdErr error
		switch strings.ToLower(args[0]) {
		case "help":
			printHelp(out)
		case "exit":
			return nil
		case "stories":
			cmdErr = runStories(ctx, out, client)
		case "progress":
			cmdErr = runProgress(ctx, out, client)
		case "read":
			storyID, khanty, parseErr := parseReadArgs(args)
			if parseErr != nil {
				fmt.Fprintln(out, parseErr)
				continue
			}
			cmdErr = runRead(ctx, out, client, storyID, khanty)
		case "play":
			storyID, parseErr := parseStoryID(args, "usage: play <story_id>")
			if parseErr != nil {
				fmt.Fprintln(out, parseErr)
				continue
			}
			cmdErr = runPlay(ctx, reader, out, client, storyID, maxInvalidAnswers)
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}
		if cmdErr != nil {
			fmt.Fprintf(out, "error: %v\n", describeClientError(cmdErr, serverURL))
		}
	}
}

func runStories(ctx context.Context, out io.Writer, client *HTTPClient) error {
	stories, err := client.ListStories(ctx)
	if err != nil {
		return err
	}
	if len(stories) == 0 {
		fmt.Fprintln(out, "No stories.")
		return nil
	}

	fmt.Fprintln(out, "Stories:")
	for _, story := range stories {
		marks := ""
		if story.HasQuiz {
			marks += " [quiz]"
		}
		if story.HasAudio {
			marks += " [audio]"
		}
		fmt.Fprintf(out, "%d. %s%s\n", story.StoryID, story.Title, marks)
	}
	return nil
}

func runRead(ctx context.Context, out io.Writer, client *HTTPClient, storyID int, khanty bool) error {
	story, err := client.GetStory(ctx, storyID)
	if err != nil {
		return err
	}
	read, err := client.RecordRead(ctx, storyID)
	if err != nil {
		return err
	}

	title, text := story.Title, story.Text
	if khanty {
		title, text = story.TitleKhanty, story.TextKhanty
	}
	fmt.Fprintf(out, "%s\n\n%s\n", title, text)
	if !read.IsFirstRead {
		fmt.Fprintf(out, "\n(read %d times)\n", read.ReadCount)
	}
	return nil
}

func runProgress(ctx context.Context, out io.Writer, client *HTTPClient) error {
	summary, err := client.Progress(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Stories read: %d\nTotal reads: %d\nQuizzes completed: %d\n",
		summary.StoriesRead, summary.TotalReads, summary.StoriesCompleted)
	for _, record := range summary.Recent {
		done := ""
		if record.Completed {
			done = " (quiz completed)"
		}
		fmt.Fprintf(out, "  story %d: read %d times%s\n", record.StoryID, record.ReadCount, done)
	}
	return nil
}

// runPlay plays a quiz on the server. Scoring happens server side; the
// client only renders prompts and outcomes.
func runPlay(ctx context.Context, reader *bufio.Reader, out io.Writer, client *HTTPClient, storyID, maxInvalidAnswers int) error {
	started, err := client.StartQuiz(ctx, storyID)
	if err != nil {
		return err
	}
	if started.Status == quiz.StatusNoQuiz {
		fmt.Fprintf(out, "Story %d has no quiz.\n", storyID)
		return nil
	}

	prompt := started.Prompt
	invalidCount := 0
	for prompt != nil {
		printPrompt(out, prompt)

		answer, ok := promptAnswer(reader, out, len(prompt.Choices))
		if !ok {
			invalidCount++
			if invalidCount >= maxInvalidAnswers {
				fmt.Fprintln(out, "Leaving the quiz after multiple invalid responses.")
				return client.Abandon(ctx)
			}
			fmt.Fprintf(out, "Invalid input. Attempts remaining: %d\n", maxInvalidAnswers-invalidCount)
			continue
		}
		invalidCount = 0

		result, err := client.SubmitAnswer(ctx, prompt.QuestionID, int(answer[0]-'A'))
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
			if result.Result != nil {
				fmt.Fprintf(out, "\nScore: %s/%d (%d%%)\n", formatScore(result.Result.Score), result.Result.Total, result.Result.Percent)
			}
			return nil
		case quiz.StatusNoSession:
			fmt.Fprintln(out, "The quiz was closed elsewhere.")
			return nil
		default:
			fmt.Fprintf(out, "Answer not accepted (%s).\n", result.Status)
		}
	}
	return nil
}

func printPrompt(out io.Writer, prompt *quiz.Prompt) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%d/%d %s\n\n", prompt.Number, prompt.Total, prompt.Text)
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
