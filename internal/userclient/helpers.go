package userclient

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func promptAnswer(reader *bufio.Reader, out io.Writer, optionCount int) (string, bool) {
	if optionCount < 1 || optionCount > 26 {
		return "", false
	}

	maxLetter := byte('A' + optionCount - 1)
	fmt.Fprintf(out, "Your answer (A-%c): ", maxLetter)

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}

	answer := strings.ToUpper(strings.TrimSpace(line))
	if len(answer) != 1 {
		return "", false
	}
	letter := answer[0]
	if letter < 'A' || letter > maxLetter {
		return "", false
	}

	return answer, true
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  stories")
	fmt.Fprintln(out, "  read <story_id> [kh]")
	fmt.Fprintln(out, "  play <story_id>")
	fmt.Fprintln(out, "  progress")
	fmt.Fprintln(out, "  exit")
}

func parseStoryID(args []string, usage string) (int, error) {
	if len(args) != 2 {
		return 0, errors.New(usage)
	}
	value, err := strconv.Atoi(args[1])
	if err != nil || value <= 0 {
		return 0, errors.New("story_id must be a positive integer")
	}
	return value, nil
}

func parseReadArgs(args []string) (storyID int, khanty bool, err error) {
	const usage = "usage: read <story_id> [kh]"
	switch len(args) {
	case 2:
	case 3:
		if !strings.EqualFold(args[2], "kh") {
			return 0, false, errors.New(usage)
		}
		khanty = true
		args = args[:2]
	default:
		return 0, false, errors.New(usage)
	}
	storyID, err = parseStoryID(args, usage)
	return storyID, khanty, err
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("tale service unavailable at %s", serverURL)
	}
	return err
}
