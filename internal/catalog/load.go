package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// Sources names the content files read at startup.
type Sources struct {
	StoriesPath   string
	QuizzesPath   string
	PhoneticsPath string
	AudioDir      string
}

type rawStories struct {
	Stories []rawStory `json:"stories"`
}

type rawStory struct {
	ID       int      `json:"id"`
	RusTitle string   `json:"rus_title"`
	HanTitle string   `json:"han_title"`
	RusText  string   `json:"rus_text"`
	HanText  string   `json:"han_text"`
	Grammar  string   `json:"grammar"`
	HanWords []string `json:"han_words"`
	RusWords []string `json:"rus_words"`
	Audio    string   `json:"audio"`
}

type rawQuizzes struct {
	Tests []rawQuiz `json:"tests"`
}

type rawQuiz struct {
	StoryID   int           `json:"fairytale_id"`
	Questions []rawQuestion `json:"questions"`
}

type rawQuestion struct {
	ID          int       `json:"q_id"`
	Prompt      string    `json:"question"`
	Variants    []string  `json:"variants"`
	Answer      answerSet `json:"right answer"`
	Explanation string    `json:"explanation"`
}

// answerSet accepts either a single value or a list of values.
type answerSet []string

func (a *answerSet) UnmarshalJSON(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	switch v := value.(type) {
	case nil:
		*a = nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			text, err := answerText(item)
			if err != nil {
				return err
			}
			out = append(out, text)
		}
		*a = out
	default:
		text, err := answerText(v)
		if err != nil {
			return err
		}
		*a = []string{text}
	}
	return nil
}

func answerText(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("unsupported answer value %v", value)
	}
}

type rawPhonetics struct {
	Alphabet struct {
		LetterNames string `json:"название букв"`
	} `json:"алфавит"`
	Vowels     string `json:"гласные"`
	Consonants string `json:"согласные"`
}

// Load reads the content files. A stories failure is returned as an error;
// quiz and phonetics failures are logged and leave those sections empty.
func Load(src Sources) (*Catalog, error) {
	stories, err := readFile(src.StoriesPath, ParseStories)
	if err != nil {
		return nil, fmt.Errorf("load stories: %w", err)
	}
	log.Printf("catalog: loaded %d stories from %s", len(stories), src.StoriesPath)

	quizzes, err := readFile(src.QuizzesPath, ParseQuizzes)
	if err != nil {
		log.Printf("catalog: quizzes unavailable: %v", err)
	} else {
		log.Printf("catalog: loaded %d quizzes from %s", len(quizzes), src.QuizzesPath)
	}

	var phonetics *Phonetics
	parsed, err := readFile(src.PhoneticsPath, ParsePhonetics)
	if err != nil {
		log.Printf("catalog: phonetics unavailable: %v", err)
	} else {
		phonetics = &parsed
	}

	return New(stories, quizzes, phonetics, src.AudioDir), nil
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	if strings.TrimSpace(path) == "" {
		return zero, errors.New("path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()

	return parse(f)
}

// ParseStories decodes the stories document.
func ParseStories(r io.Reader) ([]Story, error) {
	var doc rawStories
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode stories: %w", err)
	}
	if doc.Stories == nil {
		return nil, errors.New(`decode stories: missing "stories" list`)
	}

	stories := make([]Story, 0, len(doc.Stories))
	for _, raw := range doc.Stories {
		stories = append(stories, Story{
			ID: raw.ID,
			Titles: map[Lang]string{
				LangRussian: raw.RusTitle,
				LangKhanty:  raw.HanTitle,
			},
			Texts: map[Lang]string{
				LangRussian: raw.RusText,
				LangKhanty:  raw.HanText,
			},
			Grammar: raw.Grammar,
			Words:   pairWords(raw),
			Audio:   raw.Audio,
		})
	}
	return stories, nil
}

func pairWords(raw rawStory) []WordPair {
	if len(raw.HanWords) != len(raw.RusWords) {
		log.Printf("catalog: story %d has %d khanty and %d russian words", raw.ID, len(raw.HanWords), len(raw.RusWords))
	}
	n := min(len(raw.HanWords), len(raw.RusWords))
	if n == 0 {
		return nil
	}
	pairs := make([]WordPair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, WordPair{
			Source: strings.TrimSpace(raw.HanWords[i]),
			Target: strings.TrimSpace(raw.RusWords[i]),
		})
	}
	return pairs
}

// ParseQuizzes decodes the quizzes document.
func ParseQuizzes(r io.Reader) ([]Quiz, error) {
	var doc rawQuizzes
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode quizzes: %w", err)
	}

	quizzes := make([]Quiz, 0, len(doc.Tests))
	for _, raw := range doc.Tests {
		quiz := Quiz{
			StoryID:   raw.StoryID,
			Questions: make([]Question, 0, len(raw.Questions)),
		}
		for _, q := range raw.Questions {
			quiz.Questions = append(quiz.Questions, Question{
				ID:          q.ID,
				Prompt:      q.Prompt,
				Choices:     q.Variants,
				Correct:     []string(q.Answer),
				Explanation: q.Explanation,
			})
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

// ParsePhonetics decodes the alphabet reference document.
func ParsePhonetics(r io.Reader) (Phonetics, error) {
	var doc rawPhonetics
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Phonetics{}, fmt.Errorf("decode phonetics: %w", err)
	}
	return Phonetics{
		LetterNames: doc.Alphabet.LetterNames,
		Vowels:      doc.Vowels,
		Consonants:  doc.Consonants,
	}, nil
}
