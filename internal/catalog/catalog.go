package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrStoryNotFound is returned by operations that require a known story.
var ErrStoryNotFound = errors.New("story not found")

// Lang selects one of the two story languages.
type Lang string

const (
	LangRussian Lang = "ru"
	LangKhanty  Lang = "kh"
)

// noAudio marks a story whose audio recording is not available yet.
const noAudio = "pass"

// WordPair is one Khanty word with its Russian translation.
type WordPair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type Story struct {
	ID      int
	Titles  map[Lang]string
	Texts   map[Lang]string
	Grammar string
	Words   []WordPair
	Audio   string
}

func (s Story) Title(lang Lang) string {
	return s.Titles[lang]
}

func (s Story) Text(lang Lang) string {
	return s.Texts[lang]
}

func (s Story) HasGrammar() bool {
	return strings.TrimSpace(s.Grammar) != ""
}

func (s Story) HasLexicon() bool {
	return len(s.Words) > 0
}

// HasAudio reports whether the story names a recording. The file itself may
// still be missing; AudioPath checks that.
func (s Story) HasAudio() bool {
	name := strings.TrimSpace(s.Audio)
	return name != "" && name != noAudio
}

type Question struct {
	ID          int
	Prompt      string
	Choices     []string
	Correct     []string
	Explanation string
}

type Quiz struct {
	StoryID   int
	Questions []Question
}

// Phonetics holds the three alphabet reference texts.
type Phonetics struct {
	LetterNames string
	Vowels      string
	Consonants  string
}

type GrammarNote struct {
	StoryID int
	Title   string
	Text    string
}

// Theme groups lexicon entries from every story under one topic.
type Theme struct {
	Name  string
	Words []WordPair
}

// Catalog is the immutable content set shared by every session. It is safe
// for concurrent use because nothing mutates it after construction.
type Catalog struct {
	stories   []Story
	byID      map[int]int
	quizzes   map[int]Quiz
	phonetics *Phonetics
	lexicon   []Theme
	audioDir  string
}

// New builds a catalog from already parsed content. Duplicate story ids and
// duplicate quizzes for one story keep the first occurrence.
func New(stories []Story, quizzes []Quiz, phonetics *Phonetics, audioDir string) *Catalog {
	c := &Catalog{
		stories:   make([]Story, 0, len(stories)),
		byID:      make(map[int]int, len(stories)),
		quizzes:   make(map[int]Quiz, len(quizzes)),
		phonetics: phonetics,
		audioDir:  audioDir,
	}
	for _, story := range stories {
		if _, ok := c.byID[story.ID]; ok {
			continue
		}
		c.byID[story.ID] = len(c.stories)
		c.stories = append(c.stories, story)
	}
	for _, quiz := range quizzes {
		if _, ok := c.quizzes[quiz.StoryID]; ok {
			continue
		}
		c.quizzes[quiz.StoryID] = quiz
	}
	c.lexicon = buildLexicon(c.stories)
	return c
}

func (c *Catalog) Story(id int) (Story, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Story{}, false
	}
	return c.stories[idx], true
}

// Quiz returns the quiz attached to a story. A story without a quiz is a
// normal condition, reported as ok == false.
func (c *Catalog) Quiz(storyID int) (Quiz, bool) {
	quiz, ok := c.quizzes[storyID]
	return quiz, ok
}

// HasQuiz reports whether the story has a quiz with at least one question.
func (c *Catalog) HasQuiz(storyID int) bool {
	quiz, ok := c.quizzes[storyID]
	return ok && len(quiz.Questions) > 0
}

// Stories returns all stories in source order.
func (c *Catalog) Stories() []Story {
	out := make([]Story, len(c.stories))
	copy(out, c.stories)
	return out
}

func (c *Catalog) QuizCount() int {
	return len(c.quizzes)
}

// PageCount is the number of pages of the given size; an empty catalog
// still has one (empty) page.
func (c *Catalog) PageCount(size int) int {
	if size <= 0 {
		size = 1
	}
	if len(c.stories) == 0 {
		return 1
	}
	return (len(c.stories) + size - 1) / size
}

// ClampPage maps any page number onto an existing page.
func (c *Catalog) ClampPage(page, size int) int {
	if page < 0 {
		return 0
	}
	if last := c.PageCount(size) - 1; page > last {
		return last
	}
	return page
}

// Page returns the stories on a zero-based page and whether neighbouring
// pages exist. Out of range pages are clamped.
func (c *Catalog) Page(page, size int) (stories []Story, hasPrev, hasNext bool) {
	if size <= 0 {
		size = 1
	}
	page = c.ClampPage(page, size)

	start := page * size
	end := start + size
	if end > len(c.stories) {
		end = len(c.stories)
	}
	stories = make([]Story, end-start)
	copy(stories, c.stories[start:end])
	return stories, page > 0, end < len(c.stories)
}

// Phonetics returns the alphabet reference, absent when its source failed to load.
func (c *Catalog) Phonetics() (Phonetics, bool) {
	if c.phonetics == nil {
		return Phonetics{}, false
	}
	return *c.phonetics, true
}

// Grammar returns the grammar notes of every story that has one.
func (c *Catalog) Grammar() []GrammarNote {
	var notes []GrammarNote
	for _, story := range c.stories {
		if !story.HasGrammar() {
			continue
		}
		notes = append(notes, GrammarNote{
			StoryID: story.ID,
			Title:   story.Title(LangRussian),
			Text:    story.Grammar,
		})
	}
	return notes
}

// Lexicon returns the word pairs of all stories grouped by theme, sorted by
// theme name.
func (c *Catalog) Lexicon() []Theme {
	return c.lexicon
}

// LexiconTheme looks up one theme by name.
func (c *Catalog) LexiconTheme(name string) (Theme, bool) {
	for _, theme := range c.lexicon {
		if theme.Name == name {
			return theme, true
		}
	}
	return Theme{}, false
}

// AudioPath resolves the story's audio file. It reports false when the story
// has no recording or the file is missing on disk.
func (c *Catalog) AudioPath(storyID int) (string, bool) {
	story, ok := c.Story(storyID)
	if !ok {
		return "", false
	}
	if !story.HasAudio() {
		return "", false
	}
	path := filepath.Join(c.audioDir, filepath.Base(strings.TrimSpace(story.Audio)))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

func buildLexicon(stories []Story) []Theme {
	grouped := make(map[string][]WordPair)
	for _, story := range stories {
		for _, pair := range story.Words {
			theme := DetectTheme(pair.Target)
			grouped[theme] = append(grouped[theme], pair)
		}
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	themes := make([]Theme, 0, len(names))
	for _, name := range names {
		themes = append(themes, Theme{Name: name, Words: grouped[name]})
	}
	return themes
}
