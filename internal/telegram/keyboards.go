package telegram

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tale-bot/internal/catalog"
	"tale-bot/internal/quiz"
)

type button struct {
	text string
	data string
}

// keyboard lays buttons out in rows of columns, then appends each extra row.
func keyboard(buttons []button, columns int, extra ...[]button) *tgbotapi.InlineKeyboardMarkup {
	if columns <= 0 {
		columns = 1
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for start := 0; start < len(buttons); start += columns {
		end := min(start+columns, len(buttons))
		rows = append(rows, buttonRow(buttons[start:end]))
	}
	for _, row := range extra {
		if len(row) > 0 {
			rows = append(rows, buttonRow(row))
		}
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func buttonRow(buttons []button) []tgbotapi.InlineKeyboardButton {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, btn := range buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.text, btn.data))
	}
	return row
}

func withID(prefix string, id int) string {
	return prefix + strconv.Itoa(id)
}

func backKeyboard(data string) *tgbotapi.InlineKeyboardMarkup {
	return keyboard(nil, 1, []button{{btnBack, data}})
}

func mainMenuKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return keyboard([]button{
		{btnTales, cbTales},
		{btnVocabulary, cbVocabulary},
	}, 2)
}

func vocabularyKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return keyboard([]button{
		{btnGrammar, cbGrammar},
		{btnLexicon, cbLexicon},
		{btnAlphabet, cbAlphabet},
	}, 2, []button{{btnMainMenu, cbBackToMain}})
}

func alphabetKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return keyboard([]button{
		{btnLetters, cbAlphabetLetters},
		{btnVowels, cbAlphabetVowels},
		{btnConsonants, cbAlphabetConsonant},
	}, 1, []button{{btnBack, cbBackToVocabulary}})
}

func talesKeyboard(stories []catalog.Story, page int, hasPrev, hasNext bool) *tgbotapi.InlineKeyboardMarkup {
	buttons := make([]button, 0, len(stories))
	for _, story := range stories {
		buttons = append(buttons, button{story.Title(catalog.LangRussian), withID(cbShowStory, story.ID)})
	}
	var nav []button
	if hasPrev {
		nav = append(nav, button{btnPrev, withID(cbTalesPage, page-1)})
	}
	if hasNext {
		nav = append(nav, button{btnNext, withID(cbTalesPage, page+1)})
	}
	return keyboard(buttons, 1, nav, []button{{btnMainMenu, cbBackToMain}})
}

func languageKeyboard(storyID int) *tgbotapi.InlineKeyboardMarkup {
	return keyboard([]button{
		{btnRussian, withID(cbLangRussian, storyID)},
		{btnKhanty, withID(cbLangKhanty, storyID)},
	}, 2, []button{{btnBack, cbBackToTales}})
}

// storyKeyboard offers only the sections the story has data for.
func (b *Bot) storyKeyboard(story catalog.Story) *tgbotapi.InlineKeyboardMarkup {
	var buttons []button
	if _, ok := b.content.AudioPath(story.ID); ok {
		buttons = append(buttons, button{btnAudio, withID(cbPlayAudio, story.ID)})
	}
	if story.HasGrammar() {
		buttons = append(buttons, button{btnStoryGrammar, withID(cbShowGrammar, story.ID)})
	}
	if story.HasLexicon() {
		buttons = append(buttons, button{btnStoryLexicon, withID(cbShowLexicon, story.ID)})
	}
	if b.content.HasQuiz(story.ID) {
		buttons = append(buttons, button{btnTakeTest, withID(cbStartTest, story.ID)})
	}
	buttons = append(buttons, button{btnChangeLang, withID(cbBackToLang, story.ID)})
	return keyboard(buttons, 2, []button{{btnBack, cbBackToTales}})
}

func lexiconKeyboard(themes []catalog.Theme) *tgbotapi.InlineKeyboardMarkup {
	buttons := make([]button, 0, len(themes)+1)
	for _, theme := range themes {
		buttons = append(buttons, button{theme.Name, cbLexiconTheme + theme.Name})
	}
	buttons = append(buttons, button{btnBack, cbBackToVocabulary})
	return keyboard(buttons, 2)
}

func questionKeyboard(prompt *quiz.Prompt) *tgbotapi.InlineKeyboardMarkup {
	buttons := make([]button, 0, len(prompt.Choices))
	for i, choice := range prompt.Choices {
		buttons = append(buttons, button{choice, fmt.Sprintf("%s%d_%d_%d", cbTestAnswer, prompt.StoryID, prompt.QuestionID, i)})
	}
	return keyboard(buttons, 1)
}
