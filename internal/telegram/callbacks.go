package telegram

import (
	"context"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tale-bot/internal/catalog"
	"tale-bot/internal/quiz"
)

// callbackHandler answers one button press. A non-empty alert is shown to the
// user as a popup; an error is logged and replaced by the route's failure text.
type callbackHandler func(ctx context.Context, cb *tgbotapi.CallbackQuery, arg string) (alert string, err error)

type route struct {
	data    string
	prefix  bool
	keeps   bool // keeps the active quiz session
	failure string
	handle  callbackHandler
}

func (b *Bot) callbackRoutes() []route {
	return []route{
		{data: cbTales, failure: failMenu, handle: b.showTales},
		{data: cbVocabulary, failure: failMenu, handle: b.showVocabulary},
		{data: cbBackToVocabulary, failure: failBack, handle: b.showVocabulary},
		{data: cbGrammar, failure: failGrammar, handle: b.showGrammar},
		{data: cbLexicon, failure: failLexicon, handle: b.showLexicon},
		{data: cbAlphabet, failure: failMenu, handle: b.showAlphabet},
		{data: cbAlphabetLetters, failure: failData, handle: b.phonetics(func(p catalog.Phonetics) string { return p.LetterNames })},
		{data: cbAlphabetVowels, failure: failData, handle: b.phonetics(func(p catalog.Phonetics) string { return p.Vowels })},
		{data: cbAlphabetConsonant, failure: failData, handle: b.phonetics(func(p catalog.Phonetics) string { return p.Consonants })},
		{data: cbBackToMain, failure: failBack, handle: b.showMainMenu},
		{data: cbBackToTales, failure: failBack, handle: b.backToTales},
		{data: cbShowProgress, failure: progressFailed, handle: b.showProgress},

		{data: cbTalesPage, prefix: true, failure: failMenu, handle: b.showTalesPage},
		{data: cbShowStory, prefix: true, failure: failStory, handle: b.chooseLanguage},
		{data: cbBackToLang, prefix: true, failure: failLanguage, handle: b.chooseLanguage},
		{data: cbLangRussian, prefix: true, failure: failStory, handle: b.readStory(catalog.LangRussian)},
		{data: cbLangKhanty, prefix: true, failure: failStory, handle: b.readStory(catalog.LangKhanty)},
		{data: cbPlayAudio, prefix: true, failure: failAudio, handle: b.playAudio},
		{data: cbShowGrammar, prefix: true, failure: failGrammar, handle: b.showStoryGrammar},
		{data: cbShowLexicon, prefix: true, failure: failLexicon, handle: b.showStoryLexicon},
		{data: cbLexiconTheme, prefix: true, failure: failTheme, handle: b.showLexiconTheme},
		{data: cbStartTest, prefix: true, keeps: true, failure: failTest, handle: b.startTest},
		{data: cbTestAnswer, prefix: true, keeps: true, failure: failAnswer, handle: b.answer},
	}
}

func (b *Bot) match(data string) (route, string, bool) {
	for _, r := range b.routes {
		if r.prefix {
			if arg, ok := strings.CutPrefix(data, r.data); ok {
				return r, arg, true
			}
			continue
		}
		if data == r.data {
			return r, "", true
		}
	}
	return route{}, "", false
}

// handleCallback answers every callback query exactly once. Any button other
// than a quiz button abandons the user's quiz.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.From == nil {
		b.answerCallback(cb.ID, "", false)
		return
	}

	r, arg, ok := b.match(cb.Data)
	if !ok || !r.keeps {
		b.engine.Abandon(cb.From.ID)
	}
	if !ok {
		b.answerCallback(cb.ID, alertUnknown, true)
		return
	}

	alert, err := r.handle(ctx, cb, arg)
	if err != nil {
		log.Printf("telegram: callback %q from user %d: %v", cb.Data, cb.From.ID, err)
		b.answerCallback(cb.ID, r.failure, true)
		return
	}
	b.answerCallback(cb.ID, alert, alert != "")
}

func (b *Bot) answerCallback(id, text string, alert bool) {
	cfg := tgbotapi.NewCallback(id, text)
	if alert {
		cfg = tgbotapi.NewCallbackWithAlert(id, text)
	}
	if _, err := b.api.Request(cfg); err != nil {
		log.Printf("telegram: answer callback: %v", err)
	}
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", arg, err)
	}
	return id, nil
}

func (b *Bot) lookupStory(arg string) (catalog.Story, bool, error) {
	id, err := parseID(arg)
	if err != nil {
		return catalog.Story{}, false, err
	}
	story, ok := b.content.Story(id)
	return story, ok, nil
}

func (b *Bot) showMainMenu(_ context.Context, cb *tgbotapi.CallbackQuery, _ string) (string, error) {
	name := strings.TrimSpace(cb.From.FirstName)
	if name == "" {
		name = displayName(cb.From)
	}
	return "", b.send(cb.Message.Chat.ID, fmt.Sprintf(mainMenuFormat, html.EscapeString(name)), mainMenuKeyboard())
}

func (b *Bot) showVocabulary(_ context.Context, cb *tgbotapi.CallbackQuery, _ string) (string, error) {
	return "", b.send(cb.Message.Chat.ID, vocabularyText, vocabularyKeyboard())
}

func (b *Bot) showProgress(ctx context.Context, cb *tgbotapi.CallbackQuery, _ string) (string, error) {
	b.sendProgress(ctx, cb.Message.Chat.ID, cb.From.ID)
	return "", nil
}

func (b *Bot) talesPage(page int) (int, *tgbotapi.InlineKeyboardMarkup) {
	page = b.content.ClampPage(page, PageSize)
	stories, hasPrev, hasNext := b.content.Page(page, PageSize)
	return page, talesKeyboard(stories, page, hasPrev, hasNext)
}

func (b *Bot) showTales(_ context.Context, cb *tgbotapi.CallbackQuery, _ string) (string, error) {
	_, markup := b.talesPage(0)
	return "", b.send(cb.Message.Chat.ID, talesFirstText, markup)
}

func (b *Bot) backToTales(_ context.Context, cb *tgbotapi.CallbackQuery, _ string) (string, error) {
	_, markup := b.talesPage(0)
	return "", b.send(cb.Message.Chat.ID, talesPageText, markup)
}

// showTalesPage edits the menu message in place.
func (b *Bot) showTalesPage(_ context.Context, cb *tgbotapi.CallbackQuery, arg string) (string, error) {
	page, err := parseID(arg)
	if err != nil {
		return "", err
	}
	_, markup := b.talesPage(page)
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, talesPageText, *markup)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(edit)
	return "", err
}

func (b *Bot) chooseLanguage(_ context.Context, cb *tgbotapi.CallbackQuery, arg string) (string, error) {
	story, ok, err := b.lookupStory(arg)
	if err != nil || !ok {
		return alertStoryNotFound, err
	}
	text := fmt.Sprintf(chooseLanguageFormat, html.EscapeString(story.Title(catalog.LangRussian)))
	return "", b.send(cb.Message.Chat.ID, text, languageKeyboard(story.ID))
}

// readStory shows the story text in one language and counts the read. A
// failed progress write is logged; the text is still shown.
func (b *Bot) readStory(lang catalog.Lang) callbackHandler {
	return func(ctx context.Context, cb *tgbotapi.CallbackQuery, arg string) (string, error) {
		story, ok, err := b.lookupStory(arg)
		if err != nil || !ok {
			return alertStoryNotFound, err
		}

		readCount := 0
		read, err := b.engine.RecordStoryRead(ctx, cb.From.ID, story.ID)
		if err != nil {
			log.Printf("telegram: record read user=%d story=%d: %v", cb.From.ID, story.ID, err)
		} else if !read.IsFirstRead {
			readCount = read.ReadCount
		}

		return "", b.sendLong(cb.Message.Chat.ID, storyText(story, lang, readCount), b.storyKeyboard(story), false)
	}
}

func storyText(story catalog.Story, lang catalog.Lang, readCount int) string {
	counter := ""
	if readCount > 1 {
		counter = fmt.Sprintf(readCountFormat, readCount)
	}
	ruTitle := html.EscapeString(story.Title(catalog.LangRussian))
	body := html.EscapeString(story.Text(lang))

	if lang == catalog.LangKhanty {
		return fmt.Sprintf("📖 <b>%s</b>%s\n<i>(%s)</i>\n%s",
			html.EscapeString(story.Title(catalog.LangKhanty)), counter, ruTitle, body)
	}
	return fmt.Sprintf("📖 <b>%s</b>%s\n%s", ruTitle, counter, body)
}

func (b *Bot) playAudio(_ context.Context, cb *tgbotapi.CallbackQuery, arg string) (string, error) {
	story, ok, err := b.lookupStory(arg)
	if err != nil || !ok {
		return alertStoryNotFound, err
	}
	if !story.HasAudio() {
		return alertNoAudio, nil
	}
	path, ok := b.content.AudioPath(story.ID)
	if !ok {
		return alertAudioMissing, nil
	}

	ruTitle := story.Title(catalog.LangRussian)
	audio := tgbotapi.NewAudio(cb.Message.Chat.ID, tgbotapi.FilePath(path))
	audio.Title = ruTitle + " | " + story.Title(catalog.LangKhanty)
	audio.Performer = audioPerformer
	audio.Caption = fmt.Sprintf(audioCaptionFormat, ruTitle)
	_, err = b.api.Send(audio)
	return "", err
}

func (b *Bot) showStoryGrammar(_ context.Context, cb *tgbotapi.CallbackQuery, arg string) (string, error) {
	story, ok, err := b.lookupStory(arg)
	if err != nil || !ok {
		return alertStoryNotFound, err
	}
	if !story.HasGrammar() {
		return alertNoGrammar, nil
	}
	text := fmt.Sprintf(storyGrammarFormat,
		html.EscapeString(story.Title(catalog.LangRussian)), html.EscapeString(story.Grammar))
	return "", b.sendLong(cb.Message.Chat.ID, text, b.storyKeyboard(story), true)
}

func (b *Bot) showStoryLexicon(_ context.Context, cb *tgbotapi.CallbackQuery, arg string) (string, error) {
	story, ok, err := b.lookupStory(arg)
	if err != nil || !ok {
		return alertStoryNotFound, err
	}
	if !story.HasLexicon() {
		return alertNoLexicon, nil
	}
	text := fmt.Sprintf(storyLexiconFormat,
		html.EscapeString(story.Title(catalog.LangRussian)), wordList(story.Words, "-"))
	return "", b.sendLong(cb.Message.Chat.ID, text, b.storyKeyboard(story), true)
}

func wordList(words []catalog.WordPair, dash string) string {
	lines := make([]string, 0, len(words))
	for _, pair := range words {
		lines = append(lines, fmt.Sprintf("• <b>%s</b> %s %s",
			html.EscapeString(pair.Source), dash, html.EscapeString(pair.Target)))
	}
	return strings.Join(lines, "\n")
}

func (b *Bot) showGrammar(_ context.Context, cb *tgbotapi.CallbackQuery, _ string) (string, error) {
	notes := b.content.Grammar()
	if len(notes) == 0 {
		return "", b.send(cb.Message.Chat.ID, grammarMissing, backKeyboard(cbBackToVocabulary))
	}
	sections := make([]string, 0, len(notes))
	for _, note := range notes {
		sections = append(sections, fmt.Sprintf("📝 <b>%s</b>\n%s\n",
			html.EscapeString(note.Title), html.EscapeString(note.Text)))
	}
	return "", b.sendLong(cb.Message.Chat.ID, strings.Join(sections, "\n"), backKeyboard(cbBackToVocabulary), true)
}

func (b *Bot) showLexicon(_ context.Context, cb *tgbotapi.CallbackQuery, _ string) (string, error) {
	themes := b.content.Lexicon()
	if len(themes) == 0 {
		return alertNoDictionary, nil
	}
	return "", b.send(cb.Message.Chat.ID, lexiconMenuText, lexiconKeyboard(themes))
}

func (b *Bot) showLexiconTheme(_ context.Context, cb *tgbotapi.CallbackQuery, arg string) (string, error) {
	theme, ok := b.content.LexiconTheme(arg)
	if !ok {
		return alertNoTheme, nil
	}
	text := fmt.Sprintf("📚 <b>%s</b>\n%s", html.EscapeString(theme.Name), wordList(theme.Words, "—"))
	return "", b.sendLong(cb.Message.Chat.ID, text, backKeyboard(cbLexicon), false)
}

func (b *Bot) showAlphabet(_ context.Context, cb *tgbotapi.CallbackQuery, _ string) (string, error) {
	if _, ok := b.content.Phonetics(); !ok {
		return alertNoAlphabet, nil
	}
	return "", b.send(cb.Message.Chat.ID, alphabetMenuText, alphabetKeyboard())
}

func (b *Bot) phonetics(section func(catalog.Phonetics) string) callbackHandler {
	return func(_ context.Context, cb *tgbotapi.CallbackQuery, _ string) (string, error) {
		ref, ok := b.content.Phonetics()
		if !ok {
			return alertNoAlphabet, nil
		}
		return "", b.sendLong(cb.Message.Chat.ID, html.EscapeString(section(ref)), backKeyboard(cbAlphabet), false)
	}
}

func (b *Bot) startTest(ctx context.Context, cb *tgbotapi.CallbackQuery, arg string) (string, error) {
	storyID, err := parseID(arg)
	if err != nil {
		return "", err
	}
	result, err := b.engine.StartQuiz(ctx, cb.From.ID, storyID)
	if err != nil {
		return "", err
	}
	if result.Status == quiz.StatusNoQuiz {
		return alertNoQuiz, nil
	}
	return "", b.sendQuestion(cb.Message.Chat.ID, result.Prompt)
}

func (b *Bot) sendQuestion(chatID int64, prompt *quiz.Prompt) error {
	text := fmt.Sprintf(questionFormat, prompt.Number, prompt.Total, html.EscapeString(prompt.Text))
	return b.send(chatID, text, questionKeyboard(prompt))
}

// parseAnswer reads "<storyID>_<questionID>_<choiceIndex>".
func parseAnswer(arg string) (storyID, questionID, choice int, err error) {
	fields := strings.Split(arg, "_")
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed answer %q", arg)
	}
	ids := make([]int, len(fields))
	for i, field := range fields {
		if ids[i], err = parseID(field); err != nil {
			return 0, 0, 0, err
		}
	}
	return ids[0], ids[1], ids[2], nil
}

// answer scores a quiz button. Question ids repeat across stories, so a
// button whose story differs from the active quiz is treated as stale.
func (b *Bot) answer(ctx context.Context, cb *tgbotapi.CallbackQuery, arg string) (string, error) {
	storyID, questionID, choice, err := parseAnswer(arg)
	if err != nil {
		return "", err
	}
	if current, ok := b.engine.Current(cb.From.ID); ok && current.StoryID != storyID {
		return alertStaleAnswer, nil
	}
	result, err := b.engine.SubmitAnswer(ctx, cb.From.ID, questionID, choice)
	if err != nil {
		return "", err
	}

	chatID := cb.Message.Chat.ID
	switch result.Status {
	case quiz.StatusNoSession:
		return alertNoSession, nil
	case quiz.StatusStaleAnswer:
		return alertStaleAnswer, nil
	case quiz.StatusInvalidChoice:
		return alertInvalidChoice, nil
	case quiz.StatusIncorrect:
		return alertWrongAnswer, nil
	}

	if err := b.send(chatID, feedbackText(result), nil); err != nil {
		return "", err
	}
	if result.Status == quiz.StatusNextQuestion {
		return "", b.sendQuestion(chatID, result.Next)
	}
	return "", b.sendResult(chatID, result)
}

func feedbackText(result quiz.AnswerResult) string {
	explanation := strings.TrimSpace(result.Explanation)
	if explanation == "" {
		explanation = noExplanation
	}
	format := correctFormat
	if result.AfterMiss {
		format = correctAfterMiss
	}
	return fmt.Sprintf(format, html.EscapeString(explanation))
}

func (b *Bot) sendResult(chatID int64, result quiz.AnswerResult) error {
	title := fmt.Sprintf("#%d", result.StoryID)
	var markup *tgbotapi.InlineKeyboardMarkup
	if story, ok := b.content.Story(result.StoryID); ok {
		title = story.Title(catalog.LangRussian)
		markup = b.storyKeyboard(story)
	}

	verdict := retryText
	if result.Result.Passed {
		verdict = passedText
	}
	text := fmt.Sprintf(resultFormat, html.EscapeString(title),
		result.Result.Score, result.Result.Total, result.Result.Percent, verdict)
	return b.send(chatID, text, markup)
}
