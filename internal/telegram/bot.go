package telegram

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tale-bot/internal/catalog"
	"tale-bot/internal/progress"
	"tale-bot/internal/quiz"
)

// PageSize is the number of stories per tales menu page.
const PageSize = 5

// Sender is the part of *tgbotapi.BotAPI the bot talks through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Engine is the quiz and progress surface the bot drives.
type Engine interface {
	StartQuiz(ctx context.Context, userID int64, storyID int) (quiz.StartResult, error)
	SubmitAnswer(ctx context.Context, userID int64, questionID, choiceIndex int) (quiz.AnswerResult, error)
	Abandon(userID int64) bool
	Current(userID int64) (*quiz.Prompt, bool)
	RecordStoryRead(ctx context.Context, userID int64, storyID int) (progress.ReadResult, error)
	ProgressSummary(ctx context.Context, userID int64) (progress.Summary, error)
	RegisterUser(ctx context.Context, user progress.User) (bool, error)
}

// Content is the read-only catalog view the menus are built from.
type Content interface {
	Story(id int) (catalog.Story, bool)
	HasQuiz(storyID int) bool
	Page(page, size int) ([]catalog.Story, bool, bool)
	ClampPage(page, size int) int
	Grammar() []catalog.GrammarNote
	Lexicon() []catalog.Theme
	LexiconTheme(name string) (catalog.Theme, bool)
	Phonetics() (catalog.Phonetics, bool)
	AudioPath(storyID int) (string, bool)
}

type Bot struct {
	api     Sender
	engine  Engine
	content Content
	routes  []route
}

func NewBot(api Sender, engine Engine, content Content) *Bot {
	b := &Bot{
		api:     api,
		engine:  engine,
		content: content,
	}
	b.routes = b.callbackRoutes()
	return b
}

// Commands is the command list shown in the Telegram client menu.
func Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Начать работу с ботом"},
		{Command: "progress", Description: "Показать ваш прогресс"},
	}
}

// RegisterCommands publishes Commands to Telegram.
func (b *Bot) RegisterCommands() error {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(Commands()...)); err != nil {
		return fmt.Errorf("set bot commands: %w", err)
	}
	return nil
}

// Run handles updates one at a time until ctx is done or the channel closes.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches one update. Errors are logged and turned into a
// short notice for the user; nothing escapes to the caller.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, msg)
			return
		case "progress":
			if msg.From != nil {
				b.engine.Abandon(msg.From.ID)
				b.sendProgress(ctx, chatID, msg.From.ID)
			}
			return
		}
	}

	text := unsupportedText
	if msg.Text != "" {
		text = useMenuText
	}
	if err := b.send(chatID, text, nil); err != nil {
		log.Printf("telegram: reply to message: %v", err)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	name := defaultName

	if user := msg.From; user != nil {
		b.engine.Abandon(user.ID)
		name = displayName(user)

		created, err := b.engine.RegisterUser(ctx, progress.User{
			ID:        user.ID,
			Username:  user.UserName,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		})
		if err != nil {
			log.Printf("telegram: register user %d: %v", user.ID, err)
		} else if created {
			log.Printf("telegram: new user %d", user.ID)
		}
	}

	text := fmt.Sprintf(welcomeFormat, html.EscapeString(name))
	if err := b.send(chatID, text, mainMenuKeyboard()); err != nil {
		log.Printf("telegram: send welcome: %v", err)
	}
}

func (b *Bot) sendProgress(ctx context.Context, chatID, userID int64) {
	summary, err := b.engine.ProgressSummary(ctx, userID)
	if err != nil {
		log.Printf("telegram: progress summary for %d: %v", userID, err)
		if err := b.send(chatID, progressFailed, nil); err != nil {
			log.Printf("telegram: send progress failure: %v", err)
		}
		return
	}
	if err := b.send(chatID, b.progressText(summary), nil); err != nil {
		log.Printf("telegram: send progress: %v", err)
	}
}

func (b *Bot) progressText(summary progress.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, progressHeader, summary.StoriesRead, summary.TotalReads, summary.StoriesCompleted)
	if len(summary.Recent) == 0 {
		sb.WriteString(progressEmpty)
		return sb.String()
	}
	for _, record := range summary.Recent {
		title := fmt.Sprintf("#%d", record.StoryID)
		if story, ok := b.content.Story(record.StoryID); ok {
			title = story.Title(catalog.LangRussian)
		}
		status := "📖"
		if record.Completed {
			status = "✅"
		}
		fmt.Fprintf(&sb, progressLineFormat, status, html.EscapeString(title), record.ReadCount)
	}
	return sb.String()
}

func displayName(user *tgbotapi.User) string {
	first := strings.TrimSpace(user.FirstName)
	last := strings.TrimSpace(user.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	case user.UserName != "":
		return "@" + user.UserName
	default:
		return defaultName
	}
}

// send posts an HTML message. markup may be nil.
func (b *Bot) send(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err := b.api.Send(msg)
	return err
}

// sendLong splits text into Telegram sized parts. The keyboard goes on the
// last part, or on the first when markupFirst is set.
func (b *Bot) sendLong(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup, markupFirst bool) error {
	parts := splitMessage(text, MaxMessageLength)
	for i, part := range parts {
		var partMarkup *tgbotapi.InlineKeyboardMarkup
		if (markupFirst && i == 0) || (!markupFirst && i == len(parts)-1) {
			partMarkup = markup
		}
		if err := b.send(chatID, part, partMarkup); err != nil {
			return err
		}
	}
	return nil
}
