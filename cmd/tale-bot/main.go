package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tale-bot/internal/app"
	"tale-bot/internal/config"
	"tale-bot/internal/platform/otel"
	"tale-bot/internal/quiz"
	"tale-bot/internal/telegram"
)

const updateTimeout = 60

func main() {
	var cfg config.BotConfig
	if err := config.Load(&cfg); err != nil {
		config.Exitf("tale-bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "tale-bot", cfg.Tracing)
	if err != nil {
		log.Printf("tale-bot: tracing disabled: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("tale-bot: tracing shutdown: %v", err)
		}
	}()

	content, err := app.LoadCatalog(cfg.Content)
	if err != nil {
		log.Fatalf("tale-bot: %v", err)
	}
	store, err := app.OpenStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("tale-bot: %v", err)
	}
	defer store.Close()

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		log.Fatalf("tale-bot: connect to telegram: %v", err)
	}
	api.Debug = cfg.Debug
	log.Printf("tale-bot: authorized as @%s", api.Self.UserName)

	bot := telegram.NewBot(api, quiz.NewEngine(content, store, nil), content)
	if err := bot.RegisterCommands(); err != nil {
		log.Printf("tale-bot: register commands: %v", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = updateTimeout
	updates := api.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	if err := bot.Run(ctx, updates); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("tale-bot: %v", err)
	}
	log.Printf("tale-bot: stopped")
}
