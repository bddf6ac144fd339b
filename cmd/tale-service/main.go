package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tale-bot/internal/app"
	"tale-bot/internal/config"
	"tale-bot/internal/httpapi"
	"tale-bot/internal/platform/otel"
	"tale-bot/internal/quiz"
)

func main() {
	var cfg config.ServiceConfig
	if err := config.Load(&cfg); err != nil {
		config.Exitf("tale-service: %v", err)
	}

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, "tale-service", cfg.Tracing)
	if err != nil {
		log.Printf("tale-service: tracing disabled: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tale-service: tracing shutdown: %v", err)
		}
	}()

	content, err := app.LoadCatalog(cfg.Content)
	if err != nil {
		log.Fatalf("tale-service: %v", err)
	}
	store, err := app.OpenStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("tale-service: %v", err)
	}
	defer store.Close()

	gin.SetMode(gin.ReleaseMode)
	api := httpapi.NewAPI(quiz.NewEngine(content, store, nil), content, store)

	server := &http.Server{
		Addr:              *addr,
		Handler:           httpapi.NewRouter(api, cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("tale-service: shutdown: %v", err)
		}
	}()

	log.Printf("tale-service listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}
