package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"tale-bot/internal/app"
	"tale-bot/internal/cli"
	"tale-bot/internal/config"
	"tale-bot/internal/quiz"
)

func main() {
	storyID := flag.Int("story", 0, "story id whose quiz to play (required)")
	dbPath := flag.String("db", ":memory:", "SQLite file for progress; in-memory by default")
	flag.Parse()

	if *storyID <= 0 {
		fmt.Fprintln(os.Stderr, "error: --story is required")
		os.Exit(1)
	}

	var cfg config.CLIConfig
	if err := config.Load(&cfg); err != nil {
		config.Exitf("error: %v", err)
	}

	ctx := context.Background()
	content, err := app.LoadCatalog(cfg.Content)
	if err != nil {
		config.Exitf("error: %v", err)
	}
	store, err := app.OpenStore(ctx, config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: *dbPath})
	if err != nil {
		config.Exitf("error: %v", err)
	}
	defer store.Close()

	engine := quiz.NewEngine(content, store, nil)
	if err := cli.Run(ctx, os.Stdin, os.Stdout, engine, content, *storyID); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
