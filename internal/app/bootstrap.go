package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tale-bot/internal/catalog"
	"tale-bot/internal/config"
	"tale-bot/internal/progress"
	"tale-bot/internal/progress/postgres"
	"tale-bot/internal/progress/sqlite"
)

// OpenStore opens the progress store selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (progress.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		log.Printf("progress: using postgres store")
		return store, nil
	default:
		store, err := sqlite.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %s: %w", cfg.SQLitePath, err)
		}
		log.Printf("progress: using sqlite store at %s", cfg.SQLitePath)
		return store, nil
	}
}

func LoadCatalog(cfg config.ContentConfig) (*catalog.Catalog, error) {
	return catalog.Load(catalog.Sources{
		StoriesPath:   cfg.StoriesPath,
		QuizzesPath:   cfg.QuizzesPath,
		PhoneticsPath: cfg.PhoneticsPath,
		AudioDir:      cfg.AudioDir,
	})
}
