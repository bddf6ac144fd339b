package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tale-bot/internal/config"
)

func TestOpenStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")

	store, err := OpenStore(context.Background(), config.StoreConfig{Driver: "SQLite", SQLitePath: path})
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer store.Close()

	read, err := store.RecordRead(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("RecordRead failed: %v", err)
	}
	if !read.IsFirstRead {
		t.Fatalf("expected first read")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

func TestOpenStoreRejectsBadConfig(t *testing.T) {
	tests := []config.StoreConfig{
		{Driver: "mongo"},
		{Driver: config.DriverPostgres},
	}
	for _, cfg := range tests {
		if store, err := OpenStore(context.Background(), cfg); err == nil {
			store.Close()
			t.Fatalf("OpenStore(%+v) succeeded, want error", cfg)
		}
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	stories := filepath.Join(dir, "fairytales.json")
	if err := os.WriteFile(stories, []byte(`{"stories":[{"id":1,"rus_title":"Медведь","rus_text":"Жил медведь."}]}`), 0o644); err != nil {
		t.Fatalf("write stories: %v", err)
	}

	cat, err := LoadCatalog(config.ContentConfig{
		StoriesPath:   stories,
		QuizzesPath:   filepath.Join(dir, "missing-tests.json"),
		PhoneticsPath: filepath.Join(dir, "missing-phonetics.json"),
		AudioDir:      dir,
	})
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if _, ok := cat.Story(1); !ok {
		t.Fatalf("story 1 not loaded")
	}
	if cat.QuizCount() != 0 {
		t.Fatalf("QuizCount = %d, want 0", cat.QuizCount())
	}

	if _, err := LoadCatalog(config.ContentConfig{StoriesPath: filepath.Join(dir, "nope.json")}); err == nil {
		t.Fatalf("expected error for missing stories file")
	}
}
