package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tale-bot/internal/progress"
	"tale-bot/internal/progress/storetest"
)

func newTestSQLiteStore(t *testing.T, now func() time.Time) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(path, WithClock(now))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
		_ = os.Remove(path)
		_ = os.Remove(path + "-wal")
		_ = os.Remove(path + "-shm")
		_ = os.Remove(path + "-journal")
	})
	return store
}

func TestSQLiteStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, now func() time.Time) progress.Store {
		return newTestSQLiteStore(t, now)
	})
}

func TestSQLiteStoreReopenKeepsProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if _, err := store.RecordRead(ctx, 1, 4); err != nil {
		t.Fatalf("RecordRead failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	result, err := reopened.RecordRead(ctx, 1, 4)
	if err != nil {
		t.Fatalf("RecordRead after reopen failed: %v", err)
	}
	if result.IsFirstRead || result.ReadCount != 2 {
		t.Fatalf("RecordRead after reopen = %+v, want count 2", result)
	}
}

func TestSQLiteStoreInMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if _, err := store.RecordRead(ctx, 1, 1); err != nil {
		t.Fatalf("RecordRead failed: %v", err)
	}
	summary, err := store.Summary(ctx, 1)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.TotalReads != 1 {
		t.Fatalf("TotalReads = %d, want 1", summary.TotalReads)
	}
}
