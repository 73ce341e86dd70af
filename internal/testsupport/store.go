package testsupport

import (
	"context"
	"testing"
	"time"

	"lookahead/internal/config"
	"lookahead/internal/journal"
)

// MustOpenJournal opens the configured journal for tests and registers cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedSession writes a session with the given runs, numbering heads
// consecutively from frame zero.
func SeedSession(t testing.TB, store *journal.Store, id string, runLengths ...int) []journal.RunRecord {
	t.Helper()

	ctx := context.Background()
	if err := store.BeginSession(ctx, id, journal.Settings{Mode: "inline", ReorderDelay: 3, KeyintMax: 250}, time.Now()); err != nil {
		t.Fatalf("store.BeginSession: %v", err)
	}
	var (
		records []journal.RunRecord
		head    int64
	)
	for i, n := range runLengths {
		rec := journal.RunRecord{Seq: i, HeadFrame: head, RunLength: n, Keyframe: i == 0}
		if err := store.RecordRun(ctx, id, rec); err != nil {
			t.Fatalf("store.RecordRun: %v", err)
		}
		records = append(records, rec)
		head += int64(n + 1)
	}
	return records
}
