package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"lookahead/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckJournalLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	if r := CheckJournalLock(path); !r.Passed || r.Detail != "unused" {
		t.Fatalf("expected unused lock to pass, got %+v", r)
	}

	held := flock.New(path + ".lock")
	if _, err := held.TryLock(); err != nil {
		t.Fatalf("take lock: %v", err)
	}
	if r := CheckJournalLock(path); r.Passed {
		t.Fatalf("expected held lock to fail, got %+v", r)
	}

	if err := held.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if r := CheckJournalLock(path); !r.Passed || r.Detail != "available" {
		t.Fatalf("expected released lock to pass, got %+v", r)
	}
}

func TestRunAllSkipsDisabledJournal(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()

	results := RunAll(&cfg)
	if len(results) != 1 {
		t.Fatalf("expected only the state directory check, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAllReportsMissingJournalDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Journal.Enabled = true
	cfg.Journal.Path = filepath.Join(cfg.Paths.StateDir, "missing", "journal.db")

	failed := Failed(RunAll(&cfg))
	if len(failed) != 1 || failed[0].Name != "Journal directory" {
		t.Fatalf("expected journal directory failure, got %+v", failed)
	}
}
