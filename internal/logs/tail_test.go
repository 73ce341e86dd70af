package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"lookahead/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lookahead.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	result, err := logs.Tail(path, logs.TailOptions{Limit: 2})
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "c"}, result.Lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if result.Offset != 6 {
		t.Fatalf("expected offset 6, got %d", result.Offset)
	}
}

func TestTailFiltersBySession(t *testing.T) {
	path := writeLog(t, ""+
		"2026-01-02T15:04:05Z INFO session: session opened session_id=abc mode=inline\n"+
		"2026-01-02T15:04:05Z INFO session: session opened session_id=def mode=inline\n"+
		`{"time":"2026-01-02T15:04:06Z","level":"INFO","msg":"run decided","session_id":"abc"}`+"\n"+
		"no session here\n")

	result, err := logs.Tail(path, logs.TailOptions{SessionID: "abc"})
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected 2 lines for session abc, got %#v", result.Lines)
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(filepath.Join(t.TempDir(), "absent.log"), logs.TailOptions{})
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestFollowStreamsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	initial, err := logs.Tail(path, logs.TailOptions{})
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var (
		mu    sync.Mutex
		lines []string
	)
	got := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, initial.Offset, "", 10*time.Millisecond, func(line string) {
			mu.Lock()
			lines = append(lines, line)
			mu.Unlock()
			if line == "later" {
				close(got)
			}
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	f.Close()

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for appended line")
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"later"}, lines); diff != "" {
		t.Fatalf("followed lines mismatch (-want +got):\n%s", diff)
	}
}
