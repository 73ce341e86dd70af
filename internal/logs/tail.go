package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"lookahead/internal/logging"
)

const maxLineSize = 1024 * 1024

// TailOptions selects which lines Tail returns.
type TailOptions struct {
	// Limit caps the number of lines; zero or less returns every match.
	Limit int
	// SessionID keeps only lines tagged with this session.
	SessionID string
}

// TailResult carries matched lines and the file size at the time of reading.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail returns the last matching lines of path. A missing file yields an
// empty result.
func Tail(path string, opts TailOptions) (TailResult, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return TailResult{}, nil
		}
		return TailResult{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return TailResult{}, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return TailResult{}, fmt.Errorf("log path %q is a directory", path)
	}

	match := sessionMatcher(opts.SessionID)
	var lines []string
	offset, err := scanLines(file, func(line string) {
		if !match(line) {
			return
		}
		lines = append(lines, line)
		if opts.Limit > 0 && len(lines) > opts.Limit {
			lines = lines[1:]
		}
	})
	if err != nil {
		return TailResult{}, err
	}
	return TailResult{Lines: lines, Offset: offset}, nil
}

// Follow calls fn for each matching line appended to path after offset,
// polling every interval until ctx is done. A truncated file is read again
// from the start.
func Follow(ctx context.Context, path string, offset int64, sessionID string, interval time.Duration, fn func(string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	match := sessionMatcher(sessionID)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, func(line string) {
			if match(line) {
				fn(line)
			}
		})
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, fn func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	read, err := scanLines(file, fn)
	if err != nil {
		return offset, err
	}
	return offset + read, nil
}

// scanLines feeds complete lines to fn and reports how many bytes they
// covered. A trailing partial line is left for the next read.
func scanLines(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return consumed, nil
			}
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		if len(line) > maxLineSize {
			continue
		}
		fn(strings.TrimRight(line, "\r\n"))
	}
}

func sessionMatcher(sessionID string) func(string) bool {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return func(string) bool { return true }
	}
	console := logging.FieldSessionID + "=" + sessionID
	json := fmt.Sprintf("%q:%q", logging.FieldSessionID, sessionID)
	return func(line string) bool {
		return strings.Contains(line, console) || strings.Contains(line, json)
	}
}
