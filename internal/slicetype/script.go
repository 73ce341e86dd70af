package slicetype

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lookahead/internal/lookahead"
)

// Script assigns run lengths from a fixed list, cycling when it runs out.
// Scene cuts and the keyframe interval still shorten runs and force
// keyframes. A Script belongs to one lookahead.
type Script struct {
	runs []int
	next int
}

// NewScript returns a classifier that replays runs in order.
func NewScript(runs ...int) *Script {
	if len(runs) == 0 {
		runs = []int{0}
	}
	return &Script{runs: runs}
}

// ParseScript reads a comma-separated list of run lengths such as "0,2,2,1".
func ParseScript(value string) (*Script, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("empty run pattern")
	}
	parts := strings.Split(value, ",")
	runs := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("run pattern %q: %w", value, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("run pattern %q: negative run length %d", value, n)
		}
		runs = append(runs, n)
	}
	return NewScript(runs...), nil
}

// Classify decides the window head using the next scripted run length.
func (s *Script) Classify(w *lookahead.Window) {
	want := s.runs[s.next%len(s.runs)]
	s.next++

	head := w.Frames[0]
	keyframe := forcesKeyframe(head, w.LastKeyframe, w.KeyintMax)
	lastKey := w.LastKeyframe
	if keyframe {
		lastKey = head.Number
	}
	decide(w.Frames, boundedRun(w.Frames, want, lastKey, w.KeyintMax), keyframe)
}
