package journal

import (
	"sync/atomic"

	"lookahead/internal/frame"
	"lookahead/internal/lookahead"
)

// Replay classifies frames from a previous session's decisions. Heads the
// record does not cover are handed to the fallback classifier.
type Replay struct {
	byHead   map[int64]RunRecord
	fallback lookahead.Classifier

	hits, misses, clamped atomic.Int64
}

// ReplayStats counts how decisions were resolved.
type ReplayStats struct {
	Hits    int64
	Misses  int64
	Clamped int64
}

// NewReplay indexes runs by head frame. A nil fallback decides uncovered
// heads as single-frame reference runs.
func NewReplay(runs []RunRecord, fallback lookahead.Classifier) *Replay {
	byHead := make(map[int64]RunRecord, len(runs))
	for _, rec := range runs {
		byHead[rec.HeadFrame] = rec
	}
	return &Replay{byHead: byHead, fallback: fallback}
}

// Classify applies the recorded decision for the window head.
func (r *Replay) Classify(w *lookahead.Window) {
	head := w.Frames[0]
	rec, ok := r.byHead[head.Number]
	if !ok {
		r.misses.Add(1)
		if r.fallback != nil {
			r.fallback.Classify(w)
			return
		}
		head.Type = frame.TypeReference
		head.RunLength = 0
		return
	}
	r.hits.Add(1)

	run := rec.RunLength
	if limit := len(w.Frames) - 1; run > limit {
		r.clamped.Add(1)
		run = limit
	}
	head.Type = frame.TypeReference
	head.RunLength = run
	head.Keyframe = rec.Keyframe
	for _, f := range w.Frames[1 : run+1] {
		f.Type = frame.TypeDependent
		f.Keyframe = false
	}
}

// Stats reports replay hit, miss, and clamp counts.
func (r *Replay) Stats() ReplayStats {
	return ReplayStats{Hits: r.hits.Load(), Misses: r.misses.Load(), Clamped: r.clamped.Load()}
}
