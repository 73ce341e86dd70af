package slicetype

import (
	"lookahead/internal/frame"
	"lookahead/internal/lookahead"
)

// Pattern is a fixed-GOP classifier. Each run is a reference frame followed
// by up to BFrames dependents.
type Pattern struct {
	BFrames int
}

// Classify decides the window head.
func (p Pattern) Classify(w *lookahead.Window) {
	head := w.Frames[0]
	keyframe := forcesKeyframe(head, w.LastKeyframe, w.KeyintMax)
	lastKey := w.LastKeyframe
	if keyframe {
		lastKey = head.Number
	}
	run := boundedRun(w.Frames, max(p.BFrames, 0), lastKey, w.KeyintMax)
	decide(w.Frames, run, keyframe)
}

// forcesKeyframe reports whether f must open a new GOP.
func forcesKeyframe(f *frame.Frame, lastKeyframe int64, keyintMax int) bool {
	return f.SceneCut || f.Number-lastKeyframe >= int64(keyintMax)
}

// boundedRun shortens want so the run fits the window and ends before the
// next frame that must be a keyframe.
func boundedRun(window []*frame.Frame, want int, lastKeyframe int64, keyintMax int) int {
	run := min(want, len(window)-1)
	for i := 1; i <= run; i++ {
		if forcesKeyframe(window[i], lastKeyframe, keyintMax) {
			return i - 1
		}
	}
	return run
}

func decide(window []*frame.Frame, run int, keyframe bool) {
	head := window[0]
	head.Type = frame.TypeReference
	head.RunLength = run
	head.Keyframe = keyframe
	for _, f := range window[1 : run+1] {
		f.Type = frame.TypeDependent
		f.Keyframe = false
	}
}
