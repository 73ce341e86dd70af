package lookahead

import (
	"fmt"

	"lookahead/internal/frame"
	"lookahead/internal/logging"
)

// decide runs one decision over the staging window and publishes the decided
// run to ready. Staging is private to the calling goroutine, so the
// classifier reads it without holding its lock.
func (s *State) decide() {
	window := s.staging.Window()
	if len(window) == 0 {
		panic("lookahead: decision on an empty staging window")
	}
	head := window[0]

	s.classifier.Classify(&Window{
		Frames:       window,
		Anchor:       s.lastReference,
		LastKeyframe: s.lastKeyframe,
		KeyintMax:    s.keyintMax,
	})
	if !head.Decided() {
		panic(fmt.Sprintf("lookahead: classifier left frame %d pending", head.Number))
	}
	run := head.RunLength + 1
	if head.RunLength < 0 || run > len(window) {
		panic(fmt.Sprintf("lookahead: frame %d run length %d outside window of %d", head.Number, head.RunLength, len(window)))
	}
	if head.Keyframe {
		s.lastKeyframe = head.Number
	}

	s.setAnchor(head)

	s.ready.Lock()
	defer s.ready.Unlock()
	if run > s.ready.Cap() {
		panic(fmt.Sprintf("lookahead: run of %d frames exceeds ready capacity %d", run, s.ready.Cap()))
	}
	if s.ready.FreeLocked() < run {
		s.stats.readyStalls.Add(1)
		s.logger.Debug("waiting for ready capacity",
			logging.Int64(logging.FieldFrame, head.Number),
			logging.Int("needed", run),
			logging.Int("free", s.ready.FreeLocked()),
		)
		for s.ready.FreeLocked() < run {
			s.ready.WaitNonFull()
		}
	}

	s.staging.Lock()
	s.staging.MoveFront(s.ready, run)
	forward := s.staging.Window()
	s.staging.Unlock()

	s.stats.runs.Add(1)
	s.stats.frames.Add(uint64(run))
	s.logger.Debug("run decided",
		logging.Int64(logging.FieldFrame, head.Number),
		logging.String(logging.FieldFrameType, head.Type.String()),
		logging.Int(logging.FieldRunLength, head.RunLength),
		logging.Bool("keyframe", head.Keyframe),
	)

	// The ready lock is still held, so the run stays invisible to the
	// consumer until keyframe propagation completes.
	if s.analyzeKeyframes && head.Type == frame.TypeReference && head.Keyframe {
		s.propagator.Propagate(PropagationWindow{
			Keyframe:     head,
			Window:       forward,
			KeyframePass: true,
		})
		s.stats.propagation.Add(1)
	}
}

// setAnchor moves the retained last_reference share to f, which may be nil.
func (s *State) setAnchor(f *frame.Frame) {
	if f != nil {
		f.Retain()
	}
	s.staging.Lock()
	prev := s.lastReference
	s.lastReference = f
	s.staging.Unlock()
	if prev != nil {
		prev.Release()
	}
	if f != nil {
		s.stats.anchorSwaps.Add(1)
	}
}
