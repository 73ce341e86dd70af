package lookahead

import (
	"fmt"
	"log/slog"

	"lookahead/internal/frame"
)

// Mode selects how the decision step is driven.
type Mode int

const (
	// ModeInline runs decisions synchronously inside RetrieveReadyRun.
	ModeInline Mode = iota
	// ModeThreaded runs decisions on a dedicated worker goroutine.
	ModeThreaded
)

func (m Mode) String() string {
	switch m {
	case ModeInline:
		return "inline"
	case ModeThreaded:
		return "threaded"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// queueSlack is added to the configured depths when sizing queues.
const queueSlack = 3

// Options describes lookahead construction parameters.
type Options struct {
	// SyncLookahead is the intake window in frames; zero selects inline mode.
	SyncLookahead int
	// ReorderDelay is the encoder's frame delay, which bounds staging and
	// ready.
	ReorderDelay int
	// KeyintMax is the maximum distance between keyframes.
	KeyintMax int
	// DecisionWindow is the staging depth that must be exceeded before the
	// worker decides. Ignored in inline mode.
	DecisionWindow int
	// AnalyzeKeyframes runs propagation analysis on decided keyframes.
	AnalyzeKeyframes bool

	// Capacity overrides; zero derives the value from the depths above.
	IntakeCapacity  int
	StagingCapacity int
	ReadyCapacity   int

	Logger *slog.Logger
}

// Mode reports the pipeline mode these options select.
func (o Options) Mode() Mode {
	if o.SyncLookahead > 0 {
		return ModeThreaded
	}
	return ModeInline
}

func (o Options) intakeCapacity() int {
	if o.IntakeCapacity > 0 {
		return o.IntakeCapacity
	}
	return max(o.SyncLookahead, 0) + queueSlack
}

func (o Options) stagingCapacity() int {
	if o.StagingCapacity > 0 {
		return o.StagingCapacity
	}
	return max(o.ReorderDelay, 0) + queueSlack
}

func (o Options) readyCapacity() int {
	if o.ReadyCapacity > 0 {
		return o.ReadyCapacity
	}
	return max(o.ReorderDelay, 0) + queueSlack
}

// Window is the view handed to the Classifier for one decision.
type Window struct {
	// Frames is the staging window; Frames[0] is the head to decide.
	Frames []*frame.Frame
	// Anchor is the most recently decided head, or nil before the first
	// decision.
	Anchor *frame.Frame
	// LastKeyframe is the number of the most recent keyframe, starting at
	// -KeyintMax so the first frame can open a GOP.
	LastKeyframe int64
	KeyintMax    int
}

// Classifier finalizes the coding type and run length of the window head.
// It may revise tentative types of later frames but must leave the head
// decided with RunLength < len(Frames).
type Classifier interface {
	Classify(w *Window)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(w *Window)

func (fn ClassifierFunc) Classify(w *Window) { fn(w) }

// PropagationWindow is the input of a propagation pass.
type PropagationWindow struct {
	Keyframe *frame.Frame
	// Window is the forward window remaining in staging.
	Window       []*frame.Frame
	KeyframePass bool
}

// Propagator runs forward cost propagation over the lookahead window.
type Propagator interface {
	Propagate(p PropagationWindow)
}

// WorkerContext holds the worker's private analysis state.
type WorkerContext interface {
	// Attach binds the context to the worker goroutine before the loop
	// starts. An error aborts the worker.
	Attach() error
	Free() error
}

// ContextAllocator creates the worker's private context.
type ContextAllocator func() (WorkerContext, error)

// Hooks bundles the external collaborators driven by the lookahead.
type Hooks struct {
	Classifier Classifier
	// Propagator may be nil when AnalyzeKeyframes is false.
	Propagator Propagator
	// AllocateWorkerContext may be nil; it is only called in threaded mode.
	AllocateWorkerContext ContextAllocator
}
