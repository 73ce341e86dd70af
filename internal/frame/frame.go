package frame

import (
	"fmt"
	"sync/atomic"
)

// Type is the coding type assigned by the lookahead decision.
type Type int

const (
	// TypePending marks a frame that has not been decided yet.
	TypePending Type = iota
	// TypeReference marks a frame usable as a prediction anchor (I/P).
	TypeReference
	// TypeDependent marks a bidirectionally predicted frame (B).
	TypeDependent
)

func (t Type) String() string {
	switch t {
	case TypePending:
		return "pending"
	case TypeReference:
		return "reference"
	case TypeDependent:
		return "dependent"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Frame is one picture awaiting or holding a type decision.
type Frame struct {
	// Number is the submission order index.
	Number int64
	Type   Type
	// RunLength counts the dependent frames that trail this frame up to the
	// next reference frame. Only meaningful on a decided run head.
	RunLength int
	// Keyframe is set on intra reference frames.
	Keyframe bool
	SceneCut bool
	// Cost is the opaque analysis input the classifier reads.
	Cost int64
	// PropagateCost accumulates the output of propagation analysis.
	PropagateCost int64

	refs atomic.Int32
	pool *Pool
}

// New returns a standalone frame holding one share. Frames created this way
// are not recycled when released.
func New(number int64) *Frame {
	f := &Frame{Number: number}
	f.refs.Store(1)
	return f
}

// Retain adds an ownership share.
func (f *Frame) Retain() {
	if f.refs.Add(1) <= 1 {
		panic(fmt.Sprintf("frame %d: retain after final release", f.Number))
	}
}

// Release drops an ownership share and returns the frame to its pool when
// no shares remain.
func (f *Frame) Release() {
	n := f.refs.Add(-1)
	switch {
	case n < 0:
		panic(fmt.Sprintf("frame %d: released more shares than held", f.Number))
	case n == 0 && f.pool != nil:
		f.pool.recycle(f)
	}
}

// Refs reports the number of ownership shares currently held.
func (f *Frame) Refs() int {
	return int(f.refs.Load())
}

// Decided reports whether the frame carries a final coding type.
func (f *Frame) Decided() bool {
	return f.Type != TypePending
}

func (f *Frame) String() string {
	return fmt.Sprintf("#%d(%s)", f.Number, f.Type)
}

func (f *Frame) reset(number int64) {
	f.Number = number
	f.Type = TypePending
	f.RunLength = 0
	f.Keyframe = false
	f.SceneCut = false
	f.Cost = 0
	f.PropagateCost = 0
	f.refs.Store(1)
}

// Numbers lists the submission numbers of frames, for logging and tests.
func Numbers(frames []*Frame) []int64 {
	out := make([]int64, len(frames))
	for i, f := range frames {
		out[i] = f.Number
	}
	return out
}

// ReleaseAll drops one share on each frame.
func ReleaseAll(frames []*Frame) {
	for _, f := range frames {
		if f != nil {
			f.Release()
		}
	}
}
