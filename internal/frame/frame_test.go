package frame_test

import (
	"testing"

	"lookahead/internal/frame"
)

func TestReleaseRecyclesOnLastShare(t *testing.T) {
	var recycled []int64
	pool := frame.NewPool(frame.WithRecycleHook(func(f *frame.Frame) {
		recycled = append(recycled, f.Number)
	}))

	f := pool.Acquire(7)
	f.Retain()
	if f.Refs() != 2 {
		t.Fatalf("expected 2 shares, got %d", f.Refs())
	}

	f.Release()
	if len(recycled) != 0 {
		t.Fatalf("frame recycled while a share remained: %v", recycled)
	}
	f.Release()
	if len(recycled) != 1 || recycled[0] != 7 {
		t.Fatalf("expected frame 7 recycled once, got %v", recycled)
	}

	stats := pool.Stats()
	if stats.Acquired != 1 || stats.Recycled != 1 || stats.Live != 0 {
		t.Fatalf("unexpected pool stats: %+v", stats)
	}
}

func TestAcquireReusesAndResetsFrames(t *testing.T) {
	pool := frame.NewPool()
	first := pool.Acquire(1)
	first.Type = frame.TypeReference
	first.RunLength = 3
	first.Keyframe = true
	first.Release()

	second := pool.Acquire(2)
	if second != first {
		t.Fatal("expected recycled frame to be reused")
	}
	if second.Number != 2 || second.Type != frame.TypePending || second.RunLength != 0 || second.Keyframe {
		t.Fatalf("reused frame not reset: %+v", second)
	}
	if second.Refs() != 1 {
		t.Fatalf("expected a single share on reuse, got %d", second.Refs())
	}
	if pool.Stats().Reused != 1 {
		t.Fatalf("expected reuse to be counted, got %+v", pool.Stats())
	}
}

func TestFreeListLimit(t *testing.T) {
	pool := frame.NewPool(frame.WithFreeListLimit(0))
	f := pool.Acquire(1)
	f.Release()
	if g := pool.Acquire(2); g == f {
		t.Fatal("expected no reuse with an empty free list limit")
	}
}

func TestOverReleasePanics(t *testing.T) {
	f := frame.New(1)
	f.Release()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on over-release")
		}
	}()
	f.Release()
}

func TestTypeString(t *testing.T) {
	cases := map[frame.Type]string{
		frame.TypePending:   "pending",
		frame.TypeReference: "reference",
		frame.TypeDependent: "dependent",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Fatalf("Type(%d).String() = %q, want %q", int(typ), got, want)
		}
	}
}
