package session

import (
	"context"
	"io"

	"lookahead/internal/frame"
)

// Source yields frames in submission order. Next returns io.EOF at end of
// stream.
type Source interface {
	Next(ctx context.Context, pool *frame.Pool) (*frame.Frame, error)
}

// SyntheticSource generates a fixed number of frames with scene cuts at the
// listed frame numbers.
type SyntheticSource struct {
	Frames    int
	SceneCuts []int64

	next int64
	cuts map[int64]bool
}

// Next returns the next synthetic frame.
func (s *SyntheticSource) Next(ctx context.Context, pool *frame.Pool) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= int64(s.Frames) {
		return nil, io.EOF
	}
	if s.cuts == nil {
		s.cuts = make(map[int64]bool, len(s.SceneCuts))
		for _, n := range s.SceneCuts {
			s.cuts[n] = true
		}
	}
	f := pool.Acquire(s.next)
	f.SceneCut = s.cuts[s.next]
	f.Cost = 1 + s.next%5
	if f.SceneCut {
		f.Cost *= 8
	}
	s.next++
	return f, nil
}
