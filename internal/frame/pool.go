package frame

import "sync"

// PoolStats is a snapshot of pool activity.
type PoolStats struct {
	Acquired uint64
	Recycled uint64
	Reused   uint64
	// Live counts frames handed out and not yet recycled.
	Live int64
}

// Pool hands out frames and takes them back once their last share is
// released. It is safe for concurrent use.
type Pool struct {
	mu     sync.Mutex
	free   []*Frame
	stats  PoolStats
	limit  int
	onFree func(*Frame)
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithFreeListLimit caps how many recycled frames are kept for reuse.
func WithFreeListLimit(n int) PoolOption {
	return func(p *Pool) {
		if n >= 0 {
			p.limit = n
		}
	}
}

// WithRecycleHook registers a callback invoked for every recycled frame.
func WithRecycleHook(fn func(*Frame)) PoolOption {
	return func(p *Pool) { p.onFree = fn }
}

// NewPool constructs an empty frame pool.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{limit: 64}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire returns a pending frame with the given submission number holding a
// single share.
func (p *Pool) Acquire(number int64) *Frame {
	p.mu.Lock()
	var f *Frame
	if n := len(p.free); n > 0 {
		f = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.stats.Reused++
	}
	p.stats.Acquired++
	p.stats.Live++
	p.mu.Unlock()

	if f == nil {
		f = &Frame{pool: p}
	}
	f.reset(number)
	return f
}

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Pool) recycle(f *Frame) {
	hook := p.onFree
	if hook != nil {
		hook(f)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Recycled++
	p.stats.Live--
	if len(p.free) < p.limit {
		p.free = append(p.free, f)
	}
}
