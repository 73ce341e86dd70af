package slicetype

import (
	"sync/atomic"

	"lookahead/internal/lookahead"
)

// CostPropagator carries a decaying cost forward from each keyframe through
// the remaining lookahead window.
type CostPropagator struct {
	passes atomic.Int64
}

// Propagate adds the carried cost to every frame in the forward window.
// Each step keeps half of the carried cost and adds the frame's own cost.
func (c *CostPropagator) Propagate(p lookahead.PropagationWindow) {
	carry := max(p.Keyframe.Cost, 1)
	for _, f := range p.Window {
		carry = carry/2 + f.Cost
		f.PropagateCost += carry
	}
	c.passes.Add(1)
}

// Passes reports the number of completed propagation passes.
func (c *CostPropagator) Passes() int64 {
	return c.passes.Load()
}
