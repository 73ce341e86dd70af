// Package slicetype provides deterministic frame-type classifiers and a cost
// propagator that plug into the lookahead scheduler.
//
// Pattern places reference frames every BFrames+1 pictures and honours scene
// cuts and the maximum keyframe interval. Script replays a fixed list of run
// lengths. CostPropagator accumulates a forward propagation cost into the
// window after each decided keyframe.
package slicetype
