// Package session drives one encoding pass through the lookahead.
//
// A Session wires configuration into a lookahead.State, feeds it frames from
// a Source, consumes decided runs in order, and records each run in the
// decision journal when journaling is enabled. Threaded sessions run the
// producer and consumer as an errgroup; inline sessions interleave submission
// and retrieval on the calling goroutine, keeping at most ReorderDelay+1
// frames in flight.
package session
