// Package framequeue provides the bounded, lock-protected frame queue used
// between lookahead stages.
//
// A Queue has a fixed capacity, one mutex and two condition variables
// (non-empty and non-full). Methods suffixed or documented as "caller holds
// the lock" let a goroutine hold two queues at once and move a run of frames
// between them atomically. Exceeding capacity or draining more frames than
// are queued is a programming error and panics.
package framequeue
