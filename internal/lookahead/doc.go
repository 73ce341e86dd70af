// Package lookahead schedules frame-type decisions ahead of compression and
// hands decided runs to the encoder in submission order.
//
// A State owns three bounded queues. In threaded mode (SyncLookahead > 0)
// frames enter intake, a dedicated worker goroutine moves them into the
// private staging window, runs the decision step once the window is deep
// enough, and publishes each decided run (a reference frame plus its trailing
// dependents) to ready. In inline mode frames go straight to staging and
// RetrieveReadyRun runs the same decision step on the caller's goroutine.
//
// Lock pairs are {intake, staging} while filling and {ready, staging} while
// deciding or checking for drain. The two pairs never nest, so no global lock
// order is needed.
//
// Flush marks end of stream: the worker drains every queued frame through the
// decision step, then clears worker_active and wakes the consumer, which
// observes an empty run once ready is exhausted. Shutdown additionally joins
// the worker, frees its context, and releases every frame still queued along
// with the anchor share.
package lookahead
