// Package frame defines the shared-ownership picture handles that flow
// through the lookahead pipeline and the pool that recycles them.
//
// A Frame carries the coding decision (type, trailing dependent run length,
// keyframe and scene-cut markers) alongside a retention counter. Every holder
// of a Frame owns one share: queues hold the submitter's share while the
// frame is in flight, and the lookahead anchor slot adds its own share while
// the frame is the prediction anchor. Release hands the frame back to its Pool
// once the last share is dropped.
package frame
