package framequeue

import (
	"fmt"
	"sync"

	"lookahead/internal/frame"
)

// Queue is a fixed-capacity ordered sequence of frame handles.
type Queue struct {
	name     string
	mu       sync.Mutex
	nonEmpty *sync.Cond
	nonFull  *sync.Cond
	frames   []*frame.Frame
	capacity int
}

// New constructs an empty queue. A capacity below one panics.
func New(name string, capacity int) *Queue {
	if capacity < 1 {
		panic(fmt.Sprintf("framequeue %s: capacity %d must be positive", name, capacity))
	}
	q := &Queue{
		name:     name,
		frames:   make([]*frame.Frame, 0, capacity),
		capacity: capacity,
	}
	q.nonEmpty = sync.NewCond(&q.mu)
	q.nonFull = sync.NewCond(&q.mu)
	return q
}

// Name identifies the queue in logs and panics.
func (q *Queue) Name() string { return q.name }

// Cap returns the fixed capacity.
func (q *Queue) Cap() int { return q.capacity }

// Lock acquires the queue lock for the *Locked and Wait methods.
func (q *Queue) Lock() { q.mu.Lock() }

// Unlock releases the queue lock.
func (q *Queue) Unlock() { q.mu.Unlock() }

// Len returns the current length.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// IsFull reports whether the queue is at capacity.
func (q *Queue) IsFull() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames) == q.capacity
}

// IsEmpty reports whether the queue holds no frames.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames) == 0
}

// LenLocked returns the current length. The caller holds the lock.
func (q *Queue) LenLocked() int { return len(q.frames) }

// FreeLocked returns the remaining capacity. The caller holds the lock.
func (q *Queue) FreeLocked() int { return q.capacity - len(q.frames) }

// Head returns the first frame, or nil when empty. The caller holds the lock.
func (q *Queue) Head() *frame.Frame {
	if len(q.frames) == 0 {
		return nil
	}
	return q.frames[0]
}

// Window returns the queued frames in order. The slice aliases the queue's
// storage and is only valid while the lock is held and the queue unchanged.
func (q *Queue) Window() []*frame.Frame { return q.frames }

// Push appends f to the tail and signals waiters on the non-empty
// condition. The caller holds the lock and has ensured there is room.
func (q *Queue) Push(f *frame.Frame) {
	if len(q.frames) >= q.capacity {
		panic(fmt.Sprintf("framequeue %s: push beyond capacity %d", q.name, q.capacity))
	}
	q.frames = append(q.frames, f)
	q.nonEmpty.Broadcast()
}

// PushWait blocks while the queue is full and then appends f.
func (q *Queue) PushWait(f *frame.Frame) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.frames) >= q.capacity {
		q.nonFull.Wait()
	}
	q.Push(f)
}

// MoveFront removes count frames from the head of q and appends them in
// order to dst. The caller holds both locks.
func (q *Queue) MoveFront(dst *Queue, count int) {
	if count < 0 || count > len(q.frames) {
		panic(fmt.Sprintf("framequeue %s: move of %d frames with %d queued", q.name, count, len(q.frames)))
	}
	if len(dst.frames)+count > dst.capacity {
		panic(fmt.Sprintf("framequeue %s: move of %d frames overflows %s (%d/%d)",
			q.name, count, dst.name, len(dst.frames), dst.capacity))
	}
	if count == 0 {
		return
	}
	dst.frames = append(dst.frames, q.frames[:count]...)
	q.shift(count)
	dst.nonEmpty.Broadcast()
	q.nonFull.Broadcast()
}

// PopFront removes and returns count frames from the head, signalling
// waiters on the non-full condition. The caller holds the lock.
func (q *Queue) PopFront(count int) []*frame.Frame {
	if count < 0 || count > len(q.frames) {
		panic(fmt.Sprintf("framequeue %s: pop of %d frames with %d queued", q.name, count, len(q.frames)))
	}
	if count == 0 {
		return nil
	}
	out := make([]*frame.Frame, count)
	copy(out, q.frames[:count])
	q.shift(count)
	q.nonFull.Broadcast()
	return out
}

// Drain removes every queued frame.
func (q *Queue) Drain() []*frame.Frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.PopFront(len(q.frames))
}

// WaitNonEmpty blocks on the non-empty condition. The caller holds the lock;
// it is released while waiting and reacquired before returning. Callers
// re-check their predicate in a loop.
func (q *Queue) WaitNonEmpty() { q.nonEmpty.Wait() }

// WaitNonFull blocks on the non-full condition, see WaitNonEmpty.
func (q *Queue) WaitNonFull() { q.nonFull.Wait() }

// BroadcastNonEmpty wakes every waiter on the non-empty condition.
func (q *Queue) BroadcastNonEmpty() { q.nonEmpty.Broadcast() }

// BroadcastNonFull wakes every waiter on the non-full condition.
func (q *Queue) BroadcastNonFull() { q.nonFull.Broadcast() }

func (q *Queue) shift(count int) {
	n := copy(q.frames, q.frames[count:])
	clear(q.frames[n:])
	q.frames = q.frames[:n]
}
