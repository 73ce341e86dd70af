package lookahead

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lookahead/internal/frame"
	"lookahead/internal/framequeue"
)

// Runs randomized producer, consumer, and worker interleavings. Push and
// MoveFront panic before a queue can overflow, so completing without a panic
// is the capacity check; the sampler additionally confirms the lengths
// observed from outside the locks never exceed capacity.
func TestQueuesStayWithinCapacity(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	var rngMu sync.Mutex
	classifier := ClassifierFunc(func(w *Window) {
		rngMu.Lock()
		run := min(rng.IntN(3), len(w.Frames)-1)
		rngMu.Unlock()
		head := w.Frames[0]
		head.Type = frame.TypeReference
		head.RunLength = run
		for _, f := range w.Frames[1 : run+1] {
			f.Type = frame.TypeDependent
		}
	})

	s, err := New(Options{SyncLookahead: 2, ReorderDelay: 2, DecisionWindow: 2}, Hooks{Classifier: classifier})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	var stop atomic.Bool
	var violations atomic.Int64
	var sampler sync.WaitGroup
	sampler.Go(func() {
		for !stop.Load() {
			for _, q := range []*framequeue.Queue{s.intake, s.staging, s.ready} {
				if q.Len() > q.Cap() {
					violations.Add(1)
				}
			}
			time.Sleep(50 * time.Microsecond)
		}
	})

	const total = 300
	go func() {
		for i := range total {
			s.Submit(frame.New(int64(i)))
			if i%17 == 0 {
				time.Sleep(100 * time.Microsecond)
			}
		}
		s.Flush()
	}()

	received := 0
	for {
		run := s.RetrieveReadyRun()
		if len(run) == 0 {
			break
		}
		received += len(run)
		frame.ReleaseAll(run)
		if received%23 == 0 {
			time.Sleep(100 * time.Microsecond)
		}
	}
	stop.Store(true)
	sampler.Wait()

	if received != total {
		t.Fatalf("received %d frames, want %d", received, total)
	}
	if n := violations.Load(); n != 0 {
		t.Fatalf("observed %d capacity violations", n)
	}
	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
}
