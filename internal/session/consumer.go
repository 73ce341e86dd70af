package session

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"lookahead/internal/frame"
	"lookahead/internal/journal"
	"lookahead/internal/logging"
)

// consumer checks, journals, and releases decided runs. It is only used by
// one goroutine at a time.
type consumer struct {
	session *Session
	ctx     context.Context

	next      int64
	runs      []journal.RunRecord
	frames    int
	keyframes int
	err       error
}

func (c *consumer) handle(run []*frame.Frame) {
	defer frame.ReleaseAll(run)

	head := run[0]
	for i, f := range run {
		if f.Number != c.next {
			c.fail(fmt.Errorf("run headed by frame %d delivered frame %d out of order (expected %d)", head.Number, f.Number, c.next))
		}
		c.next = f.Number + 1
		if i > 0 && f.Keyframe {
			c.fail(fmt.Errorf("dependent frame %d marked as keyframe", f.Number))
		}
	}

	rec := journal.RunRecord{
		Seq:           len(c.runs),
		HeadFrame:     head.Number,
		RunLength:     head.RunLength,
		Keyframe:      head.Keyframe,
		SceneCut:      head.SceneCut,
		PropagateCost: head.PropagateCost,
	}
	c.runs = append(c.runs, rec)
	c.frames += len(run)
	if head.Keyframe {
		c.keyframes++
	}

	s := c.session
	s.logger.Debug("run delivered",
		logging.Int64(logging.FieldFrame, head.Number),
		logging.Int(logging.FieldRunLength, head.RunLength),
		logging.Bool("keyframe", head.Keyframe),
	)
	if s.store != nil && c.err == nil {
		if err := s.store.RecordRun(context.WithoutCancel(c.ctx), s.id, rec); err != nil {
			c.fail(err)
		}
	}
}

func (c *consumer) fail(err error) {
	if c.err == nil {
		c.session.logger.Error("run handling failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "session_consume_failed"),
			logging.String(logging.FieldErrorHint, "journaling stops; remaining runs are still released"),
		)
	}
	c.err = multierr.Append(c.err, err)
}
