package lookahead

import "lookahead/internal/logging"

// runWorker is the dedicated lookahead goroutine. It reports startup on
// started, then loops filling staging from intake and deciding whenever the
// window is deep enough, until Flush requests exit.
func (s *State) runWorker(started chan<- error) {
	defer close(s.done)

	if s.workerCtx != nil {
		if err := s.workerCtx.Attach(); err != nil {
			s.ready.Lock()
			s.workerActive = false
			s.ready.Unlock()
			started <- err
			return
		}
	}
	started <- nil

	for {
		s.intake.Lock()
		if s.exitRequested {
			s.intake.Unlock()
			break
		}
		s.fillLocked()
		if s.staging.Len() <= s.windowThreshold {
			if s.intake.LenLocked() == 0 && !s.exitRequested {
				s.stats.inputWaits.Add(1)
			}
			for s.intake.LenLocked() == 0 && !s.exitRequested {
				s.intake.WaitNonEmpty()
			}
			s.intake.Unlock()
			continue
		}
		s.intake.Unlock()
		s.decide()
	}

	s.drain()

	s.ready.Lock()
	s.workerActive = false
	s.ready.BroadcastNonEmpty()
	s.ready.Unlock()
	s.logger.Debug("lookahead worker exited", logging.Uint64("runs", s.stats.runs.Load()))
}

// fillLocked moves as many intake frames into staging as fit. The caller
// holds the intake lock.
func (s *State) fillLocked() {
	s.staging.Lock()
	n := min(s.staging.FreeLocked(), s.intake.LenLocked())
	s.intake.MoveFront(s.staging, n)
	s.staging.Unlock()
}

// drain decides everything left in intake and staging. Intake is moved in
// capacity-sized chunks so staging never exceeds its bound.
func (s *State) drain() {
	for {
		s.intake.Lock()
		s.fillLocked()
		s.intake.Unlock()
		if s.staging.IsEmpty() {
			return
		}
		s.decide()
	}
}
