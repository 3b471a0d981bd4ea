package sched

import (
	"plantcode-go/errcode"
	"plantcode-go/types"
	"plantcode-go/x/timex"
)

// sweepTask moves the servo from init to final and back, one degree per
// due tick. Angle bounds and step delay are snapshotted at trigger
// time, so a config change never bends an in-flight sweep.
type sweepTask struct {
	phase    types.ServoPhase
	angle    int16
	primed   bool // first step (the write of init) has happened
	lastStep timex.Ticks

	init      int16
	final     int16
	stepDelay uint32
}

// TriggerSweep starts a full out-and-back sweep. A trigger while the
// servo is moving is rejected, never queued.
func (s *Scheduler) TriggerSweep(now timex.Ticks) errcode.Code {
	if !s.servoOn {
		return errcode.Disabled
	}
	if s.sweep.phase != "" && s.sweep.phase != types.ServoIdle {
		return errcode.Busy
	}
	cfg := s.servoCfg
	if cfg.FinalAngle <= cfg.InitAngle {
		return errcode.InvalidParams
	}
	if err := s.servo.Acquire(cfg.Pin); err != nil {
		return errcode.Error
	}
	s.sweep = sweepTask{
		phase:     types.ServoMovingToFinal,
		angle:     cfg.InitAngle,
		lastStep:  now,
		init:      cfg.InitAngle,
		final:     cfg.FinalAngle,
		stepDelay: cfg.StepDelayMs,
	}
	return errcode.OK
}

// ServoState reports the sweep phase and angle for status publication.
func (s *Scheduler) ServoState() types.ServoState {
	if s.sweep.phase == "" || s.sweep.phase == types.ServoIdle {
		return types.ServoState{Phase: types.ServoIdle, Angle: s.sweep.angle}
	}
	return types.ServoState{Phase: s.sweep.phase, Angle: s.sweep.angle}
}

// tickServo performs at most one degree of movement per call. A full
// sweep over [init, final] therefore consumes exactly
// 2*(final-init)+1 due ticks: final-init+1 writes on the way out
// (including the initial position) and final-init on the way back.
func (s *Scheduler) tickServo(now timex.Ticks) {
	t := &s.sweep
	switch t.phase {
	case types.ServoMovingToFinal:
		if timex.Since(now, t.lastStep) < t.stepDelay {
			return
		}
		if !t.primed {
			t.primed = true
		} else {
			t.angle++
		}
		s.servo.SetAngle(t.angle)
		t.lastStep = now
		if t.angle >= t.final {
			t.phase = types.ServoMovingToInit
		}
	case types.ServoMovingToInit:
		if timex.Since(now, t.lastStep) < t.stepDelay {
			return
		}
		t.angle--
		s.servo.SetAngle(t.angle)
		t.lastStep = now
		if t.angle <= t.init {
			s.servo.Release()
			s.sweep = sweepTask{phase: types.ServoIdle, angle: t.angle}
		}
	}
}

// abortSweep releases the actuator immediately. Graceful: the next
// trigger behaves exactly like one from a cold start.
func (s *Scheduler) abortSweep() {
	if s.sweep.phase == "" || s.sweep.phase == types.ServoIdle {
		return
	}
	s.servo.Release()
	s.sweep = sweepTask{phase: types.ServoIdle}
}
