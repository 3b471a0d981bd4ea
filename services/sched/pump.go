package sched

import (
	"plantcode-go/errcode"
	"plantcode-go/types"
	"plantcode-go/x/mathx"
	"plantcode-go/x/timex"
)

// pumpTask is the timed-output task. A single locked flag across all
// targets guarantees that no two pump relays are ever on at once.
type pumpTask struct {
	locked   bool
	target   string
	pin      int // snapshot of the target's pin at trigger time
	deadline timex.Ticks
}

// TriggerPump starts a timed run of the named pump. The run keeps the
// output active until the tick that observes the deadline.
func (s *Scheduler) TriggerPump(target string, seconds uint32, now timex.Ticks) errcode.Code {
	if !s.pumpsOn {
		return errcode.Disabled
	}
	if s.pump.locked {
		return errcode.Busy
	}
	if seconds == 0 || (s.pumpsCfg.MaxSeconds > 0 && seconds > s.pumpsCfg.MaxSeconds) {
		return errcode.InvalidParams
	}
	pin, ok := s.pumpPin(target)
	if !ok {
		return errcode.UnknownTarget
	}
	s.pump = pumpTask{
		locked:   true,
		target:   target,
		pin:      pin,
		deadline: timex.Add(now, seconds*1000),
	}
	s.out.Set(pin, true)
	return errcode.OK
}

// CancelAllPumps is the emergency stop: every configured output is
// driven off regardless of lock state, and the task resets to idle.
func (s *Scheduler) CancelAllPumps() {
	for _, ch := range s.pumpsCfg.Channels {
		s.out.Set(ch.Pin, false)
	}
	s.pump = pumpTask{}
}

// PumpState reports the current run for status publication.
func (s *Scheduler) PumpState(now timex.Ticks) types.PumpState {
	if !s.pump.locked {
		return types.PumpState{}
	}
	var rem uint32
	if !timex.Reached(now, s.pump.deadline) {
		// Round up so a run never reports 0 while still active.
		rem = mathx.CeilDiv(timex.Since(s.pump.deadline, now), 1000)
	}
	return types.PumpState{Active: true, Target: s.pump.target, RemainingSeconds: rem}
}

func (s *Scheduler) tickPump(now timex.Ticks) {
	if !s.pump.locked {
		return
	}
	if !timex.Reached(now, s.pump.deadline) {
		return
	}
	s.out.Set(s.pump.pin, false)
	s.pump = pumpTask{}
}

func (s *Scheduler) pumpPin(target string) (int, bool) {
	for _, ch := range s.pumpsCfg.Channels {
		if ch.Label == target {
			return ch.Pin, true
		}
	}
	return 0, false
}
