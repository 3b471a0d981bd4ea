package sched

import (
	"plantcode-go/errcode"
	"plantcode-go/types"
	"plantcode-go/x/timex"
)

// smoothTask is the multi-sample averaging job ("smooth reading" in the
// device API): count spaced samples of one channel, then one published
// mean. Only one may run at a time.
type smoothTask struct {
	running    bool
	label      string
	adcCh      int // snapshot
	taken      uint8
	count      uint8
	intervalMs uint32
	rawSum     uint32
	mappedSum  uint32
	lastSample timex.Ticks
}

// TriggerSmooth starts a smooth-reading run. count/intervalMs of zero
// fall back to the configured defaults.
func (s *Scheduler) TriggerSmooth(label string, count uint8, intervalMs uint32, now timex.Ticks) errcode.Code {
	if !s.smoothOn {
		return errcode.Disabled
	}
	if s.smooth.running {
		return errcode.Busy
	}
	ch, ok := s.sensorChannel(label)
	if !ok || !ch.Enabled || !s.sensorsOn {
		return errcode.UnknownChannel
	}
	if count == 0 {
		count = s.smoothCfg.DefaultCount
	}
	if intervalMs == 0 {
		intervalMs = s.smoothCfg.DefaultIntervalMs
	}
	if count == 0 || (s.smoothCfg.MaxCount > 0 && count > s.smoothCfg.MaxCount) || intervalMs == 0 {
		return errcode.InvalidParams
	}
	s.smooth = smoothTask{
		running:    true,
		label:      label,
		adcCh:      ch.ADC,
		count:      count,
		intervalMs: intervalMs,
		// Backdate so the first sample fires on the next tick.
		lastSample: now - timex.Ticks(intervalMs),
	}
	return errcode.OK
}

// tickSmooth takes at most one sample per call. A failed read forfeits
// that sample slot (no retry within the slot) and the run carries on.
func (s *Scheduler) tickSmooth(now timex.Ticks) {
	t := &s.smooth
	if !t.running {
		return
	}
	if timex.Since(now, t.lastSample) < t.intervalMs {
		return
	}
	t.lastSample = now
	raw, err := s.adc.Read(t.adcCh)
	if err != nil {
		println("Warn: smooth:", t.label, "read failed:", err.Error())
		return
	}
	t.rawSum += uint32(raw)
	t.mappedSum += uint32(mapMoisture(raw))
	t.taken++
	if t.taken < t.count {
		return
	}
	n := uint32(t.count)
	s.lastSmooth = types.SmoothResult{
		Label:     t.label,
		RawAvg:    uint16(t.rawSum / n),
		MappedAvg: uint8(t.mappedSum / n),
		Fresh:     true,
	}
	s.haveSmooth = true
	s.smooth = smoothTask{}
}

// SmoothRunning reports whether a smooth-reading job is in flight.
func (s *Scheduler) SmoothRunning() bool { return s.smooth.running }

// SmoothResult returns the last completed run. It stays available until
// the next completed run overwrites it; ok is false before the first.
func (s *Scheduler) SmoothResult() (types.SmoothResult, bool) {
	return s.lastSmooth, s.haveSmooth
}
