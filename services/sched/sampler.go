package sched

import (
	"plantcode-go/errcode"
	"plantcode-go/types"
	"plantcode-go/x/mathx"
	"plantcode-go/x/timex"
)

// Capacitive soil probes read high when dry, so the percent scale is
// inverted: rawFloor counts map to 100%, full-scale counts to 0%.
const (
	rawFloor = 2300
	rawCeil  = 4095
)

// mapMoisture converts a raw ADC count to the inverted percent scale.
func mapMoisture(raw uint16) uint8 {
	m := mathx.MapI32(int32(raw), rawFloor, rawCeil, 100, 0)
	return uint8(mathx.Clamp(m, 0, 100))
}

// Reading is a tagged sample: Status tells disabled and failed reads
// apart from a channel that genuinely read zero.
type Reading struct {
	Raw    uint16
	Mapped uint8
	Status types.ReadingStatus
	At     timex.Ticks
}

type channelState struct {
	cfg    types.SensorChannel
	primed bool // first sample taken
	last   timex.Ticks
	value  Reading
}

// tickSampler reads each enabled channel at most once per interval.
// A failed read is recorded as ReadingError and retried on the next
// interval; the sampler never aborts.
func (s *Scheduler) tickSampler(now timex.Ticks) {
	if !s.sensorsOn {
		return
	}
	for i := range s.chans {
		ch := &s.chans[i]
		if !ch.cfg.Enabled {
			continue
		}
		if ch.primed && timex.Since(now, ch.last) < ch.cfg.IntervalMs {
			continue
		}
		ch.primed = true
		ch.last = now
		raw, err := s.adc.Read(ch.cfg.ADC)
		if err != nil {
			println("Warn: sampler:", ch.cfg.Label, "read failed:", err.Error())
			ch.value = Reading{Status: types.ReadingError, At: now}
			continue
		}
		ch.value = Reading{Raw: raw, Mapped: mapMoisture(raw), Status: types.ReadingOk, At: now}
	}
}

// LatestReading returns the newest sample for a channel. Disabled
// channels (and the sensors feature switch being off) report a
// Disabled reading, never stale data dressed up as fresh.
func (s *Scheduler) LatestReading(label string) (Reading, errcode.Code) {
	for i := range s.chans {
		ch := &s.chans[i]
		if ch.cfg.Label != label {
			continue
		}
		if !s.sensorsOn || !ch.cfg.Enabled {
			return Reading{Status: types.ReadingDisabled}, errcode.OK
		}
		if !ch.primed {
			return Reading{Status: types.ReadingError}, errcode.OK
		}
		return ch.value, errcode.OK
	}
	return Reading{Status: types.ReadingDisabled}, errcode.UnknownChannel
}

// sensorChannel resolves a label to its config; used by the smooth task.
func (s *Scheduler) sensorChannel(label string) (types.SensorChannel, bool) {
	for _, ch := range s.sensorsCfg.Channels {
		if ch.Label == label {
			return ch, true
		}
	}
	return types.SensorChannel{}, false
}
