package sched

import (
	"plantcode-go/errcode"
	"plantcode-go/types"
	"plantcode-go/x/timex"
)

// AirSensor reads the optional air temperature/humidity probe. Values
// are fixed-point tenths (deci-°C, deci-%RH), matching the DHT driver.
type AirSensor interface {
	Read(pin int) (tempDeciC, rhDeciPct int16, err error)
}

// AirReading is the tagged latest sample, same shape as soil readings.
type AirReading struct {
	TempDeciC int16
	RHDeciPct int16
	Status    types.ReadingStatus
	At        timex.Ticks
}

type airTask struct {
	primed bool
	last   timex.Ticks
	value  AirReading
}

// AttachAir connects the probe. Without one the air channel just
// reports Disabled; everything else is unaffected.
func (s *Scheduler) AttachAir(a AirSensor) { s.air = a }

func (s *Scheduler) airEnabled() bool {
	return s.air != nil && s.sensorsOn && s.sensorsCfg.Air.Enabled
}

// tickAir samples the probe at most once per configured interval. DHT
// parts routinely miss a read; failures are tagged and retried on the
// next interval.
func (s *Scheduler) tickAir(now timex.Ticks) {
	if !s.airEnabled() {
		return
	}
	cfg := s.sensorsCfg.Air
	t := &s.airState
	if t.primed && timex.Since(now, t.last) < cfg.IntervalMs {
		return
	}
	t.primed = true
	t.last = now
	temp, rh, err := s.air.Read(cfg.Pin)
	if err != nil {
		println("Warn: air: read failed:", err.Error())
		t.value = AirReading{Status: types.ReadingError, At: now}
		return
	}
	t.value = AirReading{TempDeciC: temp, RHDeciPct: rh, Status: types.ReadingOk, At: now}
}

// LatestAir returns the newest air sample, Disabled when the channel
// is off or absent, ReadError-status zero before the first sample.
func (s *Scheduler) LatestAir() (AirReading, errcode.Code) {
	if !s.airEnabled() {
		return AirReading{Status: types.ReadingDisabled}, errcode.OK
	}
	if !s.airState.primed {
		return AirReading{Status: types.ReadingError}, errcode.OK
	}
	return s.airState.value, errcode.OK
}
