// Package sched is the cooperative task scheduler at the heart of the
// firmware. One Scheduler owns every task's state; all methods must be
// called from the single control goroutine (the poll loop). Nothing in
// here blocks: long-running work (a pump run, a servo sweep, a
// smooth-reading job) is decomposed into per-Tick steps gated by stored
// deadlines, and mutual exclusion is plain state guards, never locks.
package sched

import (
	"plantcode-go/errcode"
	"plantcode-go/types"
	"plantcode-go/x/timex"
)

// Outputs drives the pump relay pins. A write must complete in
// microseconds; anything slower belongs behind a worker.
type Outputs interface {
	Set(pin int, on bool)
}

// Servo owns the sweep actuator. Acquire attaches the PWM channel and
// Release detaches it so the horn can rest unpowered.
type Servo interface {
	Acquire(pin int) error
	SetAngle(deg int16)
	Release()
}

// ADC reads one analog channel. Errors are per-read and transient.
type ADC interface {
	Read(channel int) (uint16, error)
}

// Feature labels accepted by SetFeatureEnabled.
const (
	FeaturePumps   = "pumps"
	FeatureServo   = "servo"
	FeatureSensors = "sensors"
	FeatureSmooth  = "smooth"
)

type Scheduler struct {
	out   Outputs
	servo Servo
	adc   ADC

	pumpsCfg   types.PumpsConfig
	servoCfg   types.ServoConfig
	sensorsCfg types.SensorsConfig
	smoothCfg  types.SmoothConfig

	// Runtime feature switches, seeded from config, mutable via
	// SetFeatureEnabled. Disabling is always an immediate, graceful
	// reset of the owning task.
	pumpsOn   bool
	servoOn   bool
	sensorsOn bool
	smoothOn  bool

	pump     pumpTask
	sweep    sweepTask
	chans    []channelState
	smooth   smoothTask
	air      AirSensor // optional, nil => air channel disabled
	airState airTask

	lastSmooth types.SmoothResult
	haveSmooth bool
}

func New(out Outputs, servo Servo, adc ADC) *Scheduler {
	return &Scheduler{out: out, servo: servo, adc: adc}
}

// Tick advances every task exactly once, in fixed order. The caller
// supplies the millisecond tick counter so tests can step time and so
// the core never touches the wall clock.
func (s *Scheduler) Tick(now timex.Ticks) {
	s.tickPump(now)
	s.tickSampler(now)
	s.tickAir(now)
	s.tickServo(now)
	s.tickSmooth(now)
}

// ---- configuration -----------------------------------------------------------

// Configure* replace a section wholesale. Running tasks keep the
// snapshot they were triggered with; only the feature switches act on
// in-flight work (via SetFeatureEnabled below).

func (s *Scheduler) ConfigurePumps(cfg types.PumpsConfig) {
	s.pumpsCfg = cfg
	s.pumpsOn = cfg.Enabled
}

func (s *Scheduler) ConfigureServo(cfg types.ServoConfig) {
	s.servoCfg = cfg
	s.servoOn = cfg.Enabled
}

func (s *Scheduler) ConfigureSensors(cfg types.SensorsConfig) {
	s.sensorsCfg = cfg
	s.sensorsOn = cfg.Enabled
	s.chans = s.chans[:0]
	for _, ch := range cfg.Channels {
		s.chans = append(s.chans, channelState{cfg: ch})
	}
}

func (s *Scheduler) ConfigureSmooth(cfg types.SmoothConfig) {
	s.smoothCfg = cfg
	s.smoothOn = cfg.Enabled
}

// SetFeatureEnabled flips a runtime feature switch. Disabling resets
// the owning task immediately and unconditionally; the reset is
// idempotent, so repeated disables are harmless.
func (s *Scheduler) SetFeatureEnabled(feature string, on bool) errcode.Code {
	switch feature {
	case FeaturePumps:
		s.pumpsOn = on
		if !on {
			s.CancelAllPumps()
		}
	case FeatureServo:
		s.servoOn = on
		if !on {
			s.abortSweep()
		}
	case FeatureSensors:
		s.sensorsOn = on
	case FeatureSmooth:
		s.smoothOn = on
		if !on {
			s.smooth = smoothTask{}
		}
	default:
		return errcode.InvalidParams
	}
	return errcode.OK
}
