// Package soil provides a driver for capacitive soil moisture probes
// read through an ADC pin. The probe's output falls as the soil gets
// wetter, so percent conversion runs on an inverted, calibrated scale:
//
//	d := soil.New(pin)
//	d.Configure(soil.Config{WetCount: 2300, DryCount: 4095})
//	raw, err := d.Read()
//	pct := d.Percent(raw)
//
// The driver avoids floating-point; all conversion is integer maths.
package soil

import (
	"errors"

	"plantcode-go/x/mathx"
)

// Errors returned by the driver.
var (
	ErrNoSignal = errors.New("soil: no signal")
)

// ADCPin is the single-channel read surface the driver runs on. On MCU
// builds this is machine.ADC; tests supply a fake.
type ADCPin interface {
	Get() uint16
}

// Config holds the probe calibration. All fields are optional.
type Config struct {
	// DryCount is the raw reading in open air (probe fully dry).
	// Default 4095 (12-bit full scale).
	DryCount uint16
	// WetCount is the raw reading fully submerged. Default 2300.
	WetCount uint16
	// Samples is the per-Read oversampling count. Default 4.
	Samples uint8
}

// Device wraps one probe on one ADC pin.
type Device struct {
	pin ADCPin
	cfg Config
}

// New creates a Device. The ADC pin must already be configured.
func New(pin ADCPin) Device {
	return Device{pin: pin}
}

// Configure applies optional calibration. May be called with no cfg.
func (d *Device) Configure(cfgs ...Config) {
	var c Config
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.DryCount == 0 {
		c.DryCount = 4095
	}
	if c.WetCount == 0 {
		c.WetCount = 2300
	}
	if c.Samples == 0 {
		c.Samples = 4
	}
	d.cfg = c
}

// noSignalFloor: a disconnected probe pulls the input near ground, far
// below any plausible in-soil reading.
const noSignalFloor = 64

// Read returns one oversampled raw count. ErrNoSignal means the probe
// looks disconnected; the count is still returned for diagnostics.
func (d *Device) Read() (uint16, error) {
	if d.cfg.Samples == 0 {
		d.Configure()
	}
	n := uint32(d.cfg.Samples)
	var sum uint32
	for i := uint32(0); i < n; i++ {
		sum += uint32(d.pin.Get())
	}
	raw := uint16(mathx.RoundDiv(sum, n))
	if raw < noSignalFloor {
		return raw, ErrNoSignal
	}
	return raw, nil
}

// Percent converts a raw count to calibrated moisture percent.
// WetCount and below map to 100, DryCount and above to 0.
func (d *Device) Percent(raw uint16) uint8 {
	p := mathx.MapI32(int32(raw), int32(d.cfg.WetCount), int32(d.cfg.DryCount), 100, 0)
	return uint8(mathx.Clamp(p, 0, 100))
}
