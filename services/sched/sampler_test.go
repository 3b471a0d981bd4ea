package sched

import (
	"errors"
	"testing"

	"plantcode-go/errcode"
	"plantcode-go/types"
	"plantcode-go/x/timex"
)

func TestMapMoisture(t *testing.T) {
	type C struct {
		raw  uint16
		want uint8
	}
	for _, c := range []C{
		{2300, 100},
		{2600, 84},
		{2900, 67},
		{3200, 50},
		{3500, 34},
		{4095, 0},
		{0, 100},    // below the floor clamps wet
		{1000, 100}, // ditto
	} {
		if got := mapMoisture(c.raw); got != c.want {
			t.Errorf("mapMoisture(%d) = %d, want %d", c.raw, got, c.want)
		}
	}
}

func TestSamplerOneSamplePerInterval(t *testing.T) {
	r := newRig()
	r.adc.byCh[34] = 2900
	now := timex.Ticks(0)

	// First tick samples immediately.
	r.s.Tick(now)
	if r.adc.reads != 1 {
		t.Fatalf("first tick should sample once, got %d reads", r.adc.reads)
	}
	rd, c := r.s.LatestReading("soil1")
	if c != errcode.OK || rd.Status != types.ReadingOk || rd.Raw != 2900 || rd.Mapped != 67 {
		t.Fatalf("unexpected reading %+v (code %v)", rd, c)
	}

	// Ticks inside the interval do not re-read.
	for ms := uint32(10); ms < 1000; ms += 10 {
		r.s.Tick(timex.Add(now, ms))
	}
	if r.adc.reads != 1 {
		t.Fatalf("sampled again inside the interval: %d reads", r.adc.reads)
	}

	r.adc.byCh[34] = 3200
	r.s.Tick(timex.Add(now, 1000))
	if r.adc.reads != 2 {
		t.Fatalf("due tick should sample: %d reads", r.adc.reads)
	}
	if rd, _ := r.s.LatestReading("soil1"); rd.Raw != 3200 || rd.Mapped != 50 {
		t.Fatalf("stale reading after due tick: %+v", rd)
	}
}

func TestSamplerDisabledChannel(t *testing.T) {
	r := newRig()
	r.s.Tick(0)

	// soil2 is configured but disabled: tagged Disabled, never sampled.
	rd, c := r.s.LatestReading("soil2")
	if c != errcode.OK || rd.Status != types.ReadingDisabled {
		t.Fatalf("disabled channel: %+v (code %v)", rd, c)
	}
	if _, c := r.s.LatestReading("nope"); c != errcode.UnknownChannel {
		t.Fatalf("unknown label: got %v", c)
	}
}

func TestSamplerFeatureSwitch(t *testing.T) {
	r := newRig()
	r.adc.byCh[34] = 2500
	r.s.Tick(0)

	r.s.SetFeatureEnabled(FeatureSensors, false)
	rd, _ := r.s.LatestReading("soil1")
	if rd.Status != types.ReadingDisabled {
		t.Fatalf("switched-off sensors must report Disabled, got %+v", rd)
	}
	reads := r.adc.reads
	r.s.Tick(5000)
	if r.adc.reads != reads {
		t.Fatal("switched-off sensors must not be sampled")
	}
}

func TestSamplerReadFailure(t *testing.T) {
	r := newRig()
	r.adc.script = []adcStep{{err: errors.New("adc saturated")}}
	r.adc.byCh[34] = 2700
	now := timex.Ticks(0)

	r.s.Tick(now)
	rd, _ := r.s.LatestReading("soil1")
	if rd.Status != types.ReadingError {
		t.Fatalf("failed read must be tagged, got %+v", rd)
	}

	// Next interval recovers without any task restart.
	r.s.Tick(timex.Add(now, 1000))
	rd, _ = r.s.LatestReading("soil1")
	if rd.Status != types.ReadingOk || rd.Raw != 2700 {
		t.Fatalf("sampler did not recover: %+v", rd)
	}
}

func TestSamplerNoReadingBeforeFirstSample(t *testing.T) {
	r := newRig()
	rd, c := r.s.LatestReading("soil1")
	if c != errcode.OK || rd.Status == types.ReadingOk {
		t.Fatalf("unsampled channel must not report Ok: %+v (code %v)", rd, c)
	}
}
