package sched

import (
	"errors"
	"testing"

	"plantcode-go/errcode"
	"plantcode-go/x/timex"
)

func TestSmoothAveraging(t *testing.T) {
	r := newRig()
	r.adc.script = []adcStep{
		{raw: 2300}, {raw: 2600}, {raw: 2900}, {raw: 3200}, {raw: 3500},
	}
	now := timex.Ticks(0)

	if c := r.s.TriggerSmooth("soil1", 5, 100, now); c != errcode.OK {
		t.Fatalf("trigger: %v", c)
	}

	// Park the periodic sampler so it cannot consume scripted steps
	// meant for the smooth task. Channel lookups for new triggers go
	// through config and already happened above.
	r.s.SetFeatureEnabled(FeatureSensors, false)

	// First sample fires on the very next tick (backdated lastSample).
	r.s.Tick(timex.Add(now, 1))
	if !r.s.SmoothRunning() {
		t.Fatal("task should still be running after the first sample")
	}
	if _, ok := r.s.SmoothResult(); ok {
		t.Fatal("no result may be published before completion")
	}

	// Remaining four samples, spaced by the interval.
	base := timex.Add(now, 1)
	for i := uint32(1); i <= 4; i++ {
		r.s.Tick(timex.Add(base, i*100))
	}

	res, ok := r.s.SmoothResult()
	if !ok || !res.Fresh {
		t.Fatalf("result should be fresh after the 5th sample: %+v ok=%v", res, ok)
	}
	if res.Label != "soil1" || res.RawAvg != 2900 || res.MappedAvg != 67 {
		t.Fatalf("unexpected averages: %+v", res)
	}
	if r.s.SmoothRunning() {
		t.Fatal("task must self-destroy on completion")
	}
}

func TestSmoothBusyRejection(t *testing.T) {
	r := newRig()
	r.adc.byCh[34] = 3000
	now := timex.Ticks(0)

	if c := r.s.TriggerSmooth("soil1", 3, 50, now); c != errcode.OK {
		t.Fatalf("trigger: %v", c)
	}
	r.s.Tick(timex.Add(now, 1)) // one sample taken

	if c := r.s.TriggerSmooth("soil1", 10, 10, timex.Add(now, 2)); c != errcode.Busy {
		t.Fatalf("want busy, got %v", c)
	}

	// The original run's parameters must be untouched: two more samples
	// at the original spacing complete it.
	r.s.Tick(timex.Add(now, 51))
	r.s.Tick(timex.Add(now, 101))
	res, ok := r.s.SmoothResult()
	if !ok || res.RawAvg != 3000 {
		t.Fatalf("original run corrupted by rejected trigger: %+v ok=%v", res, ok)
	}
}

func TestSmoothTriggerValidation(t *testing.T) {
	r := newRig()
	now := timex.Ticks(0)

	if c := r.s.TriggerSmooth("nope", 5, 100, now); c != errcode.UnknownChannel {
		t.Errorf("unknown channel: got %v", c)
	}
	if c := r.s.TriggerSmooth("soil2", 5, 100, now); c != errcode.UnknownChannel {
		t.Errorf("disabled channel: got %v", c)
	}
	if c := r.s.TriggerSmooth("soil1", 200, 100, now); c != errcode.InvalidParams {
		t.Errorf("count over max: got %v", c)
	}
	r.s.SetFeatureEnabled(FeatureSmooth, false)
	if c := r.s.TriggerSmooth("soil1", 5, 100, now); c != errcode.Disabled {
		t.Errorf("disabled feature: got %v", c)
	}
}

func TestSmoothDefaults(t *testing.T) {
	r := newRig()
	r.adc.byCh[34] = 2300
	now := timex.Ticks(0)

	// count=0, interval=0 pick up the configured defaults (5 x 100ms).
	if c := r.s.TriggerSmooth("soil1", 0, 0, now); c != errcode.OK {
		t.Fatalf("trigger: %v", c)
	}
	r.s.SetFeatureEnabled(FeatureSensors, false)
	for i := uint32(0); i <= 5; i++ {
		r.s.Tick(timex.Add(now, 1+i*100))
	}
	res, ok := r.s.SmoothResult()
	if !ok || res.RawAvg != 2300 || res.MappedAvg != 100 {
		t.Fatalf("defaults run: %+v ok=%v", res, ok)
	}
}

func TestSmoothFailedSampleForfeitsSlot(t *testing.T) {
	r := newRig()
	r.adc.script = []adcStep{
		{raw: 2300},
		{err: errors.New("adc glitch")},
		{raw: 2500},
		{raw: 2700},
	}
	now := timex.Ticks(0)

	if c := r.s.TriggerSmooth("soil1", 3, 100, now); c != errcode.OK {
		t.Fatalf("trigger: %v", c)
	}
	r.s.SetFeatureEnabled(FeatureSensors, false)

	// Four slots needed: one was lost to the glitch.
	for i := uint32(0); i <= 3; i++ {
		r.s.Tick(timex.Add(now, 1+i*100))
	}
	res, ok := r.s.SmoothResult()
	if !ok {
		t.Fatal("run should complete despite one failed sample")
	}
	if res.RawAvg != 2500 { // (2300+2500+2700)/3
		t.Fatalf("failed sample must not enter the average: %+v", res)
	}
}

func TestSmoothDisableMidRunResets(t *testing.T) {
	r := newRig()
	r.adc.byCh[34] = 2900
	now := timex.Ticks(0)

	r.s.TriggerSmooth("soil1", 5, 100, now)
	r.s.Tick(timex.Add(now, 1))
	r.s.SetFeatureEnabled(FeatureSmooth, false)

	if r.s.SmoothRunning() {
		t.Fatal("disable must reset the running task")
	}
	if _, ok := r.s.SmoothResult(); ok {
		t.Fatal("an aborted run must not publish a result")
	}
}

func TestSmoothResultPersistsUntilOverwritten(t *testing.T) {
	r := newRig()
	r.adc.byCh[34] = 2300
	now := timex.Ticks(0)

	r.s.TriggerSmooth("soil1", 1, 10, now)
	r.s.Tick(timex.Add(now, 1))
	first, ok := r.s.SmoothResult()
	if !ok || first.RawAvg != 2300 {
		t.Fatalf("first run: %+v ok=%v", first, ok)
	}

	// Result persists while idle.
	r.s.Tick(timex.Add(now, 10000))
	if got, ok := r.s.SmoothResult(); !ok || got != first {
		t.Fatalf("result should persist: %+v", got)
	}

	// And is replaced only by the next completed run.
	r.adc.byCh[34] = 4095
	r.s.TriggerSmooth("soil1", 1, 10, timex.Add(now, 20000))
	r.s.Tick(timex.Add(now, 20001))
	if got, _ := r.s.SmoothResult(); got.RawAvg != 4095 || got.MappedAvg != 0 {
		t.Fatalf("second run should overwrite: %+v", got)
	}
}
