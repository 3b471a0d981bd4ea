// Command hostsim runs the full firmware stack against simulated
// hardware and drives a scripted bench scenario: provision over the
// console path, water a plant, sweep the light bar, take a smooth
// reading, then pull the link.
package main

import (
	"context"
	"time"

	"plantcode-go/bus"
	"plantcode-go/platform"
	"plantcode-go/services/config"
	"plantcode-go/services/control"
	"plantcode-go/services/heartbeat"
	"plantcode-go/services/sched"
	"plantcode-go/services/wifi"
	"plantcode-go/types"
	"plantcode-go/x/fmtx"
)

func topicString(t bus.Topic) string {
	s := ""
	for i, tok := range t {
		if i > 0 {
			s += "/"
		}
		if str, ok := tok.(string); ok {
			s += str
		} else {
			s += fmtx.Sprint(tok)
		}
	}
	return s
}

func main() {
	println("[sim] bootstrapping bus ...")
	ctx := context.Background()
	b := bus.NewBus(16)

	hw, _ := platform.NewHostSet()
	adc := hw.ADC.(*platform.SimADC)
	link := hw.Link.(*platform.SimLink)
	store := hw.Store.(*platform.MemStore)

	// Pre-provisioned device: credentials already in the store.
	store.Creds = wifi.Credentials{SSID: "bench", PSK: "hunter2"}
	store.Have = true

	sch := sched.New(hw.Outputs, hw.Servo, hw.ADC)
	sch.AttachAir(hw.Air)
	wm := wifi.NewMachine(hw.Link, hw.Store, wifi.Config{})

	ctl := control.NewService(sch, wm)
	ctl.PollInterval = time.Millisecond
	_ = ctl.Start(ctx, b.NewConnection("control"))
	_ = (&heartbeat.Service{}).Start(ctx, b.NewConnection("heartbeat"))

	ui := b.NewConnection("ui")

	// Mirror every state and value topic to the terminal.
	mon := ui.Subscribe(bus.Topic{"state", bus.WildAll})
	monVal := ui.Subscribe(bus.Topic{"value", bus.WildAll})
	go func() {
		for {
			select {
			case m := <-mon.Channel():
				fmtx.Printf("[mon] %s %v\n", topicString(m.Topic), m.Payload)
			case m := <-monVal.Channel():
				fmtx.Printf("[mon] %s %v\n", topicString(m.Topic), m.Payload)
			}
		}
	}()

	cfgCtx := context.WithValue(ctx, config.CtxDeviceKey, "plantbox")
	config.NewService().Start(cfgCtx, b.NewConnection("config"))

	command := func(topic bus.Topic, payload any) {
		rctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		reply, err := ui.RequestWait(rctx, &bus.Message{Topic: topic, Payload: payload})
		if err != nil {
			fmtx.Printf("[sim] %s: %v\n", topicString(topic), err)
			return
		}
		fmtx.Printf("[sim] %s -> %v\n", topicString(topic), reply.Payload)
	}

	time.Sleep(200 * time.Millisecond) // let the link come up

	println("[sim] watering pump1 for 2 s ...")
	command(bus.Topic{"ctrl", "pump", "start"}, types.PumpStart{Target: "pump1", Seconds: 2})

	println("[sim] sweeping the light bar ...")
	command(bus.Topic{"ctrl", "servo", "sweep"}, nil)

	println("[sim] smooth reading on soil1 ...")
	adc.SetRaw(34, 2600)
	command(bus.Topic{"ctrl", "smooth", "start"},
		types.SmoothStart{Label: "soil1", Count: 5, IntervalMs: 50})

	time.Sleep(3 * time.Second)

	println("[sim] pulling the link ...")
	ui.Publish(&bus.Message{
		Topic:    bus.Topic{"config", "net"},
		Payload:  types.NetConfig{MaxAttempts: 5, RetryIntervalMs: 200, ProbeIntervalMs: 200},
		Retained: true,
	})
	time.Sleep(50 * time.Millisecond)
	link.Drop()
	time.Sleep(time.Second) // probe notices, machine reconnects

	println("[sim] done")
}
