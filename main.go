package main

import (
	"context"
	"sync"
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
	"plantcode-go/x/strx"
)

const deviceID = "plantbox"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot:", deviceID)

	ctx := context.Background()
	b := bus.NewBus(8)

	hw := platform.New()

	sch := sched.New(hw.Outputs, hw.Servo, hw.ADC)
	if hw.Air != nil {
		sch.AttachAir(hw.Air)
	}
	wm := wifi.NewMachine(hw.Link, hw.Store, wifi.Config{})

	ctl := control.NewService(sch, wm)
	if err := ctl.Start(ctx, b.NewConnection("control")); err != nil {
		println("Warn: control start failed:", err.Error())
	}

	hb := &heartbeat.Service{}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	startConsole(ctx, b, hw.Console, wm)

	// Config goes out last so every subscriber is already listening;
	// retained delivery covers any that are not.
	cfgCtx := context.WithValue(ctx, config.CtxDeviceKey, deviceID)
	config.NewService().Start(cfgCtx, b.NewConnection("config"))

	select {}
}

// startConsole wires the provisioning console. Join posts straight to
// the machine's inbox (thread-safe); forget goes over the bus so the
// control goroutine applies it; status reads the retained link state.
func startConsole(ctx context.Context, b *bus.Bus, port wifi.ConsolePort, wm *wifi.Machine) {
	conn := b.NewConnection("console")

	var mu sync.Mutex
	var link types.LinkState
	sub := conn.Subscribe(bus.Topic{"state", "link"})
	go func() {
		for m := range sub.Channel() {
			if st, ok := m.Payload.(types.LinkState); ok {
				mu.Lock()
				link = st
				mu.Unlock()
			}
		}
	}()

	wifi.StartConsole(ctx, port, wifi.ConsoleHandlers{
		Join: func(ssid, psk string) bool {
			return wm.Offer(wifi.Credentials{SSID: ssid, PSK: psk})
		},
		Forget: func() {
			conn.Publish(&bus.Message{Topic: bus.Topic{"ctrl", "net", "forget"}})
		},
		Status: func() string {
			mu.Lock()
			st := link
			mu.Unlock()
			return fmtx.Sprintf("link: %s ssid=%s attempts=%d",
				string(st.Phase), strx.Coalesce(st.SSID, "-"), st.Attempts)
		},
	})
}
