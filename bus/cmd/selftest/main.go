// On-target smoke test for the message bus: runs a fixed sequence of
// pub/sub, wildcard, retained and request/reply checks and prints
// PASS/FAIL per check. Uses println only, so it runs unchanged on host
// and MCU builds.
package main

import (
	"context"
	"time"

	"plantcode-go/bus"
)

var failed int

func check(name string, ok bool) {
	if ok {
		println("PASS", name)
	} else {
		failed++
		println("FAIL", name)
	}
}

func recvPayload(sub *bus.Subscription) any {
	select {
	case m := <-sub.Channel():
		return m.Payload
	case <-time.After(250 * time.Millisecond):
		return nil
	}
}

func main() {
	time.Sleep(2 * time.Second)
	println("bus selftest")

	b := bus.NewBus(8)
	a := b.NewConnection("a")
	c := b.NewConnection("c")

	// Exact-topic delivery.
	sub := c.Subscribe(bus.Topic{"t", "exact"})
	a.Publish(&bus.Message{Topic: bus.Topic{"t", "exact"}, Payload: 1})
	check("exact", recvPayload(sub) == 1)
	sub.Unsubscribe()

	// Single-level wildcard.
	sub = c.Subscribe(bus.Topic{"t", bus.WildOne, "z"})
	a.Publish(&bus.Message{Topic: bus.Topic{"t", "mid", "z"}, Payload: 2})
	check("wild-one", recvPayload(sub) == 2)
	sub.Unsubscribe()

	// Multi-level wildcard matches deep topics.
	sub = c.Subscribe(bus.Topic{"t", bus.WildAll})
	a.Publish(&bus.Message{Topic: bus.Topic{"t", "x", "y", "z"}, Payload: 3})
	check("wild-all", recvPayload(sub) == 3)
	sub.Unsubscribe()

	// Retained message reaches a late subscriber.
	a.Publish(&bus.Message{Topic: bus.Topic{"t", "kept"}, Payload: 4, Retained: true})
	sub = c.Subscribe(bus.Topic{"t", "kept"})
	check("retained", recvPayload(sub) == 4)
	sub.Unsubscribe()

	// Request/reply round trip.
	srv := c.Subscribe(bus.Topic{"t", "echo"})
	go func() {
		if m := <-srv.Channel(); m.CanReply() {
			c.Reply(m, m.Payload, false)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	reply, err := a.RequestWait(ctx, &bus.Message{Topic: bus.Topic{"t", "echo"}, Payload: 5})
	cancel()
	check("request-reply", err == nil && reply.Payload == 5)

	if failed == 0 {
		println("selftest: all checks passed")
	} else {
		println("selftest: failures:", failed)
	}
	for {
		time.Sleep(time.Hour)
	}
}
