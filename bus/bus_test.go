// bus/bus_test.go
package bus

import (
	"context"
	"sort"
	"testing"
	"time"
)

func recvPayload(t *testing.T, sub *Subscription) any {
	t.Helper()
	select {
	case got := <-sub.Channel():
		return got.Payload
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func expectNone(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case got := <-sub.Channel():
		t.Fatalf("unexpected message: %#v", got)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(Topic{"config", "pumps"})
	conn.Publish(conn.NewMessage(Topic{"config", "pumps"}, "hello", false))

	if got := recvPayload(t, sub); got != "hello" {
		t.Errorf("expected payload 'hello', got %v", got)
	}
}

func TestRetainedMessage(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(Topic{"state", "link"}, "up", true))

	// Late subscriber still sees the retained state.
	sub := conn.Subscribe(Topic{"state", "link"})
	if got := recvPayload(t, sub); got != "up" {
		t.Errorf("expected retained payload 'up', got %v", got)
	}
}

func TestWildcardSingleLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	s1 := c.Subscribe(Topic{"value", "+", "raw"})
	s2 := c.Subscribe(Topic{"value", "+", "+"})
	sNo := c.Subscribe(Topic{"value", "+", "mapped"})

	c.Publish(b.NewMessage(Topic{"value", "soil1", "raw"}, "m1", false))
	if got := recvPayload(t, s1); got != "m1" {
		t.Fatalf("s1 got %v", got)
	}
	if got := recvPayload(t, s2); got != "m1" {
		t.Fatalf("s2 got %v", got)
	}
	expectNone(t, sNo)

	// "+" never spans levels.
	c.Publish(b.NewMessage(Topic{"value", "raw"}, "m2", false))
	expectNone(t, s1)
	expectNone(t, s2)
}

func TestWildcardMultiLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	sHash := c.Subscribe(Topic{"ctrl", "#"})
	sExact := c.Subscribe(Topic{"ctrl"})

	// "#" matches zero levels too.
	c.Publish(b.NewMessage(Topic{"ctrl"}, "p1", false))
	if got := recvPayload(t, sHash); got != "p1" {
		t.Fatalf("sHash got %v", got)
	}
	if got := recvPayload(t, sExact); got != "p1" {
		t.Fatalf("sExact got %v", got)
	}

	c.Publish(b.NewMessage(Topic{"ctrl", "pump", "start"}, "p2", false))
	if got := recvPayload(t, sHash); got != "p2" {
		t.Fatalf("sHash got %v", got)
	}
	expectNone(t, sExact)
}

func TestWildcardRetainedDelivery(t *testing.T) {
	b := NewBus(32)
	c := b.NewConnection("test")

	c.Publish(b.NewMessage(Topic{"value"}, "r0", true))
	c.Publish(b.NewMessage(Topic{"value", "soil1"}, "r1", true))
	c.Publish(b.NewMessage(Topic{"value", "soil1", "raw"}, "r2", true))
	c.Publish(b.NewMessage(Topic{"value", "soil2"}, "r3", true))

	drain := func(sub *Subscription, n int) []string {
		t.Helper()
		var out []string
		deadline := time.Now().Add(300 * time.Millisecond)
		for len(out) < n && time.Now().Before(deadline) {
			select {
			case m := <-sub.Channel():
				out = append(out, m.Payload.(string))
			case <-time.After(10 * time.Millisecond):
			}
		}
		if len(out) != n {
			t.Fatalf("expected %d retained messages, got %d (%v)", n, len(out), out)
		}
		sort.Strings(out)
		return out
	}

	all := drain(c.Subscribe(Topic{"value", "#"}), 4)
	if all[0] != "r0" || all[3] != "r3" {
		t.Fatalf("unexpected retained set: %v", all)
	}
	two := drain(c.Subscribe(Topic{"value", "+"}), 2)
	if two[0] != "r1" || two[1] != "r3" {
		t.Fatalf("unexpected one-level set: %v", two)
	}
}

func TestRetainedClear(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	c.Publish(b.NewMessage(Topic{"state", "pump"}, "on", true))
	c.Publish(b.NewMessage(Topic{"state", "servo"}, "idle", true))
	// nil payload clears the retained slot.
	c.Publish(b.NewMessage(Topic{"state", "pump"}, nil, true))

	sub := c.Subscribe(Topic{"state", "#"})
	if got := recvPayload(t, sub); got != "idle" {
		t.Fatalf("expected only 'idle' after clear, got %v", got)
	}
	expectNone(t, sub)
}

func TestQueueOverflowDropsOldest(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")
	sub := c.Subscribe(Topic{"x"})

	for i := 1; i <= 4; i++ {
		c.Publish(b.NewMessage(Topic{"x"}, i, false))
	}
	// Queue depth 2: the two newest survive.
	if got := recvPayload(t, sub); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
	if got := recvPayload(t, sub); got != 4 {
		t.Fatalf("expected 4, got %v", got)
	}
}

func TestRequestReply(t *testing.T) {
	b := NewBus(8)
	reqConn := b.NewConnection("requester")
	respConn := b.NewConnection("responder")

	reqTopic := Topic{"ctrl", "pump", "start"}
	respSub := respConn.Subscribe(reqTopic)
	defer respConn.Unsubscribe(respSub)

	go func() {
		if msg, ok := <-respSub.Channel(); ok {
			respConn.Reply(msg, "ok", false)
		}
	}()

	req := b.NewMessage(reqTopic, nil, false)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	reply, err := reqConn.RequestWait(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error waiting for reply: %v", err)
	}
	if got, ok := reply.Payload.(string); !ok || got != "ok" {
		t.Fatalf("unexpected reply payload: %#v", reply.Payload)
	}
	if !req.CanReply() {
		t.Fatal("request lacks ReplyTo after RequestWait")
	}
}

func TestRequestTimeout(t *testing.T) {
	b := NewBus(8)
	reqConn := b.NewConnection("requester")

	req := b.NewMessage(Topic{"service", "noop"}, nil, false)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := reqConn.RequestWait(ctx, req); err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}

func TestTopicInvalidTokenPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for non-comparable token, got none")
		}
	}()
	// []byte is not comparable, so T should panic.
	_ = T([]byte{1, 2, 3})
}
