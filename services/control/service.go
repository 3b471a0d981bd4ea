// Package control owns the single poll goroutine that drives the whole
// device: every loop iteration ticks the wifi machine, and only while
// the link is up ticks the scheduler exactly once. The same goroutine
// serves the bus glue (ctrl commands in, retained state out), so the
// scheduler and machine are never touched from anywhere else.
package control

import (
	"context"
	"time"

	"plantcode-go/bus"
	"plantcode-go/errcode"
	"plantcode-go/services/sched"
	"plantcode-go/services/wifi"
	"plantcode-go/types"
	"plantcode-go/x/timex"
)

const defaultPollInterval = 10 * time.Millisecond

type Service struct {
	sched   *sched.Scheduler
	machine *wifi.Machine

	// PollInterval may be shortened before Start (tests do).
	PollInterval time.Duration

	nowFn func() timex.Ticks

	// Last published snapshots, so retained topics only see changes.
	lastLink   types.LinkState
	haveLink   bool
	lastPump   types.PumpState
	havePump   bool
	lastServo  types.ServoState
	haveServo  bool
	lastSoil   map[string]sched.Reading
	lastAir    sched.AirReading
	haveAir    bool
	lastSmooth types.SmoothResult
	haveSm     bool

	labels []string // sensor labels from the last sensors config
}

func NewService(sch *sched.Scheduler, m *wifi.Machine) *Service {
	return &Service{
		sched:        sch,
		machine:      m,
		PollInterval: defaultPollInterval,
		nowFn:        timex.NowTicks,
		lastSoil:     make(map[string]sched.Reading),
	}
}

// Start launches the poll loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigAll)
	defer conn.Unsubscribe(cfgSub)
	ctrlSub := conn.Subscribe(topicCtrlAll)
	defer conn.Unsubscribe(ctrlSub)

	s.machine.Start(s.nowFn())
	s.publishLink(conn)

	tick := time.NewTicker(s.PollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: control service stopping")
			return
		case msg := <-cfgSub.Channel():
			s.applyConfig(msg)
		case msg := <-ctrlSub.Channel():
			s.handleControl(conn, msg)
		case <-tick.C:
			s.step(conn, s.nowFn())
		}
	}
}

// step is one poll-loop iteration.
func (s *Service) step(conn *bus.Connection, now timex.Ticks) {
	switch s.machine.Tick(now) {
	case wifi.EventConnected:
		println("Info: control: link up, scheduler running")
	case wifi.EventLost:
		println("Warn: control: link lost, reconnecting")
	case wifi.EventProvisioning:
		println("Warn: control: retry budget exhausted, awaiting provisioning")
	}
	s.publishLink(conn)

	if !s.machine.Connected() {
		return
	}
	s.sched.Tick(now)
	s.publishStatus(conn, now)
}

// ---- config ----------------------------------------------------------------

// applyConfig routes a typed "config/<section>" payload to its owner.
// Untyped payloads (unknown sections) are ignored here.
func (s *Service) applyConfig(msg *bus.Message) {
	switch cfg := msg.Payload.(type) {
	case types.NetConfig:
		s.machine.ApplyConfig(wifi.Config{
			MaxAttempts:     cfg.MaxAttempts,
			RetryIntervalMs: cfg.RetryIntervalMs,
			ProbeIntervalMs: cfg.ProbeIntervalMs,
		})
	case types.PumpsConfig:
		s.sched.ConfigurePumps(cfg)
	case types.ServoConfig:
		s.sched.ConfigureServo(cfg)
	case types.SensorsConfig:
		s.sched.ConfigureSensors(cfg)
		s.labels = s.labels[:0]
		for _, ch := range cfg.Channels {
			s.labels = append(s.labels, ch.Label)
		}
		clear(s.lastSoil)
	case types.SmoothConfig:
		s.sched.ConfigureSmooth(cfg)
	}
}

// ---- commands --------------------------------------------------------------

func (s *Service) handleControl(conn *bus.Connection, msg *bus.Message) {
	code := s.dispatch(msg)
	if code == errcode.OK {
		conn.Reply(msg, types.OKReply{OK: true}, false)
		return
	}
	println("Warn: control: command rejected:", string(code))
	conn.Reply(msg, types.ErrorReply{OK: false, Error: string(code)}, false)
}

func (s *Service) dispatch(msg *bus.Message) errcode.Code {
	if len(msg.Topic) != 3 {
		return errcode.InvalidTopic
	}
	group, _ := msg.Topic[1].(string)
	verb, _ := msg.Topic[2].(string)
	now := s.nowFn()

	switch group {
	case "pump":
		switch verb {
		case "start":
			p, ok := msg.Payload.(types.PumpStart)
			if !ok {
				return errcode.InvalidPayload
			}
			if !s.machine.Connected() {
				return errcode.NotConnected
			}
			return s.sched.TriggerPump(p.Target, p.Seconds, now)
		case "stop_all":
			// Always honoured, link or no link: this is the safety path.
			s.sched.CancelAllPumps()
			return errcode.OK
		}
	case "servo":
		if verb == "sweep" {
			if !s.machine.Connected() {
				return errcode.NotConnected
			}
			return s.sched.TriggerSweep(now)
		}
	case "smooth":
		if verb == "start" {
			p, ok := msg.Payload.(types.SmoothStart)
			if !ok {
				return errcode.InvalidPayload
			}
			if !s.machine.Connected() {
				return errcode.NotConnected
			}
			return s.sched.TriggerSmooth(p.Label, p.Count, p.IntervalMs, now)
		}
	case "feature":
		if verb == "set" {
			p, ok := msg.Payload.(types.FeatureSet)
			if !ok {
				return errcode.InvalidPayload
			}
			return s.sched.SetFeatureEnabled(p.Feature, p.Enabled)
		}
	case "net":
		if verb == "forget" {
			s.machine.Forget()
			return errcode.OK
		}
	}
	return errcode.InvalidTopic
}

// ---- status publication ----------------------------------------------------

func (s *Service) publishLink(conn *bus.Connection) {
	st := s.machine.State()
	if s.haveLink &&
		st.Phase == s.lastLink.Phase &&
		st.SSID == s.lastLink.SSID &&
		st.Attempts == s.lastLink.Attempts {
		return
	}
	s.lastLink = st
	s.haveLink = true
	conn.Publish(&bus.Message{Topic: topicStateLink, Payload: st, Retained: true})
}

func (s *Service) publishStatus(conn *bus.Connection, now timex.Ticks) {
	if p := s.sched.PumpState(now); !s.havePump || p != s.lastPump {
		s.lastPump = p
		s.havePump = true
		conn.Publish(&bus.Message{Topic: topicStatePump, Payload: p, Retained: true})
	}
	if v := s.sched.ServoState(); !s.haveServo || v != s.lastServo {
		s.lastServo = v
		s.haveServo = true
		conn.Publish(&bus.Message{Topic: topicStateServo, Payload: v, Retained: true})
	}

	for _, label := range s.labels {
		r, code := s.sched.LatestReading(label)
		if code != errcode.OK {
			continue
		}
		if prev, ok := s.lastSoil[label]; ok && prev == r {
			continue
		}
		s.lastSoil[label] = r
		conn.Publish(&bus.Message{
			Topic: topicValSoil(label),
			Payload: types.SoilValue{
				Label:  label,
				Raw:    r.Raw,
				Mapped: r.Mapped,
				Status: r.Status,
				TSms:   timex.NowMs(),
			},
			Retained: true,
		})
	}

	if a, code := s.sched.LatestAir(); code == errcode.OK && (!s.haveAir || a != s.lastAir) {
		s.lastAir = a
		s.haveAir = true
		conn.Publish(&bus.Message{
			Topic: topicValAir,
			Payload: types.AirValue{
				TempDeciC: a.TempDeciC,
				RHDeciPct: a.RHDeciPct,
				Status:    a.Status,
				TSms:      timex.NowMs(),
			},
			Retained: true,
		})
	}

	if res, ok := s.sched.SmoothResult(); ok && (!s.haveSm || res != s.lastSmooth) {
		s.lastSmooth = res
		s.haveSm = true
		conn.Publish(&bus.Message{Topic: topicValSmooth, Payload: res, Retained: true})
	}
}
