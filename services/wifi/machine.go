// Package wifi holds the connection lifecycle state machine. The
// machine is pure: it is advanced by Tick(now) from the control loop,
// receives provisioning results through a one-deep inbox, and talks to
// the radio only through the Link interface.
package wifi

import (
	"plantcode-go/types"
	"plantcode-go/x/timex"
)

type Credentials struct {
	SSID string
	PSK  string
}

// Link abstracts the radio. Connect starts (or restarts) association
// and must return quickly; Up reflects the current association state.
type Link interface {
	Connect(ssid, psk string) error
	Up() bool
	Disconnect()
}

// CredentialStore persists the network credentials. The storage format
// behind it is a collaborator concern, not ours.
type CredentialStore interface {
	Load() (Credentials, bool)
	Save(Credentials) error
	Clear()
}

// Event is the one-shot signal a Tick may produce.
type Event uint8

const (
	EventNone Event = iota
	EventConnected    // just connected; dependent services may start
	EventLost         // link dropped; re-entering Connecting
	EventProvisioning // retry budget exhausted; credentials cleared
)

type Config struct {
	MaxAttempts     uint8
	RetryIntervalMs uint32
	ProbeIntervalMs uint32 // 0 disables the connected-link probe
}

type Machine struct {
	link  Link
	store CredentialStore
	cfg   Config

	phase       types.LinkPhase
	creds       Credentials
	attempts    uint8
	lastAttempt timex.Ticks
	lastProbe   timex.Ticks

	// Single-shot provisioning inbox, consumed on the next Tick. The
	// console goroutine posts here instead of mutating shared state.
	inbox chan Credentials
}

func NewMachine(link Link, store CredentialStore, cfg Config) *Machine {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RetryIntervalMs == 0 {
		cfg.RetryIntervalMs = 5000
	}
	return &Machine{
		link:  link,
		store: store,
		cfg:   cfg,
		phase: types.LinkUnprovisioned,
		inbox: make(chan Credentials, 1),
	}
}

// ApplyConfig replaces the retry/probe parameters. Takes effect from
// the next attempt; an in-flight budget keeps its count.
func (m *Machine) ApplyConfig(cfg Config) {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = m.cfg.MaxAttempts
	}
	if cfg.RetryIntervalMs == 0 {
		cfg.RetryIntervalMs = m.cfg.RetryIntervalMs
	}
	m.cfg = cfg
}

// Start loads stored credentials and begins connecting if any exist.
// A blank device stays Unprovisioned until the console offers some.
func (m *Machine) Start(now timex.Ticks) {
	if creds, ok := m.store.Load(); ok {
		m.creds = creds
		m.beginConnecting(now)
	}
}

// Offer posts provisioning credentials. Non-blocking; a second offer
// before the machine consumed the first is dropped.
func (m *Machine) Offer(c Credentials) bool {
	select {
	case m.inbox <- c:
		return true
	default:
		return false
	}
}

// Forget clears credentials and drops the link (console "forget").
func (m *Machine) Forget() {
	m.store.Clear()
	m.creds = Credentials{}
	m.link.Disconnect()
	m.phase = types.LinkProvisioning
	m.attempts = 0
}

func (m *Machine) Phase() types.LinkPhase { return m.phase }

func (m *Machine) Connected() bool { return m.phase == types.LinkConnected }

// State snapshots the machine for status publication.
func (m *Machine) State() types.LinkState {
	return types.LinkState{
		Phase:    m.phase,
		SSID:     m.creds.SSID,
		Attempts: m.attempts,
		TSms:     timex.NowMs(),
	}
}

// Tick advances the machine one step and reports at most one event.
func (m *Machine) Tick(now timex.Ticks) Event {
	// Provisioning results are delivered through the inbox regardless
	// of phase; new credentials always win.
	select {
	case creds := <-m.inbox:
		m.creds = creds
		if err := m.store.Save(creds); err != nil {
			println("Warn: wifi: credential save failed:", err.Error())
		}
		m.beginConnecting(now)
		return EventNone
	default:
	}

	switch m.phase {
	case types.LinkConnecting:
		if m.link.Up() {
			m.phase = types.LinkConnected
			m.attempts = 0
			m.lastProbe = now
			return EventConnected
		}
		if timex.Since(now, m.lastAttempt) < m.cfg.RetryIntervalMs {
			return EventNone
		}
		if m.attempts >= m.cfg.MaxAttempts {
			// Budget exhausted: discard credentials, hand over to
			// provisioning. Clearing happens exactly once because the
			// phase changes in the same step.
			m.store.Clear()
			m.creds = Credentials{}
			m.phase = types.LinkProvisioning
			return EventProvisioning
		}
		m.attempt(now)

	case types.LinkConnected:
		if m.cfg.ProbeIntervalMs == 0 {
			return EventNone
		}
		if timex.Since(now, m.lastProbe) < m.cfg.ProbeIntervalMs {
			return EventNone
		}
		m.lastProbe = now
		if !m.link.Up() {
			m.beginConnecting(now)
			return EventLost
		}
	}
	return EventNone
}

func (m *Machine) beginConnecting(now timex.Ticks) {
	m.phase = types.LinkConnecting
	m.attempts = 0
	m.attempt(now)
}

func (m *Machine) attempt(now timex.Ticks) {
	m.attempts++
	m.lastAttempt = now
	if err := m.link.Connect(m.creds.SSID, m.creds.PSK); err != nil {
		println("Warn: wifi: connect attempt failed:", err.Error())
	}
}
