//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"os"
	"sync"

	"plantcode-go/services/wifi"
	"plantcode-go/x/shmring"
)

// New is the boot entry used by the firmware main. Host builds attach
// process stdio to the provisioning console so "join"/"status" work
// straight from a terminal.
func New() *Set {
	set, rings := NewHostSet()
	go stdinPump(rings.In)
	go stdoutPump(rings.Out)
	return set
}

func stdinPump(r *shmring.Ring) {
	buf := make([]byte, 64)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			b := buf[:n]
			for len(b) > 0 {
				w := r.WriteFrom(b)
				if w == 0 {
					<-r.Writable()
					continue
				}
				b = b[w:]
			}
		}
		if err != nil {
			return
		}
	}
}

func stdoutPump(r *shmring.Ring) {
	buf := make([]byte, 64)
	for {
		n := r.ReadInto(buf)
		if n == 0 {
			<-r.Readable()
			continue
		}
		_, _ = os.Stdout.Write(buf[:n])
	}
}

// NewHostSet builds a fully simulated device. The returned ports let a
// host binary bridge its stdin/stdout to the provisioning console.
func NewHostSet() (*Set, *ConsoleRings) {
	port, rings := NewRingPort(256)
	return &Set{
		Outputs: &SimOutputs{},
		Servo:   &SimServo{},
		ADC:     NewSimADC(2900),
		Air:     &SimAir{TempDeciC: 225, RHDeciPct: 480},
		Link:    &SimLink{},
		Store:   &MemStore{},
		Console: port,
	}, rings
}

// SimAir serves fixed air-climate values, settable from the bench.
type SimAir struct {
	mu        sync.Mutex
	TempDeciC int16
	RHDeciPct int16
}

func (a *SimAir) Set(tempDeciC, rhDeciPct int16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.TempDeciC, a.RHDeciPct = tempDeciC, rhDeciPct
}

func (a *SimAir) Read(pin int) (int16, int16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.TempDeciC, a.RHDeciPct, nil
}

// ----------------------------- outputs ---------------------------------------

// SimOutputs logs pin writes and remembers levels for inspection.
type SimOutputs struct {
	mu     sync.Mutex
	levels map[int]bool
}

func (o *SimOutputs) Set(pin int, on bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.levels == nil {
		o.levels = map[int]bool{}
	}
	if o.levels[pin] != on {
		println("Info: sim: pin", pin, "->", on)
	}
	o.levels[pin] = on
}

func (o *SimOutputs) Level(pin int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.levels[pin]
}

// ----------------------------- servo -----------------------------------------

// SimServo logs sweep endpoints rather than every degree.
type SimServo struct {
	mu       sync.Mutex
	attached bool
	angle    int16
}

func (s *SimServo) Acquire(pin int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = true
	println("Info: sim: servo attached on pin", pin)
	return nil
}

func (s *SimServo) SetAngle(deg int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.angle = deg
}

func (s *SimServo) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = false
	println("Info: sim: servo released at", s.angle)
}

// ----------------------------- ADC -------------------------------------------

// SimADC serves a settable raw count per channel with a small
// deterministic wander, so host runs produce moving values.
type SimADC struct {
	mu   sync.Mutex
	base map[int]uint16
	def  uint16
	step uint16
}

func NewSimADC(def uint16) *SimADC {
	return &SimADC{base: map[int]uint16{}, def: def}
}

// SetRaw pins a channel to a base count (bench "water the plant" knob).
func (a *SimADC) SetRaw(channel int, raw uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.base[channel] = raw
}

func (a *SimADC) Read(channel int) (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	base, ok := a.base[channel]
	if !ok {
		base = a.def
	}
	a.step++
	return base + a.step%9, nil
}

// ----------------------------- radio -----------------------------------------

// SimLink associates on the first Connect and stays up until told
// otherwise. Drop simulates a cable pull for reconnect testing.
type SimLink struct {
	mu sync.Mutex
	up bool
}

func (l *SimLink) Connect(ssid, psk string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	println("Info: sim: associating with", ssid)
	l.up = true
	return nil
}

func (l *SimLink) Up() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.up
}

func (l *SimLink) Disconnect() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.up = false
}

// Drop takes the simulated link down without a Disconnect call.
func (l *SimLink) Drop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.up = false
}

// ----------------------------- credential store ------------------------------

// MemStore keeps credentials in RAM. Seed exported fields before boot
// to simulate an already provisioned device.
type MemStore struct {
	mu    sync.Mutex
	Creds wifi.Credentials
	Have  bool
}

func (s *MemStore) Load() (wifi.Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Creds, s.Have
}

func (s *MemStore) Save(c wifi.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Creds, s.Have = c, true
	return nil
}

func (s *MemStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Creds, s.Have = wifi.Credentials{}, false
}

// ----------------------------- console port ----------------------------------

// ConsoleRings is the far end of a RingPort: the bridge writes
// keystrokes to In and drains console output from Out.
type ConsoleRings struct {
	In  *shmring.Ring
	Out *shmring.Ring
}

// RingPort adapts a pair of byte rings to the console port surface, the
// same shape the MCU UART presents.
type RingPort struct {
	in  *shmring.Ring
	out *shmring.Ring
}

func NewRingPort(size int) (*RingPort, *ConsoleRings) {
	_, in := shmring.New(size)
	_, out := shmring.New(size)
	return &RingPort{in: in, out: out}, &ConsoleRings{In: in, Out: out}
}

func (p *RingPort) Readable() <-chan struct{} { return p.in.Readable() }

func (p *RingPort) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	for {
		if n := p.in.ReadInto(buf); n > 0 {
			return n, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-p.in.Readable():
		}
	}
}

func (p *RingPort) Write(b []byte) (int, error) {
	return p.out.WriteFrom(b), nil
}
