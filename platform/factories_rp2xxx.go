//go:build rp2040 || rp2350

package platform

import (
	"errors"
	"machine"
	"sync"
	"sync/atomic"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/dht"
	"tinygo.org/x/drivers/netlink"
	"tinygo.org/x/drivers/netlink/probe"
	"tinygo.org/x/drivers/servo"

	"plantcode-go/drivers/soil"
	"plantcode-go/services/wifi"
)

// New is the boot entry used by the firmware main.
func New() *Set { return NewBoardSet() }

// NewBoardSet wires the real RP2 peripherals: GP outputs for the pump
// relays, a PWM servo, ADC soil probes, the board's Wi-Fi radio and the
// provisioning console on UART0.
func NewBoardSet() *Set {
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{BaudRate: 115200})

	return &Set{
		Outputs: &boardOutputs{},
		Servo:   &boardServo{},
		ADC:     &boardADC{},
		Air:     &boardAir{},
		Link:    newRadioLink(),
		Store:   &ramStore{},
		Console: u,
	}
}

// ----------------------------- air probe --------------------------------------

// boardAir reads a DHT22 on the configured pin. The driver already
// returns deci-units, which is the scheduler's fixed-point contract.
type boardAir struct {
	devs map[int]dht.Device
}

func (a *boardAir) Read(pin int) (int16, int16, error) {
	d, ok := a.devs[pin]
	if !ok {
		d = dht.New(machine.Pin(pin), dht.DHT22)
		if a.devs == nil {
			a.devs = map[int]dht.Device{}
		}
		a.devs[pin] = d
	}
	if err := d.ReadMeasurements(); err != nil {
		return 0, 0, err
	}
	temp, err := d.Temperature()
	if err != nil {
		return 0, 0, err
	}
	rh, err := d.Humidity()
	if err != nil {
		return 0, 0, err
	}
	return temp, int16(rh), nil
}

// ----------------------------- outputs ---------------------------------------

type boardOutputs struct {
	pins map[int]machine.Pin
}

func (o *boardOutputs) Set(pin int, on bool) {
	p, ok := o.pins[pin]
	if !ok {
		p = machine.Pin(pin)
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		if o.pins == nil {
			o.pins = map[int]machine.Pin{}
		}
		o.pins[pin] = p
	}
	p.Set(on)
}

// ----------------------------- servo -----------------------------------------

// Local interface so we can pick the controller by slice without naming
// an unexported machine type.
type pwmCtrl = servo.PWM

// pwmForPin selects the PWM controller for a pin's slice (RP2: slice =
// (gpio >> 1) & 7).
func pwmForPin(pin int) pwmCtrl {
	switch (pin >> 1) & 7 {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

type boardServo struct {
	s        servo.Servo
	attached bool
}

func (b *boardServo) Acquire(pin int) error {
	s, err := servo.New(pwmForPin(pin), machine.Pin(pin))
	if err != nil {
		return err
	}
	b.s = s
	b.attached = true
	return nil
}

// Standard hobby-servo pulse range: 500 µs at 0°, 2500 µs at 180°.
func (b *boardServo) SetAngle(deg int16) {
	if !b.attached {
		return
	}
	if deg < 0 {
		deg = 0
	}
	if deg > 180 {
		deg = 180
	}
	b.s.SetMicroseconds(int16(500 + int32(deg)*2000/180))
}

func (b *boardServo) Release() {
	if !b.attached {
		return
	}
	// Zero pulse width stops the drive so the horn rests unpowered.
	b.s.SetMicroseconds(0)
	b.attached = false
}

// ----------------------------- ADC -------------------------------------------

type boardADC struct {
	once   sync.Once
	probes map[int]*soil.Device
}

func (a *boardADC) Read(channel int) (uint16, error) {
	a.once.Do(machine.InitADC)
	d, ok := a.probes[channel]
	if !ok {
		adc := machine.ADC{Pin: machine.Pin(channel)}
		adc.Configure(machine.ADCConfig{})
		dev := soil.New(adc)
		dev.Configure()
		d = &dev
		if a.probes == nil {
			a.probes = map[int]*soil.Device{}
		}
		a.probes[channel] = d
	}
	return d.Read()
}

// ----------------------------- radio -----------------------------------------

var errNoRadio = errors.New("platform: no radio found")

// radioLink adapts the board's netlink driver to the non-blocking Link
// surface: Connect returns immediately and the association runs in its
// own goroutine; Up follows the driver's net up/down notifications.
type radioLink struct {
	link netlink.Netlinker
	up   atomic.Bool
	busy atomic.Bool
}

func newRadioLink() *radioLink {
	r := &radioLink{}
	r.link, _ = probe.Probe()
	if r.link != nil {
		r.link.NetNotify(func(e netlink.Event) {
			switch e {
			case netlink.EventNetUp:
				r.up.Store(true)
			case netlink.EventNetDown:
				r.up.Store(false)
			}
		})
	}
	return r
}

func (r *radioLink) Connect(ssid, psk string) error {
	if r.link == nil {
		return errNoRadio
	}
	if !r.busy.CompareAndSwap(false, true) {
		// Previous association attempt still in flight.
		return nil
	}
	go func() {
		defer r.busy.Store(false)
		err := r.link.NetConnect(&netlink.ConnectParams{
			Ssid:       ssid,
			Passphrase: psk,
		})
		if err != nil {
			println("Warn: platform: association failed:", err.Error())
			return
		}
		r.up.Store(true)
	}()
	return nil
}

func (r *radioLink) Up() bool { return r.up.Load() }

func (r *radioLink) Disconnect() {
	if r.link != nil {
		r.link.NetDisconnect()
	}
	r.up.Store(false)
}

// ----------------------------- credential store ------------------------------

// ramStore holds credentials for the lifetime of the boot. A flash
// layout can slot in behind wifi.CredentialStore later.
type ramStore struct {
	creds wifi.Credentials
	have  bool
}

func (s *ramStore) Load() (wifi.Credentials, bool) { return s.creds, s.have }
func (s *ramStore) Save(c wifi.Credentials) error  { s.creds, s.have = c, true; return nil }
func (s *ramStore) Clear()                         { s.creds, s.have = wifi.Credentials{}, false }
