// Package console is the serial provisioning console: a line-oriented
// command channel for entering network credentials on an unprovisioned
// (or exhausted) device. It only posts results to the lifecycle
// machine's inbox; it never mutates machine state directly.
package console

import (
	"context"
	"time"

	"github.com/google/shlex"
)

const maxLine = 128

// Port is the byte channel the console reads and writes. MCU builds
// wrap a uartx port; tests feed a channel-backed fake.
type Port interface {
	Readable() <-chan struct{}
	RecvSomeContext(ctx context.Context, buf []byte) (int, error)
	Write(p []byte) (int, error)
}

// Handlers connect console commands to the rest of the firmware.
type Handlers struct {
	Join   func(ssid, psk string) bool // false => inbox full, try later
	Forget func()
	Status func() string
}

type Console struct {
	port Port
	h    Handlers
	line []byte
}

func New(port Port, h Handlers) *Console {
	return &Console{port: port, h: h}
}

// Exec parses and runs a single command line, returning the response.
// Quoting follows shell rules, so SSIDs with spaces work:
//
//	join "back garden" hunter2
func (c *Console) Exec(line string) string {
	fields, err := shlex.Split(line)
	if err != nil {
		return "err: bad quoting"
	}
	if len(fields) == 0 {
		return ""
	}
	switch fields[0] {
	case "join":
		if len(fields) != 3 {
			return "usage: join <ssid> <psk>"
		}
		if c.h.Join == nil || !c.h.Join(fields[1], fields[2]) {
			return "err: busy, retry"
		}
		return "ok: joining " + fields[1]
	case "forget":
		if c.h.Forget != nil {
			c.h.Forget()
		}
		return "ok: credentials cleared"
	case "status":
		if c.h.Status != nil {
			return c.h.Status()
		}
		return "unknown"
	case "help":
		return "commands: join <ssid> <psk> | forget | status | help"
	default:
		return "err: unknown command (try 'help')"
	}
}

// Run pumps the port until ctx is cancelled. Reads are bounded so
// shutdown is never stuck behind a silent UART.
func (c *Console) Run(ctx context.Context) {
	buf := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.port.Readable():
			rctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
			n, _ := c.port.RecvSomeContext(rctx, buf)
			cancel()
			if n <= 0 {
				continue
			}
			c.feed(buf[:n])
		}
	}
}

// feed accumulates bytes into lines: CR ignored, LF terminates.
func (c *Console) feed(b []byte) {
	for _, ch := range b {
		switch ch {
		case '\n':
			resp := c.Exec(string(c.line))
			c.line = c.line[:0]
			if resp != "" {
				_, _ = c.port.Write([]byte(resp + "\r\n"))
			}
		case '\r':
			// ignore
		default:
			if len(c.line) < maxLine {
				c.line = append(c.line, ch)
			}
		}
	}
}
