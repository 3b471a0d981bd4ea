package timex

import "time"

// Ticks is the firmware millisecond counter. It is deliberately 32 bits
// wide (matching the platform tick register) and wraps after ~49.7 days.
// All comparisons must go through Since/Reached, never operator <.
type Ticks uint32

// NowTicks returns the current time truncated to the 32-bit tick width.
func NowTicks() Ticks { return Ticks(time.Now().UnixMilli()) }

// NowMs returns Unix milliseconds as int64 (host-side logging only).
func NowMs() int64 { return time.Now().UnixMilli() }

// Since returns the number of milliseconds elapsed from earlier to now.
// Unsigned subtraction makes this correct across one counter wrap.
func Since(now, earlier Ticks) uint32 { return uint32(now - earlier) }

// Reached reports whether now is at or past deadline. The signed view of
// the unsigned difference tolerates exactly one wrap between the two,
// so a deadline set before the counter rolled over still fires.
func Reached(now, deadline Ticks) bool { return int32(now-deadline) >= 0 }

// Add returns t advanced by ms milliseconds, wrapping naturally.
func Add(t Ticks, ms uint32) Ticks { return t + Ticks(ms) }
