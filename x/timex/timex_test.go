package timex

import "testing"

func TestSince(t *testing.T) {
	type C struct {
		now, earlier Ticks
		want         uint32
	}
	for _, c := range []C{
		{1000, 0, 1000},
		{1000, 1000, 0},
		{5, 0xFFFFFFFB, 10}, // across the wrap
		{0, 0xFFFFFFFF, 1},
	} {
		if got := Since(c.now, c.earlier); got != c.want {
			t.Fatalf("Since(%d,%d) = %d, want %d", c.now, c.earlier, got, c.want)
		}
	}
}

func TestReached(t *testing.T) {
	type C struct {
		now, deadline Ticks
		want          bool
	}
	for _, c := range []C{
		{100, 100, true},
		{101, 100, true},
		{99, 100, false},
		// Deadline set before the counter wrapped, now is after.
		{3, 0xFFFFFFF0, true},
		// Deadline lies just ahead across the wrap boundary.
		{0xFFFFFFF0, 3, false},
	} {
		if got := Reached(c.now, c.deadline); got != c.want {
			t.Fatalf("Reached(%d,%d) = %v, want %v", c.now, c.deadline, got, c.want)
		}
	}
}

func TestAddWraps(t *testing.T) {
	d := Add(0xFFFFFFFE, 10)
	if d != 8 {
		t.Fatalf("Add across wrap = %d, want 8", d)
	}
	if !Reached(9, d) {
		t.Fatal("deadline past the wrap should be reached")
	}
}
