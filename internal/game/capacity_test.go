package game

import "testing"

func TestCapacityTiers(t *testing.T) {
	// Large enough area that the area limit never binds.
	const w, h = 2000, 1000

	tests := []struct {
		n      int
		lo, hi int
	}{
		{n: 1, lo: 1, hi: 1},
		{n: 50, lo: 50, hi: 50},
		{n: 100, lo: 100, hi: 100},
		{n: 450, lo: 450, hi: 450},
		{n: 501, lo: 501, hi: 501},
		{n: 999, lo: 500, hi: 600},
		{n: 1500, lo: 500, hi: 700},
		{n: 2500, lo: 700, hi: 800},
		{n: 50000, lo: 800, hi: 1000},
	}
	for _, tc := range tests {
		got := Capacity(tc.n, w, h)
		if got < tc.lo || got > tc.hi {
			t.Fatalf("Capacity(%d) = %d, want in [%d, %d]", tc.n, got, tc.lo, tc.hi)
		}
	}
}

func TestCapacityMonotonic(t *testing.T) {
	prev := 0
	for n := 1; n <= 6000; n += 7 {
		c := Capacity(n, 4000, 4000)
		if c < prev {
			t.Fatalf("capacity decreased at n=%d: %d < %d", n, c, prev)
		}
		if c > MaxCapacity {
			t.Fatalf("capacity %d above ceiling at n=%d", c, n)
		}
		prev = c
	}
}

func TestCapacityAreaLimit(t *testing.T) {
	// 600x400 holds 240000 / (1600 * 0.8) = 187 targets.
	if got := Capacity(2000, 600, 400); got != 187 {
		t.Fatalf("expected area-limited capacity 187, got %d", got)
	}
	if got := Capacity(50, 600, 400); got != 50 {
		t.Fatalf("small rounds should show every target, got %d", got)
	}
}

func TestCapacityNeverBelowOne(t *testing.T) {
	for _, tc := range []struct{ n, w, h int }{
		{0, 600, 400},
		{-5, 600, 400},
		{10, 0, 0},
		{10, 10, 10},
	} {
		if got := Capacity(tc.n, tc.w, tc.h); got < 1 {
			t.Fatalf("Capacity(%d, %d, %d) = %d, want >= 1", tc.n, tc.w, tc.h, got)
		}
	}
}

func TestPlayArea(t *testing.T) {
	if a := PlayArea(1920, 1080); a.Width != 900 || a.Height != 600 {
		t.Fatalf("expected 900x600 on a large viewport, got %dx%d", a.Width, a.Height)
	}
	if a := PlayArea(360, 640); a.Width != 320 || a.Height != 300 {
		t.Fatalf("expected 320x300 on a phone viewport, got %dx%d", a.Width, a.Height)
	}
	if a := PlayArea(800, 900); a.Width != 760 || a.Height != 500 {
		t.Fatalf("expected 760x500, got %dx%d", a.Width, a.Height)
	}
}

func TestTargetSize(t *testing.T) {
	if s := TargetSize(320); s != 25 {
		t.Fatalf("expected min size 25, got %v", s)
	}
	if s := TargetSize(900); s != 45 {
		t.Fatalf("expected max size 45, got %v", s)
	}
	if s := TargetSize(630); s != 35 {
		t.Fatalf("expected 630/18 = 35, got %v", s)
	}
}
