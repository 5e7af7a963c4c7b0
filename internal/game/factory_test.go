package game

import (
	"math"
	"math/rand"
	"testing"
)

func TestNewTargetInsideArea(t *testing.T) {
	f := NewTargetFactory(rand.New(rand.NewSource(42)))
	area := Area{Width: 600, Height: 400}
	seen := map[string]bool{}

	for i := 1; i <= 500; i++ {
		tg := f.NewTarget(i, area)
		if tg.Number != i {
			t.Fatalf("expected number %d, got %d", i, tg.Number)
		}
		if tg.X < 0 || tg.Y < 0 || tg.X > float64(area.Width)-tg.Size || tg.Y > float64(area.Height)-tg.Size {
			t.Fatalf("target %d out of bounds at (%v, %v) size %v", i, tg.X, tg.Y, tg.Size)
		}
		if tg.Size != TargetSize(area.Width) {
			t.Fatalf("unexpected size %v", tg.Size)
		}
		if seen[tg.ID] {
			t.Fatalf("duplicate id %s", tg.ID)
		}
		seen[tg.ID] = true
	}
}

func TestTargetHue(t *testing.T) {
	f := NewTargetFactory(rand.New(rand.NewSource(1)))
	area := Area{Width: 600, Height: 400}
	if h := f.NewTarget(1, area).Hue; h != 137.5 {
		t.Fatalf("expected hue 137.5, got %v", h)
	}
	if h := f.NewTarget(3, area).Hue; h != math.Mod(412.5, 360) {
		t.Fatalf("expected hue 52.5, got %v", h)
	}
}

func TestNewSpreadTargetKeepsDistance(t *testing.T) {
	f := NewTargetFactory(rand.New(rand.NewSource(7)))
	area := Area{Width: 900, Height: 600}
	var placed []Target
	for i := 1; i <= 20; i++ {
		placed = append(placed, f.NewSpreadTarget(i, area, placed))
	}
	minDist := TargetSize(area.Width) + 5
	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			d := math.Hypot(placed[i].X-placed[j].X, placed[i].Y-placed[j].Y)
			if d < minDist {
				t.Fatalf("targets %d and %d are %v apart, want >= %v", placed[i].Number, placed[j].Number, d, minDist)
			}
		}
	}
}

func TestNewSpreadTargetFallsBack(t *testing.T) {
	f := NewTargetFactory(rand.New(rand.NewSource(7)))
	// An area barely larger than one target cannot hold two apart.
	area := Area{Width: 30, Height: 30}
	first := f.NewSpreadTarget(1, area, nil)
	second := f.NewSpreadTarget(2, area, []Target{first})
	if second.Number != 2 || second.ID == "" {
		t.Fatalf("expected a fallback target, got %+v", second)
	}
}

func TestSequentialPicker(t *testing.T) {
	targets := []Target{
		{ID: "a", Number: 3},
		{ID: "b", Number: 2, IsClearing: true},
		{ID: "c", Number: 2},
	}
	var p SequentialPicker
	if id, ok := p.Pick(targets, 2); !ok || id != "c" {
		t.Fatalf("expected c, got %q (%v)", id, ok)
	}
	if _, ok := p.Pick(targets, 9); ok {
		t.Fatal("no target for cursor 9")
	}
}
