package game

import (
	"reflect"
	"testing"
)

func TestPoolInitializeFromStart(t *testing.T) {
	p := NewSequencePool(false)
	active, pending := p.Initialize(10, 1, 4)

	if !reflect.DeepEqual(active, []int{1, 2, 3, 4}) {
		t.Fatalf("unexpected active %v", active)
	}
	if !reflect.DeepEqual(pending, []int{5, 6, 7, 8, 9, 10}) {
		t.Fatalf("unexpected pending %v", pending)
	}
	if p.Active() != 4 || p.Pending() != 6 || p.Cleared() != 0 {
		t.Fatalf("unexpected counts %d/%d/%d", p.Active(), p.Pending(), p.Cleared())
	}
	if err := p.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestPoolInitializeCapacityCoversAll(t *testing.T) {
	p := NewSequencePool(false)
	active, pending := p.Initialize(5, 1, 100)
	if len(active) != 5 || len(pending) != 0 {
		t.Fatalf("expected all 5 active, got active=%v pending=%v", active, pending)
	}
}

func TestPoolInitializeMidRoundWithoutBackfill(t *testing.T) {
	p := NewSequencePool(false)
	active, pending := p.Initialize(10, 8, 5)

	if !reflect.DeepEqual(active, []int{8, 9, 10}) {
		t.Fatalf("unexpected active %v", active)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending, got %v", pending)
	}
	if p.Cleared() != 7 {
		t.Fatalf("numbers below the cursor should count as cleared, got %d", p.Cleared())
	}
	if err := p.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestPoolInitializeMidRoundWithBackfill(t *testing.T) {
	p := NewSequencePool(true)
	active, pending := p.Initialize(10, 8, 5)

	if !reflect.DeepEqual(active, []int{1, 2, 8, 9, 10}) {
		t.Fatalf("unexpected active %v", active)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending, got %v", pending)
	}
	if p.Cleared() != 5 {
		t.Fatalf("expected 5 cleared, got %d", p.Cleared())
	}
	if err := p.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestPoolTakeNextAscending(t *testing.T) {
	p := NewSequencePool(false)
	_, pending := p.Initialize(50, 1, 7)

	prev := 0
	var drained []int
	for {
		n, ok := p.TakeNext()
		if !ok {
			break
		}
		if n <= prev {
			t.Fatalf("TakeNext returned %d after %d", n, prev)
		}
		prev = n
		drained = append(drained, n)
	}
	if !reflect.DeepEqual(drained, pending) {
		t.Fatalf("drain order %v does not match pending %v", drained, pending)
	}
	if p.Pending() != 0 || p.Active() != 50 {
		t.Fatalf("expected everything active after drain, got active=%d pending=%d", p.Active(), p.Pending())
	}
	if err := p.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestPoolRetireAndReplenish(t *testing.T) {
	p := NewSequencePool(false)
	p.Initialize(6, 1, 3)

	if !p.Retire(1) {
		t.Fatal("1 should be retired")
	}
	if p.Retire(1) {
		t.Fatal("retiring twice must fail")
	}
	if p.Retire(5) {
		t.Fatal("pending numbers cannot be retired")
	}
	n, ok := p.TakeNext()
	if !ok || n != 4 {
		t.Fatalf("expected 4, got %d (%v)", n, ok)
	}
	if p.IsActive(1) || !p.IsActive(4) {
		t.Fatal("membership not updated")
	}
	if p.Active() != 3 || p.Pending() != 2 || p.Cleared() != 1 {
		t.Fatalf("unexpected counts %d/%d/%d", p.Active(), p.Pending(), p.Cleared())
	}
	if err := p.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestPoolEmpty(t *testing.T) {
	p := NewSequencePool(false)
	if _, ok := p.TakeNext(); ok {
		t.Fatal("uninitialized pool must be empty")
	}
	p.Initialize(0, 0, 0)
	if p.Size() != 1 || p.Active() != 1 {
		t.Fatalf("invalid n should clamp to 1, got size=%d active=%d", p.Size(), p.Active())
	}
	if _, ok := p.TakeNext(); ok {
		t.Fatal("no pending numbers expected")
	}
}
