package game

import "fmt"

type membership uint8

const (
    memberPending membership = iota
    memberActive
    memberCleared
)

// SequencePool partitions the numbers 1..n into active, pending and cleared.
// Membership is stored per number so iteration is always ascending.
type SequencePool struct {
    n        int
    slots    []membership // slots[number-1]
    next     int          // smallest number that may still be pending
    active   int
    pending  int
    cleared  int
    backfill bool
}

// NewSequencePool creates an empty pool. With backfill enabled, the initial
// fill tops up the active set with numbers below the cursor when fewer than
// capacity numbers remain above it.
func NewSequencePool(backfill bool) *SequencePool {
    return &SequencePool{backfill: backfill}
}

// Initialize resets the pool for a round of n numbers with the cursor at
// cursor and returns the initial active and pending numbers, both ascending.
func (p *SequencePool) Initialize(n, cursor, capacity int) (active, pending []int) {
    if n < 1 {
        n = 1
    }
    if cursor < 1 {
        cursor = 1
    }
    if capacity < 1 {
        capacity = 1
    }
    p.n = n
    p.slots = make([]membership, n)
    p.active, p.pending, p.cleared = 0, 0, 0

    taken := 0
    for i := cursor; i <= n && taken < capacity; i++ {
        p.slots[i-1] = memberActive
        taken++
    }
    for i := 1; i < cursor && i <= n; i++ {
        if p.backfill && taken < capacity {
            p.slots[i-1] = memberActive
            taken++
            continue
        }
        p.slots[i-1] = memberCleared
    }

    p.next = n + 1
    for i := 1; i <= n; i++ {
        switch p.slots[i-1] {
        case memberActive:
            p.active++
            active = append(active, i)
        case memberPending:
            p.pending++
            pending = append(pending, i)
            if i < p.next {
                p.next = i
            }
        case memberCleared:
            p.cleared++
        }
    }
    return active, pending
}

// TakeNext moves the smallest pending number into the active set.
func (p *SequencePool) TakeNext() (int, bool) {
    if p.n == 0 {
        return 0, false
    }
    for p.next <= p.n && p.slots[p.next-1] != memberPending {
        p.next++
    }
    if p.next > p.n {
        return 0, false
    }
    num := p.next
    p.slots[num-1] = memberActive
    p.pending--
    p.active++
    p.next++
    return num, true
}

// Retire moves an active number to the cleared set. It reports false if the
// number was not active.
func (p *SequencePool) Retire(num int) bool {
    if num < 1 || num > p.n || p.slots[num-1] != memberActive {
        return false
    }
    p.slots[num-1] = memberCleared
    p.active--
    p.cleared++
    return true
}

func (p *SequencePool) IsActive(num int) bool {
    return num >= 1 && num <= p.n && p.slots[num-1] == memberActive
}

func (p *SequencePool) Size() int    { return p.n }
func (p *SequencePool) Active() int  { return p.active }
func (p *SequencePool) Pending() int { return p.pending }
func (p *SequencePool) Cleared() int { return p.cleared }

// Check verifies the partition counters against the stored membership.
func (p *SequencePool) Check() error {
    var a, pe, c int
    for _, m := range p.slots {
        switch m {
        case memberActive:
            a++
        case memberPending:
            pe++
        case memberCleared:
            c++
        default:
            return fmt.Errorf("pool: invalid membership %d", m)
        }
    }
    if a != p.active || pe != p.pending || c != p.cleared {
        return fmt.Errorf("pool: counters active=%d pending=%d cleared=%d, slots say %d/%d/%d",
            p.active, p.pending, p.cleared, a, pe, c)
    }
    if a+pe+c != p.n {
        return fmt.Errorf("pool: partition covers %d of %d numbers", a+pe+c, p.n)
    }
    return nil
}
