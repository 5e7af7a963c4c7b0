package game

import (
    "sync"
    "time"

    "github.com/kiliankoe/numberhunter/internal/clock"
)

// Handle identifies a registered timer. Handles are never reused.
type Handle uint64

type timerEntry struct {
    timer clock.Timer
    every time.Duration // zero for one-shot entries
    fn    func()
}

// Registry owns every deferred callback of a round. A callback runs only
// while its handle is still registered, checked under the owner's lock, so
// anything removed by Cancel or CancelAll can never run.
//
// After, Every, Cancel and CancelAll must be called with the owner's lock
// held. Callbacks run with that lock held.
type Registry struct {
    clk    clock.Clock
    lock   sync.Locker
    seq    Handle
    live   map[Handle]*timerEntry
    onFire func()
}

// NewRegistry creates a registry whose callbacks serialize on lock. onFire,
// if set, runs after each callback once the lock is released.
func NewRegistry(clk clock.Clock, lock sync.Locker, onFire func()) *Registry {
    return &Registry{clk: clk, lock: lock, live: make(map[Handle]*timerEntry), onFire: onFire}
}

// After schedules fn once after d.
func (r *Registry) After(d time.Duration, fn func()) Handle {
    return r.add(d, 0, fn)
}

// Every schedules fn repeatedly, first after d and then every d.
func (r *Registry) Every(d time.Duration, fn func()) Handle {
    if d <= 0 {
        d = time.Millisecond
    }
    return r.add(d, d, fn)
}

func (r *Registry) add(d, every time.Duration, fn func()) Handle {
    r.seq++
    h := r.seq
    e := &timerEntry{every: every, fn: fn}
    r.live[h] = e
    e.timer = r.clk.AfterFunc(d, func() { r.fire(h) })
    return h
}

// Cancel stops one timer. It reports whether the handle was live.
func (r *Registry) Cancel(h Handle) bool {
    e, ok := r.live[h]
    if !ok {
        return false
    }
    delete(r.live, h)
    e.timer.Stop()
    return true
}

// CancelAll stops every registered timer and empties the registry.
func (r *Registry) CancelAll() int {
    n := len(r.live)
    for h, e := range r.live {
        e.timer.Stop()
        delete(r.live, h)
    }
    return n
}

func (r *Registry) Live(h Handle) bool {
    _, ok := r.live[h]
    return ok
}

func (r *Registry) Len() int { return len(r.live) }

func (r *Registry) fire(h Handle) {
    r.lock.Lock()
    e, ok := r.live[h]
    if !ok {
        r.lock.Unlock()
        return
    }
    if e.every > 0 {
        e.timer = r.clk.AfterFunc(e.every, func() { r.fire(h) })
    } else {
        delete(r.live, h)
    }
    e.fn()
    r.lock.Unlock()
    if r.onFire != nil {
        r.onFire()
    }
}
