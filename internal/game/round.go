package game

import (
    "math/rand"
    "sync"
    "time"

    "github.com/kiliankoe/numberhunter/internal/clock"
    "github.com/rs/zerolog"
)

// spreadLimit bounds the initial fill that uses overlap-avoiding placement;
// above it every target is placed in O(1).
const spreadLimit = 100

type Option func(*Round)

func WithClock(c clock.Clock) Option     { return func(r *Round) { r.clk = c } }
func WithLogger(l zerolog.Logger) Option { return func(r *Round) { r.log = l } }
func WithTimings(t Timings) Option       { return func(r *Round) { r.timings = t } }
func WithRand(rng *rand.Rand) Option     { return func(r *Round) { r.factory = NewTargetFactory(rng) } }
func WithPicker(p Picker) Option         { return func(r *Round) { r.picker = p } }
func WithSpread(on bool) Option          { return func(r *Round) { r.spread = on } }

type subscriber struct {
    id int
    fn func(Snapshot)
}

// Round is one Number Hunter board: the state machine, the replenishment
// driver and the timers that belong to it. All mutation happens under mu,
// including timer callbacks.
type Round struct {
    mu sync.Mutex

    clk      clock.Clock
    log      zerolog.Logger
    timings  Timings
    factory  *TargetFactory
    picker   Picker
    spread   bool

    cfg       SessionConfig
    state     State
    index     int
    cursor    int
    score     int
    capacity  int
    startedAt time.Time
    elapsed   time.Duration
    targets   []Target
    pool      *SequencePool
    timers    *Registry
    revision  uint64
    closed    bool

    autoPlay    bool
    autoHandle  Handle
    clockHandle Handle
    // settling is set once a terminal transition is scheduled; later clicks
    // are ignored.
    settling bool

    subs      []subscriber
    subSeq    int
    finishers []func(RoundResult)
    results   []RoundResult // finished but not yet delivered
}

func NewRound(cfg SessionConfig, opts ...Option) *Round {
    r := &Round{
        clk:     clock.NewReal(),
        log:     zerolog.Nop(),
        timings: DefaultTimings(),
        picker:  SequentialPicker{},
        state:   StateSetup,
        cursor:  1,
    }
    for _, o := range opts {
        o(r)
    }
    if r.factory == nil {
        r.factory = NewTargetFactory(nil)
    }
    r.cfg = normalizeConfig(cfg)
    r.pool = NewSequencePool(false)
    r.timers = NewRegistry(r.clk, &r.mu, r.notify)
    return r
}

func normalizeConfig(cfg SessionConfig) SessionConfig {
    if cfg.TargetCount < 1 {
        cfg.TargetCount = 1
    }
    if cfg.Width <= 0 {
        cfg.Width = DefaultArea.Width
    }
    if cfg.Height <= 0 {
        cfg.Height = DefaultArea.Height
    }
    return cfg
}

// Configure changes the target count and play area. Only allowed in Setup.
func (r *Round) Configure(n, width, height int) error {
    r.mu.Lock()
    if r.state != StateSetup {
        r.mu.Unlock()
        return ErrInvalidPhase
    }
    r.cfg = normalizeConfig(SessionConfig{TargetCount: n, Width: width, Height: height, AutoPlay: r.cfg.AutoPlay})
    r.revision++
    r.mu.Unlock()
    r.notify()
    return nil
}

// Start begins play. It reports false if the round is not in Setup.
func (r *Round) Start() bool {
    r.mu.Lock()
    if r.closed || !r.transition(StatePlaying) {
        r.mu.Unlock()
        return false
    }
    r.timers.CancelAll()

    area := r.area()
    r.index++
    r.capacity = Capacity(r.cfg.TargetCount, area.Width, area.Height)
    r.pool = NewSequencePool(false)
    r.cursor = 1
    r.score = 0
    r.elapsed = 0
    r.settling = false
    r.startedAt = r.clk.Now()

    active, _ := r.pool.Initialize(r.cfg.TargetCount, r.cursor, r.capacity)
    spread := r.spread && len(active) <= spreadLimit
    r.targets = make([]Target, 0, r.capacity)
    for _, num := range active {
        var t Target
        if spread {
            t = r.factory.NewSpreadTarget(num, area, r.targets)
        } else {
            t = r.factory.NewTarget(num, area)
        }
        t.IsNew = true
        r.targets = append(r.targets, t)
    }

    r.timers.After(r.timings.IntroDelay, func() {
        for i := range r.targets {
            r.targets[i].IsNew = false
        }
        r.revision++
    })
    r.clockHandle = r.timers.Every(r.timings.ClockTick, r.tick)
    r.autoPlay = false
    if r.cfg.AutoPlay {
        r.enableAutoPlay()
    }
    r.revision++
    r.log.Info().Int("round", r.index).Int("n", r.cfg.TargetCount).Int("capacity", r.capacity).
        Int("active", len(r.targets)).Int("pending", r.pool.Pending()).Msg("round started")
    r.mu.Unlock()
    r.notify()
    return true
}

// Click handles a click on the target with the given id.
func (r *Round) Click(id string) ClickResult {
    r.mu.Lock()
    res := r.click(id)
    r.mu.Unlock()
    if res != ClickIgnored {
        r.notify()
    }
    return res
}

func (r *Round) click(id string) ClickResult {
    if r.state != StatePlaying || r.settling {
        return ClickIgnored
    }
    i := r.indexOf(id)
    if i < 0 {
        return ClickIgnored
    }
    t := &r.targets[i]
    if t.IsClearing || t.Mismatched {
        return ClickIgnored
    }
    r.elapsed = r.clk.Now().Sub(r.startedAt)
    t.ClearedAt = r.elapsed
    r.revision++

    if t.Number != r.cursor {
        t.Mismatched = true
        r.settling = true
        r.log.Debug().Int("round", r.index).Int("clicked", t.Number).Int("cursor", r.cursor).Msg("mismatch")
        r.timers.After(r.timings.MissDelay, func() { r.finish(StateGameOver) })
        return ClickMiss
    }

    t.IsClearing = true
    num := t.Number
    r.score += num
    r.timers.After(r.timings.RemoveDelay, func() { r.replenish(id, num) })
    if num == r.cfg.TargetCount {
        r.settling = true
        r.timers.After(r.timings.WinDelay, func() { r.finish(StateAllCleared) })
    }
    r.cursor++
    return ClickHit
}

// replenish retires a cleared target and spawns the smallest pending number
// in its place.
func (r *Round) replenish(id string, num int) {
    if i := r.indexOf(id); i >= 0 {
        r.targets = append(r.targets[:i], r.targets[i+1:]...)
    }
    r.pool.Retire(num)
    r.revision++

    next, ok := r.pool.TakeNext()
    if !ok {
        return
    }
    t := r.factory.NewTarget(next, r.area())
    t.IsNew = true
    r.targets = append(r.targets, t)
    newID := t.ID
    r.timers.After(r.timings.EntryDelay, func() {
        if i := r.indexOf(newID); i >= 0 {
            r.targets[i].IsNew = false
            r.revision++
        }
    })
}

func (r *Round) finish(to State) {
    if !r.transition(to) {
        return
    }
    r.elapsed = r.clk.Now().Sub(r.startedAt)
    r.timers.CancelAll()
    r.autoPlay = false
    r.settling = false
    r.revision++

    outcome := OutcomeGameOver
    if to == StateAllCleared {
        outcome = OutcomeCleared
    }
    res := RoundResult{
        Index:       r.index,
        TargetCount: r.cfg.TargetCount,
        Outcome:     outcome,
        Elapsed:     r.elapsed,
        Score:       r.score,
        Progress:    r.cursor - 1,
        FinishedAt:  r.clk.Now().UTC(),
    }
    r.results = append(r.results, res)
    r.log.Info().Int("round", r.index).Str("outcome", string(outcome)).Int("progress", res.Progress).
        Dur("elapsed", res.Elapsed).Int("score", res.Score).Msg("round finished")
}

func (r *Round) tick() {
    r.elapsed = r.clk.Now().Sub(r.startedAt)
}

// ToggleAutoPlay flips auto-play while playing and returns the new setting.
func (r *Round) ToggleAutoPlay() bool {
    r.mu.Lock()
    if r.state != StatePlaying {
        on := r.autoPlay
        r.mu.Unlock()
        return on
    }
    if r.autoPlay {
        r.timers.Cancel(r.autoHandle)
        r.autoPlay = false
    } else {
        r.enableAutoPlay()
    }
    on := r.autoPlay
    r.revision++
    r.mu.Unlock()
    r.notify()
    return on
}

func (r *Round) enableAutoPlay() {
    r.autoPlay = true
    r.autoHandle = r.timers.Every(r.timings.AutoPlayTick, func() {
        if id, ok := r.picker.Pick(r.targets, r.cursor); ok {
            r.click(id)
        }
    })
}

// Restart cancels every timer of the round and returns it to Setup.
func (r *Round) Restart() {
    r.mu.Lock()
    cancelled := r.timers.CancelAll()
    r.transition(StateSetup)
    r.targets = nil
    r.pool = NewSequencePool(false)
    r.cursor = 1
    r.score = 0
    r.elapsed = 0
    r.capacity = 0
    r.autoPlay = false
    r.cfg.AutoPlay = false
    r.settling = false
    r.revision++
    r.log.Info().Int("round", r.index).Int("cancelled", cancelled).Msg("round restarted")
    r.mu.Unlock()
    r.notify()
}

// Close tears the round down. No timer of the round fires afterwards.
func (r *Round) Close() {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.timers.CancelAll()
    r.closed = true
    r.autoPlay = false
    r.subs = nil
    r.finishers = nil
    r.results = nil
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function removes the subscription.
func (r *Round) Subscribe(fn func(Snapshot)) func() {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.subSeq++
    id := r.subSeq
    r.subs = append(r.subs, subscriber{id: id, fn: fn})
    return func() {
        r.mu.Lock()
        defer r.mu.Unlock()
        for i, s := range r.subs {
            if s.id == id {
                r.subs = append(r.subs[:i], r.subs[i+1:]...)
                return
            }
        }
    }
}

// OnFinish registers fn to be called once per round that reaches a
// terminal state.
func (r *Round) OnFinish(fn func(RoundResult)) {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.finishers = append(r.finishers, fn)
}

func (r *Round) Snapshot() Snapshot {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.snapshot()
}

func (r *Round) State() State {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.state
}

func (r *Round) Config() SessionConfig {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.cfg
}

// PendingTimers reports how many timers are currently registered.
func (r *Round) PendingTimers() int {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.timers.Len()
}

func (r *Round) snapshot() Snapshot {
    targets := make([]Target, len(r.targets))
    copy(targets, r.targets)
    return Snapshot{
        State:       r.state,
        TargetCount: r.cfg.TargetCount,
        Area:        r.area(),
        Capacity:    r.capacity,
        Cursor:      r.cursor,
        Elapsed:     r.elapsed,
        Score:       r.score,
        Pending:     r.pool.Pending(),
        AutoPlay:    r.autoPlay,
        Revision:    r.revision,
        Targets:     targets,
    }
}

// notify delivers the current snapshot and any finished results. It must be
// called without mu held.
func (r *Round) notify() {
    r.mu.Lock()
    subs := append([]subscriber(nil), r.subs...)
    var snap Snapshot
    if len(subs) > 0 {
        snap = r.snapshot()
    }
    results := r.results
    r.results = nil
    finishers := append([]func(RoundResult){}, r.finishers...)
    r.mu.Unlock()

    for _, s := range subs {
        s.fn(snap)
    }
    for _, res := range results {
        for _, f := range finishers {
            f(res)
        }
    }
}

func (r *Round) transition(to State) bool {
    if !canTransition(r.state, to) {
        return false
    }
    if r.state != to {
        r.log.Debug().Str("from", r.state.String()).Str("to", to.String()).Msg("state transition")
    }
    r.state = to
    return true
}

func (r *Round) area() Area {
    return Area{Width: r.cfg.Width, Height: r.cfg.Height}
}

func (r *Round) indexOf(id string) int {
    for i := range r.targets {
        if r.targets[i].ID == id {
            return i
        }
    }
    return -1
}
