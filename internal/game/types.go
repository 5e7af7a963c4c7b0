package game

import (
    "time"
)

type State int

const (
    StateSetup State = iota
    StatePlaying
    StateGameOver
    StateAllCleared
)

var stateNames = [...]string{
    StateSetup:      "Setup",
    StatePlaying:    "Playing",
    StateGameOver:   "GameOver",
    StateAllCleared: "AllCleared",
}

func (s State) String() string {
    if int(s) < 0 || int(s) >= len(stateNames) {
        return "Unknown"
    }
    return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether the round has ended.
func (s State) Terminal() bool { return s == StateGameOver || s == StateAllCleared }

type ClickResult string

const (
    ClickIgnored ClickResult = "ignored"
    ClickHit     ClickResult = "hit"
    ClickMiss    ClickResult = "miss"
)

type SessionConfig struct {
    TargetCount int  `json:"targetCount" toml:"target_count" yaml:"target_count"`
    Width       int  `json:"width" toml:"width" yaml:"width"`
    Height      int  `json:"height" toml:"height" yaml:"height"`
    AutoPlay    bool `json:"autoPlay" toml:"auto_play" yaml:"auto_play"`
}

// Timings holds every delay used by a round.
type Timings struct {
    RemoveDelay  time.Duration // cleared target stays on board this long
    EntryDelay   time.Duration // replacement target is flagged new this long
    IntroDelay   time.Duration // initial targets are flagged new this long
    WinDelay     time.Duration
    MissDelay    time.Duration
    ClockTick    time.Duration
    AutoPlayTick time.Duration
}

func DefaultTimings() Timings {
    return Timings{
        RemoveDelay:  1200 * time.Millisecond,
        EntryDelay:   800 * time.Millisecond,
        IntroDelay:   1000 * time.Millisecond,
        WinDelay:     1300 * time.Millisecond,
        MissDelay:    300 * time.Millisecond,
        ClockTick:    100 * time.Millisecond,
        AutoPlayTick: 300 * time.Millisecond,
    }
}

type Area struct {
    Width  int `json:"width"`
    Height int `json:"height"`
}

type Target struct {
    ID         string        `json:"id"`
    Number     int           `json:"number"`
    X          float64       `json:"x"`
    Y          float64       `json:"y"`
    Size       float64       `json:"size"`
    Hue        float64       `json:"hue"`
    IsNew      bool          `json:"isNew"`
    IsClearing bool          `json:"isClearing"`
    Mismatched bool          `json:"isMismatched"`
    ClearedAt  time.Duration `json:"clearedAt,omitempty"`
}

// Snapshot is an immutable view of a round for renderers.
type Snapshot struct {
    State       State         `json:"state"`
    TargetCount int           `json:"targetCount"`
    Area        Area          `json:"area"`
    Capacity    int           `json:"capacity"`
    Cursor      int           `json:"cursor"`
    Elapsed     time.Duration `json:"elapsed"`
    Score       int           `json:"score"`
    Pending     int           `json:"pending"`
    AutoPlay    bool          `json:"autoPlay"`
    Revision    uint64        `json:"revision"`
    Targets     []Target      `json:"targets"`
}

// Progress is the number of targets cleared so far.
func (s Snapshot) Progress() int { return s.Cursor - 1 }

type Outcome string

const (
    OutcomeCleared  Outcome = "cleared"
    OutcomeGameOver Outcome = "game_over"
)

type RoundResult struct {
    Index       int           `json:"index"`
    TargetCount int           `json:"targetCount"`
    Outcome     Outcome       `json:"outcome"`
    Elapsed     time.Duration `json:"elapsed"`
    Score       int           `json:"score"`
    Progress    int           `json:"progress"`
    FinishedAt  time.Time     `json:"finishedAt"`
}

type Viewer struct {
    ID       string    `json:"id"`
    Name     string    `json:"name"`
    JoinedAt time.Time `json:"joinedAt"`
}
