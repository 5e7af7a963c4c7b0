package game

import (
    "math"
    "math/rand"
    "sync"
    "time"

    "github.com/google/uuid"
)

const spreadAttempts = 100

// TargetFactory builds positioned targets. It never retains what it builds.
type TargetFactory struct {
    mu  sync.Mutex
    rng *rand.Rand
}

func NewTargetFactory(rng *rand.Rand) *TargetFactory {
    if rng == nil {
        rng = rand.New(rand.NewSource(time.Now().UnixNano()))
    }
    return &TargetFactory{rng: rng}
}

// NewTarget places a target for num uniformly inside the area. Overlap with
// other targets is allowed.
func (f *TargetFactory) NewTarget(num int, area Area) Target {
    f.mu.Lock()
    defer f.mu.Unlock()
    size := TargetSize(area.Width)
    x, y := f.position(area, size)
    return newTarget(num, x, y, size)
}

// NewSpreadTarget is like NewTarget but tries to keep its center at least
// size+5 away from every target in placed. After spreadAttempts misses it
// settles for a random position.
func (f *TargetFactory) NewSpreadTarget(num int, area Area, placed []Target) Target {
    f.mu.Lock()
    defer f.mu.Unlock()
    size := TargetSize(area.Width)
    minDist := size + 5
    for i := 0; i < spreadAttempts; i++ {
        x, y := f.position(area, size)
        if clearOf(x, y, minDist, placed) {
            return newTarget(num, x, y, size)
        }
    }
    x, y := f.position(area, size)
    return newTarget(num, x, y, size)
}

func (f *TargetFactory) position(area Area, size float64) (float64, float64) {
    x := f.rng.Float64() * math.Max(0, float64(area.Width)-size)
    y := f.rng.Float64() * math.Max(0, float64(area.Height)-size)
    return x, y
}

func clearOf(x, y, minDist float64, placed []Target) bool {
    for _, t := range placed {
        if math.Hypot(x-t.X, y-t.Y) < minDist {
            return false
        }
    }
    return true
}

func newTarget(num int, x, y, size float64) Target {
    return Target{
        ID:     uuid.NewString(),
        Number: num,
        X:      x,
        Y:      y,
        Size:   size,
        Hue:    math.Mod(float64(num)*137.5, 360),
    }
}
