package game

const (
    // MaxCapacity is the hard ceiling on simultaneously active targets.
    MaxCapacity = 1000

    averageTargetSide = 40
    overlapAllowance  = 0.8
)

// Capacity returns how many targets may be active at once for a round of n
// targets on a width x height play area. Small rounds show every target;
// large rounds are capped by tier, by area and by MaxCapacity.
func Capacity(n, width, height int) int {
    if n < 1 {
        n = 1
    }
    var c int
    switch {
    case n <= 500:
        c = n
    case n <= 1000:
        c = clampInt(n, 500, 600)
    case n <= 2000:
        c = clampInt(n, 500, 700)
    case n <= 5000:
        c = clampInt(n, 700, 800)
    default:
        c = clampInt(n, 800, 1000)
    }
    c = min(c, areaLimit(width, height), MaxCapacity)
    if c < 1 {
        c = 1
    }
    return c
}

// areaLimit is the count of average-sized targets the area can hold when
// partial overlap is allowed.
func areaLimit(width, height int) int {
    if width <= 0 || height <= 0 {
        return 1
    }
    area := float64(width) * float64(height)
    return int(area / (averageTargetSide * averageTargetSide * overlapAllowance))
}

func clampInt(v, lo, hi int) int {
    if v < lo {
        return lo
    }
    if v > hi {
        return hi
    }
    return v
}
