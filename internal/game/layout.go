package game

import "math"

const (
    minAreaWidth  = 320
    maxAreaWidth  = 900
    minAreaHeight = 300
    maxAreaHeight = 600

    minTargetSize = 25
    maxTargetSize = 45
)

// DefaultArea is used when a client does not report its board size.
var DefaultArea = Area{Width: 600, Height: 400}

// PlayArea sizes the board for a browser viewport, leaving room for the
// page chrome around it.
func PlayArea(viewportW, viewportH int) Area {
    w := max(minAreaWidth, min(viewportW-40, maxAreaWidth))
    h := max(minAreaHeight, min(viewportH-400, maxAreaHeight))
    return Area{Width: w, Height: h}
}

// TargetSize derives the target diameter from the play-area width.
func TargetSize(width int) float64 {
    return math.Max(minTargetSize, math.Min(maxTargetSize, float64(width)/18))
}
