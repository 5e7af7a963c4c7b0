package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kiliankoe/numberhunter/internal/game"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
)

// One terminal cell stands for cellW x cellH pixels of play area.
const (
	cellW = 8
	cellH = 16
	hudH  = 1
)

type app struct {
	screen tcell.Screen
	round  *game.Round
	n      int
	last   string
}

func main() {
	n := flag.Int("n", 50, "Number of targets")
	auto := flag.Bool("autoplay", false, "Start with autoplay enabled")
	flag.Parse()

	s, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := s.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer s.Fini()
	s.EnableMouse()
	s.HideCursor()
	s.Clear()

	a := &app{screen: s, n: *n}
	w, h := a.area()
	a.round = game.NewRound(
		game.SessionConfig{TargetCount: *n, Width: w, Height: h, AutoPlay: *auto},
		game.WithLogger(zerolog.Nop()),
	)
	defer a.round.Close()

	events := make(chan tcell.Event, 32)
	go func() {
		for {
			events <- s.PollEvent()
		}
	}()

	tick := time.NewTicker(time.Second / 30)
	defer tick.Stop()

	for {
		select {
		case ev := <-events:
			switch e := ev.(type) {
			case *tcell.EventResize:
				s.Sync()
				w, h := a.area()
				_ = a.round.Configure(a.n, w, h)
			case *tcell.EventKey:
				if handleQuit(e) {
					return
				}
				a.handleKey(e)
			case *tcell.EventMouse:
				if e.Buttons()&tcell.Button1 != 0 {
					a.handleClick(e.Position())
				}
			}
		case <-tick.C:
			a.render()
		}
	}
}

// area converts the terminal size into a play area in pixels.
func (a *app) area() (int, int) {
	cols, rows := a.screen.Size()
	return cols * cellW, (rows - hudH) * cellH
}

func (a *app) handleKey(e *tcell.EventKey) {
	if e.Key() != tcell.KeyRune {
		return
	}
	switch e.Rune() {
	case 's', ' ':
		a.round.Start()
	case 'a':
		a.round.ToggleAutoPlay()
	case 'r':
		a.round.Restart()
	case '+':
		a.setCount(a.n + 10)
	case '-':
		a.setCount(a.n - 10)
	}
}

func (a *app) setCount(n int) {
	if n < 1 {
		n = 1
	}
	w, h := a.area()
	if a.round.Configure(n, w, h) == nil {
		a.n = n
	}
}

func (a *app) handleClick(cx, cy int) {
	if cy < hudH {
		return
	}
	px := float64(cx*cellW + cellW/2)
	py := float64((cy-hudH)*cellH + cellH/2)
	snap := a.round.Snapshot()
	// later targets are drawn on top
	for i := len(snap.Targets) - 1; i >= 0; i-- {
		t := snap.Targets[i]
		if px >= t.X && px < t.X+t.Size && py >= t.Y && py < t.Y+t.Size {
			a.last = string(a.round.Click(t.ID))
			return
		}
	}
}

func (a *app) render() {
	s := a.screen
	snap := a.round.Snapshot()
	s.Clear()

	for _, t := range snap.Targets {
		st := tcell.StyleDefault.Background(hueColor(t.Hue)).Foreground(tcell.ColorWhite)
		switch {
		case t.Mismatched:
			st = st.Background(tcell.ColorMaroon)
		case t.IsClearing:
			st = tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorGray)
		case t.IsNew:
			st = st.Bold(true)
		}
		x0 := int(t.X) / cellW
		y0 := int(t.Y)/cellH + hudH
		cw := max(int(t.Size)/cellW, 3)
		ch := max(int(t.Size)/cellH, 1)
		for y := y0; y < y0+ch; y++ {
			drawText(s, x0, y, spaces(cw), st)
		}
		label := strconv.Itoa(t.Number)
		drawText(s, x0+(cw-len(label))/2, y0+ch/2, label, st)
	}

	hud := fmt.Sprintf(" %s  next %d/%d  score %d  time %s  autoplay %v  %s",
		snap.State, min(snap.Cursor, snap.TargetCount), snap.TargetCount, snap.Score,
		game.FormatElapsed(snap.Elapsed), snap.AutoPlay, a.last)
	cols, _ := s.Size()
	hudStyle := tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	drawText(s, 0, 0, spaces(cols), hudStyle)
	drawText(s, 0, 0, hud, hudStyle)

	_, rows := s.Size()
	switch snap.State {
	case game.StateSetup:
		drawCentered(s, cols/2, rows/2, "s: start  a: autoplay  +/-: targets  q: quit", tcell.StyleDefault.Bold(true))
	case game.StateAllCleared:
		drawCentered(s, cols/2, rows/2, "ALL CLEARED! r: restart", tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true))
	case game.StateGameOver:
		drawCentered(s, cols/2, rows/2, "GAME OVER! r: restart", tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true))
	}
	s.Show()
}

func hueColor(h float64) tcell.Color {
	r, g, b := colorful.Hsl(h, 0.7, 0.45).Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func handleQuit(e *tcell.EventKey) bool {
	if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC {
		return true
	}
	r := e.Rune()
	return e.Key() == tcell.KeyRune && (r == 'q' || r == 'Q')
}

func drawText(s tcell.Screen, x, y int, text string, st tcell.Style) {
	for i, ch := range text {
		s.SetContent(x+i, y, ch, nil, st)
	}
}

func drawCentered(s tcell.Screen, cx, cy int, text string, st tcell.Style) {
	x := cx - len([]rune(text))/2
	drawText(s, x, cy, text, st)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]rune, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
