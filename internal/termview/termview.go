// Package termview previews the active effect in a truecolor terminal.
// Every cell shows two vertically stacked pixels with the upper half
// block: the foreground paints the top pixel, the background the bottom.
package termview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/vfx-studio/internal/driver"
	"github.com/iburimskiy/vfx-studio/internal/studio"
	"github.com/iburimskiy/vfx-studio/internal/surface"
)

const halfBlock = '▀'

// statusRows are kept free below the picture.
const statusRows = 1

type action int

const (
	actionNone action = iota
	actionQuit
	actionToggle
	actionReset
	actionFaster
	actionSlower
	actionNextEffect
	actionNextParam
	actionPrevParam
	actionIncrease
	actionDecrease
	actionCycle
)

// cellSetter is the part of tcell.Screen Paint needs.
type cellSetter interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

// View renders a studio onto a tcell screen.
type View struct {
	screen tcell.Screen
	studio *studio.Studio
	drv    *driver.Driver
	raster *surface.Raster
	events chan tcell.Event
	cols   int
	rows   int
	logW   int
	logH   int
}

// New prepares a view of st at the logical canvas size w×h. The screen
// must already be initialized.
func New(screen tcell.Screen, st *studio.Studio, w, h, fps int) *View {
	v := &View{
		screen: screen,
		studio: st,
		drv:    driver.New(fps),
		events: make(chan tcell.Event, 64),
		logW:   w,
		logH:   h,
	}
	v.resize()
	return v
}

// Run drives frames until ctx is done or the user quits.
func (v *View) Run(ctx context.Context) error {
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case v.events <- ev:
			default:
			}
		}
	}()

	err := v.drv.Run(ctx, func(dtMs float64) {
	drain:
		for {
			select {
			case ev := <-v.events:
				if v.handle(ev) == actionQuit {
					v.drv.Stop()
					return
				}
			default:
				break drain
			}
		}
		v.Draw(dtMs)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Draw renders one frame and shows it.
func (v *View) Draw(dtMs float64) {
	v.studio.Frame(v.raster, dtMs)
	Paint(v.screen, v.raster.Image(), v.cols, v.rows)
	v.drawStatus()
	v.screen.Show()
}

func (v *View) resize() {
	cols, rows := v.screen.Size()
	v.cols = max(cols, 1)
	v.rows = max(rows-statusRows, 1)
	v.raster = surface.NewScaledRaster(v.logW, v.logH, v.cols, v.rows*2)
}

func (v *View) drawStatus() {
	snap := v.studio.Metrics()
	state := "playing"
	if !v.studio.Playing() {
		state = "paused"
	}
	param := ""
	for _, row := range v.studio.Params() {
		if row.Selected {
			param = fmt.Sprintf("%s=%s", row.Label, row.Value)
		}
	}
	line := fmt.Sprintf(" %s | %s x%.2f | %d fps %s | %s | q quit, space pause, r reset, tab effect",
		v.studio.Info().Name, state, v.studio.Speed(), snap.FPS, snap.Quality, param)

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	y := v.rows
	x := 0
	for _, r := range line {
		if x >= v.cols {
			break
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < v.cols; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
}

func (v *View) handle(ev tcell.Event) action {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.resize()
		v.screen.Sync()
	case *tcell.EventKey:
		a := keyAction(ev.Key(), ev.Rune())
		v.apply(a)
		return a
	}
	return actionNone
}

func (v *View) apply(a action) {
	st := v.studio
	switch a {
	case actionToggle:
		st.TogglePlay()
	case actionReset:
		if err := st.Reset(); err != nil {
			log.Printf("[term] reset: %v", err)
		}
	case actionFaster:
		st.ScaleSpeed(1.25)
	case actionSlower:
		st.ScaleSpeed(0.8)
	case actionNextEffect:
		list := st.Effects()
		for i, info := range list {
			if info.ID == st.Info().ID {
				if err := st.SelectIndex((i + 1) % len(list)); err != nil {
					log.Printf("[term] select: %v", err)
				}
				break
			}
		}
	case actionNextParam:
		st.MoveCursor(1)
	case actionPrevParam:
		st.MoveCursor(-1)
	case actionIncrease:
		st.Nudge(1)
	case actionDecrease:
		st.Nudge(-1)
	case actionCycle:
		st.Cycle()
	}
}

func keyAction(k tcell.Key, r rune) action {
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit
	case tcell.KeyTab:
		return actionNextEffect
	case tcell.KeyDown:
		return actionNextParam
	case tcell.KeyUp:
		return actionPrevParam
	case tcell.KeyRight:
		return actionIncrease
	case tcell.KeyLeft:
		return actionDecrease
	case tcell.KeyEnter:
		return actionCycle
	case tcell.KeyRune:
		switch r {
		case 'q', 'Q':
			return actionQuit
		case ' ':
			return actionToggle
		case 'r', 'R':
			return actionReset
		case '+', '=':
			return actionFaster
		case '-':
			return actionSlower
		}
	}
	return actionNone
}

// Paint copies img onto a cols×rows cell grid, two pixel rows per cell.
func Paint(dst cellSetter, img *image.RGBA, cols, rows int) {
	b := img.Bounds()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := pixel(img, b.Min.X+x, b.Min.Y+2*y)
			bottom := pixel(img, b.Min.X+x, b.Min.Y+2*y+1)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			dst.SetContent(x, y, halfBlock, nil, style)
		}
	}
}

func pixel(img *image.RGBA, x, y int) tcell.Color {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return tcell.ColorBlack
	}
	c := img.RGBAAt(x, y)
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
