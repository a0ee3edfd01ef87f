package main

import (
	"bytes"
	"fmt"
	"image/color"
	"log"

	"github.com/charmbracelet/harmonica"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/iburimskiy/vfx-studio/internal/config"
	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/studio"
)

var (
	windowBackground = color.RGBA{R: 12, G: 14, B: 22, A: 255}
	panelBackground  = color.RGBA{R: 20, G: 25, B: 35, A: 220}
	panelBorder      = color.RGBA{R: 60, G: 70, B: 90, A: 255}
	textColor        = color.RGBA{R: 220, G: 225, B: 235, A: 255}
	dimText          = color.RGBA{R: 140, G: 150, B: 170, A: 255}
	highlight        = color.RGBA{R: 100, G: 120, B: 160, A: 255}
)

// Gauge ceilings
const (
	memoryScale = 512.0 // MB
	cpuScale    = 100.0 // %
)

// gauge is a bar whose fill follows its target through a spring.
type gauge struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newGauge() gauge {
	return gauge{spring: harmonica.NewSpring(harmonica.FPS(60), 6.0, 0.8)}
}

func (g *gauge) update(target float64) {
	g.pos, g.vel = g.spring.Update(g.pos, g.vel, target)
}

func (g *game) updateGauges() {
	snap := g.studio.Metrics()
	g.gauges[0].update(float64(snap.FPS) / float64(g.settings.MaxFPS))
	g.gauges[1].update(snap.Memory / memoryScale)
	g.gauges[2].update(snap.CPU / cpuScale)
}

func loadFace(size float64) text.Face {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Printf("[studio] failed to load font: %v", err)
		return nil
	}
	return &text.GoTextFace{Source: src, Size: size}
}

// label draws s at x,y, falling back to the debug font without a face.
func (g *game) label(screen *ebiten.Image, s string, x, y int, c color.Color) {
	if g.face == nil {
		ebitenutil.DebugPrintAt(screen, s, x, y)
		return
	}
	opts := &text.DrawOptions{}
	opts.GeoM.Translate(float64(x), float64(y))
	opts.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, g.face, opts)
}

func panel(screen *ebiten.Image, x, y, w, h int) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), panelBackground, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 2, panelBorder, false)
}

// bar draws a horizontal fill of fraction in [0,1] coloured by hue.
func bar(screen *ebiten.Image, x, y, w, h int, fraction, hue float64) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), color.RGBA{R: 25, G: 30, B: 40, A: 200}, false)
	if fraction > 0 {
		r, gv, b := studio.HSVToRGB(hue, 0.8, 0.9)
		fill := min(fraction, 1) * float64(w)
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(fill), float32(h), color.RGBA{R: r, G: gv, B: b, A: 200}, false)
	}
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, panelBorder, false)
}

func (g *game) drawButtons(screen *ebiten.Image) {
	for i, b := range buttons {
		var bg color.Color
		switch {
		case g.pressed == i:
			bg = color.RGBA{R: 60, G: 80, B: 120, A: 255}
		case g.hovered == i:
			bg = color.RGBA{R: 80, G: 100, B: 140, A: 255}
		default:
			bg = color.RGBA{R: 100, G: 120, B: 160, A: 255}
		}
		if (b.label == "Record 5s" && g.recorder != nil) || (b.label == "Audio" && g.studio.AudioActive()) {
			bg = color.RGBA{R: 160, G: 70, B: 90, A: 255}
		}
		vector.DrawFilledRect(screen, float32(b.x), config.ButtonY, config.ButtonWidth, config.ButtonHeight, bg, false)
		vector.StrokeRect(screen, float32(b.x), config.ButtonY, config.ButtonWidth, config.ButtonHeight, 2, color.RGBA{R: 150, G: 170, B: 200, A: 255}, false)

		textWidth := len(b.label) * 7
		g.label(screen, b.label, b.x+(config.ButtonWidth-textWidth)/2, config.ButtonY+8, textColor)
	}
}

func (g *game) drawCanvas(screen *ebiten.Image) {
	cw, ch := g.canvas.Bounds().Dx(), g.canvas.Bounds().Dy()
	scale := min(float64(config.CanvasWidth)/float64(cw), float64(config.CanvasHeight)/float64(ch))

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(scale, scale)
	opts.GeoM.Translate(
		config.CanvasX+(config.CanvasWidth-float64(cw)*scale)/2,
		config.CanvasY+(config.CanvasHeight-float64(ch)*scale)/2,
	)
	opts.Filter = ebiten.FilterLinear
	screen.DrawImage(g.canvas, opts)
	vector.StrokeRect(screen, config.CanvasX, config.CanvasY, config.CanvasWidth, config.CanvasHeight, 2, panelBorder, false)

	if g.settings.ShowFPS {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.0f fps", ebiten.ActualFPS()), config.CanvasX+8, config.CanvasY+8)
	}
	if g.recorder != nil {
		p := g.recorder.Progress()
		bar(screen, config.CanvasX, config.CanvasY+config.CanvasHeight+6, config.CanvasWidth, 8, p, 0)
		g.label(screen, fmt.Sprintf("REC %d frames", g.recorder.Frames()), config.CanvasX+config.CanvasWidth-110, config.CanvasY+8, color.RGBA{R: 255, G: 80, B: 80, A: 255})
	}
	if pos, total := g.player.Progress(); total > 0 {
		g.label(screen, fmt.Sprintf("%s  %s / %s", g.player.Name(), studio.FormatDuration(pos), studio.FormatDuration(total)),
			config.CanvasX+8, config.CanvasY+config.CanvasHeight-22, dimText)
	}
}

func (g *game) drawEffectList(screen *ebiten.Image) {
	x, y := config.PanelX, config.CanvasY
	list := g.studio.Effects()
	h := 34 + len(list)*config.RowHeight
	panel(screen, x, y, config.PanelWidth, h)
	g.label(screen, "Effects", x+10, y+8, dimText)
	for i, info := range list {
		c := dimText
		if info.ID == g.studio.Info().ID {
			c = textColor
		}
		g.label(screen, fmt.Sprintf("%d  %s", i+1, info.Name), x+10, y+30+i*config.RowHeight, c)
	}
}

func (g *game) drawParams(screen *ebiten.Image) {
	x := config.PanelX
	y := config.CanvasY + 44 + len(g.studio.Effects())*config.RowHeight
	rows := g.studio.Params()
	panel(screen, x, y, config.PanelWidth, 34+len(rows)*config.RowHeight)

	state := "playing"
	if !g.studio.Playing() {
		state = "paused"
	}
	g.label(screen, fmt.Sprintf("Parameters  (%s, x%.2f)", state, g.studio.Speed()), x+10, y+8, dimText)

	for i, row := range rows {
		ry := y + 30 + i*config.RowHeight
		if row.Selected {
			vector.DrawFilledRect(screen, float32(x+4), float32(ry-2), float32(config.PanelWidth-8), float32(config.RowHeight), highlight, false)
		}
		g.label(screen, row.Label, x+10, ry, textColor)
		if row.Kind == effect.KindRange {
			bar(screen, x+170, ry+3, 160, 10, row.Fraction, 200+row.Fraction*120)
		}
		g.label(screen, row.Value, x+345, ry, textColor)
	}
}

func (g *game) drawMetrics(screen *ebiten.Image) {
	x := config.PanelX
	h := 190
	y := config.WindowHeight - h - 40
	panel(screen, x, y, config.PanelWidth, h)

	snap := g.studio.Metrics()
	g.label(screen, fmt.Sprintf("Performance  %s / %s", snap.Quality, snap.Stability), x+10, y+8, dimText)

	rows := []struct {
		name  string
		value string
	}{
		{"FPS", fmt.Sprintf("%d", snap.FPS)},
		{"Memory", fmt.Sprintf("%.1f MB", snap.Memory)},
		{"CPU", fmt.Sprintf("%.1f %%", snap.CPU)},
	}
	for i, row := range rows {
		ry := y + 32 + i*26
		fill := g.gauges[i].pos
		// FPS is good when high; memory and CPU when low.
		score := fill
		if i > 0 {
			score = 1 - fill
		}
		g.label(screen, row.name, x+10, ry, textColor)
		bar(screen, x+90, ry+3, 220, 12, fill, studio.QualityHue(score))
		g.label(screen, row.value, x+320, ry, textColor)
	}

	sum := g.studio.Summary()
	g.label(screen, fmt.Sprintf("Frame time %.2f ms", snap.FrameTimeMs), x+10, y+116, dimText)
	g.label(screen, fmt.Sprintf("Session %s  avg %.0f fps  peak %d  min %d", studio.FormatDuration(sum.Duration), sum.AvgFPS, sum.PeakFPS, sum.MinFPS),
		x+10, y+138, dimText)
	g.label(screen, fmt.Sprintf("Grade %s  (%s)", sum.Grade, sum.Stability), x+10, y+160, textColor)
}

func (g *game) drawStatus(screen *ebiten.Image) {
	status := g.status
	if status == "" {
		status = "Space play/pause, R reset, arrows adjust, 1-9 effect, S/V/J export, O script, A audio, Esc/Q quit"
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, config.WindowHeight-20)
}
