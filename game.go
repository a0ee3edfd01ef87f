package main

import (
	"image"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/iburimskiy/vfx-studio/internal/audio"
	"github.com/iburimskiy/vfx-studio/internal/config"
	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/export"
	"github.com/iburimskiy/vfx-studio/internal/studio"
	"github.com/iburimskiy/vfx-studio/internal/surface/ebitensurf"
)

type button struct {
	label  string
	x      int
	action func(g *game)
}

var buttons = []button{
	{"Open Script", config.CanvasX, (*game).openScript},
	{"Audio", config.CanvasX + 130, (*game).toggleAudio},
	{"Screenshot", config.CanvasX + 260, (*game).screenshot},
	{"Record 5s", config.CanvasX + 390, (*game).toggleRecording},
	{"Report", config.CanvasX + 520, (*game).report},
}

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

type game struct {
	studio   *studio.Studio
	registry *effect.Registry
	settings *config.Settings
	dataDir  string
	player   *audio.Player

	// canvas
	canvas    *ebiten.Image
	surf      *ebitensurf.Canvas
	lastFrame time.Time
	recorder  *export.Recorder

	// hud
	face   text.Face
	gauges [3]gauge

	// results of dialogs and exports, applied on the frame loop
	results chan func(g *game)
	dialog  bool

	// input edge detection
	prevKey map[ebiten.Key]bool

	// button state
	hovered int
	pressed int

	status  string
	lastErr error
}

func newGame(st *studio.Studio, reg *effect.Registry, settings *config.Settings, dataDir string) *game {
	w, h := settings.CanvasSize()
	canvas := ebiten.NewImage(w, h)
	return &game{
		studio:   st,
		registry: reg,
		settings: settings,
		dataDir:  dataDir,
		player:   audio.NewPlayer(64),
		canvas:   canvas,
		surf:     ebitensurf.New(canvas),
		face:     loadFace(13),
		gauges:   [3]gauge{newGauge(), newGauge(), newGauge()},
		results:  make(chan func(g *game), 8),
		prevKey:  map[ebiten.Key]bool{},
		hovered:  -1,
		pressed:  -1,
	}
}

func (g *game) Update() error {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	g.drainResults()

	// Handle button interactions
	mouseX, mouseY := ebiten.CursorPosition()
	g.hovered = -1
	for i, b := range buttons {
		if mouseX >= b.x && mouseX <= b.x+config.ButtonWidth &&
			mouseY >= config.ButtonY && mouseY <= config.ButtonY+config.ButtonHeight {
			g.hovered = i
		}
	}
	if g.hovered >= 0 && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.pressed = g.hovered
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.pressed >= 0 && g.pressed == g.hovered {
			buttons[g.pressed].action(g)
		}
		g.pressed = -1
	}

	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if justPressed(ebiten.KeySpace) {
		g.studio.TogglePlay()
	}
	if justPressed(ebiten.KeyR) {
		g.setErr(g.studio.Reset())
	}
	if justPressed(ebiten.KeyArrowUp) {
		g.studio.MoveCursor(-1)
	}
	if justPressed(ebiten.KeyArrowDown) {
		g.studio.MoveCursor(1)
	}
	if justPressed(ebiten.KeyEnter) {
		g.studio.Cycle()
	}
	if justPressed(ebiten.KeyEqual) {
		g.studio.ScaleSpeed(1.25)
	}
	if justPressed(ebiten.KeyMinus) {
		g.studio.ScaleSpeed(0.8)
	}
	if justPressed(ebiten.KeyS) {
		g.screenshot()
	}
	if justPressed(ebiten.KeyV) {
		g.toggleRecording()
	}
	if justPressed(ebiten.KeyJ) {
		g.report()
	}
	if justPressed(ebiten.KeyO) {
		g.openScript()
	}
	if justPressed(ebiten.KeyA) {
		g.toggleAudio()
	}
	for i, k := range digitKeys {
		if justPressed(k) {
			g.selectEffect(i)
		}
	}

	// Held arrows keep adjusting after a short delay.
	for k, steps := range map[ebiten.Key]int{ebiten.KeyArrowRight: 1, ebiten.KeyArrowLeft: -1} {
		d := inpututil.KeyPressDuration(k)
		if d == 1 || (d > 20 && d%3 == 0) {
			g.studio.Nudge(steps)
		}
	}

	g.renderFrame()
	g.updateGauges()
	return nil
}

// renderFrame advances the effect by the wall time since the last frame
// and feeds the recorder.
func (g *game) renderFrame() {
	now := time.Now()
	dt := 0.0
	if !g.lastFrame.IsZero() {
		dt = float64(now.Sub(g.lastFrame)) / float64(time.Millisecond)
	}
	g.lastFrame = now

	g.studio.Frame(g.surf, dt)

	if g.recorder == nil {
		return
	}
	if g.recorder.Advance(dt) {
		g.recorder.Add(g.canvasImage())
	}
	if g.recorder.Done() {
		rec := g.recorder
		g.recorder = nil
		g.saveRecording(rec)
	}
}

// canvasImage copies the canvas pixels.
func (g *game) canvasImage() *image.RGBA {
	img := image.NewRGBA(g.canvas.Bounds())
	g.canvas.ReadPixels(img.Pix)
	return img
}

func (g *game) selectEffect(i int) {
	if err := g.studio.SelectIndex(i); err != nil {
		g.setErr(err)
		return
	}
	if g.player.Loaded() {
		g.studio.SetAudio(g.player)
	}
	g.lastErr = nil
}

func (g *game) toggleRecording() {
	if g.recorder != nil {
		rec := g.recorder
		g.recorder = nil
		g.saveRecording(rec)
		return
	}
	maxW, maxH := g.settings.RecordingBounds()
	g.recorder = export.NewRecorder(maxW, maxH, config.RecordingFPS, config.RecordingSeconds*time.Second)
	g.status = "Recording..."
}

func (g *game) toggleAudio() {
	if g.player.Loaded() {
		g.studio.SetAudio(nil)
		g.player.Close()
		g.status = "Audio-reactive mode off"
		return
	}
	g.openAudio()
}

func (g *game) drainResults() {
	for {
		select {
		case fn := <-g.results:
			fn(g)
		default:
			return
		}
	}
}

// post hands a result from a background goroutine to the frame loop.
func (g *game) post(fn func(g *game)) {
	g.results <- fn
}

func (g *game) setErr(err error) {
	if err != nil {
		log.Printf("[studio] %v", err)
		g.lastErr = err
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(windowBackground)
	g.drawButtons(screen)
	g.drawCanvas(screen)
	g.drawEffectList(screen)
	g.drawParams(screen)
	g.drawMetrics(screen)
	g.drawStatus(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.WindowWidth, config.WindowHeight
}
