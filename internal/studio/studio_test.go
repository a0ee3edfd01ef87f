package studio

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/iburimskiy/vfx-studio/internal/config"
	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/effect/respiration"
	"github.com/iburimskiy/vfx-studio/internal/surface"
)

// stub is an effect without its own play state.
type stub struct {
	effect.Base
	inits     int
	dts       []float64
	resets    int
	destroyed bool
}

func (s *stub) Initialize(surface.Surface) { s.inits++ }
func (s *stub) Render(_ surface.Surface, dt float64) {
	s.dts = append(s.dts, dt)
}
func (s *stub) Reset()   { s.resets++ }
func (s *stub) Destroy() { s.destroyed = true }

var stubSchema = effect.MustSchema(
	effect.Range("intensite", 0, 1, 0.5),
	effect.Select("mode", "a", "a", "b", "c"),
	effect.Bool("glow", false),
)

type fixedLevel float64

func (f fixedLevel) Level() float64 { return float64(f) }

func newTestStudio(t *testing.T) (*Studio, *stub) {
	t.Helper()
	reg := effect.NewRegistry()
	var last *stub
	reg.Register(effect.Info{ID: "stub", Name: "Stub"}, func() (effect.Effect, error) {
		last = &stub{Base: effect.NewBase(effect.Info{ID: "stub", Name: "Stub"}, stubSchema)}
		return last, nil
	})
	if err := respiration.Register(reg); err != nil {
		t.Fatal(err)
	}
	st := New(reg, config.DefaultSettings())
	t.Cleanup(st.Close)
	if err := st.Select("stub"); err != nil {
		t.Fatal(err)
	}
	return st, last
}

func TestSelect(t *testing.T) {
	st, first := newTestStudio(t)
	if st.Info().Name != "Stub" || len(st.Effects()) != 2 {
		t.Fatalf("info = %+v, effects = %v", st.Info(), st.Effects())
	}

	if err := st.Select("missing"); !errors.Is(err, effect.ErrUnknownEffect) {
		t.Errorf("Select(missing) = %v", err)
	}
	if err := st.SelectIndex(5); !errors.Is(err, effect.ErrUnknownEffect) {
		t.Errorf("SelectIndex(5) = %v", err)
	}

	if err := st.SelectIndex(1); err != nil {
		t.Fatal(err)
	}
	if !first.destroyed {
		t.Error("previous effect not destroyed")
	}
	if st.Info().ID != respiration.ID {
		t.Errorf("active = %s", st.Info().ID)
	}
}

func TestFrameInitializesOnceAndCounts(t *testing.T) {
	st, fx := newTestStudio(t)
	tr := surface.NewTrace(320, 200)

	for i := 0; i < 3; i++ {
		st.Frame(tr, 16)
	}
	if fx.inits != 1 || st.Frames() != 3 {
		t.Errorf("inits = %d, frames = %d", fx.inits, st.Frames())
	}
	if tr.Count(surface.OpClear) != 3 {
		t.Errorf("clears = %d", tr.Count(surface.OpClear))
	}
}

func TestPauseAndSpeed(t *testing.T) {
	st, fx := newTestStudio(t)
	tr := surface.NewTrace(320, 200)

	st.ScaleSpeed(2)
	st.Frame(tr, 10)
	st.TogglePlay()
	st.Frame(tr, 10)
	st.TogglePlay()
	st.ScaleSpeed(100)
	st.Frame(tr, 10)

	want := []float64{20, 0, 40}
	for i, w := range want {
		if fx.dts[i] != w {
			t.Fatalf("dts = %v, want %v", fx.dts, want)
		}
	}
	st.ScaleSpeed(0.001)
	if st.Speed() != minSpeed {
		t.Errorf("speed = %v, want %v", st.Speed(), minSpeed)
	}
}

func TestPausePassesThroughToPlayer(t *testing.T) {
	st, _ := newTestStudio(t)
	if err := st.Select(respiration.ID); err != nil {
		t.Fatal(err)
	}
	st.TogglePlay()
	if st.Active().(effect.Player).Playing() {
		t.Error("respiration still playing")
	}

	tr := surface.NewTrace(800, 600)
	st.Frame(tr, 16)
	st.Frame(tr, 16)
	if clock := st.Active().(*respiration.Effect).Clock(); clock != 0 {
		t.Errorf("clock advanced while paused: %v", clock)
	}
}

func TestReset(t *testing.T) {
	st, fx := newTestStudio(t)
	st.Frame(surface.NewTrace(10, 10), 16)
	if err := st.Reset(); err != nil {
		t.Fatal(err)
	}
	if fx.resets != 1 || st.Frames() != 0 {
		t.Errorf("resets = %d, frames = %d", fx.resets, st.Frames())
	}

	empty := New(effect.NewRegistry(), nil)
	if err := empty.Reset(); !errors.Is(err, ErrNoEffect) {
		t.Errorf("Reset() without effect = %v", err)
	}
}

func TestParamCursor(t *testing.T) {
	st, fx := newTestStudio(t)

	rows := st.Params()
	if len(rows) != 3 || !rows[0].Selected || rows[0].Value != "0.50" || rows[0].Fraction != 0.5 {
		t.Fatalf("rows = %+v", rows)
	}

	if !st.Nudge(10) || math.Abs(fx.Values().Float("intensite")-0.6) > 1e-9 {
		t.Errorf("intensite = %v", fx.Values().Float("intensite"))
	}
	if st.Cycle() {
		t.Error("Cycle() changed a range")
	}

	st.MoveCursor(1)
	if !st.Cycle() || fx.Values().String("mode") != "b" {
		t.Errorf("mode = %q", fx.Values().String("mode"))
	}
	st.MoveCursor(1)
	st.Cycle()
	if got := st.Params()[2]; got.Value != "on" || !got.Selected {
		t.Errorf("glow row = %+v", got)
	}

	st.MoveCursor(1)
	if st.Cursor() != 0 {
		t.Errorf("cursor did not wrap: %d", st.Cursor())
	}
	st.MoveCursor(-1)
	if st.Cursor() != 2 {
		t.Errorf("cursor did not wrap backwards: %d", st.Cursor())
	}
}

func TestAudioModulation(t *testing.T) {
	st, fx := newTestStudio(t)
	tr := surface.NewTrace(10, 10)

	st.SetAudio(fixedLevel(0))
	st.Frame(tr, 16)
	if got := fx.Values().Float("intensite"); math.Abs(got-0.15) > 1e-9 {
		t.Errorf("silent intensite = %v, want 0.15", got)
	}

	st.SetAudio(fixedLevel(1))
	st.Frame(tr, 16)
	if got := fx.Values().Float("intensite"); math.Abs(got-0.85) > 1e-9 {
		t.Errorf("loud intensite = %v, want 0.85", got)
	}

	st.Nudge(10)
	st.Frame(tr, 16)
	if got := fx.Values().Float("intensite"); math.Abs(got-1) > 1e-9 {
		t.Errorf("nudged intensite = %v, want clamped 1", got)
	}

	st.SetAudio(nil)
	if got := fx.Values().Float("intensite"); math.Abs(got-0.6) > 1e-9 || st.AudioActive() {
		t.Errorf("restored intensite = %v, want 0.6", got)
	}
}

func TestReport(t *testing.T) {
	st, _ := newTestStudio(t)
	st.Nudge(2)
	rep := st.Report(time.Unix(0, 0))
	if rep.Effect != "Stub" || rep.Parameters["mode"] != "a" || rep.Performance.FPS != 60 {
		t.Errorf("report = %+v", rep)
	}
}

func TestFormat(t *testing.T) {
	if got := FormatDuration(125 * time.Second); got != "02:05" {
		t.Errorf("FormatDuration = %q", got)
	}
	if got := FormatDuration(-time.Second); got != "00:00" {
		t.Errorf("negative FormatDuration = %q", got)
	}

	tests := []struct {
		h       float64
		r, g, b uint8
	}{
		{0, 255, 0, 0}, {120, 0, 255, 0}, {240, 0, 0, 255}, {360, 255, 0, 0}, {-120, 0, 0, 255},
	}
	for _, tc := range tests {
		r, g, b := HSVToRGB(tc.h, 1, 1)
		if r != tc.r || g != tc.g || b != tc.b {
			t.Errorf("HSVToRGB(%v) = %d,%d,%d", tc.h, r, g, b)
		}
	}
	if QualityHue(2) != 120 || QualityHue(-1) != 0 {
		t.Error("QualityHue not clamped")
	}
}
