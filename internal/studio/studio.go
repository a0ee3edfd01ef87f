// Package studio holds the state of a preview session: the active
// effect, its playback, the parameter cursor and performance tracking.
// Front ends (the window, the terminal preview, the benchmark) drive it
// one frame at a time.
package studio

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/iburimskiy/vfx-studio/internal/config"
	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/export"
	"github.com/iburimskiy/vfx-studio/internal/metrics"
	"github.com/iburimskiy/vfx-studio/internal/surface"
)

// Background is painted under every frame.
var Background = color.NRGBA{R: 5, G: 6, B: 12, A: 255}

// AudioParam is the parameter modulated in audio-reactive mode.
const AudioParam = "intensite"

const (
	minSpeed = 0.25
	maxSpeed = 4
)

var ErrNoEffect = errors.New("no active effect")

// LevelSource reports a loudness in [0,1].
type LevelSource interface {
	Level() float64
}

type valued interface {
	Values() *effect.Values
}

// Studio is owned by the frame loop and is not safe for concurrent use,
// except for the metrics accessors which read reporter state.
type Studio struct {
	registry *effect.Registry
	settings *config.Settings
	reporter *metrics.Reporter
	session  *metrics.Session

	active      effect.Effect
	info        effect.Info
	initialized bool
	playing     bool
	speed       float64
	cursor      int
	frames      int

	audio     LevelSource
	audioBase float64
}

// New creates a studio over reg. Nothing is active until Select.
func New(reg *effect.Registry, settings *config.Settings) *Studio {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	s := &Studio{
		registry: reg,
		settings: settings,
		session:  metrics.NewSession(),
		playing:  true,
		speed:    1,
		reporter: metrics.NewReporter(
			metrics.WithSampler(metrics.NewSampler(settings.Sampler)),
			metrics.WithMaxFPS(settings.MaxFPS),
		),
	}
	s.reporter.OnUpdate(s.session.Add)
	return s
}

// Start runs the metrics reporter until ctx is done or Close. It does
// nothing when performance monitoring is disabled.
func (s *Studio) Start(ctx context.Context) {
	if !s.settings.PerfMonitoring {
		return
	}
	s.reporter.Start(ctx)
}

// Close stops metrics and destroys the active effect.
func (s *Studio) Close() {
	s.reporter.Stop()
	if s.active != nil {
		s.active.Destroy()
		s.active = nil
	}
}

// Effects lists the selectable effects.
func (s *Studio) Effects() []effect.Info { return s.registry.List() }

// Select replaces the active effect with a fresh instance of id.
func (s *Studio) Select(id string) error {
	e, err := s.registry.New(id)
	if err != nil {
		return fmt.Errorf("failed to select effect: %w", err)
	}
	s.setAudio(nil)
	if s.active != nil {
		s.active.Destroy()
	}
	s.active = e
	for _, info := range s.registry.List() {
		if info.ID == id {
			s.info = info
		}
	}
	s.initialized = false
	s.cursor = 0
	s.frames = 0
	s.applyPlaying()
	s.reporter.Reset()
	s.session.Reset()
	log.Printf("[studio] selected %s", id)
	return nil
}

// SelectIndex selects the i-th listed effect, counting from 0.
func (s *Studio) SelectIndex(i int) error {
	list := s.registry.List()
	if i < 0 || i >= len(list) {
		return fmt.Errorf("%w: index %d", effect.ErrUnknownEffect, i)
	}
	return s.Select(list[i].ID)
}

// Active returns the active effect, or nil.
func (s *Studio) Active() effect.Effect { return s.active }

// Info describes the active effect.
func (s *Studio) Info() effect.Info { return s.info }

// Frames counts frames rendered since the effect was selected.
func (s *Studio) Frames() int { return s.frames }

// Playing reports whether the animation advances.
func (s *Studio) Playing() bool { return s.playing }

// TogglePlay pauses or resumes the animation.
func (s *Studio) TogglePlay() {
	s.playing = !s.playing
	s.applyPlaying()
}

func (s *Studio) applyPlaying() {
	p, ok := s.active.(effect.Player)
	if !ok {
		return
	}
	if s.playing {
		p.Play()
	} else {
		p.Pause()
	}
}

// Reset restarts the active effect and the session analytics.
func (s *Studio) Reset() error {
	if s.active == nil {
		return ErrNoEffect
	}
	s.active.Reset()
	s.frames = 0
	s.reporter.Reset()
	s.session.Reset()
	return nil
}

// Speed is the playback multiplier applied to frame deltas.
func (s *Studio) Speed() float64 { return s.speed }

// ScaleSpeed multiplies the speed by f, clamped to [0.25, 4].
func (s *Studio) ScaleSpeed(f float64) {
	s.speed = min(maxSpeed, max(minSpeed, s.speed*f))
}

// Frame renders one frame of dtMs onto dst and records its timing.
func (s *Studio) Frame(dst surface.Surface, dtMs float64) {
	s.reporter.RecordFrame(dtMs)
	dst.Clear(Background)
	if s.active == nil {
		return
	}
	if !s.initialized {
		s.active.Initialize(dst)
		s.initialized = true
	}
	s.modulate()

	step := dtMs * s.speed
	if _, ok := s.active.(effect.Player); !ok && !s.playing {
		step = 0
	}
	s.active.Render(dst, step)
	s.frames++
}

// Snapshot renders a still of the active effect onto dst without
// advancing it.
func (s *Studio) Snapshot(dst surface.Surface) {
	dst.Clear(Background)
	if s.active == nil || !s.initialized {
		return
	}
	if sr, ok := s.active.(effect.StaticRenderer); ok {
		sr.RenderStatic(dst)
		return
	}
	s.active.Render(dst, 0)
}

// SetAudio routes src into the intensity parameter; nil detaches it and
// restores the value it had before.
func (s *Studio) SetAudio(src LevelSource) {
	s.setAudio(src)
}

func (s *Studio) setAudio(src LevelSource) {
	vals := s.values()
	if vals == nil {
		s.audio = nil
		return
	}
	if _, ok := vals.Schema().Lookup(AudioParam); !ok {
		s.audio = nil
		return
	}
	switch {
	case s.audio == nil && src != nil:
		s.audioBase = vals.Float(AudioParam)
	case s.audio != nil && src == nil:
		vals.Set(AudioParam, s.audioBase)
	}
	s.audio = src
}

// AudioActive reports whether a level source drives the effect.
func (s *Studio) AudioActive() bool { return s.audio != nil }

// modulate scales the base intensity by the audio level: silence gives
// 30% of it, a full-scale level 170%, clamped to the parameter range.
func (s *Studio) modulate() {
	if s.audio == nil {
		return
	}
	level := clamp01(s.audio.Level())
	s.values().Set(AudioParam, s.audioBase*(0.3+1.4*level))
}

func (s *Studio) values() *effect.Values {
	if v, ok := s.active.(valued); ok {
		return v.Values()
	}
	return nil
}

// Metrics returns the latest performance snapshot.
func (s *Studio) Metrics() metrics.Snapshot { return s.reporter.Latest() }

// Summary aggregates the snapshots taken since the effect was selected.
func (s *Studio) Summary() metrics.Summary { return s.session.Summary() }

// History returns the recent snapshots, oldest first.
func (s *Studio) History() []metrics.Snapshot { return s.session.History() }

// Reporter exposes the metrics reporter for front ends that tick it
// themselves.
func (s *Studio) Reporter() *metrics.Reporter { return s.reporter }

// Report builds a performance report for the active effect.
func (s *Studio) Report(now time.Time) export.Report {
	var params map[string]any
	if vals := s.values(); vals != nil {
		params = vals.Snapshot()
	}
	return export.NewReport(s.info.Name, s.Metrics(), params, s.Summary(), now)
}
