// Package respiration implements "Organic Life Respiration Pro": a
// breathing core surrounded by thermal waves, light rays, halo layers and
// drifting particles, all paced by one shared breathing oscillator.
package respiration

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/aquilax/go-perlin"

	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/surface"
)

// ID is the registry and storage identifier of the effect.
const ID = "organic-life-respiration-pro"

const (
	MaxParticles = 150
	// MinParticles keeps a visible particle set when density is 0.
	MinParticles = 15
	// MinParticleIntensity floors particle opacity.
	MinParticleIntensity = 0.4
	// ConnectionDistance is the longest particle link drawn.
	ConnectionDistance = 120.0
	// SkipThreshold disables a category whose intensity is below it.
	SkipThreshold = 0.1
	// HeartRate is the ray flicker rate in beats per minute at rythme 1.
	HeartRate = 72.0

	// BreathRate is the breathing oscillator's angular speed per ms.
	BreathRate = 0.001
	// BreathPeriodMs is the oscillator period.
	BreathPeriodMs = 2 * math.Pi / BreathRate

	frameMs = 1000.0 / 60
)

// Parameter keys
const (
	ParamSpeed             = "vitesse"
	ParamIntensity         = "intensite"
	ParamAmplitude         = "amplitude"
	ParamRhythm            = "rythme"
	ParamCirculation       = "circulation"
	ParamStress            = "stress"
	ParamHaloIntensity     = "haloIntensity"
	ParamParticleDensity   = "particleDensity"
	ParamThermalDistortion = "thermalDistortion"
	ParamVolumetricLight   = "volumetricLight"
	ParamColorTheme        = "colorTheme"
)

var schema = effect.MustSchema(
	effect.Range(ParamSpeed, 0.1, 3, 1).WithLabel("Speed"),
	effect.Range(ParamIntensity, 0, 1, 0.8).WithLabel("Intensity"),
	effect.Range(ParamAmplitude, 0.05, 0.5, 0.25).WithLabel("Amplitude"),
	effect.Range(ParamRhythm, 0.5, 2, 1).WithLabel("Rhythm"),
	effect.Range(ParamCirculation, 0, 1, 0.9),
	effect.Range(ParamStress, 0, 1, 0.2),
	effect.Range(ParamHaloIntensity, 0, 1, 0.7),
	effect.Range(ParamParticleDensity, 0, 1, 0.6),
	effect.Range(ParamThermalDistortion, 0, 1, 0.4),
	effect.Range(ParamVolumetricLight, 0, 1, 0.5),
	effect.Select(ParamColorTheme, "bio", ThemeNames()...),
)

// Schema returns the effect's parameter declarations.
func Schema() *effect.Schema { return schema }

// Info describes the effect for listings.
func Info() effect.Info {
	return effect.Info{
		ID:          ID,
		Name:        "Organic Life Respiration Pro",
		Category:    "biological",
		Version:     "2.0",
		Performance: "medium",
	}
}

// Register adds the effect to r.
func Register(r *effect.Registry) error {
	return r.Register(Info(), func() (effect.Effect, error) {
		return New(), nil
	})
}

// BreathPhase returns the breathing oscillator in [0,1] at clock tMs.
func BreathPhase(tMs float64) float64 {
	return math.Sin(tMs*BreathRate)*0.5 + 0.5
}

// Effect is the respiration animation. It is not safe for concurrent use;
// the frame loop owns it.
type Effect struct {
	effect.Base

	rng   *rand.Rand
	noise *perlin.Perlin

	width, height float64
	initialized   bool
	playing       bool

	clock float64 // ms, advances only while playing
	depth float64 // breathing depth derived from the phase

	particles []Particle
	waves     []ThermalWave
	rays      []VolumetricRay
	halos     []HaloLayer
}

// Option configures an Effect.
type Option func(*Effect)

// WithSeed makes entity placement and jitter reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Effect) {
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		e.noise = perlin.NewPerlin(2, 2, 3, int64(seed))
	}
}

// New creates the effect with default parameters, playing.
func New(opts ...Option) *Effect {
	e := &Effect{
		Base:    effect.NewBase(Info(), schema),
		playing: true,
		depth:   1,
	}
	WithSeed(uint64(time.Now().UnixNano()))(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize sizes the effect to s and allocates every entity category.
func (e *Effect) Initialize(s surface.Surface) {
	e.resize(s)
	e.initEntities()
	e.initialized = true
}

// Render advances the animation by dtMs and draws it back to front.
func (e *Effect) Render(s surface.Surface, dtMs float64) {
	if !e.initialized {
		e.Initialize(s)
	}
	e.resize(s)
	if dtMs < 0 || math.IsNaN(dtMs) || math.IsInf(dtMs, 0) {
		dtMs = 0
	}

	if e.playing {
		e.clock += dtMs * e.Values().Float(ParamSpeed)
	}
	e.updateDepth()
	if e.playing {
		e.updateParticles(dtMs)
		e.updateThermalWaves(dtMs)
		e.updateVolumetricRays(dtMs)
		e.updateHaloLayers(dtMs)
	}

	theme := e.theme()
	e.drawThermalDistortion(s, theme)
	e.drawVolumetricLight(s, theme)
	e.drawBreathingCore(s, theme)
	e.drawHaloLayers(s, theme)
	e.drawCirculation(s, theme)
	e.drawParticles(s)
}

// RenderStatic draws the foreground layers without advancing anything.
func (e *Effect) RenderStatic(s surface.Surface) {
	if !e.initialized {
		return
	}
	theme := e.theme()
	e.drawHaloLayers(s, theme)
	e.drawCirculation(s, theme)
	e.drawParticles(s)
}

// Reset zeroes the clock and reallocates entities at their configured
// counts. Play state is kept.
func (e *Effect) Reset() {
	e.clock = 0
	e.depth = 1
	if e.initialized {
		e.initEntities()
	}
}

// Destroy drops all entities. A later Render reinitializes.
func (e *Effect) Destroy() {
	e.particles = nil
	e.waves = nil
	e.rays = nil
	e.halos = nil
	e.initialized = false
}

func (e *Effect) Play()         { e.playing = true }
func (e *Effect) Pause()        { e.playing = false }
func (e *Effect) Playing() bool { return e.playing }

// Clock returns the effect clock in ms.
func (e *Effect) Clock() float64 { return e.clock }

// Stats counts live entities per category.
type Stats struct {
	Particles int
	Waves     int
	Rays      int
	Halos     int
}

// Stats reports entity counts.
func (e *Effect) Stats() Stats {
	return Stats{
		Particles: len(e.particles),
		Waves:     len(e.waves),
		Rays:      len(e.rays),
		Halos:     len(e.halos),
	}
}

func (e *Effect) resize(s surface.Surface) {
	w, h := s.Size()
	e.width, e.height = float64(w), float64(h)
}

func (e *Effect) center() (float64, float64) {
	return e.width / 2, e.height / 2
}

func (e *Effect) theme() Theme {
	return ThemeByName(e.Values().String(ParamColorTheme))
}

func (e *Effect) updateDepth() {
	amp := e.Values().Float(ParamAmplitude)
	e.depth = BreathPhase(e.clock)*amp + (1 - amp)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
