package respiration

import (
	"math"

	"github.com/iburimskiy/vfx-studio/internal/surface"
)

// Particle is a drifting mote that respawns near the centre when its life
// runs out.
type Particle struct {
	X, Y      float64
	Size      float64
	VX, VY    float64
	Life      float64 // seconds, 0 ≤ Life ≤ MaxLife
	MaxLife   float64
	Color     surface.RGB
	Phase     float64
	Connected bool
}

// ThermalWave is an expanding heat ripple. Life is its progress in [0,1].
type ThermalWave struct {
	X, Y             float64
	Radius           float64
	MaxRadius        float64
	Speed            float64
	Intensity        float64
	Life             float64
	CurrentIntensity float64
}

// VolumetricRay is a light shaft from the centre.
type VolumetricRay struct {
	Angle          float64
	Length         float64
	MaxLength      float64
	Width          float64
	Speed          float64
	Opacity        float64
	Phase          float64 // radians in [0, 2π)
	CurrentOpacity float64
}

// Progress returns the ray's pulse cycle position in [0,1).
func (r VolumetricRay) Progress() float64 { return r.Phase / (2 * math.Pi) }

// HaloLayer is a concentric glow around the core.
type HaloLayer struct {
	Radius         float64
	MaxRadius      float64
	Opacity        float64
	PulseSpeed     float64
	Parallax       float64
	Tone           Tone
	Phase          float64 // radians in [0, 2π)
	CurrentRadius  float64
	CurrentOpacity float64
}

// Progress returns the halo's pulse cycle position in [0,1).
func (h HaloLayer) Progress() float64 { return h.Phase / (2 * math.Pi) }

// ParticleCount returns how many particles a density allocates.
func ParticleCount(density float64) int {
	n := int(math.Ceil(MaxParticles*clamp01(density) - 1e-9))
	return max(n, MinParticles)
}

// WaveCount returns how many thermal waves a distortion level allocates.
func WaveCount(distortion float64) int {
	return 5 + int(math.Floor(clamp01(distortion)*10+1e-9))
}

// RayCount returns how many light rays a volumetric level allocates.
func RayCount(light float64) int {
	return 3 + int(math.Floor(clamp01(light)*7+1e-9))
}

// HaloCount returns how many halo layers an intensity allocates.
func HaloCount(intensity float64) int {
	return 3 + int(math.Floor(clamp01(intensity)*5+1e-9))
}

func (e *Effect) initEntities() {
	e.initParticles()
	e.initThermalWaves()
	e.initVolumetricRays()
	e.initHaloLayers()
}

func (e *Effect) initParticles() {
	v := e.Values()
	base := e.theme().Base
	n := ParticleCount(v.Float(ParamParticleDensity))

	e.particles = make([]Particle, n)
	for i := range e.particles {
		maxLife := 0.5 + e.rng.Float64()*1.5
		e.particles[i] = Particle{
			X:         e.rng.Float64() * e.width,
			Y:         e.rng.Float64() * e.height,
			Size:      1 + e.rng.Float64()*3,
			VX:        (e.rng.Float64() - 0.5) * 0.5,
			VY:        (e.rng.Float64() - 0.5) * 0.5,
			Life:      e.rng.Float64() * maxLife,
			MaxLife:   maxLife,
			Color:     base,
			Phase:     e.rng.Float64() * 2 * math.Pi,
			Connected: e.rng.Float64() > 0.7,
		}
	}
}

func (e *Effect) initThermalWaves() {
	n := WaveCount(e.Values().Float(ParamThermalDistortion))

	e.waves = make([]ThermalWave, n)
	for i := range e.waves {
		e.waves[i] = ThermalWave{
			X:         e.rng.Float64() * e.width,
			Y:         e.rng.Float64() * e.height,
			Radius:    10 + e.rng.Float64()*50,
			MaxRadius: 100 + e.rng.Float64()*200,
			Speed:     0.2 + e.rng.Float64()*0.8,
			Intensity: 0.3 + e.rng.Float64()*0.7,
		}
	}
}

func (e *Effect) initVolumetricRays() {
	n := RayCount(e.Values().Float(ParamVolumetricLight))

	e.rays = make([]VolumetricRay, n)
	for i := range e.rays {
		e.rays[i] = VolumetricRay{
			Angle:     float64(i) / float64(n) * 2 * math.Pi,
			MaxLength: 100 + e.rng.Float64()*200,
			Width:     2 + e.rng.Float64()*8,
			Speed:     0.01 + e.rng.Float64()*0.03,
			Opacity:   0.1 + e.rng.Float64()*0.3,
			Phase:     e.rng.Float64() * 2 * math.Pi,
		}
	}
}

func (e *Effect) initHaloLayers() {
	n := HaloCount(e.Values().Float(ParamHaloIntensity))

	e.halos = make([]HaloLayer, n)
	for i := range e.halos {
		tone := ToneBase
		if i == 0 {
			tone = TonePulse
		}
		fi := float64(i)
		e.halos[i] = HaloLayer{
			Radius:     50 + fi*40,
			MaxRadius:  200 + fi*60,
			Opacity:    math.Max(0, 0.2-fi*0.05),
			PulseSpeed: 0.01 + fi*0.005,
			Parallax:   0.2 + fi*0.1,
			Tone:       tone,
		}
	}
}
