package respiration

import "math"

const twoPi = 2 * math.Pi

func (e *Effect) updateParticles(dt float64) {
	v := e.Values()
	theme := e.theme()
	cx, cy := e.center()
	breathFactor := e.depth*0.5 + 0.5
	jitter := 0.1 + v.Float(ParamStress)*0.4
	frames := dt / frameMs

	for i := range e.particles {
		p := &e.particles[i]

		p.Life += dt * 0.001
		if p.Life > p.MaxLife {
			p.Life = 0
			p.X = cx + (e.rng.Float64()-0.5)*100
			p.Y = cy + (e.rng.Float64()-0.5)*100
		}

		angle := math.Atan2(p.Y-cy, p.X-cx)
		breath := math.Sin(e.clock*0.001+p.Phase) * breathFactor

		// Perlin noise keeps neighbouring frames coherent; stress widens it.
		seed := float64(i)*0.37 + 0.5
		nx := e.noise.Noise2D(seed, e.clock*0.0005)
		ny := e.noise.Noise2D(seed+100, e.clock*0.0005)

		p.VX = math.Cos(angle)*breath*0.2 + nx*jitter*0.5
		p.VY = math.Sin(angle)*breath*0.2 + ny*jitter*0.5
		p.X += p.VX * frames
		p.Y += p.VY * frames

		p.Size = (1 + math.Sin(e.clock*0.005+p.Phase)*0.5) * (1 + breathFactor*0.5)

		lifeFactor := 1 - p.Life/p.MaxLife
		p.Color = theme.Base.Lerp(theme.Pulse, lifeFactor)
	}
}

func (e *Effect) updateThermalWaves(dt float64) {
	intensity := e.Values().Float(ParamThermalDistortion)
	if intensity < SkipThreshold {
		return
	}

	for i := range e.waves {
		w := &e.waves[i]
		w.Life += dt * 0.001 * w.Speed
		if w.Life > 1 {
			w.Life = 0
			w.X = e.rng.Float64() * e.width
			w.Y = e.rng.Float64() * e.height
			w.Intensity = 0.3 + e.rng.Float64()*0.7
		}

		w.Radius = w.Life * w.MaxRadius
		w.CurrentIntensity = w.Intensity * (1 - w.Life) * intensity
	}
}

func (e *Effect) updateVolumetricRays(dt float64) {
	v := e.Values()
	intensity := v.Float(ParamVolumetricLight)
	if intensity < SkipThreshold {
		return
	}

	heart := HeartRate * v.Float(ParamRhythm)
	beat := 0.8 + math.Sin(e.clock*0.001*heart/60)*0.2
	breath := e.depth*0.7 + 0.3

	for i := range e.rays {
		r := &e.rays[i]
		r.Phase = math.Mod(r.Phase+dt*0.001*r.Speed, twoPi)
		r.Length = r.MaxLength * breath * (0.7 + math.Sin(r.Phase)*0.3)
		r.CurrentOpacity = r.Opacity * intensity * beat
	}
}

func (e *Effect) updateHaloLayers(dt float64) {
	intensity := e.Values().Float(ParamHaloIntensity)
	if intensity < SkipThreshold {
		return
	}

	breath := e.depth*0.5 + 0.5
	for i := range e.halos {
		h := &e.halos[i]
		h.Phase = math.Mod(h.Phase+dt*0.001*h.PulseSpeed, twoPi)
		pulse := math.Sin(h.Phase)*0.2 + 0.8
		h.CurrentRadius = h.Radius * breath * pulse
		h.CurrentOpacity = h.Opacity * intensity * pulse
	}
}
