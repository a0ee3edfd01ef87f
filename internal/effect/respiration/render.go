package respiration

import (
	"math"

	"github.com/iburimskiy/vfx-studio/internal/surface"
)

var warmFade = surface.RGB{R: 255, G: 220, B: 180}

func (e *Effect) drawThermalDistortion(s surface.Surface, theme Theme) {
	if e.Values().Float(ParamThermalDistortion) < SkipThreshold {
		return
	}

	for _, w := range e.waves {
		if w.CurrentIntensity < 0.05 || w.Radius <= 0 {
			continue
		}
		a := w.CurrentIntensity * 0.1
		s.FillRadial(w.X, w.Y, w.Radius, []surface.Stop{
			{Offset: 0, Color: theme.Base.Alpha(a)},
			{Offset: 0.7, Color: theme.Base.Alpha(a * 0.5)},
			{Offset: 1, Color: theme.Base.Alpha(0)},
		})
	}
}

func (e *Effect) drawVolumetricLight(s surface.Surface, theme Theme) {
	if e.Values().Float(ParamVolumetricLight) < SkipThreshold {
		return
	}
	cx, cy := e.center()

	for _, r := range e.rays {
		if r.CurrentOpacity < 0.02 {
			continue
		}
		ex := cx + math.Cos(r.Angle)*r.Length
		ey := cy + math.Sin(r.Angle)*r.Length
		s.StrokeLinear(cx, cy, ex, ey, r.Width, []surface.Stop{
			{Offset: 0, Color: theme.Highlight.Alpha(r.CurrentOpacity)},
			{Offset: 0.6, Color: theme.Highlight.Alpha(r.CurrentOpacity * 0.4)},
			{Offset: 1, Color: theme.Highlight.Alpha(0)},
		})
	}
}

// drawBreathingCore is never skipped: it is the anchor of the scene and
// is drawn while paused too.
func (e *Effect) drawBreathingCore(s surface.Surface, theme Theme) {
	cx, cy := e.center()
	amp := e.Values().Float(ParamAmplitude)
	phase := BreathPhase(e.clock)
	radius := 80 + phase*60*amp
	pulse := math.Sin(e.clock*0.003)*0.3 + 0.7

	s.FillRadial(cx, cy, radius*3, []surface.Stop{
		{Offset: 0, Color: theme.Pulse.Alpha(0.6)},
		{Offset: 0.3, Color: theme.Base.Alpha(0.4)},
		{Offset: 0.7, Color: theme.Base.Alpha(0.2)},
		{Offset: 1, Color: theme.Base.Alpha(0)},
	})
	s.FillRadial(cx, cy, radius*2, []surface.Stop{
		{Offset: 0, Color: theme.Base.Alpha(0.9)},
		{Offset: 0.5, Color: theme.Base.Alpha(0.6)},
		{Offset: 0.8, Color: theme.Base.Alpha(0.3)},
		{Offset: 1, Color: theme.Base.Alpha(0)},
	})
	s.FillCircle(cx, cy, radius, theme.Pulse.Alpha(0.8*pulse))
	s.FillCircle(cx, cy, radius*0.3, surface.White.Alpha(0.6*pulse))
}

func (e *Effect) drawHaloLayers(s surface.Surface, theme Theme) {
	if e.Values().Float(ParamHaloIntensity) < SkipThreshold {
		return
	}
	cx, cy := e.center()

	for i, h := range e.halos {
		if h.CurrentOpacity < 0.02 || h.CurrentRadius <= 0 {
			continue
		}
		a := clamp01(h.CurrentOpacity * (1 - float64(i)*0.2))
		c := theme.Color(h.Tone)
		s.FillRadial(cx, cy, h.CurrentRadius, []surface.Stop{
			{Offset: 0, Color: c.Alpha(a)},
			{Offset: 0.7, Color: c.Alpha(a * 0.5)},
			{Offset: 1, Color: c.Alpha(0)},
		})
	}
}

func (e *Effect) drawCirculation(s surface.Surface, theme Theme) {
	v := e.Values()
	circ := v.Float(ParamCirculation)
	if circ < SkipThreshold {
		return
	}
	cx, cy := e.center()
	strength := v.Float(ParamIntensity) * circ
	radius := 100 + BreathPhase(e.clock)*v.Float(ParamAmplitude)*100

	s.FillRadial(cx, cy, radius, []surface.Stop{
		{Offset: 0, Color: theme.Pulse.Alpha(strength * 0.8)},
		{Offset: 0.5, Color: theme.Base.Alpha(strength * 0.4)},
		{Offset: 1, Color: warmFade.Alpha(0)},
	})
}

func (e *Effect) drawParticles(s surface.Surface) {
	intensity := math.Max(e.Values().Float(ParamParticleDensity), MinParticleIntensity)

	for i, p := range e.particles {
		lifeFactor := 1 - p.Life/p.MaxLife
		alpha := math.Max(0.3, lifeFactor*intensity)

		s.FillCircle(p.X, p.Y, p.Size*1.8, p.Color.Alpha(alpha*0.3))
		s.FillCircle(p.X, p.Y, p.Size, p.Color.Alpha(alpha))
		s.FillCircle(p.X, p.Y, p.Size*0.4, surface.White.Alpha(alpha*0.7))

		if p.Connected && alpha > 0.2 {
			e.drawConnections(s, i, alpha)
		}
	}
}

func (e *Effect) drawConnections(s surface.Surface, from int, alpha float64) {
	p := e.particles[from]
	for j, o := range e.particles {
		if j == from || !o.Connected {
			continue
		}
		d := math.Hypot(o.X-p.X, o.Y-p.Y)
		if d >= ConnectionDistance {
			continue
		}
		a := (1 - d/ConnectionDistance) * alpha * 0.4
		s.StrokeLine(p.X, p.Y, o.X, o.Y, 1, p.Color.Alpha(a))
	}
}
