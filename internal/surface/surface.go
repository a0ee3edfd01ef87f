// Package surface defines the 2D drawing target effects paint onto and
// its headless backends: a software raster and an operation trace.
package surface

import (
	"image/color"
	"math"
	"sort"
)

// Stop is one colour stop of a gradient. Offset is in [0,1].
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// Surface is the subset of a 2D canvas the compositor needs. Coordinates
// are logical units; Size reports the logical extent.
type Surface interface {
	Size() (w, h int)
	Clear(c color.NRGBA)
	FillCircle(cx, cy, r float64, c color.NRGBA)
	// FillRadial fills a circle of radius r with a gradient running from
	// the centre (offset 0) to the rim (offset 1).
	FillRadial(cx, cy, r float64, stops []Stop)
	StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA)
	// StrokeLinear strokes a round-capped line whose colour follows the
	// gradient from (x0,y0) to (x1,y1).
	StrokeLinear(x0, y0, x1, y1, width float64, stops []Stop)
}

// RGB is an opaque colour used by palettes.
type RGB struct {
	R, G, B uint8
}

// Alpha returns c with the given opacity in [0,1].
func (c RGB) Alpha(a float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alphaByte(a)}
}

// Lerp blends from c towards to by t in [0,1].
func (c RGB) Lerp(to RGB, t float64) RGB {
	t = clamp01(t)
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return RGB{R: mix(c.R, to.R), G: mix(c.G, to.G), B: mix(c.B, to.B)}
}

// White is used for bright cores.
var White = RGB{R: 255, G: 255, B: 255}

func alphaByte(a float64) uint8 {
	return uint8(math.Round(clamp01(a) * 255))
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Premultiply returns the colour as premultiplied float components.
func Premultiply(c color.NRGBA) (r, g, b, a float32) {
	a = float32(c.A) / 255
	r = float32(c.R) / 255 * a
	g = float32(c.G) / 255 * a
	b = float32(c.B) / 255 * a
	return r, g, b, a
}

// NormalizeStops sorts stops and pins them to offsets 0 and 1 so meshes
// always span the whole shape, as canvas gradients do.
func NormalizeStops(stops []Stop) []Stop {
	if len(stops) == 0 {
		return nil
	}
	out := append([]Stop(nil), stops...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	for i := range out {
		out[i].Offset = clamp01(out[i].Offset)
	}
	if out[0].Offset > 0 {
		out = append([]Stop{{Offset: 0, Color: out[0].Color}}, out...)
	}
	if last := out[len(out)-1]; last.Offset < 1 {
		out = append(out, Stop{Offset: 1, Color: last.Color})
	}
	return out
}
