// Package ebitensurf is the surface backend for ebiten images. Only the
// window imports it; everything else draws on package surface.
package ebitensurf

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/vfx-studio/internal/surface"
)

const radialSegments = 48

var (
	whiteImage    *ebiten.Image
	whiteSubImage *ebiten.Image
)

func white() *ebiten.Image {
	if whiteSubImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
		whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

// Canvas draws onto an ebiten image. Gradients are built as vertex-coloured
// meshes so the GPU interpolates them.
type Canvas struct {
	dst      *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
}

var _ surface.Surface = (*Canvas)(nil)

// New wraps dst.
func New(dst *ebiten.Image) *Canvas {
	return &Canvas{
		dst:      dst,
		vertices: make([]ebiten.Vertex, 0, radialSegments*5),
		indices:  make([]uint16, 0, radialSegments*24),
	}
}

// Image returns the target image.
func (e *Canvas) Image() *ebiten.Image { return e.dst }

func (e *Canvas) Size() (int, int) {
	b := e.dst.Bounds()
	return b.Dx(), b.Dy()
}

func (e *Canvas) Clear(c color.NRGBA) {
	e.dst.Fill(c)
}

func (e *Canvas) FillCircle(cx, cy, r float64, c color.NRGBA) {
	if r <= 0 || c.A == 0 {
		return
	}
	vector.DrawFilledCircle(e.dst, float32(cx), float32(cy), float32(r), c, true)
}

func (e *Canvas) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	if width <= 0 || c.A == 0 {
		return
	}
	vector.StrokeLine(e.dst, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), c, true)
}

func (e *Canvas) FillRadial(cx, cy, r float64, stops []surface.Stop) {
	if r <= 0 || len(stops) == 0 {
		return
	}
	rings := surface.NormalizeStops(stops)

	e.vertices = e.vertices[:0]
	e.indices = e.indices[:0]
	for _, s := range rings {
		cr, cg, cb, ca := surface.Premultiply(s.Color)
		rad := r * s.Offset
		for i := 0; i < radialSegments; i++ {
			angle := float64(i) * 2 * math.Pi / radialSegments
			e.vertices = append(e.vertices, ebiten.Vertex{
				DstX:   float32(cx + math.Cos(angle)*rad),
				DstY:   float32(cy + math.Sin(angle)*rad),
				SrcX:   1,
				SrcY:   1,
				ColorR: cr,
				ColorG: cg,
				ColorB: cb,
				ColorA: ca,
			})
		}
	}
	for k := 0; k < len(rings)-1; k++ {
		inner := uint16(k * radialSegments)
		outer := uint16((k + 1) * radialSegments)
		for i := uint16(0); i < radialSegments; i++ {
			next := (i + 1) % radialSegments
			e.indices = append(e.indices,
				inner+i, outer+i, inner+next,
				inner+next, outer+i, outer+next,
			)
		}
	}
	e.flush()
}

func (e *Canvas) StrokeLinear(x0, y0, x1, y1, width float64, stops []surface.Stop) {
	if width <= 0 || len(stops) == 0 {
		return
	}
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length < 0.5 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	rings := surface.NormalizeStops(stops)

	e.vertices = e.vertices[:0]
	e.indices = e.indices[:0]
	for _, s := range rings {
		cr, cg, cb, ca := surface.Premultiply(s.Color)
		px, py := x0+dx*s.Offset, y0+dy*s.Offset
		for _, side := range [2]float64{1, -1} {
			e.vertices = append(e.vertices, ebiten.Vertex{
				DstX:   float32(px + nx*side),
				DstY:   float32(py + ny*side),
				SrcX:   1,
				SrcY:   1,
				ColorR: cr,
				ColorG: cg,
				ColorB: cb,
				ColorA: ca,
			})
		}
	}
	for k := 0; k < len(rings)-1; k++ {
		a := uint16(k * 2)
		e.indices = append(e.indices, a, a+1, a+2, a+1, a+3, a+2)
	}
	e.flush()

	// Round caps
	e.FillCircle(x0, y0, width/2, rings[0].Color)
	e.FillCircle(x1, y1, width/2, rings[len(rings)-1].Color)
}

func (e *Canvas) flush() {
	if len(e.indices) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{
		ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha,
		AntiAlias:      true,
	}
	e.dst.DrawTriangles(e.vertices, e.indices, white(), op)
}
