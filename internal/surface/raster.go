package surface

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Raster is a software Surface backed by an RGBA image. Logical
// coordinates are scaled to the pixel size, so an 800x600 effect can be
// previewed on a much smaller grid.
type Raster struct {
	img     *image.RGBA
	dc      *gg.Context
	logical image.Point
	scale   float64
}

// NewRaster creates a raster whose logical and pixel sizes match.
func NewRaster(w, h int) *Raster {
	return NewScaledRaster(w, h, w, h)
}

// NewScaledRaster creates a raster of pw x ph pixels presenting a logical
// size of lw x lh. Scaling is uniform (the smaller ratio wins) and the
// picture is centred.
func NewScaledRaster(lw, lh, pw, ph int) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	sx := float64(pw) / float64(lw)
	sy := float64(ph) / float64(lh)
	scale := min(sx, sy)

	dc := gg.NewContextForRGBA(img)
	return &Raster{
		img:     img,
		dc:      dc,
		logical: image.Pt(lw, lh),
		scale:   scale,
	}
}

// Image returns the backing pixels.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Size() (int, int) { return r.logical.X, r.logical.Y }

// point maps logical coordinates to pixels with the logical area centred.
func (r *Raster) point(x, y float64) (float64, float64) {
	b := r.img.Bounds()
	ox := (float64(b.Dx()) - float64(r.logical.X)*r.scale) / 2
	oy := (float64(b.Dy()) - float64(r.logical.Y)*r.scale) / 2
	return ox + x*r.scale, oy + y*r.scale
}

func (r *Raster) Clear(c color.NRGBA) {
	r.dc.SetColor(c)
	r.dc.Clear()
}

func (r *Raster) FillCircle(cx, cy, radius float64, c color.NRGBA) {
	if radius <= 0 || c.A == 0 {
		return
	}
	x, y := r.point(cx, cy)
	r.dc.DrawCircle(x, y, radius*r.scale)
	r.dc.SetColor(c)
	r.dc.Fill()
}

func (r *Raster) FillRadial(cx, cy, radius float64, stops []Stop) {
	if radius <= 0 || len(stops) == 0 {
		return
	}
	x, y := r.point(cx, cy)
	pr := radius * r.scale
	if pr < 0.5 {
		return
	}
	grad := gg.NewRadialGradient(x, y, 0, x, y, pr)
	for _, s := range stops {
		grad.AddColorStop(s.Offset, s.Color)
	}
	r.dc.DrawCircle(x, y, pr)
	r.dc.SetFillStyle(grad)
	r.dc.Fill()
}

func (r *Raster) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	if width <= 0 || c.A == 0 {
		return
	}
	ax, ay := r.point(x0, y0)
	bx, by := r.point(x1, y1)
	r.dc.SetColor(c)
	r.dc.SetLineWidth(max(width*r.scale, 0.5))
	r.dc.SetLineCapRound()
	r.dc.DrawLine(ax, ay, bx, by)
	r.dc.Stroke()
}

func (r *Raster) StrokeLinear(x0, y0, x1, y1, width float64, stops []Stop) {
	if width <= 0 || len(stops) == 0 {
		return
	}
	ax, ay := r.point(x0, y0)
	bx, by := r.point(x1, y1)
	if (bx-ax)*(bx-ax)+(by-ay)*(by-ay) < 0.25 {
		return
	}
	grad := gg.NewLinearGradient(ax, ay, bx, by)
	for _, s := range stops {
		grad.AddColorStop(s.Offset, s.Color)
	}
	r.dc.SetStrokeStyle(grad)
	r.dc.SetLineWidth(max(width*r.scale, 0.5))
	r.dc.SetLineCapRound()
	r.dc.DrawLine(ax, ay, bx, by)
	r.dc.Stroke()
}
