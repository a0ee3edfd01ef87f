package surface

import "image/color"

// Op names recorded by Trace.
const (
	OpClear        = "clear"
	OpFillCircle   = "fill-circle"
	OpFillRadial   = "fill-radial"
	OpStrokeLine   = "stroke-line"
	OpStrokeLinear = "stroke-linear"
)

// TraceOp is one recorded drawing call.
type TraceOp struct {
	Op     string
	X, Y   float64
	X1, Y1 float64
	R      float64
	Color  color.NRGBA
	Stops  []Stop
}

// Trace is a Surface that records calls instead of drawing them. The
// benchmark uses it to count draw calls; tests use it to check layering.
type Trace struct {
	W, H int
	Ops  []TraceOp
}

// NewTrace returns an empty trace with the given logical size.
func NewTrace(w, h int) *Trace {
	return &Trace{W: w, H: h}
}

func (t *Trace) Size() (int, int) { return t.W, t.H }

// Reset drops recorded operations.
func (t *Trace) Reset() { t.Ops = t.Ops[:0] }

// Count returns how many operations of the given kind were recorded.
func (t *Trace) Count(op string) int {
	n := 0
	for _, o := range t.Ops {
		if o.Op == op {
			n++
		}
	}
	return n
}

func (t *Trace) Clear(c color.NRGBA) {
	t.Ops = append(t.Ops, TraceOp{Op: OpClear, Color: c})
}

func (t *Trace) FillCircle(cx, cy, r float64, c color.NRGBA) {
	t.Ops = append(t.Ops, TraceOp{Op: OpFillCircle, X: cx, Y: cy, R: r, Color: c})
}

func (t *Trace) FillRadial(cx, cy, r float64, stops []Stop) {
	t.Ops = append(t.Ops, TraceOp{Op: OpFillRadial, X: cx, Y: cy, R: r, Stops: append([]Stop(nil), stops...)})
}

func (t *Trace) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	t.Ops = append(t.Ops, TraceOp{Op: OpStrokeLine, X: x0, Y: y0, X1: x1, Y1: y1, R: width, Color: c})
}

func (t *Trace) StrokeLinear(x0, y0, x1, y1, width float64, stops []Stop) {
	t.Ops = append(t.Ops, TraceOp{Op: OpStrokeLinear, X: x0, Y: y0, X1: x1, Y1: y1, R: width, Stops: append([]Stop(nil), stops...)})
}
