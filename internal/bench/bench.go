// Package bench renders an effect headless for a fixed number of frames
// and reports how long each frame took.
package bench

import (
	"context"
	"fmt"
	"log"
	"math"
	"slices"
	"time"

	"github.com/iburimskiy/vfx-studio/internal/config"
	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/metrics"
	"github.com/iburimskiy/vfx-studio/internal/studio"
	"github.com/iburimskiy/vfx-studio/internal/surface"
)

// Options select what to render.
type Options struct {
	Effect string
	Frames int
	Width  int
	Height int
	// StepMs is the simulated time between frames.
	StepMs float64
	// Trace records draw calls instead of rasterizing them.
	Trace  bool
	Params map[string]any
}

// DefaultOptions renders 300 frames of the medium canvas at 60 fps.
func DefaultOptions() Options {
	return Options{
		Effect: "organic-life-respiration-pro",
		Frames: 300,
		Width:  config.CanvasWidth,
		Height: config.CanvasHeight,
		StepMs: 1000.0 / 60,
	}
}

// Result holds per-frame timings and their aggregates.
type Result struct {
	Effect     string
	Frames     int
	Width      int
	Height     int
	Total      time.Duration
	FrameTimes []float64 // ms
	Mean       float64
	P95        float64
	Min        float64
	Max        float64
	FPS        int
	Quality    metrics.Quality
	Stability  metrics.Stability
	Grade      string
	DrawOps    int // per frame, Trace only
}

// Run renders opts.Frames frames. It stops early with ctx's error.
func Run(ctx context.Context, reg *effect.Registry, opts Options) (Result, error) {
	def := DefaultOptions()
	if opts.Effect == "" {
		opts.Effect = def.Effect
	}
	if opts.Frames <= 0 {
		opts.Frames = def.Frames
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.StepMs <= 0 {
		opts.StepMs = def.StepMs
	}

	settings := config.DefaultSettings()
	settings.PerfMonitoring = false
	st := studio.New(reg, settings)
	defer st.Close()
	if err := st.Select(opts.Effect); err != nil {
		return Result{}, err
	}
	for k, v := range opts.Params {
		if err := st.SetParameter(k, v); err != nil {
			return Result{}, err
		}
	}

	var (
		dst   surface.Surface
		trace *surface.Trace
	)
	if opts.Trace {
		trace = surface.NewTrace(opts.Width, opts.Height)
		dst = trace
	} else {
		dst = surface.NewRaster(opts.Width, opts.Height)
	}

	log.Printf("[bench] %s: %d frames at %dx%d", opts.Effect, opts.Frames, opts.Width, opts.Height)
	res := Result{
		Effect:     st.Info().Name,
		Width:      opts.Width,
		Height:     opts.Height,
		FrameTimes: make([]float64, 0, opts.Frames),
	}
	start := time.Now()
	for i := 0; i < opts.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("bench interrupted after %d frames: %w", i, err)
		}
		if trace != nil {
			trace.Reset()
		}
		t0 := time.Now()
		st.Frame(dst, opts.StepMs)
		res.FrameTimes = append(res.FrameTimes, float64(time.Since(t0))/float64(time.Millisecond))
	}
	res.Total = time.Since(start)
	if trace != nil {
		res.DrawOps = len(trace.Ops)
	}
	res.summarize()
	return res, nil
}

func (r *Result) summarize() {
	r.Frames = len(r.FrameTimes)
	if r.Frames == 0 {
		return
	}
	sorted := slices.Clone(r.FrameTimes)
	slices.Sort(sorted)
	r.Min = sorted[0]
	r.Max = sorted[len(sorted)-1]
	r.Mean = metrics.Mean(r.FrameTimes)
	r.P95 = sorted[min(len(sorted)-1, int(math.Ceil(0.95*float64(len(sorted))))-1)]

	// The achievable rate, not capped by a display refresh.
	r.FPS = metrics.FPSFromFrameTime(r.Mean, math.MaxInt32)
	r.Quality, r.Stability = metrics.Classify(r.FPS, metrics.PacingVariance(r.FrameTimes))
	r.Grade = metrics.Grade(float64(r.FPS))
}
