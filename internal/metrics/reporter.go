package metrics

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/iburimskiy/vfx-studio/internal/config"
)

// Reporter samples frame timing on its own ticker and publishes
// snapshots. It is stopped until Start and may be restarted after Stop.
type Reporter struct {
	ring     *FrameRing
	sampler  Sampler
	maxFPS   int
	interval time.Duration

	mu       sync.Mutex
	latest   Snapshot
	onUpdate func(Snapshot)
	cancel   context.CancelFunc
	done     chan struct{}
}

// Option configures a Reporter.
type Option func(*Reporter)

func WithSampler(s Sampler) Option {
	return func(r *Reporter) { r.sampler = s }
}

func WithMaxFPS(fps int) Option {
	return func(r *Reporter) {
		if fps > 0 {
			r.maxFPS = fps
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Reporter) {
		if d > 0 {
			r.interval = d
		}
	}
}

// NewReporter returns a stopped reporter.
func NewReporter(opts ...Option) *Reporter {
	r := &Reporter{
		ring:     NewFrameRing(config.FrameHistory),
		maxFPS:   60,
		interval: config.MetricsInterval * time.Millisecond,
		latest:   DefaultSnapshot(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sampler == nil {
		r.sampler = NewRuntimeSampler()
	}
	return r
}

// OnUpdate sets the callback invoked with every new snapshot. It runs on
// the reporter goroutine.
func (r *Reporter) OnUpdate(fn func(Snapshot)) {
	r.mu.Lock()
	r.onUpdate = fn
	r.mu.Unlock()
}

// RecordFrame stores one frame delta. Non-positive deltas are ignored.
func (r *Reporter) RecordFrame(dtMs float64) {
	if dtMs <= 0 {
		return
	}
	r.ring.Push(dtMs)
}

// Start launches the ticker goroutine. Starting a running reporter is a
// no-op.
func (r *Reporter) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(ctx, r.done)
	log.Printf("[metrics] reporter started, interval %v", r.interval)
}

// Stop halts the ticker and waits for the goroutine to exit.
func (r *Reporter) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Println("[metrics] reporter stopped")
}

// Running reports whether the ticker goroutine is active.
func (r *Reporter) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Reporter) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Tick computes a snapshot from the recorded frames, stores it and
// notifies the callback. With no frames recorded the previous snapshot is
// kept.
func (r *Reporter) Tick() Snapshot {
	deltas := r.ring.Snapshot(config.FrameHistory)
	if len(deltas) == 0 {
		return r.Latest()
	}

	avg := Mean(deltas)
	fps := FPSFromFrameTime(avg, r.maxFPS)
	quality, stability := Classify(fps, PacingVariance(deltas))
	memory, cpu := r.sampler.Sample(fps)

	snap := Snapshot{
		FPS:         fps,
		Memory:      memory,
		CPU:         cpu,
		FrameTimeMs: math.Round(avg*100) / 100,
		Stability:   stability,
		Quality:     quality,
	}

	r.mu.Lock()
	r.latest = snap
	fn := r.onUpdate
	r.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return snap
}

// Latest returns the most recent snapshot.
func (r *Reporter) Latest() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Reset drops recorded frames and restores the default snapshot.
func (r *Reporter) Reset() {
	r.ring.Reset()
	r.mu.Lock()
	r.latest = DefaultSnapshot()
	r.mu.Unlock()
}
