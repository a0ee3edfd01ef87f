// Package driver runs a frame callback on a fixed schedule outside of a
// windowing toolkit. The terminal preview and headless runs use it; the
// window relies on ebiten's own loop.
package driver

import (
	"context"
	"sync/atomic"
	"time"
)

// StepFunc receives the elapsed time since the previous step in ms.
type StepFunc func(dtMs float64)

// Driver schedules steps at a target rate until stopped.
type Driver struct {
	interval time.Duration
	running  atomic.Bool
	stop     chan struct{}
	now      func() time.Time
}

// New returns a driver targeting fps steps per second.
func New(fps int) *Driver {
	if fps <= 0 {
		fps = 60
	}
	return &Driver{
		interval: time.Second / time.Duration(fps),
		stop:     make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Interval is the target time between steps.
func (d *Driver) Interval() time.Duration { return d.interval }

// Running reports whether Run is looping.
func (d *Driver) Running() bool { return d.running.Load() }

// Run calls step once per tick until ctx is done or Stop is called. The
// first step receives 0. A second concurrent Run returns immediately.
func (d *Driver) Run(ctx context.Context, step StepFunc) error {
	if !d.running.CompareAndSwap(false, true) {
		return nil
	}
	defer d.running.Store(false)

	// Drop a Stop issued while idle.
	select {
	case <-d.stop:
	default:
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	last := d.now()
	step(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.stop:
			return nil
		case <-ticker.C:
			now := d.now()
			dt := float64(now.Sub(last)) / float64(time.Millisecond)
			last = now
			step(dt)
		}
	}
}

// Stop ends the current Run after its in-flight step. Calling it when
// nothing runs is a no-op.
func (d *Driver) Stop() {
	if !d.running.Load() {
		return
	}
	select {
	case d.stop <- struct{}{}:
	default:
	}
}
