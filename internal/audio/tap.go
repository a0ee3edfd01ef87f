// Package audio plays a track and measures its loudness for the
// audio-reactive mode.
package audio

import (
	"sync"

	"github.com/faiface/beep"
)

// Tap wraps a beep.Streamer and records the last samples it produced into
// a ring buffer, so the frame loop can read what was just played.
type Tap struct {
	Source beep.Streamer

	mu        sync.RWMutex
	buffer    [][2]float64
	nextIndex int
	filled    int
}

// NewTap records up to ringSize stereo samples of src.
func NewTap(src beep.Streamer, ringSize int) *Tap {
	if ringSize <= 0 {
		ringSize = 1
	}
	return &Tap{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Source.Stream(samples)
	if n > 0 {
		t.mu.Lock()
		for i := 0; i < n; i++ {
			t.buffer[t.nextIndex] = samples[i]
			t.nextIndex = (t.nextIndex + 1) % len(t.buffer)
		}
		t.filled = min(len(t.buffer), t.filled+n)
		t.mu.Unlock()
	}
	return n, ok
}

func (t *Tap) Err() error { return t.Source.Err() }

// Snapshot returns up to the last n samples, oldest first.
func (t *Tap) Snapshot(n int) [][2]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n = min(n, t.filled)
	if n <= 0 {
		return nil
	}
	out := make([][2]float64, n)
	start := (t.nextIndex - n + len(t.buffer)) % len(t.buffer)
	for i := range out {
		out[i] = t.buffer[(start+i)%len(t.buffer)]
	}
	return out
}
