package metrics

import "sync"

// FrameRing records the most recent frame deltas (ms) so the reporter can
// read them from its own goroutine while the render loop keeps writing.
type FrameRing struct {
	buffer    []float64
	nextIndex int
	count     int
	mu        sync.RWMutex
}

// NewFrameRing returns a ring holding up to size deltas.
func NewFrameRing(size int) *FrameRing {
	if size < 1 {
		size = 1
	}
	return &FrameRing{buffer: make([]float64, size)}
}

// Push records one delta, overwriting the oldest when full.
func (r *FrameRing) Push(dt float64) {
	r.mu.Lock()
	r.buffer[r.nextIndex] = dt
	r.nextIndex++
	if r.nextIndex >= len(r.buffer) {
		r.nextIndex = 0
	}
	if r.count < len(r.buffer) {
		r.count++
	}
	r.mu.Unlock()
}

// Len returns how many deltas are held.
func (r *FrameRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Snapshot returns up to the last n deltas, most recent last.
func (r *FrameRing) Snapshot(n int) []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	idx := r.nextIndex - n
	if idx < 0 {
		idx += len(r.buffer)
	}
	for i := range out {
		out[i] = r.buffer[idx]
		idx++
		if idx >= len(r.buffer) {
			idx = 0
		}
	}
	return out
}

// Reset forgets every recorded delta.
func (r *FrameRing) Reset() {
	r.mu.Lock()
	r.nextIndex = 0
	r.count = 0
	r.mu.Unlock()
}
