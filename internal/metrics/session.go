package metrics

import (
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/iburimskiy/vfx-studio/internal/config"
)

// Summary aggregates a preview session.
type Summary struct {
	AvgFPS     float64       `json:"avgFps"`
	PeakFPS    int           `json:"peakFps"`
	MinFPS     int           `json:"minFps"`
	PeakMemory float64       `json:"peakMemory"`
	PeakCPU    float64       `json:"peakCpu"`
	Samples    int           `json:"samples"`
	Duration   time.Duration `json:"-"`
	Grade      string        `json:"grade"`
	Stability  string        `json:"stability"`
}

// MarshalJSON encodes Duration in whole seconds.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	return json.Marshal(struct {
		plain
		Duration int64 `json:"duration"`
	}{plain(s), int64(s.Duration / time.Second)})
}

// Session accumulates snapshots for the lifetime of a preview. Add runs on
// the reporter goroutine while the UI reads the summary.
type Session struct {
	mu      sync.Mutex
	start   time.Time
	now     func() time.Time
	samples int
	fpsSum  float64
	peakFPS int
	minFPS  int
	peakMem float64
	peakCPU float64
	history []Snapshot
}

// NewSession starts an empty session now.
func NewSession() *Session {
	return newSessionClock(time.Now)
}

func newSessionClock(now func() time.Time) *Session {
	return &Session{start: now(), now: now}
}

// Add folds one snapshot into the session.
func (s *Session) Add(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.samples == 0 {
		s.minFPS = snap.FPS
	}
	s.samples++
	s.fpsSum += float64(snap.FPS)
	s.peakFPS = max(s.peakFPS, snap.FPS)
	s.minFPS = min(s.minFPS, snap.FPS)
	s.peakMem = math.Max(s.peakMem, snap.Memory)
	s.peakCPU = math.Max(s.peakCPU, snap.CPU)

	s.history = append(s.history, snap)
	if len(s.history) > config.SessionHistory {
		s.history = s.history[len(s.history)-config.SessionHistory:]
	}
}

// History returns the retained snapshots, oldest first.
func (s *Session) History() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Snapshot(nil), s.history...)
}

// Summary computes the aggregate view.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var avg float64
	if s.samples > 0 {
		avg = math.Round(s.fpsSum/float64(s.samples)*10) / 10
	}
	return Summary{
		AvgFPS:     avg,
		PeakFPS:    s.peakFPS,
		MinFPS:     s.minFPS,
		PeakMemory: s.peakMem,
		PeakCPU:    s.peakCPU,
		Samples:    s.samples,
		Duration:   s.now().Sub(s.start),
		Grade:      Grade(avg),
		Stability:  SessionStability(avg),
	}
}

// Reset clears the session and restarts its clock.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = s.now()
	s.samples, s.fpsSum = 0, 0
	s.peakFPS, s.minFPS = 0, 0
	s.peakMem, s.peakCPU = 0, 0
	s.history = nil
}

// Grade rates an average FPS.
func Grade(avgFPS float64) string {
	switch {
	case avgFPS >= 55:
		return "A+"
	case avgFPS >= 45:
		return "A"
	case avgFPS >= 35:
		return "B"
	case avgFPS >= 25:
		return "C"
	default:
		return "D"
	}
}

// SessionStability labels a whole session from its average FPS.
func SessionStability(avgFPS float64) string {
	switch {
	case avgFPS > 55:
		return "stable"
	case avgFPS > 30:
		return "moderate"
	default:
		return "unstable"
	}
}
