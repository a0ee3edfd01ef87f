package audio

import (
	"math"

	"github.com/iburimskiy/vfx-studio/internal/config"
)

// Analyzer turns raw samples into smoothed per-band loudness in [0,1].
type Analyzer struct {
	bands     []float64
	smoothing float64
}

// NewAnalyzer splits the input into n bands.
func NewAnalyzer(n int) *Analyzer {
	return &Analyzer{
		bands:     make([]float64, max(n, 1)),
		smoothing: config.SmoothingFactor,
	}
}

// Update folds samples into the band levels. Each band is the RMS of its
// mono segment, compressed with a 0.3 power and smoothed against the
// previous value.
func (a *Analyzer) Update(samples [][2]float64) {
	if len(samples) == 0 {
		return
	}
	n := len(a.bands)
	segment := max(1, len(samples)/n)
	for i := 0; i < n; i++ {
		start := i * segment
		if start >= len(samples) {
			break
		}
		end := min(start+segment, len(samples))

		var sumSquares float64
		for _, s := range samples[start:end] {
			mono := (s[0] + s[1]) * 0.5
			sumSquares += mono * mono
		}
		rms := math.Sqrt(sumSquares / float64(end-start))
		mag := math.Min(1, math.Pow(rms, 0.3))
		a.bands[i] = a.smoothing*a.bands[i] + (1-a.smoothing)*mag
	}
}

// Bands returns a copy of the band levels.
func (a *Analyzer) Bands() []float64 {
	return append([]float64(nil), a.bands...)
}

// Level is the mean band level.
func (a *Analyzer) Level() float64 {
	var sum float64
	for _, b := range a.bands {
		sum += b
	}
	return sum / float64(len(a.bands))
}

// Reset silences every band.
func (a *Analyzer) Reset() {
	clear(a.bands)
}
