// Package metrics turns frame timings into once-per-second performance
// snapshots and accumulates them into session analytics.
package metrics

import (
	"math"

	"github.com/iburimskiy/vfx-studio/internal/config"
)

// Quality is the coarse FPS bucket shown in the UI.
type Quality string

const (
	QualityLow    Quality = "LOW"
	QualityMedium Quality = "MEDIUM"
	QualityHigh   Quality = "HIGH"
)

// Stability describes how even the frame pacing is.
type Stability string

const (
	StabilityStable   Stability = "stable"
	StabilityMarginal Stability = "marginal"
	StabilityUnstable Stability = "unstable"
)

// Snapshot is one reporter sample.
type Snapshot struct {
	FPS         int       `json:"fps"`
	Memory      float64   `json:"memory"`
	CPU         float64   `json:"cpu"`
	FrameTimeMs float64   `json:"frameTimeMs"`
	Stability   Stability `json:"stability"`
	Quality     Quality   `json:"quality"`
}

// DefaultSnapshot is reported before any frame has been timed.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		FPS:         60,
		FrameTimeMs: 16.67,
		Stability:   StabilityStable,
		Quality:     QualityHigh,
	}
}

// Classify buckets fps and downgrades jittery pacing.
func Classify(fps int, variance float64) (Quality, Stability) {
	var (
		q Quality
		s Stability
	)
	switch {
	case fps < 30:
		q, s = QualityLow, StabilityUnstable
	case fps < 45:
		q, s = QualityMedium, StabilityMarginal
	default:
		q, s = QualityHigh, StabilityStable
	}

	if variance > config.VarianceThreshold {
		if s == StabilityStable {
			s = StabilityMarginal
		}
		if q == QualityHigh {
			q = QualityMedium
		}
	}
	return q, s
}

// FPSFromFrameTime converts an average frame time to a whole FPS value
// capped at maxFPS.
func FPSFromFrameTime(avgMs float64, maxFPS int) int {
	if avgMs <= 0 {
		return maxFPS
	}
	fps := int(math.Round(1000 / avgMs))
	return min(fps, maxFPS)
}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// PacingVariance is the variance of the last VarianceWindow frame times.
// It is 0 until a full window has been recorded.
func PacingVariance(deltas []float64) float64 {
	if len(deltas) < config.VarianceWindow {
		return 0
	}
	return Variance(deltas[len(deltas)-config.VarianceWindow:])
}

// Variance returns the population variance.
func Variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}
