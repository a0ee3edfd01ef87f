package bench

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(1, 2)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

var qualityColors = map[string]lipgloss.Color{
	"HIGH":   lipgloss.Color("42"),
	"MEDIUM": lipgloss.Color("214"),
	"LOW":    lipgloss.Color("196"),
}

// chartWidth caps the frame-time plot; longer runs are averaged down.
const chartWidth = 60

// Render formats the result as a boxed summary with a frame-time chart.
func (r Result) Render() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s  %dx%d", r.Effect, r.Width, r.Height)) + "\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Frames", fmt.Sprintf("%d in %v", r.Frames, r.Total.Round(1e6)))
	row("Frame time", fmt.Sprintf("avg %.2f ms  p95 %.2f ms", r.Mean, r.P95))
	row("Range", fmt.Sprintf("%.2f - %.2f ms", r.Min, r.Max))
	row("Throughput", fmt.Sprintf("%d fps", r.FPS))

	quality := lipgloss.NewStyle().Bold(true).Foreground(qualityColors[string(r.Quality)])
	s.WriteString(labelStyle.Render("Quality") + quality.Render(string(r.Quality)) +
		valueStyle.Render(fmt.Sprintf("  %s, grade %s", r.Stability, r.Grade)) + "\n")
	if r.DrawOps > 0 {
		row("Draw calls", fmt.Sprintf("%d per frame", r.DrawOps))
	}

	if len(r.FrameTimes) > 1 {
		chart := asciigraph.Plot(Downsample(r.FrameTimes, chartWidth),
			asciigraph.Height(8),
			asciigraph.Width(chartWidth),
			asciigraph.Caption("frame time (ms)"))
		s.WriteString(graphStyle.Render(chart))
	}
	return boxStyle.Render(s.String())
}

// Downsample averages xs into at most n buckets.
func Downsample(xs []float64, n int) []float64 {
	if n <= 0 || len(xs) <= n {
		return xs
	}
	out := make([]float64, n)
	for i := range out {
		lo := i * len(xs) / n
		hi := (i + 1) * len(xs) / n
		var sum float64
		for _, x := range xs[lo:hi] {
			sum += x
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
