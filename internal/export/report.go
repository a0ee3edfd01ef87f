package export

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/iburimskiy/vfx-studio/internal/metrics"
)

// Report is the JSON performance report.
type Report struct {
	Effect      string           `json:"effect"`
	Timestamp   time.Time        `json:"timestamp"`
	Performance metrics.Snapshot `json:"performance"`
	Parameters  map[string]any   `json:"parameters"`
	Session     ReportSession    `json:"session"`
}

// ReportSession summarizes the session the report was taken in.
type ReportSession struct {
	Duration  int64           `json:"duration"` // seconds
	Stability string          `json:"stability"`
	Summary   metrics.Summary `json:"summary"`
}

// NewReport assembles a report. Stability is judged from the current
// frame rate.
func NewReport(effect string, snap metrics.Snapshot, params map[string]any, summary metrics.Summary, now time.Time) Report {
	if params == nil {
		params = map[string]any{}
	}
	return Report{
		Effect:      effect,
		Timestamp:   now.UTC(),
		Performance: snap,
		Parameters:  params,
		Session: ReportSession{
			Duration:  int64(summary.Duration / time.Second),
			Stability: metrics.SessionStability(float64(snap.FPS)),
			Summary:   summary,
		},
	}
}

// JSON returns the indented encoding.
func (r Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}

// SaveReport writes r into dir and returns the path.
func SaveReport(dir string, r Report) (string, error) {
	path := filepath.Join(dir, Filename("vfx-performance-report", "json", r.Timestamp))
	return path, WriteReport(path, r)
}

// WriteReport writes r to path.
func WriteReport(path string, r Report) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}
