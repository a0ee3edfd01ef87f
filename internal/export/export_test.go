package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iburimskiy/vfx-studio/internal/metrics"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestScreenshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	path, err := Screenshot(dir, testImage(32, 16))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(path), "vfx-screenshot-") {
		t.Errorf("path = %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Errorf("decoded bounds = %v", img.Bounds())
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{800, 600, 1280, 720, 800, 600},
		{1920, 1080, 1280, 720, 1280, 720},
		{1600, 600, 1280, 720, 1280, 480},
		{800, 600, 0, 0, 800, 600},
		{0, 10, 100, 100, 1, 1},
	}
	for _, tc := range tests {
		w, h := FitSize(tc.w, tc.h, tc.maxW, tc.maxH)
		if w != tc.wantW || h != tc.wantH {
			t.Errorf("FitSize(%d,%d,%d,%d) = %d,%d; want %d,%d", tc.w, tc.h, tc.maxW, tc.maxH, w, h, tc.wantW, tc.wantH)
		}
	}
}

func TestRecorderPacing(t *testing.T) {
	r := NewRecorder(64, 64, 30, time.Second)

	captures := 0
	for i := 0; i < 120; i++ {
		if r.Advance(1000.0 / 60) {
			captures++
			r.Add(testImage(128, 96))
		}
	}
	if !r.Done() || r.Progress() != 1 {
		t.Errorf("Done() = %v, Progress() = %v after two seconds", r.Done(), r.Progress())
	}
	if captures < 29 || captures > 31 {
		t.Errorf("captured %d frames, want about 30", captures)
	}
	if r.Advance(100) {
		t.Error("capture requested after the recording finished")
	}
	if r.Frames() != captures {
		t.Errorf("Frames() = %d, want %d", r.Frames(), captures)
	}
}

func TestRecorderEncode(t *testing.T) {
	r := NewRecorder(64, 64, 30, time.Second)
	var buf bytes.Buffer
	if err := r.Encode(&buf); !errors.Is(err, ErrNoFrames) {
		t.Fatalf("Encode() empty error = %v, want ErrNoFrames", err)
	}

	for i := 0; i < 3; i++ {
		r.Add(testImage(128, 96))
	}
	path, err := r.Save(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("frames = %d, want 3", len(anim.Image))
	}
	if b := anim.Image[0].Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("frame bounds = %v, want 64x48", b)
	}
	if anim.Delay[0] != 3 {
		t.Errorf("delay = %d, want 3", anim.Delay[0])
	}
}

func TestReport(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := metrics.Snapshot{FPS: 58, Memory: 40, CPU: 12, FrameTimeMs: 17.2, Stability: metrics.StabilityStable, Quality: metrics.QualityHigh}
	summary := metrics.Summary{AvgFPS: 57, Duration: 90*time.Second + 400*time.Millisecond, Grade: "A+"}

	rep := NewReport("Organic Life Respiration Pro", snap, map[string]any{"vitesse": 1.5}, summary, now)
	data, err := rep.JSON()
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"effect", "timestamp", "performance", "parameters", "session"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("report lacks %q", key)
		}
	}
	session := decoded["session"].(map[string]any)
	if session["duration"] != 90.0 || session["stability"] != "stable" {
		t.Errorf("session = %v", session)
	}
	// Both durations are whole seconds.
	if sum := session["summary"].(map[string]any); sum["duration"] != 90.0 {
		t.Errorf("session summary duration = %v, want 90", sum["duration"])
	}
	if decoded["performance"].(map[string]any)["fps"] != 58.0 {
		t.Errorf("performance = %v", decoded["performance"])
	}

	path, err := SaveReport(t.TempDir(), rep)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "vfx-performance-report-1772366400000.json" {
		t.Errorf("report path = %s", path)
	}
}

func TestReportStability(t *testing.T) {
	tests := []struct {
		fps  int
		want string
	}{
		{60, "stable"}, {55, "moderate"}, {31, "moderate"}, {30, "unstable"},
	}
	for _, tc := range tests {
		rep := NewReport("x", metrics.Snapshot{FPS: tc.fps}, nil, metrics.Summary{}, time.Now())
		if rep.Session.Stability != tc.want {
			t.Errorf("fps %d stability = %q, want %q", tc.fps, rep.Session.Stability, tc.want)
		}
		if rep.Parameters == nil {
			t.Error("nil parameters should encode as an object")
		}
	}
}
