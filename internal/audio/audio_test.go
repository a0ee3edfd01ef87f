package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// counter streams the sample index on both channels.
type counter struct {
	next, limit int
}

func (c *counter) Stream(samples [][2]float64) (int, bool) {
	if c.next >= c.limit {
		return 0, false
	}
	n := min(len(samples), c.limit-c.next)
	for i := 0; i < n; i++ {
		v := float64(c.next)
		samples[i] = [2]float64{v, v}
		c.next++
	}
	return n, true
}

func (c *counter) Err() error { return nil }

func TestTapSnapshot(t *testing.T) {
	tap := NewTap(&counter{limit: 100}, 4)
	if got := tap.Snapshot(4); got != nil {
		t.Fatalf("empty tap snapshot = %v", got)
	}

	buf := make([][2]float64, 3)
	tap.Stream(buf)
	if got := tap.Snapshot(10); len(got) != 3 || got[0][0] != 0 || got[2][0] != 2 {
		t.Errorf("partial snapshot = %v", got)
	}

	tap.Stream(buf)
	got := tap.Snapshot(4)
	want := []float64{2, 3, 4, 5}
	for i, w := range want {
		if got[i][0] != w {
			t.Fatalf("snapshot = %v, want %v", got, want)
		}
	}
	if got := tap.Snapshot(2); got[0][0] != 4 || got[1][0] != 5 {
		t.Errorf("last two = %v", got)
	}
}

func TestTapPassesThrough(t *testing.T) {
	tap := NewTap(&counter{limit: 2}, 8)
	buf := make([][2]float64, 4)
	n, ok := tap.Stream(buf)
	if n != 2 || !ok {
		t.Errorf("Stream() = %d, %v", n, ok)
	}
	if n, ok := tap.Stream(buf); n != 0 || ok {
		t.Errorf("drained Stream() = %d, %v", n, ok)
	}
}

func TestAnalyzer(t *testing.T) {
	a := NewAnalyzer(4)
	a.Update(nil)
	if a.Level() != 0 {
		t.Fatalf("silent level = %v", a.Level())
	}

	loud := make([][2]float64, 64)
	for i := range loud {
		loud[i] = [2]float64{1, 1}
	}
	a.Update(loud)
	if got := a.Level(); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("level after one update = %v, want 0.4", got)
	}
	for i := 0; i < 50; i++ {
		a.Update(loud)
	}
	if got := a.Level(); got < 0.99 || got > 1 {
		t.Errorf("converged level = %v, want ~1", got)
	}
	if len(a.Bands()) != 4 {
		t.Errorf("bands = %v", a.Bands())
	}

	a.Reset()
	if a.Level() != 0 {
		t.Errorf("level after reset = %v", a.Level())
	}
}

func TestAnalyzerFewSamples(t *testing.T) {
	a := NewAnalyzer(8)
	a.Update([][2]float64{{0.5, 0.5}, {0.5, 0.5}})
	bands := a.Bands()
	if bands[0] == 0 || bands[1] == 0 {
		t.Errorf("first bands = %v", bands)
	}
	for _, b := range bands[2:] {
		if b != 0 {
			t.Errorf("bands beyond the input moved: %v", bands)
		}
	}
}

func TestDecodeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	format := beep.Format{SampleRate: 8000, NumChannels: 2, Precision: 2}
	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{0.25, 0.25}
		}
		return len(samples), true
	})
	if err := wav.Encode(f, beep.Take(800, tone), format); err != nil {
		t.Fatal(err)
	}
	f.Close()

	streamer, got, err := Decode(path)
	if err != nil {
		t.Fatal(err)
	}
	defer streamer.Close()
	if got.SampleRate != 8000 || streamer.Len() != 800 {
		t.Errorf("decoded rate %d len %d", got.SampleRate, streamer.Len())
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, _, err := Decode("track.ogg"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ogg error = %v", err)
	}
	if _, _, err := Decode(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Error("missing file decoded")
	}
}

func TestIdlePlayer(t *testing.T) {
	p := NewPlayer(16)
	if p.Loaded() || !p.Paused() || p.Level() != 0 {
		t.Error("idle player reports activity")
	}
	if err := p.Toggle(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Toggle() = %v", err)
	}
	if pos, total := p.Progress(); pos != 0 || total != 0 {
		t.Errorf("Progress() = %v, %v", pos, total)
	}
	p.Close()
}
