package export

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"path/filepath"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"
)

var ErrNoFrames = errors.New("recording has no frames")

// Recorder captures frames at a fixed rate for a fixed duration. Frames
// are downscaled on capture and quantized when encoded.
type Recorder struct {
	mu         sync.Mutex
	maxW, maxH int
	intervalMs float64
	durationMs float64
	elapsed    float64
	sinceLast  float64
	frames     []*image.RGBA
}

// NewRecorder records at fps for d, fitting frames inside maxW×maxH.
func NewRecorder(maxW, maxH, fps int, d time.Duration) *Recorder {
	if fps <= 0 {
		fps = 30
	}
	return &Recorder{
		maxW:       maxW,
		maxH:       maxH,
		intervalMs: 1000 / float64(fps),
		durationMs: float64(d.Milliseconds()),
		sinceLast:  1000 / float64(fps),
	}
}

// Advance moves the recording clock by dtMs and reports whether a frame
// should be captured now.
func (r *Recorder) Advance(dtMs float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.elapsed >= r.durationMs {
		return false
	}
	r.elapsed += max(dtMs, 0)
	r.sinceLast += max(dtMs, 0)
	if r.sinceLast < r.intervalMs {
		return false
	}
	r.sinceLast -= r.intervalMs
	if r.sinceLast > r.intervalMs {
		r.sinceLast = 0
	}
	return true
}

// Add stores a downscaled copy of img.
func (r *Recorder) Add(img image.Image) {
	b := img.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), r.maxW, r.maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)

	r.mu.Lock()
	r.frames = append(r.frames, dst)
	r.mu.Unlock()
}

// Done reports whether the configured duration has elapsed.
func (r *Recorder) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elapsed >= r.durationMs
}

// Progress is the recorded share of the duration in [0,1].
func (r *Recorder) Progress() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.durationMs <= 0 {
		return 1
	}
	return min(1, r.elapsed/r.durationMs)
}

// Frames returns the number of captured frames.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Encode writes the frames as a looping GIF.
func (r *Recorder) Encode(w io.Writer) error {
	r.mu.Lock()
	frames := append([]*image.RGBA(nil), r.frames...)
	r.mu.Unlock()
	if len(frames) == 0 {
		return ErrNoFrames
	}

	delay := max(1, int(r.intervalMs/10+0.5))
	anim := &gif.GIF{}
	for _, f := range frames {
		p := image.NewPaletted(f.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(p, f.Bounds(), f, image.Point{})
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delay)
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}
	return nil
}

// Save encodes into dir under a timestamped name and returns the path.
func (r *Recorder) Save(dir string) (string, error) {
	path := filepath.Join(dir, Filename("vfx-recording", "gif", time.Now()))
	return path, r.SaveAs(path)
}

// SaveAs encodes the recording to path.
func (r *Recorder) SaveAs(path string) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := r.Encode(f); err != nil {
		return err
	}
	return f.Close()
}

// FitSize scales w×h down to fit inside maxW×maxH keeping the aspect
// ratio. It never upscales.
func FitSize(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	scale := 1.0
	if maxW > 0 {
		scale = min(scale, float64(maxW)/float64(w))
	}
	if maxH > 0 {
		scale = min(scale, float64(maxH)/float64(h))
	}
	return max(1, int(float64(w)*scale+0.5)), max(1, int(float64(h)*scale+0.5))
}
