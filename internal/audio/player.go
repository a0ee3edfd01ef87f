package audio

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"github.com/iburimskiy/vfx-studio/internal/config"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio file type")
	ErrNotLoaded         = errors.New("no track loaded")
)

// Patterns lists the file patterns Decode accepts, for file dialogs.
var Patterns = []string{"*.wav", "*.mp3", "*.flac"}

// Decode opens path and picks a decoder from its extension. Closing the
// returned streamer closes the file.
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var decode func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)
	switch ext {
	case ".wav":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }
	case ".mp3":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }
	case ".flac":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) }
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open track: %w", err)
	}
	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return streamer, format, nil
}

// Player plays one track at a time through the speaker and exposes its
// loudness. Methods are safe to call from the frame loop while the
// speaker goroutine streams.
type Player struct {
	mu         sync.Mutex
	streamer   beep.StreamSeekCloser
	format     beep.Format
	ctrl       *beep.Ctrl
	tap        *Tap
	sampleRate beep.SampleRate
	name       string
	analyzer   *Analyzer
}

// NewPlayer returns an idle player measuring bands loudness bands.
func NewPlayer(bands int) *Player {
	return &Player{analyzer: NewAnalyzer(bands)}
}

// Load decodes path, replaces the current track and starts playing it.
func (p *Player) Load(path string) error {
	streamer, format, err := Decode(path)
	if err != nil {
		return err
	}

	tap := NewTap(streamer, config.AudioRingSize)
	ctrl := &beep.Ctrl{Streamer: tap}

	p.mu.Lock()
	defer p.mu.Unlock()

	bufferSize := format.SampleRate.N(time.Second / 20)
	switch {
	case p.sampleRate == 0:
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			streamer.Close()
			return fmt.Errorf("failed to init speaker: %w", err)
		}
	case p.sampleRate != format.SampleRate:
		speaker.Clear()
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			streamer.Close()
			return fmt.Errorf("failed to init speaker: %w", err)
		}
	default:
		speaker.Clear()
	}
	p.closeLocked()

	p.sampleRate = format.SampleRate
	p.streamer = streamer
	p.format = format
	p.ctrl = ctrl
	p.tap = tap
	p.name = filepath.Base(path)
	p.analyzer.Reset()

	log.Printf("[audio] playing %s (%d Hz)", p.name, format.SampleRate)
	// The callback runs with the speaker locked; p.mu is always taken
	// before the speaker lock, so release the track on another goroutine.
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		go func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.streamer == streamer {
				p.closeLocked()
			}
		}()
	})))
	return nil
}

// Loaded reports whether a track is playing or paused.
func (p *Player) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl != nil
}

// Name is the file name of the current track.
func (p *Player) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// Toggle pauses or resumes playback.
func (p *Player) Toggle() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return ErrNotLoaded
	}
	speaker.Lock()
	p.ctrl.Paused = !p.ctrl.Paused
	speaker.Unlock()
	return nil
}

// Paused reports whether playback is paused. An idle player is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return true
	}
	speaker.Lock()
	defer speaker.Unlock()
	return p.ctrl.Paused
}

// Progress returns the playback position and track length.
func (p *Player) Progress() (pos, total time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0, 0
	}
	speaker.Lock()
	n, length := p.streamer.Position(), p.streamer.Len()
	speaker.Unlock()
	return p.format.SampleRate.D(n), p.format.SampleRate.D(length)
}

// Level refreshes the analyzer from the recently played samples and
// returns the overall loudness in [0,1]. It is 0 while idle or paused.
func (p *Player) Level() float64 {
	p.mu.Lock()
	tap, ctrl := p.tap, p.ctrl
	p.mu.Unlock()
	if tap == nil || ctrl == nil {
		return 0
	}
	speaker.Lock()
	paused := ctrl.Paused
	speaker.Unlock()
	if paused {
		return 0
	}
	p.analyzer.Update(tap.Snapshot(2048))
	return p.analyzer.Level()
}

// Close stops playback and releases the track.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sampleRate != 0 {
		speaker.Clear()
	}
	p.closeLocked()
}

func (p *Player) closeLocked() {
	if p.streamer != nil {
		if err := p.streamer.Close(); err != nil {
			log.Printf("[audio] close %s: %v", p.name, err)
		}
	}
	p.streamer = nil
	p.ctrl = nil
	p.tap = nil
	p.name = ""
}
