package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ncruces/zenity"
	"golang.design/x/clipboard"

	"github.com/iburimskiy/vfx-studio/internal/audio"
	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/effect/script"
	"github.com/iburimskiy/vfx-studio/internal/export"
	"github.com/iburimskiy/vfx-studio/internal/storage"
)

var (
	clipboardOnce sync.Once
	clipboardOK   bool
)

func clipboardReady() bool {
	clipboardOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			log.Printf("[studio] clipboard unavailable: %v", err)
			return
		}
		clipboardOK = true
	})
	return clipboardOK
}

// background runs fn off the frame loop, one dialog at a time. Whatever
// fn returns is applied on the next Update.
func (g *game) background(fn func() func(g *game)) {
	if g.dialog {
		return
	}
	g.dialog = true
	go func() {
		apply := fn()
		g.post(func(g *game) {
			g.dialog = false
			if apply != nil {
				apply(g)
			}
		})
	}()
}

// failed reports err on the frame loop. A cancelled dialog is not an error.
func failed(err error) func(g *game) {
	if errors.Is(err, zenity.ErrCanceled) {
		return nil
	}
	return func(g *game) { g.setErr(err) }
}

func saved(what, path string) func(g *game) {
	return func(g *game) {
		log.Printf("[export] %s saved to %s", what, path)
		g.status = fmt.Sprintf("%s saved to %s", what, path)
		g.lastErr = nil
	}
}

// savePath asks where to save, starting in the data directory.
func (g *game) savePath(title, prefix, ext, pattern string) (string, error) {
	def := filepath.Join(g.dataDir, export.Filename(prefix, ext, time.Now()))
	return zenity.SelectFileSave(
		zenity.Title(title),
		zenity.Filename(def),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{Name: strings.ToUpper(ext), Patterns: []string{pattern}}},
	)
}

func (g *game) screenshot() {
	img := g.canvasImage()
	g.background(func() func(g *game) {
		path, err := g.savePath("Save Screenshot", "vfx-screenshot", "png", "*.png")
		if err != nil {
			return failed(err)
		}
		if err := export.SavePNG(path, img); err != nil {
			return failed(err)
		}
		return saved("Screenshot", path)
	})
}

func (g *game) saveRecording(rec *export.Recorder) {
	g.status = "Encoding recording..."
	g.background(func() func(g *game) {
		path, err := g.savePath("Save Recording", "vfx-recording", "gif", "*.gif")
		if err != nil {
			return failed(err)
		}
		if err := rec.SaveAs(path); err != nil {
			return failed(err)
		}
		return saved("Recording", path)
	})
}

func (g *game) report() {
	rep := g.studio.Report(time.Now())
	data, err := rep.JSON()
	if err != nil {
		g.setErr(err)
		return
	}
	if clipboardReady() {
		clipboard.Write(clipboard.FmtText, data)
		g.status = "Report copied to clipboard"
	}
	g.background(func() func(g *game) {
		path, err := g.savePath("Save Performance Report", "vfx-performance-report", "json", "*.json")
		if err != nil {
			return failed(err)
		}
		if err := export.WriteReport(path, rep); err != nil {
			return failed(err)
		}
		return saved("Report", path)
	})
}

// openScript loads a Lua effect, registers it and makes it active. A
// script opened again replaces its earlier registration.
func (g *game) openScript() {
	reg := g.registry
	g.background(func() func(g *game) {
		path, err := zenity.SelectFile(
			zenity.Title("Open Effect Script"),
			zenity.FileFilters{{Name: "Lua effect", Patterns: []string{"*.lua"}}},
		)
		if err != nil {
			return failed(err)
		}
		code, err := os.ReadFile(path)
		if err != nil {
			return failed(fmt.Errorf("failed to read script: %w", err))
		}
		name, kind, err := storage.ValidateEffectFile(filepath.Base(path), code)
		if err != nil {
			return failed(err)
		}
		if kind != storage.KindLua {
			return failed(fmt.Errorf("%w: %s", storage.ErrUnsupportedType, filepath.Base(path)))
		}

		info := effect.Info{
			ID:          "script:" + filepath.Base(path),
			Name:        name,
			Category:    "script",
			Version:     "1.0",
			Performance: "unknown",
		}
		reg.Unregister(info.ID)
		if err := script.Register(reg, info, string(code)); err != nil {
			return failed(err)
		}
		return func(g *game) {
			g.setErr(g.studio.Select(info.ID))
			g.status = "Loaded " + name
		}
	})
}

func (g *game) openAudio() {
	player := g.player
	g.background(func() func(g *game) {
		path, err := zenity.SelectFile(
			zenity.Title("Open Audio File"),
			zenity.FileFilters{{Name: "Audio", Patterns: audio.Patterns}},
		)
		if err != nil {
			return failed(err)
		}
		if err := player.Load(path); err != nil {
			return failed(err)
		}
		return func(g *game) {
			g.studio.SetAudio(player)
			g.status = "Audio-reactive: " + player.Name()
			g.lastErr = nil
		}
	})
}

// notifyFatal shows errors that happen before or after the window exists.
func notifyFatal(err error) {
	if zerr := zenity.Error(err.Error(), zenity.Title("VFX Studio")); zerr != nil {
		log.Printf("[studio] %v", err)
	}
}
