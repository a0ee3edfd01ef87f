// Package export writes screenshots, short GIF recordings and JSON
// performance reports.
package export

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Filename returns "<prefix>-<unix ms>.<ext>".
func Filename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%d.%s", prefix, now.UnixMilli(), ext)
}

// SavePNG encodes img to path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return f.Close()
}

// Screenshot saves img into dir under a timestamped name and returns the
// full path.
func Screenshot(dir string, img image.Image) (string, error) {
	path := filepath.Join(dir, Filename("vfx-screenshot", "png", time.Now()))
	if err := SavePNG(path, img); err != nil {
		return "", err
	}
	return path, nil
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create export file: %w", err)
	}
	return f, nil
}
