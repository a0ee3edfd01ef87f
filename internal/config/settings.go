package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const settingsFile = "settings.json"

// Canvas quality presets
const (
	QualityLow    = "low"
	QualityMedium = "medium"
	QualityHigh   = "high"
	QualityUltra  = "ultra"
)

// Metrics samplers
const (
	SamplerRuntime   = "runtime"
	SamplerSynthetic = "synthetic"
)

var canvasSizes = map[string][2]int{
	QualityLow:    {512, 384},
	QualityMedium: {CanvasWidth, CanvasHeight},
	QualityHigh:   {1280, 720},
	QualityUltra:  {1920, 1080},
}

var recordingSizes = map[string][2]int{
	"720p":  {1280, 720},
	"1080p": {1920, 1080},
	"1440p": {2560, 1440},
	"2160p": {3840, 2160},
}

// Settings holds user preferences persisted between runs.
type Settings struct {
	Version          int    `json:"version"`
	CanvasQuality    string `json:"canvasQuality"`
	MaxFPS           int    `json:"maxFPS"`
	ShowFPS          bool   `json:"showFPS"`
	PerfMonitoring   bool   `json:"perfMonitoring"`
	Sampler          string `json:"sampler"`
	RecordingQuality string `json:"recordingQuality"`
	ServerAddr       string `json:"serverAddr"`
	DefaultEffect    string `json:"defaultEffect"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		Version:          1,
		CanvasQuality:    QualityMedium,
		MaxFPS:           60,
		ShowFPS:          true,
		PerfMonitoring:   true,
		Sampler:          SamplerRuntime,
		RecordingQuality: "720p",
		ServerAddr:       "127.0.0.1:5000",
		DefaultEffect:    "organic-life-respiration-pro",
	}
}

// CanvasSize returns the canvas dimensions for the configured quality.
// Unknown qualities fall back to medium.
func (s *Settings) CanvasSize() (int, int) {
	if sz, ok := canvasSizes[s.CanvasQuality]; ok {
		return sz[0], sz[1]
	}
	return CanvasWidth, CanvasHeight
}

// RecordingBounds returns the bounding box recordings are scaled to fit.
func (s *Settings) RecordingBounds() (int, int) {
	if sz, ok := recordingSizes[s.RecordingQuality]; ok {
		return sz[0], sz[1]
	}
	return 1280, 720
}

// Validate replaces out-of-range values with defaults.
func (s *Settings) Validate() {
	def := DefaultSettings()
	if _, ok := canvasSizes[s.CanvasQuality]; !ok {
		s.CanvasQuality = def.CanvasQuality
	}
	if s.MaxFPS < 15 {
		s.MaxFPS = 15
	}
	if s.MaxFPS > 240 {
		s.MaxFPS = 240
	}
	if s.Sampler != SamplerRuntime && s.Sampler != SamplerSynthetic {
		s.Sampler = def.Sampler
	}
	if _, ok := recordingSizes[s.RecordingQuality]; !ok {
		s.RecordingQuality = def.RecordingQuality
	}
	if s.ServerAddr == "" {
		s.ServerAddr = def.ServerAddr
	}
	if s.DefaultEffect == "" {
		s.DefaultEffect = def.DefaultEffect
	}
}

// DataDir returns the per-OS directory for studio data:
// - macOS: ~/Library/Application Support/vfx-studio
// - Linux: $XDG_DATA_HOME/vfx-studio or ~/.local/share/vfx-studio
// - Windows: %APPDATA%/vfx-studio
func DataDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", AppName), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA environment variable not set")
		}
		return filepath.Join(appData, AppName), nil
	default:
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, AppName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, ".local", "share", AppName), nil
	}
}

// SettingsPath returns the default settings file location.
func SettingsPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFile), nil
}

// LoadSettings reads settings from path. A missing file yields defaults;
// keys absent from the file keep their default values.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	s.Validate()
	return s, nil
}

// SaveSettings writes settings to path atomically.
func SaveSettings(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), settingsFile+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
