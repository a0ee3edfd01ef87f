package config

const (
	AppName = "vfx-studio"

	WindowWidth  = 1280
	WindowHeight = 760

	// Canvas panel placement inside the window
	CanvasX = 20
	CanvasY = 60

	// Default canvas size (medium quality)
	CanvasWidth  = 800
	CanvasHeight = 600

	// Side panel
	PanelX     = 840
	PanelWidth = 420
	RowHeight  = 22

	// Button dimensions
	ButtonWidth  = 120
	ButtonHeight = 30
	ButtonY      = 16

	// Metrics
	FrameHistory      = 60
	VarianceWindow    = 10
	VarianceThreshold = 100.0
	MetricsInterval   = 1000 // ms
	SessionHistory    = 50

	// Audio-reactive input
	AudioRingSize   = 8192
	SmoothingFactor = 0.6

	// Exports
	RecordingSeconds = 5
	RecordingFPS     = 30
	MaxUploadBytes   = 10 << 20
)
