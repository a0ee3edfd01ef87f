package respiration

import "github.com/iburimskiy/vfx-studio/internal/surface"

// Tone picks one colour out of a theme.
type Tone int

const (
	ToneBase Tone = iota
	TonePulse
	ToneHighlight
)

// Theme is a colour palette selectable through the colorTheme parameter.
type Theme struct {
	Name      string
	Base      surface.RGB
	Pulse     surface.RGB
	Highlight surface.RGB
}

// Color returns the colour for tone.
func (t Theme) Color(tone Tone) surface.RGB {
	switch tone {
	case TonePulse:
		return t.Pulse
	case ToneHighlight:
		return t.Highlight
	default:
		return t.Base
	}
}

var themes = []Theme{
	{
		Name:      "cosmic",
		Base:      surface.RGB{R: 120, G: 80, B: 220},
		Pulse:     surface.RGB{R: 180, G: 120, B: 255},
		Highlight: surface.RGB{R: 220, G: 180, B: 255},
	},
	{
		Name:      "bio",
		Base:      surface.RGB{R: 220, G: 100, B: 100},
		Pulse:     surface.RGB{R: 255, G: 160, B: 160},
		Highlight: surface.RGB{R: 255, G: 220, B: 180},
	},
	{
		Name:      "neon",
		Base:      surface.RGB{R: 255, G: 50, B: 150},
		Pulse:     surface.RGB{R: 255, G: 150, B: 50},
		Highlight: surface.RGB{R: 100, G: 255, B: 220},
	},
}

// ThemeNames lists the palette names in declaration order.
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// ThemeByName returns the named theme, or bio when the name is unknown.
func ThemeByName(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[1]
}
