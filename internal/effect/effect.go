// Package effect defines the contract every previewable effect implements,
// its parameter schema and the registry effects are created from.
package effect

import (
	"github.com/iburimskiy/vfx-studio/internal/surface"
)

// Info describes an effect for listings.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Version     string `json:"version"`
	Performance string `json:"performance"`
}

// Effect is a parametrized animation drawn once per frame.
type Effect interface {
	ID() string
	Name() string
	Schema() *Schema

	// Initialize allocates state for the given surface.
	Initialize(s surface.Surface)
	// Render advances the effect by dtMs milliseconds and draws it.
	Render(s surface.Surface, dtMs float64)
	// Reset restores the initial state and clock.
	Reset()
	// Destroy releases all entity state.
	Destroy()

	// UpdateParameter sets key to value. Unknown keys are ignored.
	UpdateParameter(key string, value any)
	// Parameter returns the current value of key, or its default.
	Parameter(key string) (any, bool)
}

// Player is implemented by effects that can pause their clock.
type Player interface {
	Play()
	Pause()
	Playing() bool
}

// StaticRenderer is implemented by effects with a cheaper still frame.
type StaticRenderer interface {
	RenderStatic(s surface.Surface)
}

// Base carries the identity and parameter values shared by effects.
// Effects embed it to get ID, Name, Schema, UpdateParameter and Parameter.
type Base struct {
	info   Info
	values *Values
}

// NewBase creates a base for info with every parameter at its default.
func NewBase(info Info, schema *Schema) Base {
	return Base{info: info, values: NewValues(schema)}
}

func (b *Base) ID() string      { return b.info.ID }
func (b *Base) Name() string    { return b.info.Name }
func (b *Base) Info() Info      { return b.info }
func (b *Base) Schema() *Schema { return b.values.Schema() }

// Values exposes the typed accessors.
func (b *Base) Values() *Values { return b.values }

func (b *Base) UpdateParameter(key string, value any) {
	b.values.Set(key, value)
}

func (b *Base) Parameter(key string) (any, bool) {
	return b.values.Get(key)
}
