package effect

import (
	"fmt"
	"image/color"
	"slices"
)

// Schema is a validated, ordered set of parameter declarations.
type Schema struct {
	defs  []Def
	index map[string]int
}

// NewSchema validates defs and returns the schema. Declaration order is
// preserved for display.
func NewSchema(defs ...Def) (*Schema, error) {
	s := &Schema{
		defs:  make([]Def, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if d.Key == "" {
			return nil, ErrEmptyKey
		}
		if _, dup := s.index[d.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, d.Key)
		}
		if d.Param == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilParameter, d.Key)
		}
		if err := d.Param.validate(); err != nil {
			return nil, fmt.Errorf("parameter %s: %w", d.Key, err)
		}
		s.index[d.Key] = len(s.defs)
		s.defs = append(s.defs, d)
	}
	return s, nil
}

// MustSchema is NewSchema for static declarations; it panics on error.
func MustSchema(defs ...Def) *Schema {
	s, err := NewSchema(defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of parameters.
func (s *Schema) Len() int { return len(s.defs) }

// Defs returns the declarations in order.
func (s *Schema) Defs() []Def { return slices.Clone(s.defs) }

// Lookup returns the declaration for key.
func (s *Schema) Lookup(key string) (Def, bool) {
	i, ok := s.index[key]
	if !ok {
		return Def{}, false
	}
	return s.defs[i], true
}

// Specs returns the wire form of every declaration keyed by name.
func (s *Schema) Specs() map[string]Spec {
	out := make(map[string]Spec, len(s.defs))
	for _, d := range s.defs {
		out[d.Key] = d.Spec()
	}
	return out
}

// Values holds the current value of every parameter in a schema. Unset
// parameters resolve to their declared default.
type Values struct {
	schema *Schema
	set    map[string]any
}

// NewValues returns values with nothing set.
func NewValues(s *Schema) *Values {
	return &Values{schema: s, set: make(map[string]any)}
}

// Schema returns the schema the values belong to.
func (v *Values) Schema() *Schema { return v.schema }

// Set stores val for key after coercing it to the declared kind. Unknown
// keys and values of the wrong kind are ignored; the return value reports
// whether anything was stored.
func (v *Values) Set(key string, val any) bool {
	d, ok := v.schema.Lookup(key)
	if !ok {
		return false
	}
	c, ok := d.Param.coerce(val)
	if !ok {
		return false
	}
	v.set[key] = c
	return true
}

// Get returns the current value of key, falling back to its default.
// Unknown keys report false.
func (v *Values) Get(key string) (any, bool) {
	if val, ok := v.set[key]; ok {
		return val, true
	}
	d, ok := v.schema.Lookup(key)
	if !ok {
		return nil, false
	}
	return d.Param.DefaultValue(), true
}

// Float returns a range parameter, or 0 when key is not a range.
func (v *Values) Float(key string) float64 {
	val, _ := v.Get(key)
	f, _ := val.(float64)
	return f
}

// String returns a select parameter, or "" when key is not a select.
func (v *Values) String(key string) string {
	val, _ := v.Get(key)
	s, _ := val.(string)
	return s
}

// Bool returns a boolean parameter.
func (v *Values) Bool(key string) bool {
	val, _ := v.Get(key)
	b, _ := val.(bool)
	return b
}

// Color returns a colour parameter.
func (v *Values) Color(key string) color.NRGBA {
	val, _ := v.Get(key)
	c, _ := val.(color.NRGBA)
	return c
}

// Snapshot returns every parameter's current value.
func (v *Values) Snapshot() map[string]any {
	out := make(map[string]any, v.schema.Len())
	for _, d := range v.schema.defs {
		val, _ := v.Get(d.Key)
		if c, ok := val.(color.NRGBA); ok {
			val = FormatHexColor(c)
		}
		out[d.Key] = val
	}
	return out
}

// Clear drops every explicitly set value.
func (v *Values) Clear() {
	clear(v.set)
}

// Nudge moves a parameter by steps: ranges move by their step, selects
// cycle through their options and booleans toggle. Colours are left alone.
func (v *Values) Nudge(key string, steps int) bool {
	d, ok := v.schema.Lookup(key)
	if !ok || steps == 0 {
		return false
	}
	switch p := d.Param.(type) {
	case RangeParam:
		step := p.Step
		if step <= 0 {
			step = (p.Max - p.Min) / 100
		}
		return v.Set(key, v.Float(key)+step*float64(steps))
	case SelectParam:
		i := slices.Index(p.Options, v.String(key))
		n := len(p.Options)
		i = ((i+steps)%n + n) % n
		return v.Set(key, p.Options[i])
	case BoolParam:
		return v.Set(key, !v.Bool(key))
	}
	return false
}
