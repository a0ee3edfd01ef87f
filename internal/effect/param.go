package effect

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind enumerates the parameter types an effect can declare.
type Kind int

const (
	KindRange Kind = iota
	KindSelect
	KindBool
	KindColor
)

func (k Kind) String() string {
	switch k {
	case KindRange:
		return "range"
	case KindSelect:
		return "select"
	case KindBool:
		return "boolean"
	case KindColor:
		return "color"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

var (
	ErrEmptyKey      = errors.New("parameter key is empty")
	ErrDuplicateKey  = errors.New("duplicate parameter key")
	ErrBadBounds     = errors.New("range min must be below max")
	ErrBadDefault    = errors.New("default value outside declared bounds")
	ErrNoOptions     = errors.New("select parameter has no options")
	ErrUnknownKind   = errors.New("unknown parameter kind")
	ErrNilParameter  = errors.New("parameter has no definition")
	ErrInvalidColour = errors.New("invalid colour")
)

// Param is the kind-specific part of a parameter declaration.
type Param interface {
	Kind() Kind
	DefaultValue() any
	validate() error
	coerce(v any) (any, bool)
}

// RangeParam is a bounded number.
type RangeParam struct {
	Min, Max, Step float64
	Default        float64
}

func (p RangeParam) Kind() Kind        { return KindRange }
func (p RangeParam) DefaultValue() any { return p.Default }

func (p RangeParam) validate() error {
	if !(p.Min < p.Max) {
		return ErrBadBounds
	}
	if p.Default < p.Min || p.Default > p.Max {
		return ErrBadDefault
	}
	return nil
}

func (p RangeParam) coerce(v any) (any, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return nil, false
	}
	return math.Min(p.Max, math.Max(p.Min, f)), true
}

// SelectParam is one string out of a fixed option list.
type SelectParam struct {
	Options []string
	Default string
}

func (p SelectParam) Kind() Kind        { return KindSelect }
func (p SelectParam) DefaultValue() any { return p.Default }

func (p SelectParam) validate() error {
	if len(p.Options) == 0 {
		return ErrNoOptions
	}
	if !slices.Contains(p.Options, p.Default) {
		return ErrBadDefault
	}
	return nil
}

func (p SelectParam) coerce(v any) (any, bool) {
	s, ok := v.(string)
	if !ok || !slices.Contains(p.Options, s) {
		return nil, false
	}
	return s, true
}

// BoolParam is an on/off switch.
type BoolParam struct {
	Default bool
}

func (p BoolParam) Kind() Kind        { return KindBool }
func (p BoolParam) DefaultValue() any { return p.Default }
func (p BoolParam) validate() error   { return nil }

func (p BoolParam) coerce(v any) (any, bool) {
	b, ok := v.(bool)
	return b, ok
}

// ColorParam is an RGBA colour; strings in #rrggbb form are accepted.
type ColorParam struct {
	Default color.NRGBA
}

func (p ColorParam) Kind() Kind        { return KindColor }
func (p ColorParam) DefaultValue() any { return p.Default }
func (p ColorParam) validate() error   { return nil }

func (p ColorParam) coerce(v any) (any, bool) {
	switch c := v.(type) {
	case color.NRGBA:
		return c, true
	case string:
		parsed, err := ParseHexColor(c)
		if err != nil {
			return nil, false
		}
		return parsed, true
	}
	return nil, false
}

// Def declares one named parameter.
type Def struct {
	Key   string
	Label string
	Param Param
}

// Range declares a range parameter with a step of 1/100 of its span.
func Range(key string, lo, hi, def float64) Def {
	return Def{Key: key, Param: RangeParam{Min: lo, Max: hi, Step: (hi - lo) / 100, Default: def}}
}

// Select declares a select parameter.
func Select(key, def string, options ...string) Def {
	return Def{Key: key, Param: SelectParam{Options: options, Default: def}}
}

// Bool declares a boolean parameter.
func Bool(key string, def bool) Def {
	return Def{Key: key, Param: BoolParam{Default: def}}
}

// Color declares a colour parameter.
func Color(key string, def color.NRGBA) Def {
	return Def{Key: key, Param: ColorParam{Default: def}}
}

// WithLabel returns d with a display label.
func (d Def) WithLabel(label string) Def {
	d.Label = label
	return d
}

// DisplayLabel returns the label, or a label derived from the key:
// "haloIntensity" becomes "Halo Intensity".
func (d Def) DisplayLabel() string {
	if d.Label != "" {
		return d.Label
	}
	var b strings.Builder
	for i, r := range d.Key {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Spec is the wire form of a parameter declaration.
type Spec struct {
	Type    string   `json:"type"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Step    *float64 `json:"step,omitempty"`
	Options []string `json:"options,omitempty"`
	Default any      `json:"default"`
}

// Spec converts the declaration to its wire form.
func (d Def) Spec() Spec {
	s := Spec{Type: d.Param.Kind().String(), Default: d.Param.DefaultValue()}
	switch p := d.Param.(type) {
	case RangeParam:
		s.Min, s.Max, s.Step = &p.Min, &p.Max, &p.Step
	case SelectParam:
		s.Options = append([]string(nil), p.Options...)
	case ColorParam:
		s.Default = FormatHexColor(p.Default)
	}
	return s
}

// ParseHexColor parses #rgb, #rrggbb or #rrggbbaa.
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColour, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColour, s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// FormatHexColor formats c as #rrggbb, or #rrggbbaa when not opaque.
func FormatHexColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	}
	return 0, false
}
