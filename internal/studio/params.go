package studio

import (
	"strconv"

	"github.com/iburimskiy/vfx-studio/internal/effect"
)

// ParamRow is one line of the parameter panel.
type ParamRow struct {
	Key      string
	Label    string
	Kind     effect.Kind
	Value    string
	Fraction float64 // position within a range, 0 for other kinds
	Selected bool
}

// Params lists the active effect's parameters with their current values.
func (s *Studio) Params() []ParamRow {
	vals := s.values()
	if vals == nil {
		return nil
	}
	defs := vals.Schema().Defs()
	rows := make([]ParamRow, 0, len(defs))
	for i, d := range defs {
		row := ParamRow{
			Key:      d.Key,
			Label:    d.DisplayLabel(),
			Kind:     d.Param.Kind(),
			Selected: i == s.cursor,
		}
		v, _ := vals.Get(d.Key)
		switch p := d.Param.(type) {
		case effect.RangeParam:
			f := vals.Float(d.Key)
			row.Value = strconv.FormatFloat(f, 'f', 2, 64)
			row.Fraction = (f - p.Min) / (p.Max - p.Min)
		case effect.BoolParam:
			if vals.Bool(d.Key) {
				row.Value = "on"
			} else {
				row.Value = "off"
			}
		case effect.ColorParam:
			row.Value = effect.FormatHexColor(vals.Color(d.Key))
		default:
			row.Value, _ = v.(string)
		}
		rows = append(rows, row)
	}
	return rows
}

// Cursor is the index of the selected parameter.
func (s *Studio) Cursor() int { return s.cursor }

// MoveCursor moves the selection by delta, wrapping around.
func (s *Studio) MoveCursor(delta int) {
	vals := s.values()
	if vals == nil {
		return
	}
	n := vals.Schema().Len()
	if n == 0 {
		return
	}
	s.cursor = ((s.cursor+delta)%n + n) % n
}

// Nudge adjusts the selected parameter by steps. While audio drives the
// intensity, nudging it moves the base the level is applied to.
func (s *Studio) Nudge(steps int) bool {
	vals := s.values()
	if vals == nil {
		return false
	}
	defs := vals.Schema().Defs()
	if s.cursor >= len(defs) {
		return false
	}
	key := defs[s.cursor].Key
	if key == AudioParam && s.audio != nil {
		vals.Set(key, s.audioBase)
		ok := vals.Nudge(key, steps)
		s.audioBase = vals.Float(key)
		return ok
	}
	return vals.Nudge(key, steps)
}

// Cycle advances a select or boolean parameter under the cursor to its
// next value. Ranges and colours are left alone.
func (s *Studio) Cycle() bool {
	vals := s.values()
	if vals == nil {
		return false
	}
	defs := vals.Schema().Defs()
	if s.cursor >= len(defs) {
		return false
	}
	switch defs[s.cursor].Param.Kind() {
	case effect.KindSelect, effect.KindBool:
		return vals.Nudge(defs[s.cursor].Key, 1)
	}
	return false
}

// SetParameter sets key on the active effect.
func (s *Studio) SetParameter(key string, value any) error {
	if s.active == nil {
		return ErrNoEffect
	}
	s.active.UpdateParameter(key, value)
	return nil
}
