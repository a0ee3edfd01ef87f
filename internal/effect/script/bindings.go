package script

import (
	"fmt"
	"image/color"
	"slices"

	lua "github.com/yuin/gopher-lua"

	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/surface"
)

func (e *Effect) bind() {
	fns := map[string]lua.LGFunction{
		"fill_circle": e.fillCircle,
		"radial":      e.radial,
		"line":        e.line,
		"param":       e.param,
	}
	for name, fn := range fns {
		e.vm.SetGlobal(name, e.vm.NewFunction(fn))
	}
}

// fill_circle(x, y, r, "#rrggbb", alpha?)
func (e *Effect) fillCircle(L *lua.LState) int {
	x, y, r := checkFloat(L, 1), checkFloat(L, 2), checkFloat(L, 3)
	c := checkColor(L, 4, 5)
	if e.target != nil {
		e.target.FillCircle(x, y, r, c)
	}
	return 0
}

// radial(x, y, r, "#rrggbb", alpha?) fades from alpha at the centre to 0.
func (e *Effect) radial(L *lua.LState) int {
	x, y, r := checkFloat(L, 1), checkFloat(L, 2), checkFloat(L, 3)
	c := checkColor(L, 4, 5)
	if e.target != nil {
		faded := c
		faded.A = 0
		e.target.FillRadial(x, y, r, []surface.Stop{
			{Offset: 0, Color: c},
			{Offset: 1, Color: faded},
		})
	}
	return 0
}

// line(x0, y0, x1, y1, width, "#rrggbb", alpha?)
func (e *Effect) line(L *lua.LState) int {
	x0, y0 := checkFloat(L, 1), checkFloat(L, 2)
	x1, y1 := checkFloat(L, 3), checkFloat(L, 4)
	w := checkFloat(L, 5)
	c := checkColor(L, 6, 7)
	if e.target != nil {
		e.target.StrokeLine(x0, y0, x1, y1, w, c)
	}
	return 0
}

// param(key) returns the current value, or nil for unknown keys.
func (e *Effect) param(L *lua.LState) int {
	v, ok := e.Parameter(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(toLua(v))
	return 1
}

func toLua(v any) lua.LValue {
	switch x := v.(type) {
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case color.NRGBA:
		return lua.LString(effect.FormatHexColor(x))
	default:
		return lua.LNil
	}
}

func checkFloat(L *lua.LState, n int) float64 {
	return float64(L.CheckNumber(n))
}

// checkColor reads a hex colour at n and an optional alpha in [0,1] at
// n+1 that scales the colour's own alpha.
func checkColor(L *lua.LState, n, alphaArg int) color.NRGBA {
	c, err := effect.ParseHexColor(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
		return color.NRGBA{}
	}
	a := float64(L.OptNumber(alphaArg, 1))
	a = max(0, min(1, a))
	c.A = uint8(float64(c.A)*a + 0.5)
	return c
}

// parseParams reads the params global. Either an array of tables with a
// key field (declaration order kept) or a map keyed by name (sorted).
func parseParams(v lua.LValue) ([]effect.Def, error) {
	if v == lua.LNil {
		return nil, nil
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("params must be a table, got %s", v.Type())
	}

	var defs []effect.Def
	if tbl.Len() > 0 {
		for i := 1; i <= tbl.Len(); i++ {
			entry, ok := tbl.RawGetInt(i).(*lua.LTable)
			if !ok {
				return nil, fmt.Errorf("params[%d] must be a table", i)
			}
			key := lua.LVAsString(entry.RawGetString("key"))
			d, err := parseDef(key, entry)
			if err != nil {
				return nil, err
			}
			defs = append(defs, d)
		}
		return defs, nil
	}

	var keys []string
	var parseErr error
	tbl.ForEach(func(k, _ lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			keys = append(keys, string(ks))
		} else {
			parseErr = fmt.Errorf("params key %v is not a string", k)
		}
	})
	if parseErr != nil {
		return nil, parseErr
	}
	slices.Sort(keys)
	for _, key := range keys {
		entry, ok := tbl.RawGetString(key).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("params.%s must be a table", key)
		}
		d, err := parseDef(key, entry)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, nil
}

func parseDef(key string, t *lua.LTable) (effect.Def, error) {
	num := func(field string, def float64) float64 {
		if n, ok := t.RawGetString(field).(lua.LNumber); ok {
			return float64(n)
		}
		return def
	}

	var d effect.Def
	switch kind := lua.LVAsString(t.RawGetString("type")); kind {
	case "range":
		lo, hi := num("min", 0), num("max", 1)
		d = effect.Range(key, lo, hi, num("default", lo))
		if step := num("step", 0); step > 0 {
			p := d.Param.(effect.RangeParam)
			p.Step = step
			d.Param = p
		}
	case "select":
		opts, ok := t.RawGetString("options").(*lua.LTable)
		if !ok {
			return effect.Def{}, fmt.Errorf("params.%s: %w", key, effect.ErrNoOptions)
		}
		var options []string
		for i := 1; i <= opts.Len(); i++ {
			options = append(options, lua.LVAsString(opts.RawGetInt(i)))
		}
		def := lua.LVAsString(t.RawGetString("default"))
		if def == "" && len(options) > 0 {
			def = options[0]
		}
		d = effect.Select(key, def, options...)
	case "boolean":
		d = effect.Bool(key, lua.LVAsBool(t.RawGetString("default")))
	case "color":
		c, err := effect.ParseHexColor(lua.LVAsString(t.RawGetString("default")))
		if err != nil {
			return effect.Def{}, fmt.Errorf("params.%s: %w", key, err)
		}
		d = effect.Color(key, c)
	default:
		return effect.Def{}, fmt.Errorf("params.%s: %w %q", key, effect.ErrUnknownKind, kind)
	}

	if label := lua.LVAsString(t.RawGetString("label")); label != "" {
		d = d.WithLabel(label)
	}
	return d, nil
}
