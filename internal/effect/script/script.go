// Package script runs effects written in Lua. A script declares a global
// params table and a render(dt, w, h, t) function that draws through the
// bound helpers fill_circle, radial, line and param. Optional init(w, h)
// and reset() hooks are called when present.
package script

import (
	"context"
	"fmt"
	"log"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/surface"
)

// frameBudget bounds one Lua call so a runaway script cannot hang the
// render loop.
const frameBudget = 250 * time.Millisecond

// Effect is an effect backed by a Lua VM.
type Effect struct {
	effect.Base

	vm      *lua.LState
	target  surface.Surface
	clock   float64
	playing bool
	failed  bool
	closed  bool
}

// Load compiles source, runs its top level and builds the parameter
// schema from its params table.
func Load(info effect.Info, source string) (*Effect, error) {
	L, err := newState()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), frameBudget)
	L.SetContext(ctx)
	err = L.DoString(source)
	L.RemoveContext()
	cancel()
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("load script %s: %w", info.ID, err)
	}
	if _, ok := L.GetGlobal("render").(*lua.LFunction); !ok {
		L.Close()
		return nil, fmt.Errorf("load script %s: render is not a function", info.ID)
	}

	defs, err := parseParams(L.GetGlobal("params"))
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("load script %s: %w", info.ID, err)
	}
	schema, err := effect.NewSchema(defs...)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("load script %s: %w", info.ID, err)
	}

	e := &Effect{
		Base:    effect.NewBase(info, schema),
		vm:      L,
		playing: true,
	}
	e.bind()
	return e, nil
}

// Register validates source once and adds a factory creating a fresh VM
// per instance.
func Register(r *effect.Registry, info effect.Info, source string) error {
	probe, err := Load(info, source)
	if err != nil {
		return err
	}
	probe.Destroy()

	return r.Register(info, func() (effect.Effect, error) {
		return Load(info, source)
	})
}

// newState opens a VM with only the side-effect free libraries.
func newState() (*lua.LState, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	libs := []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("open lua %s library: %w", lib.name, err)
		}
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L, nil
}

func (e *Effect) Initialize(s surface.Surface) {
	if e.closed {
		return
	}
	w, h := s.Size()
	e.call(s, "init", lua.LNumber(w), lua.LNumber(h))
}

// Render advances the script clock and calls render. A failing call skips
// the frame; the first failure is logged.
func (e *Effect) Render(s surface.Surface, dtMs float64) {
	if e.closed {
		return
	}
	if dtMs < 0 || !e.playing {
		dtMs = 0
	}
	e.clock += dtMs
	w, h := s.Size()
	e.call(s, "render", lua.LNumber(dtMs), lua.LNumber(w), lua.LNumber(h), lua.LNumber(e.clock))
}

func (e *Effect) Reset() {
	e.clock = 0
	e.failed = false
	if !e.closed {
		e.call(nil, "reset")
	}
}

func (e *Effect) Destroy() {
	if e.closed {
		return
	}
	e.vm.Close()
	e.closed = true
}

func (e *Effect) Play()         { e.playing = true }
func (e *Effect) Pause()        { e.playing = false }
func (e *Effect) Playing() bool { return e.playing }

// call invokes global fn when the script defines it.
func (e *Effect) call(s surface.Surface, fn string, args ...lua.LValue) {
	f, ok := e.vm.GetGlobal(fn).(*lua.LFunction)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), frameBudget)
	defer cancel()
	e.vm.SetContext(ctx)
	defer e.vm.RemoveContext()

	e.target = s
	defer func() { e.target = nil }()

	if err := e.vm.CallByParam(lua.P{Fn: f, NRet: 0, Protect: true}, args...); err != nil {
		if !e.failed {
			log.Printf("[script] %s: %s failed: %v", e.ID(), fn, err)
		}
		e.failed = true
	}
}
