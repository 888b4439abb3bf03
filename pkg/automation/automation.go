// Package automation runs Lua scripts that change parameters from the
// control context, once per rendered block.
//
// A script may define
//
//	function on_block(frame, seconds) ... end
//
// and uses the kick table to reach the instrument:
//
//	kick.set("octave_1", 7)      -- returns the committed value
//	kick.set_text("note_1", "A#")
//	kick.get("driveDb")
//	kick.text("saturationType")
//	kick.label(1)                -- "A#7"
//	kick.log("message")
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/gruvah/kickbridge/pkg/framework/debug"
	"github.com/gruvah/kickbridge/pkg/framework/param"
	"github.com/gruvah/kickbridge/pkg/kick"
)

// HookName is the global function called before every block.
const HookName = "on_block"

// ErrScript wraps every error raised while loading or running a script.
var ErrScript = errors.New("automation: script error")

// Target is the instrument a script drives.
type Target interface {
	Parameters() *param.Registry
	SetParameter(id string, value float64) (float64, error)
	SetText(id, text string) (float64, error)
	Label(slot int) string
}

// Script is one loaded Lua state. It is not safe for concurrent use.
type Script struct {
	name   string
	target Target
	log    *debug.Logger
	state  *lua.LState
	hook   *lua.LFunction

	// Timeout bounds a single on_block call. Zero disables the bound.
	Timeout time.Duration
}

// New creates a sandboxed Lua state bound to target. Only the base, table,
// string and math libraries are available.
func New(target Target, log *debug.Logger) *Script {
	if log == nil {
		log = debug.Default()
	}
	s := &Script{
		target: target,
		log:    log.With("automation"),
		state:  lua.NewState(lua.Options{SkipOpenLibs: true}),
	}
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		s.state.Push(s.state.NewFunction(lib.open))
		s.state.Push(lua.LString(lib.name))
		s.state.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		s.state.SetGlobal(name, lua.LNil)
	}
	s.state.SetGlobal("kick", s.state.SetFuncs(s.state.NewTable(), map[string]lua.LGFunction{
		"set":      s.luaSet,
		"set_text": s.luaSetText,
		"get":      s.luaGet,
		"text":     s.luaText,
		"label":    s.luaLabel,
		"log":      s.luaLog,
	}))
	return s
}

// Load runs the script file at path.
func Load(target Target, path string, log *debug.Logger) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("automation: %w", err)
	}
	s := New(target, log)
	if err := s.Run(path, string(src)); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Run executes a chunk and picks up its on_block function, if any.
func (s *Script) Run(name, src string) error {
	s.name = name
	fn, err := s.state.Load(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrScript, name, err)
	}
	s.state.Push(fn)
	if err := s.state.PCall(0, 0, nil); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrScript, name, err)
	}
	s.hook = nil
	if f, ok := s.state.GetGlobal(HookName).(*lua.LFunction); ok {
		s.hook = f
	}
	s.log.Debug("loaded %s (hook: %t)", name, s.hook != nil)
	return nil
}

// HasHook reports whether the script defines on_block.
func (s *Script) HasHook() bool {
	return s.hook != nil
}

// OnBlock calls on_block(frame, seconds). Scripts without the function are
// a no-op.
func (s *Script) OnBlock(frame int64, seconds float64) error {
	if s.hook == nil {
		return nil
	}
	if s.Timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
		defer cancel()
		s.state.SetContext(ctx)
		defer s.state.RemoveContext()
	}
	err := s.state.CallByParam(lua.P{Fn: s.hook, NRet: 0, Protect: true},
		lua.LNumber(frame), lua.LNumber(seconds))
	if err != nil {
		s.log.Error("%s at frame %d: %v", s.name, frame, err)
		return fmt.Errorf("%w: %s: %v", ErrScript, s.name, err)
	}
	return nil
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.state.Close()
}

func (s *Script) lookup(L *lua.LState) *param.Parameter {
	id := L.CheckString(1)
	p, err := s.target.Parameters().Lookup(id)
	if err != nil {
		L.RaiseError("%v", err)
	}
	return p
}

func (s *Script) luaSet(L *lua.LState) int {
	id := L.CheckString(1)
	v, err := s.target.SetParameter(id, float64(L.CheckNumber(2)))
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (s *Script) luaSetText(L *lua.LState) int {
	id := L.CheckString(1)
	v, err := s.target.SetText(id, L.CheckString(2))
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (s *Script) luaGet(L *lua.LState) int {
	L.Push(lua.LNumber(s.lookup(L).Value()))
	return 1
}

func (s *Script) luaText(L *lua.LState) int {
	L.Push(lua.LString(s.lookup(L).Text()))
	return 1
}

func (s *Script) luaLabel(L *lua.LState) int {
	slot := L.CheckInt(1)
	if slot < 1 || slot > kick.SlotCount {
		L.ArgError(1, fmt.Sprintf("slot must be 1..%d", kick.SlotCount))
	}
	L.Push(lua.LString(s.target.Label(slot)))
	return 1
}

func (s *Script) luaLog(L *lua.LState) int {
	s.log.Info("%s: %s", s.name, L.CheckString(1))
	return 0
}
