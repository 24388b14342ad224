package lua

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/modal/internal/dispatcher"
	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/pending"
	"github.com/dshills/modal/internal/logging"
)

// Host is the editing session scripts extend.
type Host interface {
	RegisterAction(a *catalog.Action) error
	RegisterMode(name string) mode.Mode
	AddPostDispatchHook(h dispatcher.PostDispatchHook)
}

// Plugins loads Lua scripts into one shared state and binds what they
// register to a host.
type Plugins struct {
	state *State
	host  Host
	log   *logging.Logger

	mu      sync.Mutex
	modes   map[string]mode.Mode
	actions []string
}

// New creates a plugin state bound to host. A nil logger discards output.
func New(host Host, log *logging.Logger, opts ...StateOption) *Plugins {
	if log == nil {
		log = logging.Nop()
	}
	p := &Plugins{
		state: NewState(opts...),
		host:  host,
		log:   log.WithComponent("plugin"),
		modes: make(map[string]mode.Mode),
	}

	L := p.state.L
	p.registerContextType(L)
	L.SetGlobal(ModuleName, L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"action":    p.luaAction,
		"on_action": p.luaOnAction,
		"mode":      p.luaMode,
		"log":       p.luaLog,
		"actions":   p.luaActions,
	}))
	return p
}

// Load runs a script file.
func (p *Plugins) Load(path string) error {
	if err := p.state.DoFile(path); err != nil {
		return fmt.Errorf("loading plugin %s: %w", path, err)
	}
	p.log.Info("loaded plugin %s", path)
	return nil
}

// LoadAll runs every script, continuing past failures. The returned error
// joins all failures.
func (p *Plugins) LoadAll(paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := p.Load(path); err != nil {
			p.log.Error("%v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run executes a chunk of Lua code.
func (p *Plugins) Run(code string) error {
	return p.state.DoString(code)
}

// Actions returns the names of actions registered by scripts.
func (p *Plugins) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.actions...)
}

// Close releases the Lua state. Registered actions fail afterwards.
func (p *Plugins) Close() error {
	return p.state.Close()
}

// resolveMode looks up a built-in or script-declared mode.
func (p *Plugins) resolveMode(name string) (mode.Mode, error) {
	p.mu.Lock()
	m, ok := p.modes[name]
	p.mu.Unlock()
	if ok {
		return m, nil
	}
	return mode.ParseIncludingPseudo(name)
}

// luaAction implements modal.action{...}.
func (p *Plugins) luaAction(L *lua.LState) int {
	a, err := p.parseAction(L.CheckTable(1))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	if err := p.host.RegisterAction(a); err != nil {
		L.RaiseError("%v", err)
		return 0
	}

	p.mu.Lock()
	p.actions = append(p.actions, a.Name)
	p.mu.Unlock()
	return 0
}

// parseAction builds a catalog action from a modal.action table.
func (p *Plugins) parseAction(t *lua.LTable) (*catalog.Action, error) {
	name, ok := tableString(t, "name")
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidAction)
	}
	fn, ok := tableFunc(t, "fn")
	if !ok {
		return nil, fmt.Errorf("%w: %s: fn is required", ErrInvalidAction, name)
	}
	keys, err := stringList(t.RawGetString("keys"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: keys: %v", ErrInvalidAction, name, err)
	}
	modeNames, err := stringList(t.RawGetString("modes"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: modes: %v", ErrInvalidAction, name, err)
	}
	if len(modeNames) == 0 {
		modeNames = []string{mode.Normal.String()}
	}
	modes := make([]mode.Mode, 0, len(modeNames))
	for _, mn := range modeNames {
		m, err := p.resolveMode(mn)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAction, name, err)
		}
		modes = append(modes, m)
	}

	a := &catalog.Action{
		Name:       name,
		Modes:      modes,
		Keys:       keys,
		Repeatable: tableBool(t, "repeatable"),
		Jump:       tableBool(t, "jump"),
	}
	if tableBool(t, "once") {
		a.FanOut = catalog.Once
	}

	kind, _ := tableString(t, "kind")
	switch kind {
	case "", "command":
		a.Kind = catalog.Command
		a.Command = p.command(name, fn)
	case "motion":
		a.Kind = catalog.Motion
		a.Motion = p.motion(name, fn, tableBool(t, "inclusive"), tableBool(t, "linewise"))
	default:
		return nil, fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidAction, name, kind)
	}
	return a, nil
}

// command wraps fn(ctx) as a command.
func (p *Plugins) command(name string, fn *lua.LFunction) catalog.CommandFunc {
	return func(ctx *execctx.Context) error {
		if _, err := p.state.CallFunction(fn, 0, newContext(p.state.L, ctx)); err != nil {
			return fmt.Errorf("plugin action %s: %w", name, err)
		}
		return nil
	}
}

// motion wraps fn(ctx) returning a line and column as a motion. A nil
// result means the motion does not apply.
func (p *Plugins) motion(name string, fn *lua.LFunction, inclusive, linewise bool) catalog.MotionFunc {
	return func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
		ret, err := p.state.CallFunction(fn, 2, newContext(p.state.L, ctx))
		if err != nil {
			return execctx.Motion{}, fmt.Errorf("plugin motion %s: %w", name, err)
		}
		line, ok1 := ret[0].(lua.LNumber)
		col, ok2 := ret[1].(lua.LNumber)
		if !ok1 {
			return execctx.Motion{}, execctx.ErrNoMotion
		}
		if !ok2 {
			col = 0
		}

		n := min(max(int(line), 0), ctx.LastLine())
		c := min(max(int(col), 0), len(ctx.Line(n)))
		m := execctx.To(buffer.Pos(n, c))
		m.Inclusive = inclusive
		m.Linewise = linewise
		return m, nil
	}
}

// luaOnAction implements modal.on_action(name, fn).
func (p *Plugins) luaOnAction(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)

	p.host.AddPostDispatchHook(dispatcher.PostDispatchFunc(func(step pending.Step, res dispatcher.Result) {
		if name != "*" && step.Action.Name != name {
			return
		}
		_, err := p.state.CallFunction(fn, 0, lua.LString(step.Action.Name), lua.LString(res.Outcome.String()))
		if err != nil {
			p.log.Warn("on_action hook for %s: %v", name, err)
		}
	}))
	return 0
}

// luaMode implements modal.mode(name), declaring a plugin-owned mode.
// Declaring the same name twice returns the existing mode.
func (p *Plugins) luaMode(L *lua.LState) int {
	name := L.CheckString(1)
	if _, err := mode.ParseIncludingPseudo(name); err == nil {
		L.ArgError(1, "built-in mode names cannot be redeclared")
		return 0
	}

	p.mu.Lock()
	if _, ok := p.modes[name]; !ok {
		p.modes[name] = p.host.RegisterMode(name)
	}
	p.mu.Unlock()

	L.Push(lua.LString(name))
	return 1
}

func (p *Plugins) luaLog(L *lua.LState) int {
	p.log.Info("%s", L.CheckString(1))
	return 0
}

func (p *Plugins) luaActions(L *lua.LState) int {
	L.Push(stringTable(L, p.Actions()))
	return 1
}
