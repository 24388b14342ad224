package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// ModuleName is the global and require name of the editor module.
const ModuleName = "modal"

// removedGlobals load code from outside the sandbox.
var removedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "module"}

// requirable are the library tables require may return.
var requirable = map[string]bool{
	"string":   true,
	"table":    true,
	"math":     true,
	ModuleName: true,
}

// installSandbox removes code-loading functions and replaces require with
// a lookup of already opened libraries. Nothing is ever loaded from disk.
func installSandbox(L *lua.LState) {
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !requirable[name] {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		mod := L.GetGlobal(name)
		if mod == lua.LNil {
			L.RaiseError("module %q is not loaded", name)
			return 0
		}
		L.Push(mod)
		return 1
	}))
}
