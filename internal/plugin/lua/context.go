package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/engine/buffer"
)

const contextTypeName = "modal.context"

// registerContextType installs the metatable for the ctx argument passed
// to action functions.
func (p *Plugins) registerContextType(L *lua.LState) {
	mt := L.NewTypeMetatable(contextTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"pos":          ctxPos,
		"line":         ctxLine,
		"line_count":   ctxLineCount,
		"count":        ctxCount,
		"char":         ctxChar,
		"mode":         ctxMode,
		"cursor_index": ctxCursorIndex,
		"cursor_count": ctxCursorCount,
		"insert":       ctxInsert,
		"replace":      ctxReplace,
		"delete":       ctxDelete,
		"move":         ctxMove,
		"status":       ctxStatus,
		"set_mode":     p.ctxSetMode,
	}))
}

// newContext wraps an execution context for one call.
func newContext(L *lua.LState, ctx *execctx.Context) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = ctx
	L.SetMetatable(ud, L.GetTypeMetatable(contextTypeName))
	return ud
}

func checkContext(L *lua.LState) *execctx.Context {
	ud := L.CheckUserData(1)
	if ctx, ok := ud.Value.(*execctx.Context); ok {
		return ctx
	}
	L.ArgError(1, "modal context expected")
	return nil
}

// checkPos reads a line and column pair at n and n+1 and checks that it
// lies in the document.
func checkPos(L *lua.LState, ctx *execctx.Context, n int) buffer.Position {
	line, col := L.CheckInt(n), L.CheckInt(n+1)
	if line < 0 || line > ctx.LastLine() {
		L.ArgError(n, "line out of range")
	}
	if col < 0 || col > len(ctx.Line(line)) {
		L.ArgError(n+1, "column out of range")
	}
	return buffer.Pos(line, col)
}

func ctxPos(L *lua.LState) int {
	p := checkContext(L).Pos()
	L.Push(lua.LNumber(p.Line))
	L.Push(lua.LNumber(p.Column))
	return 2
}

func ctxLine(L *lua.LState) int {
	ctx := checkContext(L)
	n := L.OptInt(2, ctx.Pos().Line)
	if n < 0 || n > ctx.LastLine() {
		L.ArgError(2, "line out of range")
	}
	L.Push(lua.LString(ctx.Line(n)))
	return 1
}

func ctxLineCount(L *lua.LState) int {
	L.Push(lua.LNumber(checkContext(L).LastLine() + 1))
	return 1
}

func ctxCount(L *lua.LState) int {
	L.Push(lua.LNumber(checkContext(L).GetCount()))
	return 1
}

func ctxChar(L *lua.LState) int {
	r, ok := checkContext(L).Char()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(string(r)))
	return 1
}

func ctxMode(L *lua.LState) int {
	L.Push(lua.LString(checkContext(L).Mode.String()))
	return 1
}

func ctxCursorIndex(L *lua.LState) int {
	L.Push(lua.LNumber(checkContext(L).CursorIndex))
	return 1
}

func ctxCursorCount(L *lua.LState) int {
	L.Push(lua.LNumber(len(checkContext(L).Cursors)))
	return 1
}

// ctxInsert inserts text at the cursor and leaves the cursor after it.
func ctxInsert(L *lua.LState) int {
	ctx := checkContext(L)
	p := ctx.Pos()
	ctx.Insert(p, L.CheckString(2), p)
	return 0
}

func ctxReplace(L *lua.LState) int {
	ctx := checkContext(L)
	r := buffer.NewRange(checkPos(L, ctx, 2), checkPos(L, ctx, 4))
	ctx.Replace(r, L.CheckString(6), r.Start)
	return 0
}

func ctxDelete(L *lua.LState) int {
	ctx := checkContext(L)
	r := buffer.NewRange(checkPos(L, ctx, 2), checkPos(L, ctx, 4))
	ctx.Delete(r, r.Start)
	return 0
}

func ctxMove(L *lua.LState) int {
	ctx := checkContext(L)
	ctx.MoveTo(checkPos(L, ctx, 2))
	return 0
}

func ctxStatus(L *lua.LState) int {
	checkContext(L).Status(L.CheckString(2))
	return 0
}

func (p *Plugins) ctxSetMode(L *lua.LState) int {
	ctx := checkContext(L)
	m, err := p.resolveMode(L.CheckString(2))
	if err != nil {
		L.ArgError(2, err.Error())
	}
	ctx.SetMode(m)
	return 0
}
