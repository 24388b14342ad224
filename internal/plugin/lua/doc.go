// Package lua runs Lua plugin scripts that extend an editing session.
//
// Scripts run in a sandboxed gopher-lua state: io, os, debug and package
// are not opened, dofile/loadfile/load are removed, and require only
// resolves the standard string, table and math modules and the editor's
// own "modal" module. Every call into Lua runs under a timeout.
//
// # The modal module
//
// A script registers actions with modal.action:
//
//	modal.action{
//	    name  = "plugin.upperLine",
//	    keys  = {"zU"},
//	    modes = {"normal"},
//	    repeatable = true,
//	    fn = function(ctx)
//	        local l = ctx:pos()
//	        local text = ctx:line(l)
//	        ctx:replace(l, 0, l, #text, string.upper(text))
//	    end,
//	}
//
// Motions return the target position instead of editing:
//
//	modal.action{
//	    name = "plugin.lastLine", kind = "motion", keys = "gL",
//	    fn = function(ctx) return ctx:line_count() - 1, 0 end,
//	}
//
// modal.on_action(name, fn) calls fn(name, outcome) after every
// dispatched step of the named action ("*" matches all).
// modal.mode(name) declares a plugin-owned mode usable in action modes
// and ctx:set_mode. modal.log(msg) writes to the editor log.
//
// Lines and columns are zero-based byte offsets, as in the engine.
package lua
