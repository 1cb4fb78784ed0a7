package scripting

import (
	"regexp"

	lua "github.com/yuin/gopher-lua"
)

// registerModules defines the nav global in L:
//
//	nav.on(pattern, handler)  -- register a trigger for matching summaries
//	nav.send(command)         -- send a command over the active session
//	nav.note(text)            -- append a local note to the transcript
//	nav.hide()                -- hide the entry currently being dispatched
//
// Patterns use Go regular expression syntax; an invalid pattern raises a Lua
// error at load time.
func (e *Engine) registerModules(L *lua.LState) {
	nav := L.NewTable()

	nav.RawSetString("on", L.NewFunction(func(L *lua.LState) int {
		pattern := L.CheckString(1)
		handler := L.CheckFunction(2)

		re, err := regexp.Compile(pattern)
		if err != nil {
			L.RaiseError("nav.on: invalid pattern %q: %s", pattern, err)
			return 0
		}
		e.triggers = append(e.triggers, trigger{pattern: re, handler: handler})
		return 0
	}))

	nav.RawSetString("send", L.NewFunction(func(L *lua.LState) int {
		command := L.CheckString(1)
		if e.Send == nil {
			return 0
		}
		if err := e.Send(command); err != nil {
			e.logger.Warn("trigger send failed")
		}
		return 0
	}))

	nav.RawSetString("note", L.NewFunction(func(L *lua.LState) int {
		text := L.CheckString(1)
		if e.Note != nil {
			e.Note(text)
		}
		return 0
	}))

	nav.RawSetString("hide", L.NewFunction(func(L *lua.LState) int {
		if e.Hide != nil && e.currentID != "" {
			e.Hide(e.currentID)
		}
		return 0
	}))

	L.SetGlobal("nav", nav)
}
