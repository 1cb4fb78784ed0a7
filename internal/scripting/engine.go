package scripting

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/mistvale/navigator/internal/events"
)

// trigger is one registered pattern/handler pair.
type trigger struct {
	pattern *regexp.Regexp
	handler *lua.LFunction
}

// Engine owns the sandboxed VM for the user's trigger file and dispatches
// activity entries against the registered triggers.
//
// Engine is safe for concurrent Dispatch; the single LState is serialized by
// the internal mutex.
type Engine struct {
	mu        sync.Mutex
	state     *lua.LState
	cancel    context.CancelFunc
	triggers  []trigger
	instLimit int
	logger    *zap.Logger

	// Current dispatch target, set while a handler runs.
	currentID string

	// Injected after construction. nil = no-op in nav.* functions.
	Send func(command string) error
	Hide func(entryID string) bool
	Note func(text string)
}

// NewEngine creates an Engine with an empty trigger set.
//
// Precondition: logger must be non-nil. instLimit <= 0 uses
// DefaultInstructionLimit.
func NewEngine(instLimit int, logger *zap.Logger) *Engine {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	return &Engine{instLimit: instLimit, logger: logger}
}

// LoadFile executes the user's trigger file in a fresh sandboxed VM. Any
// previously loaded triggers are discarded. A missing or empty path leaves
// the engine with no triggers.
func (e *Engine) LoadFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closeLocked()
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	L, cancel := NewSandboxedState(e.instLimit)
	e.registerModules(L)

	if err := L.DoFile(path); err != nil {
		cancel()
		L.Close()
		e.triggers = nil
		return fmt.Errorf("scripting: loading trigger file %q: %w", path, err)
	}

	e.state = L
	e.cancel = cancel
	e.logger.Info("trigger file loaded",
		zap.String("path", path),
		zap.Int("triggers", len(e.triggers)),
	)
	return nil
}

// Dispatch runs every trigger whose pattern matches the entry's summary.
// Handler errors are logged and skipped; a broken trigger never stalls the
// event stream.
func (e *Engine) Dispatch(entry events.Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil || len(e.triggers) == 0 {
		return
	}

	e.currentID = entry.ID
	defer func() { e.currentID = "" }()

	for _, tr := range e.triggers {
		m := tr.pattern.FindStringSubmatch(entry.Summary)
		if m == nil {
			continue
		}

		// Re-arm the opcode budget so each dispatch gets the full limit.
		ctx, cancel := newCountingContext(e.instLimit)
		e.state.SetContext(ctx)

		err := e.state.CallByParam(lua.P{
			Fn:      tr.handler,
			NRet:    0,
			Protect: true,
		}, e.entryTable(entry), e.capturesTable(m))
		cancel()
		if err != nil {
			e.logger.Warn("trigger handler failed",
				zap.String("pattern", tr.pattern.String()),
				zap.Error(err),
			)
		}
	}
}

// TriggerCount returns the number of registered triggers.
func (e *Engine) TriggerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.triggers)
}

// Close tears the VM down.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeLocked()
}

func (e *Engine) closeLocked() {
	if e.state != nil {
		e.cancel()
		e.state.Close()
		e.state = nil
		e.cancel = nil
	}
	e.triggers = nil
}

// entryTable converts an activity entry into the Lua table handlers receive.
func (e *Engine) entryTable(entry events.Entry) *lua.LTable {
	t := e.state.NewTable()
	t.RawSetString("id", lua.LString(entry.ID))
	t.RawSetString("kind", lua.LString(entry.Kind))
	t.RawSetString("room", lua.LString(entry.Room))
	t.RawSetString("summary", lua.LString(entry.Summary))
	return t
}

// capturesTable exposes regexp submatches as a 1-indexed Lua array.
func (e *Engine) capturesTable(m []string) *lua.LTable {
	t := e.state.NewTable()
	for i := 1; i < len(m); i++ {
		t.Append(lua.LString(m[i]))
	}
	return t
}
