package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mistvale/navigator/internal/events"
)

func writeTriggerFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triggers.lua")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEngineRejectsInvalidPattern(t *testing.T) {
	e := NewEngine(0, zaptest.NewLogger(t))
	defer e.Close()

	path := writeTriggerFile(t, `
nav.on("([unclosed", function(entry, captures)
  nav.send("never")
end)
`)
	err := e.LoadFile(path)
	require.Error(t, err)
	assert.Zero(t, e.TriggerCount())
}

func TestEngineTriggerSendsCommand(t *testing.T) {
	e := NewEngine(0, zaptest.NewLogger(t))
	defer e.Close()

	var sent []string
	e.Send = func(cmd string) error {
		sent = append(sent, cmd)
		return nil
	}

	path := writeTriggerFile(t, `
nav.on("You are hungry", function(entry, captures)
  nav.send("eat bread")
end)
`)
	require.NoError(t, e.LoadFile(path))
	require.Equal(t, 1, e.TriggerCount())

	e.Dispatch(events.Entry{ID: "e1", Kind: "room_message", Summary: "You are hungry."})
	e.Dispatch(events.Entry{ID: "e2", Kind: "chat", Summary: `Seer says, "hi"`})

	assert.Equal(t, []string{"eat bread"}, sent)
}

func TestEngineCapturesAndEntryFields(t *testing.T) {
	e := NewEngine(0, zaptest.NewLogger(t))
	defer e.Close()

	var notes []string
	e.Note = func(text string) { notes = append(notes, text) }

	path := writeTriggerFile(t, `
nav.on("(\\w+) says, \"(.+)\"", function(entry, captures)
  nav.note(captures[1] .. " said " .. captures[2] .. " in " .. entry.room)
end)
`)
	require.NoError(t, e.LoadFile(path))

	e.Dispatch(events.Entry{
		ID:      "e1",
		Kind:    "chat",
		Room:    "clearing",
		Summary: `Seer says, "hello"`,
	})

	require.Len(t, notes, 1)
	assert.Equal(t, "Seer said hello in clearing", notes[0])
}

func TestEngineHideCurrentEntry(t *testing.T) {
	e := NewEngine(0, zaptest.NewLogger(t))
	defer e.Close()

	var hidden []string
	e.Hide = func(id string) bool {
		hidden = append(hidden, id)
		return true
	}

	path := writeTriggerFile(t, `
nav.on("pings you", function(entry, captures)
  nav.hide()
end)
`)
	require.NoError(t, e.LoadFile(path))

	e.Dispatch(events.Entry{ID: "noise-1", Kind: "room_message", Summary: "The tower pings you."})

	assert.Equal(t, []string{"noise-1"}, hidden)
}

func TestEngineRunawayTriggerIsCutOff(t *testing.T) {
	e := NewEngine(5_000, zaptest.NewLogger(t))
	defer e.Close()

	path := writeTriggerFile(t, `
nav.on("spin", function(entry, captures)
  while true do end
end)
nav.on("spin", function(entry, captures)
  nav.note("still alive")
end)
`)
	require.NoError(t, e.LoadFile(path))

	var notes []string
	e.Note = func(text string) { notes = append(notes, text) }

	// The infinite loop is cancelled at the opcode limit; the next trigger
	// still runs with a fresh budget.
	e.Dispatch(events.Entry{ID: "e1", Summary: "spin"})
	assert.Equal(t, []string{"still alive"}, notes)
}

func TestEngineMissingFileIsEmpty(t *testing.T) {
	e := NewEngine(0, zaptest.NewLogger(t))
	defer e.Close()

	require.NoError(t, e.LoadFile(filepath.Join(t.TempDir(), "absent.lua")))
	require.NoError(t, e.LoadFile(""))
	assert.Zero(t, e.TriggerCount())

	// Dispatch with no VM is a no-op.
	e.Dispatch(events.Entry{Summary: "anything"})
}

func TestSandboxStripsDangerousGlobals(t *testing.T) {
	L, cancel := NewSandboxedState(0)
	defer cancel()
	defer L.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, "nil", L.GetGlobal(name).Type().String(), name)
	}
}
