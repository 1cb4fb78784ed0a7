package alias

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
aliases:
  - name: l
    expansion: look
  - name: gn
    expansion: move north
    help: go north
  - name: tell
    expansion: say to $1 $*
  - name: give
    expansion: give $2 to $1
`

func TestParseAndExpand(t *testing.T) {
	catalog, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)
	assert.Equal(t, 4, catalog.Len())

	tests := []struct {
		name     string
		input    string
		expected string
		matched  bool
	}{
		{name: "simple", input: "l", expected: "look", matched: true},
		{name: "case insensitive", input: "L", expected: "look", matched: true},
		{name: "tail appended without placeholders", input: "l mirror", expected: "look mirror", matched: true},
		{name: "no placeholders no args", input: "gn", expected: "move north", matched: true},
		{name: "star tail", input: "tell Seer hello there", expected: "say to Seer Seer hello there", matched: true},
		{name: "positional reorder", input: "give Seer sword", expected: "give sword to Seer", matched: true},
		{name: "missing positional", input: "give Seer", expected: "give  to Seer", matched: true},
		{name: "not an alias", input: "look around", expected: "look around", matched: false},
		{name: "empty input", input: "   ", expected: "   ", matched: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, matched := catalog.Expand(tt.input)
			assert.Equal(t, tt.matched, matched)
			if tt.matched {
				assert.Equal(t, tt.expected, out)
			}
		})
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte("aliases:\n  - name: l\n    expansion: look\n  - name: L\n    expansion: leave\n"))
	assert.ErrorContains(t, err, "duplicate alias")
}

func TestParseRejectsEmptyName(t *testing.T) {
	_, err := Parse([]byte("aliases:\n  - name: \"\"\n    expansion: look\n"))
	assert.ErrorContains(t, err, "empty name")
}

func TestLoadFileMissingIsEmpty(t *testing.T) {
	catalog, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Zero(t, catalog.Len())

	catalog, err = LoadFile("")
	require.NoError(t, err)
	assert.Zero(t, catalog.Len())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	catalog, err := LoadFile(path)
	require.NoError(t, err)

	out, matched := catalog.Expand("gn")
	assert.True(t, matched)
	assert.Equal(t, "move north", out)
}

func TestLiteralDollar(t *testing.T) {
	catalog, err := Parse([]byte("aliases:\n  - name: pay\n    expansion: give $$10 to $1\n"))
	require.NoError(t, err)

	out, matched := catalog.Expand("pay Seer")
	require.True(t, matched)
	assert.Equal(t, "give $10 to Seer", out)
}
