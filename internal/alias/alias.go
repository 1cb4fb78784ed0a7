// Package alias expands user-defined command shorthands loaded from a YAML
// file. Expansion happens before a command leaves the input line; the server
// only ever sees the expanded text.
package alias

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Alias is one shorthand definition. The expansion may reference positional
// arguments as $1..$9 and the full argument tail as $*.
type Alias struct {
	Name      string `yaml:"name"`
	Expansion string `yaml:"expansion"`
	Help      string `yaml:"help,omitempty"`
}

type catalogFile struct {
	Aliases []Alias `yaml:"aliases"`
}

// Catalog holds the loaded alias definitions, keyed case-insensitively.
type Catalog struct {
	aliases map[string]Alias
}

// Parse decodes a YAML alias catalog. Duplicate names fail loudly rather
// than silently shadowing.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing alias catalog: %w", err)
	}

	catalog := &Catalog{aliases: make(map[string]Alias, len(file.Aliases))}
	for _, a := range file.Aliases {
		name := strings.ToLower(strings.TrimSpace(a.Name))
		if name == "" {
			return nil, fmt.Errorf("parsing alias catalog: alias with empty name")
		}
		if _, dup := catalog.aliases[name]; dup {
			return nil, fmt.Errorf("parsing alias catalog: duplicate alias %q", name)
		}
		catalog.aliases[name] = a
	}
	return catalog, nil
}

// LoadFile reads and parses a YAML alias catalog from disk. A missing file is
// not an error; it yields an empty catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return &Catalog{aliases: map[string]Alias{}}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Catalog{aliases: map[string]Alias{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading alias catalog: %w", err)
	}
	return Parse(data)
}

// Len returns the number of loaded aliases.
func (c *Catalog) Len() int {
	return len(c.aliases)
}

// Names returns the defined alias names, unordered.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.aliases))
	for name := range c.aliases {
		out = append(out, name)
	}
	return out
}

// Expand rewrites the input line if its first word names an alias. Reports
// whether an expansion happened. Input that matches no alias is returned
// unchanged.
func (c *Catalog) Expand(input string) (string, bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return input, false
	}

	a, ok := c.aliases[strings.ToLower(fields[0])]
	if !ok {
		return input, false
	}
	args := fields[1:]

	expanded, used := substitute(a.Expansion, args)
	if !used && len(args) > 0 {
		// Expansions without placeholders get the argument tail appended.
		expanded = expanded + " " + strings.Join(args, " ")
	}
	return strings.TrimSpace(expanded), true
}

// substitute replaces $1..$9 and $* in the expansion. Reports whether any
// placeholder was present. Out-of-range positions expand to nothing.
func substitute(expansion string, args []string) (string, bool) {
	var b strings.Builder
	used := false

	for i := 0; i < len(expansion); i++ {
		ch := expansion[i]
		if ch != '$' || i+1 >= len(expansion) {
			b.WriteByte(ch)
			continue
		}

		next := expansion[i+1]
		switch {
		case next == '*':
			b.WriteString(strings.Join(args, " "))
			used = true
			i++
		case next >= '1' && next <= '9':
			pos, _ := strconv.Atoi(string(next))
			if pos <= len(args) {
				b.WriteString(args[pos-1])
			}
			used = true
			i++
		case next == '$':
			// "$$" is a literal dollar sign.
			b.WriteByte('$')
			i++
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), used
}
