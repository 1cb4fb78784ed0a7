package ui

import "strings"

// directionAliases maps input shorthands to canonical compass directions.
var directionAliases = map[string]string{
	"n": "north", "north": "north",
	"s": "south", "south": "south",
	"e": "east", "east": "east",
	"w": "west", "west": "west",
	"u": "up", "up": "up",
	"d": "down", "down": "down",
}

// AdminRequest is a parsed /admin line. Field and Value are empty for a
// plain record fetch.
type AdminRequest struct {
	PlayerID string
	Field    string
	Value    string
}

// Action is the dispatch decision for one input line.
type Action struct {
	// Quit exits the client.
	Quit bool
	// Move carries a compass direction for a structured movement command.
	Move string
	// Admin carries an administrative read or edit.
	Admin *AdminRequest
	// Command is the raw command to transmit; empty if the line was handled
	// locally or blank.
	Command string
}

// aliasExpander rewrites an input line, reporting whether it matched.
type aliasExpander interface {
	Expand(input string) (string, bool)
}

// ParseInput turns an input line into a dispatch decision. Aliases expand
// first, then bare direction words become structured moves; "/quit" exits.
func ParseInput(aliases aliasExpander, line string) Action {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Action{}
	}

	if aliases != nil {
		if expanded, ok := aliases.Expand(trimmed); ok {
			trimmed = expanded
		}
	}

	switch strings.ToLower(trimmed) {
	case "/quit", "/exit":
		return Action{Quit: true}
	}

	fields := strings.Fields(trimmed)
	if len(fields) > 0 && strings.EqualFold(fields[0], "/admin") {
		switch len(fields) {
		case 2:
			return Action{Admin: &AdminRequest{PlayerID: fields[1]}}
		case 4:
			return Action{Admin: &AdminRequest{
				PlayerID: fields[1],
				Field:    strings.ToLower(fields[2]),
				Value:    fields[3],
			}}
		}
		// Malformed /admin lines fall through as ordinary commands so the
		// server's error shows up in the transcript.
	}
	if len(fields) == 1 {
		if dir, ok := directionAliases[strings.ToLower(fields[0])]; ok {
			return Action{Move: dir}
		}
	}
	if len(fields) == 2 && strings.EqualFold(fields[0], "move") {
		if dir, ok := directionAliases[strings.ToLower(fields[1])]; ok {
			return Action{Move: dir}
		}
	}

	return Action{Command: trimmed}
}
