// Package ui renders the Navigator's two front ends: a full-screen terminal
// interface and a plain scrolling console for dumb terminals and logs.
package ui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// DefaultWidth is the wrap width for the plain console.
const DefaultWidth = 80

// Wrap word-wraps text to the given width, preserving ANSI escape sequences.
// Non-positive widths fall back to DefaultWidth.
func Wrap(text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	return wordwrap.String(text, width)
}

// Capitalize returns s with its first character uppercased.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
