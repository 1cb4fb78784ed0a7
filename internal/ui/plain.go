package ui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mistvale/navigator/internal/events"
)

// PlainConsole streams visible activity entries to a writer as they arrive.
// It renders each entry once, in transcript order, with synthesized extra
// lines indented beneath the summary.
type PlainConsole struct {
	mu       sync.Mutex
	out      io.Writer
	log      *events.Log
	width    int
	rendered map[string]bool
	cancel   context.CancelFunc
}

// NewPlainConsole creates a PlainConsole writing to out.
//
// Precondition: out and log must be non-nil.
func NewPlainConsole(out io.Writer, log *events.Log, width int) *PlainConsole {
	return &PlainConsole{
		out:      out,
		log:      log,
		width:    width,
		rendered: make(map[string]bool),
	}
}

// Start renders until Stop is called. Implements lifecycle.Service.
func (c *PlainConsole) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	changes := c.log.Subscribe()
	c.flush()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			c.flush()
		}
	}
}

// Stop ends rendering.
func (c *PlainConsole) Stop() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
}

// flush writes every visible entry not yet rendered.
func (c *PlainConsole) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.log.Visible() {
		if c.rendered[entry.ID] {
			continue
		}
		c.rendered[entry.ID] = true
		c.writeEntry(entry)
	}
}

func (c *PlainConsole) writeEntry(entry events.Entry) {
	fmt.Fprintln(c.out, Wrap(entry.Summary, c.width))
	for _, line := range entry.ExtraLines {
		fmt.Fprintln(c.out, Wrap("  "+line, c.width))
	}
}
