package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry kinds for locally-synthesized log records. Server-driven entries use
// the frame type or payload discriminator as their kind.
const (
	KindCommandEcho = "command_echo"
	KindLocalError  = "local_error"
	KindParseError  = "parse_error"
)

// Entry is one record in the activity transcript. Entries are never mutated
// after creation except to be marked hidden.
type Entry struct {
	// ID uniquely identifies the entry.
	ID string
	// Kind is the event type tag.
	Kind string
	// Room is the room the event applied to, when known.
	Room string
	// Summary is the human-readable line shown in the console.
	Summary string
	// Raw retains the original payload for replay and HUD extraction.
	Raw json.RawMessage
	// ExtraLines are synthesized lines rendered under the summary.
	ExtraLines []string
	// Items is the canonical inventory list, for inventory entries only.
	Items []string
	// Hidden excludes the entry from rendering without removing it.
	Hidden bool
	// Meta carries optional key/value annotations (e.g. trigger notes).
	Meta map[string]string
	// Time is the local arrival time.
	Time time.Time
}

// Log is the append-only activity transcript. Entries are never reordered or
// pruned; hiding is the only permitted mutation.
type Log struct {
	mu          sync.RWMutex
	entries     []Entry
	subscribers []chan struct{}
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Append adds an entry to the transcript, assigning an id and timestamp if
// unset, and returns the stored entry.
func (l *Log) Append(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	l.notify()
	return e
}

// Hide marks the entry with the given id hidden. Reports whether it was found.
func (l *Log) Hide(id string) bool {
	l.mu.Lock()
	found := false
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Hidden = true
			found = true
			break
		}
	}
	l.mu.Unlock()
	if found {
		l.notify()
	}
	return found
}

// Entries returns a copy of the full transcript, hidden entries included.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Visible returns a copy of the transcript with hidden entries excluded.
func (l *Log) Visible() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries, hidden included.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear discards the transcript. Used only when a new session starts.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
	l.notify()
}

// Subscribe returns a channel signalled after each change. The buffer is one;
// notifications coalesce.
func (l *Log) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	l.mu.Lock()
	l.subscribers = append(l.subscribers, ch)
	l.mu.Unlock()
	return ch
}

// Tail yields each appended entry exactly once, in transcript order. Used by
// consumers that react to entries (status extraction, triggers) rather than
// re-rendering the whole transcript.
type Tail struct {
	log  *Log
	seen map[string]bool
}

// NewTail creates a Tail over the log. Entries already present are yielded by
// the first Next call.
func (l *Log) NewTail() *Tail {
	return &Tail{log: l, seen: make(map[string]bool)}
}

// Next returns the entries appended since the previous call.
func (t *Tail) Next() []Entry {
	var out []Entry
	for _, e := range t.log.Entries() {
		if t.seen[e.ID] {
			continue
		}
		t.seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

func (l *Log) notify() {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, ch := range l.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
