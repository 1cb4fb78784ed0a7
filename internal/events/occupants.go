package events

import "strings"

// Occupants tracks the other players believed present in the active room.
// The acting player's own name never appears in the set, regardless of the
// case or whitespace the server sends it with.
type Occupants struct {
	self  string
	order []string          // display names, insertion order
	seen  map[string]string // normalized name -> display name
}

// NewOccupants creates an empty set that excludes the given player name.
func NewOccupants(self string) *Occupants {
	return &Occupants{
		self: normalizeName(self),
		seen: make(map[string]string),
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Add inserts a player name. Reports whether the set changed; the acting
// player's own name and duplicates are rejected.
func (o *Occupants) Add(name string) bool {
	norm := normalizeName(name)
	if norm == "" || norm == o.self {
		return false
	}
	if _, ok := o.seen[norm]; ok {
		return false
	}
	o.seen[norm] = strings.TrimSpace(name)
	o.order = append(o.order, norm)
	return true
}

// Remove deletes a player name. Reports whether it was present.
func (o *Occupants) Remove(name string) bool {
	norm := normalizeName(name)
	if _, ok := o.seen[norm]; !ok {
		return false
	}
	delete(o.seen, norm)
	for i, n := range o.order {
		if n == norm {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	return true
}

// ReplaceAll resets the set to the given list, deduplicated and with the
// acting player excluded.
func (o *Occupants) ReplaceAll(names []string) {
	o.Reset()
	for _, n := range names {
		o.Add(n)
	}
}

// Reset empties the set. Called on every room change; the server follows up
// with an occupant snapshot or enter events.
func (o *Occupants) Reset() {
	o.order = o.order[:0]
	o.seen = make(map[string]string)
}

// Names returns the display names in insertion order.
func (o *Occupants) Names() []string {
	out := make([]string, 0, len(o.order))
	for _, norm := range o.order {
		out = append(out, o.seen[norm])
	}
	return out
}

// Len returns the number of other players in the set.
func (o *Occupants) Len() int {
	return len(o.order)
}
