package hud

import (
	"sync"

	"github.com/mistvale/navigator/internal/events"
)

// Card identifies one status sidebar panel.
type Card string

const (
	CardVitals      Card = "vitals"
	CardDescription Card = "description"
	CardInventory   Card = "inventory"
	CardSpellbook   Card = "spellbook"
	CardEffects     Card = "effects"
)

// RefreshCommand returns the verb that refreshes the card's data, or "" for
// cards with no polling command.
func (c Card) RefreshCommand() string {
	switch c {
	case CardVitals:
		return "status"
	case CardDescription:
		return "look"
	case CardInventory:
		return "inventory"
	case CardSpellbook:
		return "spellbook"
	case CardEffects:
		return "effects"
	default:
		return ""
	}
}

// Status is the assembled sidebar state.
type Status struct {
	Hitpoints   *Points
	SpellPoints *Points
	Description string
	Inventory   []string
	Spellbook   []string
	Effects     []string
}

// Model accumulates partial updates into the sidebar state. A card becomes
// visible the first time any entry contributes to its field and stays
// visible afterwards.
type Model struct {
	mu          sync.RWMutex
	status      Status
	visible     map[Card]bool
	subscribers []chan struct{}
}

// NewModel creates an empty Model with no visible cards.
func NewModel() *Model {
	return &Model{visible: make(map[Card]bool)}
}

// ApplyEntry extracts a partial update from the entry and merges it in.
// Reports whether anything changed.
func (m *Model) ApplyEntry(entry events.Entry) bool {
	update := Extract(entry)
	if update.Empty() {
		return false
	}

	m.mu.Lock()
	if update.Hitpoints != nil {
		m.status.Hitpoints = update.Hitpoints
		m.visible[CardVitals] = true
	}
	if update.SpellPoints != nil {
		m.status.SpellPoints = update.SpellPoints
		m.visible[CardVitals] = true
	}
	if update.Description != nil {
		m.status.Description = *update.Description
		m.visible[CardDescription] = true
	}
	if update.Inventory != nil {
		m.status.Inventory = update.Inventory
		m.visible[CardInventory] = true
	}
	if update.Spellbook != nil {
		m.status.Spellbook = update.Spellbook
		m.visible[CardSpellbook] = true
	}
	if update.Effects != nil {
		m.status.Effects = update.Effects
		m.visible[CardEffects] = true
	}
	m.mu.Unlock()

	m.notify()
	return true
}

// Snapshot returns a copy of the current sidebar state.
func (m *Model) Snapshot() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Visible reports whether the card has received data yet.
func (m *Model) Visible(card Card) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visible[card]
}

// Subscribe returns a channel signalled after each change. The buffer is one;
// notifications coalesce.
func (m *Model) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()
	return ch
}

func (m *Model) notify() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
