// Package hud derives the status sidebar from the activity transcript:
// vitals, location description, inventory, spellbook, and active effects.
package hud

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/mistvale/navigator/internal/events"
)

// Points is a current/maximum pair for a depletable stat.
type Points struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Update is the partial status change one activity entry contributes. Nil
// fields mean "no change".
type Update struct {
	Hitpoints   *Points
	SpellPoints *Points
	Description *string
	Inventory   []string
	Spellbook   []string
	Effects     []string
}

// Empty reports whether the entry contributed nothing to the status panel.
func (u Update) Empty() bool {
	return u.Hitpoints == nil && u.SpellPoints == nil && u.Description == nil &&
		u.Inventory == nil && u.Spellbook == nil && u.Effects == nil
}

// hitpointsPattern matches the legacy free-text vitals line, e.g.
// "Hitpoints: 12/40".
var hitpointsPattern = regexp.MustCompile(`Hitpoints: (\d+)/(\d+)`)

// statusPayload is the superset of structured status fields a payload can
// carry. Pointer fields distinguish absent from zero.
type statusPayload struct {
	Hitpoints   *Points  `json:"hitpoints"`
	SpellPoints *Points  `json:"spell_points"`
	Description *string  `json:"description"`
	Spellbook   []string `json:"spellbook"`
	Effects     []string `json:"effects"`
}

// Extract maps one activity entry to a partial status update. Structured
// payload fields win; the free-text hitpoints scan applies only when the
// structured field is absent.
func Extract(entry events.Entry) Update {
	var update Update

	if len(entry.Raw) > 0 {
		var payload statusPayload
		if err := json.Unmarshal(entry.Raw, &payload); err == nil {
			update.Hitpoints = payload.Hitpoints
			update.SpellPoints = payload.SpellPoints
			update.Description = payload.Description
			update.Spellbook = payload.Spellbook
			update.Effects = payload.Effects
		}
	}

	if entry.Kind == "inventory" && entry.Items != nil {
		update.Inventory = entry.Items
	}

	if entry.Kind == "location_description" && update.Description == nil && entry.Summary != "" {
		desc := entry.Summary
		update.Description = &desc
	}

	if update.Hitpoints == nil {
		if m := hitpointsPattern.FindStringSubmatch(entry.Summary); m != nil {
			current, _ := strconv.Atoi(m[1])
			max, _ := strconv.Atoi(m[2])
			update.Hitpoints = &Points{Current: current, Max: max}
		}
	}

	return update
}
