// Package events converts the raw realtime stream from the game server into
// the activity log entries and room state the Navigator renders. Inbound
// payloads are decoded into an explicit closed set of variants before any
// handling happens, so a mismatched field name fails loudly in one place
// instead of silently probing properties.
package events

import (
	"encoding/json"
	"fmt"
)

// Frame type tags for the realtime channel envelope.
const (
	FrameRoomWelcome     = "room_welcome"
	FrameRoomChange      = "room_change"
	FrameRoomBroadcast   = "room_broadcast"
	FrameCommandResponse = "command_response"
	FrameCommandError    = "command_error"
)

// Frame is the envelope of every inbound realtime message.
type Frame struct {
	Type    string          `json:"type"`
	Room    string          `json:"room,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is one decoded payload variant. The set of implementations is closed;
// payloads with an unrecognized discriminator decode to Unknown.
type Event interface {
	eventKind() string
}

// Chat is a spoken line broadcast to the room.
type Chat struct {
	Speaker string
	Text    string
}

// PlayerEnter announces another player entering the room.
type PlayerEnter struct {
	Name string
}

// PlayerExit announces another player leaving the room.
type PlayerExit struct {
	Name string
}

// RoomMessage is narrative text, inline or referenced by message key.
type RoomMessage struct {
	Text       string
	MessageKey string
}

// RoomOccupants is an authoritative snapshot of everyone in the room.
type RoomOccupants struct {
	Names []string
}

// LocationDescription carries the full description of a location, usually by
// message key against the loaded catalog.
type LocationDescription struct {
	Location   string
	MessageKey string
	Text       string
}

// LocationUpdate moves the player to a new location without narrative text.
type LocationUpdate struct {
	Location string
}

// InventoryItem is one carried item in canonical form.
type InventoryItem struct {
	Name string `json:"name"`
}

// Inventory lists the player's carried items.
type Inventory struct {
	Items []InventoryItem
}

// RoomObjects patches the ground-object list of a location.
type RoomObjects struct {
	Location string
	Objects  []string
}

// PickupResult acknowledges a pickup; the inventory event carries the change.
type PickupResult struct {
	Object string
	OK     bool
}

// Unimplemented reports a verb the server knows but has not built yet.
type Unimplemented struct {
	Verb string
}

// Ack is a bare command acknowledgment: a verb with no event discriminator.
type Ack struct {
	Verb string
}

// Unknown wraps any payload whose discriminator is not in the closed set.
type Unknown struct {
	Event string
	Raw   json.RawMessage
}

func (Chat) eventKind() string                { return "chat" }
func (PlayerEnter) eventKind() string         { return "player_enter" }
func (PlayerExit) eventKind() string          { return "player_exit" }
func (RoomMessage) eventKind() string         { return "room_message" }
func (RoomOccupants) eventKind() string       { return "room_occupants" }
func (LocationDescription) eventKind() string { return "location_description" }
func (LocationUpdate) eventKind() string      { return "location_update" }
func (Inventory) eventKind() string           { return "inventory" }
func (RoomObjects) eventKind() string         { return "room_objects" }
func (PickupResult) eventKind() string        { return "pickup_result" }
func (Unimplemented) eventKind() string       { return "unimplemented" }
func (Ack) eventKind() string                 { return "ack" }
func (Unknown) eventKind() string             { return "unknown" }

// payloadEnvelope is the superset of wire fields across all payload variants.
// DecodePayload narrows it into exactly one Event.
type payloadEnvelope struct {
	Event      string          `json:"event"`
	Verb       string          `json:"verb"`
	Speaker    string          `json:"speaker"`
	Player     string          `json:"player"`
	Text       string          `json:"text"`
	MessageKey string          `json:"message_key"`
	Occupants  []string        `json:"occupants"`
	Location   string          `json:"location"`
	Objects    []string        `json:"objects"`
	Items      json.RawMessage `json:"items"`
	Object     string          `json:"object"`
	OK         bool            `json:"ok"`
}

// DecodePayload decodes a raw payload into its Event variant.
//
// Postcondition: Returns a non-nil Event, or an error if raw is not a JSON
// object.
func DecodePayload(raw json.RawMessage) (Event, error) {
	var env payloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	switch env.Event {
	case "":
		if env.Verb != "" {
			return Ack{Verb: env.Verb}, nil
		}
		return Unknown{Raw: raw}, nil
	case "chat":
		return Chat{Speaker: env.Speaker, Text: env.Text}, nil
	case "player_enter":
		return PlayerEnter{Name: env.Player}, nil
	case "player_exit":
		return PlayerExit{Name: env.Player}, nil
	case "room_message":
		return RoomMessage{Text: env.Text, MessageKey: env.MessageKey}, nil
	case "room_occupants":
		return RoomOccupants{Names: env.Occupants}, nil
	case "location_description":
		return LocationDescription{Location: env.Location, MessageKey: env.MessageKey, Text: env.Text}, nil
	case "location_update":
		return LocationUpdate{Location: env.Location}, nil
	case "inventory":
		items, err := decodeItems(env.Items)
		if err != nil {
			return nil, err
		}
		return Inventory{Items: items}, nil
	case "room_objects":
		return RoomObjects{Location: env.Location, Objects: env.Objects}, nil
	case "pickup_result":
		return PickupResult{Object: env.Object, OK: env.OK}, nil
	case "unimplemented":
		return Unimplemented{Verb: env.Verb}, nil
	default:
		return Unknown{Event: env.Event, Raw: raw}, nil
	}
}

// decodeItems accepts either a flat list of names or structured item records.
func decodeItems(raw json.RawMessage) ([]InventoryItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		items := make([]InventoryItem, 0, len(names))
		for _, n := range names {
			items = append(items, InventoryItem{Name: n})
		}
		return items, nil
	}

	var records []struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decoding inventory items: %w", err)
	}
	items := make([]InventoryItem, 0, len(records))
	for _, r := range records {
		name := r.DisplayName
		if name == "" {
			name = r.Name
		}
		items = append(items, InventoryItem{Name: name})
	}
	return items, nil
}
