package events

import (
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mistvale/navigator/internal/world"
)

// ApologySentence is rendered for verbs the server knows but has not built.
const ApologySentence = "Sorry, that hasn't been implemented yet."

// Normalizer converts inbound frames into activity entries and room state.
// It is the sole owner of the occupant set and the current room id; frames
// are handled one at a time in arrival order.
type Normalizer struct {
	mu        sync.RWMutex
	log       *Log
	store     *world.Store
	occupants *Occupants
	room      string
	landing   string
	logger    *zap.Logger
}

// NewNormalizer creates a Normalizer for the given player.
//
// Precondition: log, store, and logger must be non-nil; self is the acting
// player's name.
func NewNormalizer(log *Log, store *world.Store, self string, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		log:       log,
		store:     store,
		occupants: NewOccupants(self),
		landing:   DefaultLanding,
		logger:    logger,
	}
}

// Room returns the current room id.
func (n *Normalizer) Room() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.room
}

// OccupantNames returns the display names of the other players present.
func (n *Normalizer) OccupantNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.occupants.Names()
}

// HandleRaw parses one wire message and handles it. Unparseable data is
// logged as a parse_error entry; JSON that is not an object is ignored.
func (n *Normalizer) HandleRaw(data []byte) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return
	}
	if trimmed[0] != '{' {
		// Non-object messages are silently dropped.
		return
	}

	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		n.logger.Debug("unparseable realtime message", zap.Error(err))
		n.log.Append(Entry{
			Kind:    KindParseError,
			Summary: "Received an unreadable message from the server.",
			Raw:     json.RawMessage(data),
		})
		return
	}
	n.Handle(frame)
}

// Handle dispatches one decoded frame.
func (n *Normalizer) Handle(frame Frame) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch frame.Type {
	case FrameRoomWelcome, FrameRoomChange:
		n.room = frame.Room
		n.occupants.Reset()

	case FrameRoomBroadcast:
		n.handleBroadcast(frame)

	case FrameCommandResponse:
		n.handleCommandResponse(frame)

	case FrameCommandError:
		n.handleCommandError(frame)

	default:
		n.logger.Debug("ignoring unknown frame type", zap.String("type", frame.Type))
	}
}

func (n *Normalizer) handleBroadcast(frame Frame) {
	ev, err := DecodePayload(frame.Payload)
	if err != nil {
		n.appendParseError(frame, err)
		return
	}

	switch e := ev.(type) {
	case Chat:
		n.append(Entry{
			Kind:    "chat",
			Room:    frame.Room,
			Summary: e.Speaker + ` says, "` + e.Text + `"`,
			Raw:     frame.Payload,
		})

	case PlayerEnter:
		// The narrative line arrives as a separate room_message; only the
		// occupant set changes here.
		n.occupants.Add(e.Name)

	case PlayerExit:
		n.occupants.Remove(e.Name)

	case RoomMessage:
		n.append(Entry{
			Kind:    "room_message",
			Room:    frame.Room,
			Summary: n.resolveMessage(e, frame.Payload),
			Raw:     frame.Payload,
		})

	default:
		n.appendVerbatim(frame, ev)
	}
}

func (n *Normalizer) handleCommandResponse(frame Frame) {
	ev, err := DecodePayload(frame.Payload)
	if err != nil {
		n.appendParseError(frame, err)
		return
	}

	// A move acknowledgment is never rendered regardless of its shape; the
	// room_change and location events that follow carry the visible text.
	if isMoveAck(frame.Payload) {
		return
	}

	switch e := ev.(type) {
	case Ack:
		// Bare acknowledgment: suppressed.

	case RoomMessage:
		n.append(Entry{
			Kind:    "room_message",
			Room:    frame.Room,
			Summary: n.resolveMessage(e, frame.Payload),
			Raw:     frame.Payload,
		})

	case RoomOccupants:
		n.occupants.ReplaceAll(e.Names)
		summary := OccupantSentence(n.occupants.Names())
		if summary == "" {
			summary = NoOneElseSentence
		}
		n.append(Entry{
			Kind:    "room_occupants",
			Room:    frame.Room,
			Summary: summary,
			Raw:     frame.Payload,
		})

	case LocationDescription:
		n.appendLocationDescription(frame, e)

	case LocationUpdate:
		// Not rendered; the following location_description carries the text.
		n.room = e.Location

	case Inventory:
		names := make([]string, 0, len(e.Items))
		for _, item := range e.Items {
			names = append(names, item.Name)
		}
		summary := "You aren't carrying anything."
		if len(names) > 0 {
			summary = "You are carrying " + JoinAnd(names) + "."
		}
		n.append(Entry{
			Kind:    "inventory",
			Room:    frame.Room,
			Summary: summary,
			Raw:     frame.Payload,
			Items:   names,
		})

	case RoomObjects:
		location := e.Location
		if location == "" {
			location = n.room
		}
		if !n.store.PatchLocationObjects(location, e.Objects) {
			n.logger.Debug("ground patch for unknown location",
				zap.String("location", location),
			)
		}

	case PickupResult:
		// The accompanying inventory event already reflects the change.

	case Unimplemented:
		n.append(Entry{
			Kind:    "unimplemented",
			Room:    frame.Room,
			Summary: ApologySentence,
			Raw:     frame.Payload,
		})

	default:
		n.appendVerbatim(frame, ev)
	}
}

type commandErrorPayload struct {
	MessageKey string `json:"message_key"`
	Detail     string `json:"detail"`
}

func (n *Normalizer) handleCommandError(frame Frame) {
	var p commandErrorPayload
	if err := json.Unmarshal(frame.Payload, &p); err != nil {
		n.appendParseError(frame, err)
		return
	}

	summary := p.Detail
	if p.MessageKey != "" {
		if text, ok := n.store.Snapshot().Message(p.MessageKey); ok {
			summary = text
		}
	}
	n.append(Entry{
		Kind:    FrameCommandError,
		Room:    frame.Room,
		Summary: summary,
		Raw:     frame.Payload,
	})
}

// appendLocationDescription resolves the description text and attaches the
// two synthesized extra lines: ground objects and occupants.
func (n *Normalizer) appendLocationDescription(frame Frame, e LocationDescription) {
	data := n.store.Snapshot()

	text := e.Text
	if text == "" && e.MessageKey != "" {
		if resolved, ok := data.Message(e.MessageKey); ok {
			text = resolved
		}
	}
	if text == "" {
		text = string(frame.Payload)
	}

	location := e.Location
	if location == "" {
		location = n.room
	}

	var extra []string
	if data != nil {
		if loc, ok := data.Location(location); ok {
			extra = append(extra, GroundSentence(GroundObjectNames(data, loc.Objects), n.landing))
		}
	}
	if sentence := OccupantSentence(n.occupants.Names()); sentence != "" {
		extra = append(extra, sentence)
	}

	n.append(Entry{
		Kind:       "location_description",
		Room:       location,
		Summary:    text,
		Raw:        frame.Payload,
		ExtraLines: extra,
	})
}

// resolveMessage picks display text for a room_message: inline text first,
// then the catalog entry for the message key, then the raw payload.
func (n *Normalizer) resolveMessage(e RoomMessage, raw json.RawMessage) string {
	if e.Text != "" {
		return e.Text
	}
	if e.MessageKey != "" {
		if text, ok := n.store.Snapshot().Message(e.MessageKey); ok {
			return text
		}
	}
	return string(raw)
}

func (n *Normalizer) appendVerbatim(frame Frame, ev Event) {
	summary := ev.eventKind()
	if u, ok := ev.(Unknown); ok && u.Event != "" {
		summary = u.Event
	}
	n.append(Entry{
		Kind:    summary,
		Room:    frame.Room,
		Summary: summary,
		Raw:     frame.Payload,
	})
}

func (n *Normalizer) appendParseError(frame Frame, err error) {
	n.logger.Debug("malformed payload",
		zap.String("frame_type", frame.Type),
		zap.Error(err),
	)
	n.log.Append(Entry{
		Kind:    KindParseError,
		Room:    frame.Room,
		Summary: "Received an unreadable message from the server.",
		Raw:     frame.Payload,
	})
}

func (n *Normalizer) append(e Entry) {
	n.log.Append(e)
}

// isMoveAck reports whether the payload names the move verb.
func isMoveAck(raw json.RawMessage) bool {
	var probe struct {
		Verb string `json:"verb"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.Verb == "move"
}
