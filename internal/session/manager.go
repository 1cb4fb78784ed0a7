package session

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mistvale/navigator/internal/events"
	"github.com/mistvale/navigator/internal/world"
)

// Status is the realtime connection state.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// NotConnectedSummary is the local entry appended when a command is attempted
// without a live connection.
const NotConnectedSummary = "Not connected. Start a session first."

// realtimeConn is the subset of the websocket connection the Manager uses.
type realtimeConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// dialFunc opens a realtime connection to the given URL.
type dialFunc func(ctx context.Context, rawURL string) (realtimeConn, error)

func gorillaDial(ctx context.Context, rawURL string) (realtimeConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type commandMeta struct {
	Echo   bool `json:"echo"`
	Silent bool `json:"silent,omitempty"`
}

type commandFrame struct {
	Type    string            `json:"type"`
	Command string            `json:"command"`
	Args    map[string]string `json:"args,omitempty"`
	Meta    *commandMeta      `json:"meta,omitempty"`
}

// SendOptions adjusts how a command is transmitted and echoed.
type SendOptions struct {
	// SuppressEcho skips the local command-echo entry.
	SuppressEcho bool
	// Silent marks the envelope so the server does not broadcast side effects
	// to other occupants. Used by background status polling.
	Silent bool
}

// Manager owns the session lifecycle: auth, world load, and the per-room
// realtime connection. Close/error transitions update status but never
// auto-reconnect; only a new StartSession opens a fresh connection.
type Manager struct {
	auth   *AuthClient
	loader *world.Loader
	store  *world.Store
	log    *events.Log
	wsBase string
	dial   dialFunc
	logger *zap.Logger

	mu          sync.Mutex
	status      Status
	record      Record
	conn        realtimeConn
	norm        *events.Normalizer
	subscribers []chan struct{}
}

// NewManager creates a Manager in the idle state.
//
// Precondition: all arguments must be non-nil; wsBase must be a normalized
// socket base URL (no trailing slash).
func NewManager(auth *AuthClient, loader *world.Loader, store *world.Store, log *events.Log, wsBase string, logger *zap.Logger) *Manager {
	return &Manager{
		auth:   auth,
		loader: loader,
		store:  store,
		log:    log,
		wsBase: wsBase,
		dial:   gorillaDial,
		logger: logger,
		status: StatusIdle,
	}
}

// Status returns the current connection status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Session returns the active session record, zero-valued when idle.
func (m *Manager) Session() Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record
}

// Room returns the current room id, empty before the first welcome frame.
func (m *Manager) Room() string {
	m.mu.Lock()
	norm := m.norm
	m.mu.Unlock()
	if norm == nil {
		return ""
	}
	return norm.Room()
}

// OccupantNames returns the other players in the active room.
func (m *Manager) OccupantNames() []string {
	m.mu.Lock()
	norm := m.norm
	m.mu.Unlock()
	if norm == nil {
		return nil
	}
	return norm.OccupantNames()
}

// Subscribe returns a channel signalled after each status change. The buffer
// is one; notifications coalesce.
func (m *Manager) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()
	return ch
}

// StartSession authenticates the player, loads the world catalogs, and opens
// the room-scoped realtime connection. Any prior connection is closed first
// and the activity log cleared.
func (m *Manager) StartSession(ctx context.Context, playerID, roomID string) error {
	m.mu.Lock()
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.setStatusLocked(StatusConnecting)
	m.mu.Unlock()

	m.log.Clear()

	record, err := m.auth.Create(ctx, playerID, roomID)
	if err != nil {
		m.transition(StatusError)
		return fmt.Errorf("starting session: %w", err)
	}

	data, err := m.loader.Load(ctx)
	if err != nil {
		m.transition(StatusError)
		return fmt.Errorf("starting session: %w", err)
	}
	m.store.Replace(data)

	norm := events.NewNormalizer(m.log, m.store, record.PlayerID, m.logger)

	socketURL := m.wsBase + "/rooms/" + url.PathEscape(record.RoomID) +
		"?token=" + url.QueryEscape(record.Token)
	conn, err := m.dial(ctx, socketURL)
	if err != nil {
		m.transition(StatusError)
		return fmt.Errorf("opening realtime connection: %w", err)
	}

	m.mu.Lock()
	m.record = record
	m.norm = norm
	m.conn = conn
	m.setStatusLocked(StatusConnected)
	m.mu.Unlock()

	m.logger.Info("realtime connection open",
		zap.String("player", record.PlayerID),
		zap.String("room", record.RoomID),
	)

	go m.readPump(conn, norm)
	return nil
}

// readPump delivers inbound messages to the normalizer in arrival order. One
// pump runs per connection; it exits when the connection closes.
func (m *Manager) readPump(conn realtimeConn, norm *events.Normalizer) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			if m.conn == conn {
				m.conn = nil
				m.setStatusLocked(StatusDisconnected)
			}
			m.mu.Unlock()
			m.logger.Info("realtime connection closed", zap.Error(err))
			return
		}
		norm.HandleRaw(data)
	}
}

// SendCommand transmits a command envelope. Empty or whitespace-only input is
// a no-op; without a live connection a single local error entry is appended
// and nothing is sent.
func (m *Manager) SendCommand(text string, opts SendOptions) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	frame := commandFrame{
		Type:    "command",
		Command: trimmed,
		Meta:    &commandMeta{Echo: !opts.SuppressEcho, Silent: opts.Silent},
	}
	return m.transmit(frame, trimmed, opts)
}

// SendMove transmits a structured movement command for the given compass
// direction.
func (m *Manager) SendMove(direction string) error {
	trimmed := strings.TrimSpace(direction)
	if trimmed == "" {
		return nil
	}

	frame := commandFrame{
		Type:    "command",
		Command: "move",
		Args:    map[string]string{"direction": trimmed},
	}
	return m.transmit(frame, "move "+trimmed, SendOptions{SuppressEcho: true})
}

func (m *Manager) transmit(frame commandFrame, echo string, opts SendOptions) error {
	m.mu.Lock()
	conn := m.conn
	connected := m.status == StatusConnected
	m.mu.Unlock()

	if !connected || conn == nil {
		m.log.Append(events.Entry{
			Kind:    events.KindLocalError,
			Summary: NotConnectedSummary,
		})
		return nil
	}

	if !opts.SuppressEcho {
		m.log.Append(events.Entry{
			Kind:    events.KindCommandEcho,
			Summary: "> " + echo,
		})
	}

	if err := conn.WriteJSON(frame); err != nil {
		m.mu.Lock()
		if m.conn == conn {
			m.conn = nil
			m.setStatusLocked(StatusError)
		}
		m.mu.Unlock()
		return fmt.Errorf("sending command: %w", err)
	}
	return nil
}

// Close shuts the realtime connection down and returns to the idle state.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.setStatusLocked(StatusIdle)
	m.mu.Unlock()
}

func (m *Manager) transition(status Status) {
	m.mu.Lock()
	m.setStatusLocked(status)
	m.mu.Unlock()
}

// setStatusLocked updates status and notifies subscribers. Callers hold mu.
func (m *Manager) setStatusLocked(status Status) {
	m.status = status
	for _, ch := range m.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
