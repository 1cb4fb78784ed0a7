package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mistvale/navigator/internal/events"
	"github.com/mistvale/navigator/internal/world"
)

// fakeConn records written frames and feeds ReadMessage from a channel.
type fakeConn struct {
	mu       sync.Mutex
	frames   []commandFrame
	inbound  chan []byte
	writeErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 8)}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-c.inbound
	if !ok {
		return 0, nil, websocket.ErrCloseSent
	}
	return websocket.TextMessage, data, nil
}

func (c *fakeConn) WriteJSON(v any) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	frame, ok := v.(commandFrame)
	if !ok {
		panic("unexpected outbound type")
	}
	c.mu.Lock()
	c.frames = append(c.frames, frame)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) sent() []commandFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]commandFrame, len(c.frames))
	copy(out, c.frames)
	return out
}

func newTestManager(t *testing.T) (*Manager, *events.Log) {
	t.Helper()
	log := events.NewLog()
	store := world.NewStore()
	logger := zaptest.NewLogger(t)
	auth := NewAuthClient("http://unused", time.Second, logger)
	loader := world.NewLoader("http://unused", "en-US", time.Second, logger)
	return NewManager(auth, loader, store, log, "ws://unused", logger), log
}

// connect wires a fake connection in as if StartSession had succeeded.
func connect(m *Manager, t *testing.T) *fakeConn {
	t.Helper()
	conn := newFakeConn()
	m.mu.Lock()
	m.conn = conn
	m.record = Record{Token: "tok", PlayerID: "hero", RoomID: "7"}
	m.norm = events.NewNormalizer(m.log, m.store, "hero", zaptest.NewLogger(t))
	m.setStatusLocked(StatusConnected)
	m.mu.Unlock()
	return conn
}

func TestSendCommandWhitespaceIsNoOp(t *testing.T) {
	m, log := newTestManager(t)
	conn := connect(m, t)

	require.NoError(t, m.SendCommand("", SendOptions{}))
	require.NoError(t, m.SendCommand("   \t  ", SendOptions{}))

	assert.Empty(t, conn.sent())
	assert.Zero(t, log.Len())
}

func TestSendCommandWhileDisconnected(t *testing.T) {
	m, log := newTestManager(t)

	require.NoError(t, m.SendCommand("look", SendOptions{}))

	entries := log.Entries()
	require.Len(t, entries, 1, "exactly one local error entry")
	assert.Equal(t, events.KindLocalError, entries[0].Kind)
	assert.Equal(t, NotConnectedSummary, entries[0].Summary)
}

func TestSendCommandEchoAndEnvelope(t *testing.T) {
	m, log := newTestManager(t)
	conn := connect(m, t)

	require.NoError(t, m.SendCommand("  look around  ", SendOptions{}))

	frames := conn.sent()
	require.Len(t, frames, 1)
	assert.Equal(t, "command", frames[0].Type)
	assert.Equal(t, "look around", frames[0].Command)
	require.NotNil(t, frames[0].Meta)
	assert.True(t, frames[0].Meta.Echo)
	assert.False(t, frames[0].Meta.Silent)

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, events.KindCommandEcho, entries[0].Kind)
	assert.Equal(t, "> look around", entries[0].Summary)
}

func TestSendCommandSilentPolling(t *testing.T) {
	m, log := newTestManager(t)
	conn := connect(m, t)

	require.NoError(t, m.SendCommand("status", SendOptions{SuppressEcho: true, Silent: true}))

	frames := conn.sent()
	require.Len(t, frames, 1)
	assert.False(t, frames[0].Meta.Echo)
	assert.True(t, frames[0].Meta.Silent)
	assert.Zero(t, log.Len(), "silent polls never echo")
}

func TestSendMove(t *testing.T) {
	m, log := newTestManager(t)
	conn := connect(m, t)

	require.NoError(t, m.SendMove("north"))

	frames := conn.sent()
	require.Len(t, frames, 1)
	assert.Equal(t, "command", frames[0].Type)
	assert.Equal(t, "move", frames[0].Command)
	assert.Equal(t, map[string]string{"direction": "north"}, frames[0].Args)
	assert.Zero(t, log.Len())
}

func TestSendMoveWhileDisconnected(t *testing.T) {
	m, log := newTestManager(t)

	require.NoError(t, m.SendMove("north"))

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, events.KindLocalError, entries[0].Kind)
}

func TestReadPumpDisconnectTransition(t *testing.T) {
	m, _ := newTestManager(t)
	conn := connect(m, t)

	done := make(chan struct{})
	go func() {
		m.readPump(conn, m.norm)
		close(done)
	}()

	close(conn.inbound)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("read pump did not exit on close")
	}
	assert.Equal(t, StatusDisconnected, m.Status())
}

func TestReadPumpDeliversInArrivalOrder(t *testing.T) {
	m, log := newTestManager(t)
	conn := connect(m, t)

	conn.inbound <- []byte(`{"type":"room_broadcast","payload":{"event":"chat","speaker":"Seer","text":"one"}}`)
	conn.inbound <- []byte(`{"type":"room_broadcast","payload":{"event":"chat","speaker":"Seer","text":"two"}}`)
	close(conn.inbound)

	m.readPump(conn, m.norm)

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, `Seer says, "one"`, entries[0].Summary)
	assert.Equal(t, `Seer says, "two"`, entries[1].Summary)
}

func catalogMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/session", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Record{Token: "tok-abc", PlayerID: "hero", RoomID: "7"})
	})
	mux.HandleFunc("/world/locations", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]world.Location{{ID: "7", Brief: "A misty clearing"}})
	})
	mux.HandleFunc("/objects", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]world.Object{})
	})
	mux.HandleFunc("/commands", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]world.Command{{Verb: "look"}})
	})
	mux.HandleFunc("/i18n/en-US/messages", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(world.MessageCatalog{"loc.clearing": "...A misty clearing"})
	})
	return mux
}

func TestStartSessionEndToEnd(t *testing.T) {
	upgrader := websocket.Upgrader{}
	mux := catalogMux(t)
	mux.HandleFunc("/rooms/7", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "tok-abc", r.URL.Query().Get("token"))

		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer ws.Close()

		welcome := `{"type":"room_welcome","room":"7"}`
		require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(welcome)))
		desc := `{"type":"command_response","room":"7","payload":` +
			`{"event":"location_description","location":"7","message_key":"loc.clearing"}}`
		require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(desc)))

		// Hold the connection open until the client walks away.
		ws.ReadMessage()
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	wsBase := "ws" + strings.TrimPrefix(srv.URL, "http")

	logger := zaptest.NewLogger(t)
	log := events.NewLog()
	store := world.NewStore()
	auth := NewAuthClient(srv.URL, 5*time.Second, logger)
	loader := world.NewLoader(srv.URL, "en-US", 5*time.Second, logger)
	m := NewManager(auth, loader, store, log, wsBase, logger)
	defer m.Close()

	require.NoError(t, m.StartSession(context.Background(), "hero", "7"))
	assert.Equal(t, StatusConnected, m.Status())
	assert.Equal(t, "hero", m.Session().PlayerID)

	require.Eventually(t, func() bool { return log.Len() >= 1 }, 2*time.Second, 10*time.Millisecond)

	entries := log.Entries()
	require.Len(t, entries, 1, "welcome is not rendered, only the description")
	assert.Equal(t, "...A misty clearing", entries[0].Summary)
	for _, line := range entries[0].ExtraLines {
		assert.NotContains(t, line, "here.", "no occupant line without occupants")
	}
	assert.Equal(t, "7", m.Room())
}

func TestStartSessionAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	logger := zaptest.NewLogger(t)
	log := events.NewLog()
	store := world.NewStore()
	auth := NewAuthClient(srv.URL, time.Second, logger)
	loader := world.NewLoader(srv.URL, "en-US", time.Second, logger)
	m := NewManager(auth, loader, store, log, "ws://unused", logger)

	err := m.StartSession(context.Background(), "hero", "7")
	var reqErr *world.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, StatusError, m.Status())
}

func TestStartSessionClearsPriorLog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	logger := zaptest.NewLogger(t)
	log := events.NewLog()
	log.Append(events.Entry{Summary: "stale line from last session"})
	store := world.NewStore()
	auth := NewAuthClient(srv.URL, time.Second, logger)
	loader := world.NewLoader(srv.URL, "en-US", time.Second, logger)
	m := NewManager(auth, loader, store, log, "ws://unused", logger)

	m.StartSession(context.Background(), "hero", "7")

	assert.Zero(t, log.Len())
}
