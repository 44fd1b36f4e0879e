package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banterhub/banter/hub"
	"github.com/banterhub/banter/internal/chat"
	"github.com/banterhub/banter/internal/config"
	"github.com/banterhub/banter/logging"
	"github.com/banterhub/banter/websocket"
)

func startServer(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()

	logger := logging.Discard()
	h := hub.New(logger)
	require.NoError(t, h.Start(context.Background()))
	t.Cleanup(func() { h.Stop() })

	router := chat.NewRouter(config.ChatConfig{}, h, logger)
	server := websocket.NewServer(h, router, logger, websocket.DefaultOptions())

	ts := httptest.NewServer(http.HandlerFunc(server.Serve))
	t.Cleanup(ts.Close)
	return ts, h
}

func dial(t *testing.T, ts *httptest.Server) *ws.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *ws.Conn, eventType chat.EventType, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(chat.Event{Type: eventType, Data: data}))
}

// readUntil skips unrelated frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *ws.Conn, eventType chat.EventType) chat.Event {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))

	for {
		var evt chat.Event
		require.NoError(t, conn.ReadJSON(&evt), "waiting for %s", eventType)
		if evt.Type == eventType {
			return evt
		}
	}
}

func waitForClients(t *testing.T, h *hub.Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(h.GetClients()) == n
	}, 2*time.Second, 10*time.Millisecond)
}

func TestJoinOverWire(t *testing.T) {
	ts, h := startServer(t)

	conn := dial(t, ts)
	waitForClients(t, h, 1)

	send(t, conn, chat.EventJoin, "alice")

	joined := readUntil(t, conn, chat.EventUserJoined)
	var user chat.UserEvent
	require.NoError(t, json.Unmarshal(joined.Data, &user))
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)

	update := readUntil(t, conn, chat.EventUpdateUsers)
	var users []string
	require.NoError(t, json.Unmarshal(update.Data, &users))
	assert.Equal(t, []string{"alice"}, users)
}

func TestRoomMessageOverWire(t *testing.T) {
	ts, h := startServer(t)

	alice := dial(t, ts)
	waitForClients(t, h, 1)
	send(t, alice, chat.EventJoin, "alice")
	readUntil(t, alice, chat.EventUpdateUsers)

	send(t, alice, chat.EventJoinRoom, "general")
	readUntil(t, alice, chat.EventChatHistory)

	send(t, alice, chat.EventSendMessage, chat.SendMessageRequest{Message: "hello", Room: "general"})
	readUntil(t, alice, chat.EventMessage)

	// A second client joins later and gets the history replayed.
	bob := dial(t, ts)
	waitForClients(t, h, 2)
	send(t, bob, chat.EventJoin, "bob")
	readUntil(t, bob, chat.EventUpdateUsers)

	send(t, bob, chat.EventJoinRoom, "general")
	replay := readUntil(t, bob, chat.EventChatHistory)

	var history []chat.Message
	require.NoError(t, json.Unmarshal(replay.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, "alice", history[0].Username)
	assert.Equal(t, "hello", history[0].Body)

	// Alice is told bob arrived.
	notify := readUntil(t, alice, chat.EventUserJoinedRoom)
	var room chat.RoomEvent
	require.NoError(t, json.Unmarshal(notify.Data, &room))
	assert.Equal(t, "bob", room.Username)
}

func TestDisconnectAnnouncedOverWire(t *testing.T) {
	ts, h := startServer(t)

	alice := dial(t, ts)
	waitForClients(t, h, 1)
	send(t, alice, chat.EventJoin, "alice")
	readUntil(t, alice, chat.EventUpdateUsers)

	bob := dial(t, ts)
	waitForClients(t, h, 2)
	send(t, bob, chat.EventJoin, "bob")
	readUntil(t, alice, chat.EventUserJoined)

	require.NoError(t, bob.Close())

	left := readUntil(t, alice, chat.EventUserLeft)
	var user chat.UserEvent
	require.NoError(t, json.Unmarshal(left.Data, &user))
	assert.Equal(t, "bob", user.Username)

	update := readUntil(t, alice, chat.EventUpdateUsers)
	var users []string
	require.NoError(t, json.Unmarshal(update.Data, &users))
	assert.Equal(t, []string{"alice"}, users)
}
