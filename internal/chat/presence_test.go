package chat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banterhub/banter/internal/chat"
	"github.com/banterhub/banter/logging"
)

func newTestPresence(t *testing.T) (*chat.Presence, *chat.Registry, *fakeSender) {
	t.Helper()
	registry := chat.NewRegistry()
	sender := newFakeSender()
	return chat.NewPresence(registry, sender, logging.Discard()), registry, sender
}

func TestPresenceAnnounceJoinBroadcastsToEveryone(t *testing.T) {
	presence, registry, sender := newTestPresence(t)

	registry.Register("conn-1", "alice")
	presence.AnnounceJoin("conn-1", "alice")

	joined, ok := sender.lastBroadcast(chat.EventUserJoined)
	require.True(t, ok)
	assert.Equal(t, "alice", decodePayload[chat.UserEvent](t, joined).Username)

	update, ok := sender.lastBroadcast(chat.EventUpdateUsers)
	require.True(t, ok)
	assert.Equal(t, []string{"alice"}, decodePayload[[]string](t, update))
}

func TestPresenceAnnounceLeaveCarriesPostRemovalList(t *testing.T) {
	presence, registry, sender := newTestPresence(t)

	registry.Register("conn-1", "alice")
	registry.Register("conn-2", "bob")
	registry.Unregister("conn-1")

	presence.AnnounceLeave("conn-1", "alice")

	left, ok := sender.lastBroadcast(chat.EventUserLeft)
	require.True(t, ok)
	evt := decodePayload[chat.UserEvent](t, left)
	assert.Equal(t, "alice", evt.Username)
	assert.Equal(t, "conn-1", evt.ID)

	update, ok := sender.lastBroadcast(chat.EventUpdateUsers)
	require.True(t, ok)
	assert.Equal(t, []string{"bob"}, decodePayload[[]string](t, update))
}

func TestPresenceRoomEventsTargetOnlyGivenMembers(t *testing.T) {
	presence, _, sender := newTestPresence(t)

	presence.AnnounceRoomJoin("alice", "general", []string{"conn-2", "conn-3"})

	for _, connID := range []string{"conn-2", "conn-3"} {
		evt, ok := sender.lastOfType(connID, chat.EventUserJoinedRoom)
		require.True(t, ok, "missing notification for %s", connID)
		room := decodePayload[chat.RoomEvent](t, evt)
		assert.Equal(t, "alice", room.Username)
		assert.Equal(t, "general", room.Room)
	}
	assert.Empty(t, sender.eventsFor("conn-1"))
}

func TestPresenceRelayTypingNoTargetsIsNoop(t *testing.T) {
	presence, _, sender := newTestPresence(t)

	presence.RelayTyping("alice", true, nil)

	assert.Empty(t, sender.broadcasts)
	assert.Empty(t, sender.direct)
}
