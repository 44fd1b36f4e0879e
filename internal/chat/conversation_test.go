package chat_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banterhub/banter/internal/chat"
)

func TestConversationKeyOrderIndependent(t *testing.T) {
	assert.Equal(t, chat.ConversationKey("alice", "bob"), chat.ConversationKey("bob", "alice"))
	assert.NotEqual(t, chat.ConversationKey("alice", "bob"), chat.ConversationKey("alice", "carol"))
}

func TestConversationAppendAndHistory(t *testing.T) {
	s := chat.NewConversationStore(0)

	msg := chat.NewTextMessage("alice", "hi")
	msg.From = "alice"
	msg.To = "bob"
	s.Append("alice", "bob", msg)

	// Both pair orders resolve to the same thread.
	forAlice := s.History("alice", "bob")
	forBob := s.History("bob", "alice")
	require.Len(t, forAlice, 1)
	require.Len(t, forBob, 1)
	assert.Equal(t, "alice", forAlice[0].From)
	assert.Equal(t, "bob", forAlice[0].To)
	assert.Equal(t, "hi", forBob[0].Body)
}

func TestConversationHistoryEmptyWithoutMessages(t *testing.T) {
	s := chat.NewConversationStore(0)
	assert.Empty(t, s.History("alice", "ghost"))
}

func TestConversationHistoryCap(t *testing.T) {
	s := chat.NewConversationStore(2)

	for i := range 4 {
		s.Append("alice", "bob", chat.NewTextMessage("alice", fmt.Sprintf("msg-%d", i)))
	}

	history := s.History("alice", "bob")
	require.Len(t, history, 2)
	assert.Equal(t, "msg-2", history[0].Body)
	assert.Equal(t, "msg-3", history[1].Body)
}

func TestConversationHistoryIsACopy(t *testing.T) {
	s := chat.NewConversationStore(0)
	s.Append("alice", "bob", chat.NewTextMessage("alice", "original"))

	history := s.History("alice", "bob")
	history[0].Body = "mutated"

	assert.Equal(t, "original", s.History("alice", "bob")[0].Body)
}
