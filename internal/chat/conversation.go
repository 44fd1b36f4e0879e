package chat

import (
	"strings"
	"sync"
)

// ConversationStore owns per-pair private message history. Conversations
// are keyed by the unordered pair of display names, so A's thread with B
// and B's thread with A resolve to the same entry. Created lazily, never
// destroyed.
type ConversationStore struct {
	mu            sync.Mutex
	conversations map[string][]Message
	maxHistory    int
}

// NewConversationStore creates a conversation store. maxHistory caps the
// retained message count per conversation; zero means unbounded.
func NewConversationStore(maxHistory int) *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string][]Message),
		maxHistory:    maxHistory,
	}
}

// ConversationKey canonicalizes an unordered pair of display names.
func ConversationKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "|" + b
}

// Append stores a private message in the conversation between its two
// parties.
func (s *ConversationStore) Append(from, to string, msg Message) {
	key := ConversationKey(from, to)

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.conversations[key], msg)
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	s.conversations[key] = history
}

// History returns a copy of the conversation between two names, oldest
// first. The pair order does not matter.
func (s *ConversationStore) History(a, b string) []Message {
	key := ConversationKey(a, b)

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.conversations[key]
	history := make([]Message, len(stored))
	copy(history, stored)
	return history
}
