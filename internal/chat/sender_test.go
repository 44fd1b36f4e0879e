package chat_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banterhub/banter/internal/chat"
)

// fakeSender records every delivered frame, decoded back into events, so
// tests can assert on the exact fan-out the router computed.
type fakeSender struct {
	mu         sync.Mutex
	direct     map[string][]chat.Event
	broadcasts []chat.Event
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		direct: make(map[string][]chat.Event),
	}
}

func (s *fakeSender) SendTo(clientID string, message []byte) error {
	var evt chat.Event
	if err := json.Unmarshal(message, &evt); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.direct[clientID] = append(s.direct[clientID], evt)
	return nil
}

func (s *fakeSender) SendToMultiple(clientIDs []string, message []byte) error {
	for _, clientID := range clientIDs {
		if err := s.SendTo(clientID, message); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeSender) Broadcast(message []byte) error {
	var evt chat.Event
	if err := json.Unmarshal(message, &evt); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts = append(s.broadcasts, evt)
	return nil
}

func (s *fakeSender) eventsFor(clientID string) []chat.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.Event(nil), s.direct[clientID]...)
}

func (s *fakeSender) lastOfType(clientID string, t chat.EventType) (chat.Event, bool) {
	events := s.eventsFor(clientID)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == t {
			return events[i], true
		}
	}
	return chat.Event{}, false
}

func (s *fakeSender) countOfType(clientID string, t chat.EventType) int {
	count := 0
	for _, evt := range s.eventsFor(clientID) {
		if evt.Type == t {
			count++
		}
	}
	return count
}

func (s *fakeSender) lastBroadcast(t chat.EventType) (chat.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.broadcasts) - 1; i >= 0; i-- {
		if s.broadcasts[i].Type == t {
			return s.broadcasts[i], true
		}
	}
	return chat.Event{}, false
}

func (s *fakeSender) broadcastCount(t chat.EventType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, evt := range s.broadcasts {
		if evt.Type == t {
			count++
		}
	}
	return count
}

func decodePayload[T any](t *testing.T, evt chat.Event) T {
	t.Helper()
	var payload T
	require.NoError(t, json.Unmarshal(evt.Data, &payload))
	return payload
}
