package chat

import "sync"

// RoomStore owns per-room ordered message history and the reverse index of
// room name to subscribed connection handles. Rooms are created lazily and
// never destroyed. Each room has its own lock so activity in unrelated
// rooms never contends.
type RoomStore struct {
	mu         sync.RWMutex
	rooms      map[string]*room
	maxHistory int
}

type room struct {
	mu      sync.Mutex
	history []Message
	members map[string]struct{}
}

// NewRoomStore creates a room store. maxHistory caps the retained message
// count per room; zero means unbounded.
func NewRoomStore(maxHistory int) *RoomStore {
	return &RoomStore{
		rooms:      make(map[string]*room),
		maxHistory: maxHistory,
	}
}

func (s *RoomStore) get(name string) *room {
	s.mu.RLock()
	r, ok := s.rooms[name]
	s.mu.RUnlock()
	if ok {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok = s.rooms[name]; ok {
		return r
	}
	r = &room{members: make(map[string]struct{})}
	s.rooms[name] = r
	return r
}

// Join subscribes a connection to a room and returns the history snapshot
// to replay plus the other current members to notify. The snapshot and the
// subscription happen under the room lock, so a concurrent append is
// either in the snapshot or delivered as a live broadcast, never missed.
func (s *RoomStore) Join(connID, roomName string) (history []Message, others []string) {
	r := s.get(roomName)

	r.mu.Lock()
	defer r.mu.Unlock()

	history = make([]Message, len(r.history))
	copy(history, r.history)

	others = make([]string, 0, len(r.members))
	for member := range r.members {
		if member != connID {
			others = append(others, member)
		}
	}

	r.members[connID] = struct{}{}
	return history, others
}

// Leave unsubscribes a connection and returns the remaining members.
// Safe to call for a room never joined or never created.
func (s *RoomStore) Leave(connID, roomName string) []string {
	s.mu.RLock()
	r, ok := s.rooms[roomName]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members, connID)

	remaining := make([]string, 0, len(r.members))
	for member := range r.members {
		remaining = append(remaining, member)
	}
	return remaining
}

// Append adds a message to a room's history and returns every current
// subscriber, the sender included if subscribed. The room is created if
// absent; there is no membership check on the sender.
func (s *RoomStore) Append(roomName string, msg Message) []string {
	r := s.get(roomName)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, msg)
	if s.maxHistory > 0 && len(r.history) > s.maxHistory {
		r.history = r.history[len(r.history)-s.maxHistory:]
	}

	members := make([]string, 0, len(r.members))
	for member := range r.members {
		members = append(members, member)
	}
	return members
}

// MembersExcept returns a room's subscribers minus one connection.
func (s *RoomStore) MembersExcept(roomName, connID string) []string {
	s.mu.RLock()
	r, ok := s.rooms[roomName]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	others := make([]string, 0, len(r.members))
	for member := range r.members {
		if member != connID {
			others = append(others, member)
		}
	}
	return others
}

// History returns a copy of a room's message history, oldest first.
func (s *RoomStore) History(roomName string) []Message {
	s.mu.RLock()
	r, ok := s.rooms[roomName]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	history := make([]Message, len(r.history))
	copy(history, r.history)
	return history
}

// DropConnection removes a connection from every room it is subscribed
// to. Called on disconnect; no per-room notification is emitted.
func (s *RoomStore) DropConnection(connID string) {
	s.mu.RLock()
	rooms := make([]*room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.RUnlock()

	for _, r := range rooms {
		r.mu.Lock()
		delete(r.members, connID)
		r.mu.Unlock()
	}
}
