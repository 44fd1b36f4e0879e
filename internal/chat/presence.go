package chat

import "github.com/banterhub/banter/logging"

// Sender delivers enveloped events to connections. The transport hub
// satisfies it.
type Sender interface {
	SendTo(clientID string, message []byte) error
	SendToMultiple(clientIDs []string, message []byte) error
	Broadcast(message []byte) error
}

// Presence derives and emits global presence plus room-scoped presence
// and typing transients. It owns no state; the registry is its source of
// truth for the user list.
type Presence struct {
	registry *Registry
	sender   Sender
	logger   *logging.Logger
}

func NewPresence(registry *Registry, sender Sender, logger *logging.Logger) *Presence {
	return &Presence{
		registry: registry,
		sender:   sender,
		logger:   logger,
	}
}

// AnnounceJoin broadcasts userJoined followed by the refreshed user list
// to every connected client, the joiner included.
func (p *Presence) AnnounceJoin(connID, displayName string) {
	p.broadcast(EventUserJoined, UserEvent{Username: displayName, ID: connID})
	p.broadcast(EventUpdateUsers, p.registry.AllNames())
}

// AnnounceLeave broadcasts userLeft followed by the post-removal user
// list. Callers must only invoke it for connections that had joined.
func (p *Presence) AnnounceLeave(connID, displayName string) {
	p.broadcast(EventUserLeft, UserEvent{Username: displayName, ID: connID})
	p.broadcast(EventUpdateUsers, p.registry.AllNames())
}

// AnnounceRoomJoin notifies the other current members of a room.
func (p *Presence) AnnounceRoomJoin(displayName, roomName string, others []string) {
	p.sendTo(others, EventUserJoinedRoom, RoomEvent{Username: displayName, Room: roomName})
}

// AnnounceRoomLeave notifies the remaining members of a room.
func (p *Presence) AnnounceRoomLeave(displayName, roomName string, others []string) {
	p.sendTo(others, EventUserLeftRoom, RoomEvent{Username: displayName, Room: roomName})
}

// RelayTyping forwards an ephemeral typing state change. Nothing is
// persisted.
func (p *Presence) RelayTyping(displayName string, isTyping bool, targets []string) {
	p.sendTo(targets, EventUserTyping, TypingEvent{Username: displayName, IsTyping: isTyping})
}

func (p *Presence) broadcast(t EventType, payload any) {
	frame, err := NewEvent(t, payload)
	if err != nil {
		p.logger.Error("failed to encode presence event", "type", t, "error", err)
		return
	}
	if err := p.sender.Broadcast(frame); err != nil {
		p.logger.Error("failed to broadcast presence event", "type", t, "error", err)
	}
}

func (p *Presence) sendTo(targets []string, t EventType, payload any) {
	if len(targets) == 0 {
		return
	}
	frame, err := NewEvent(t, payload)
	if err != nil {
		p.logger.Error("failed to encode presence event", "type", t, "error", err)
		return
	}
	if err := p.sender.SendToMultiple(targets, frame); err != nil {
		p.logger.Error("failed to send presence event", "type", t, "error", err)
	}
}
