package chat

import (
	"encoding/json"
	"fmt"

	"github.com/banterhub/banter/internal/config"
	"github.com/banterhub/banter/logging"
)

// Router is the central dispatcher. It validates inbound events, mutates
// the stores, and computes the broadcast fan-out. It owns no state of its
// own.
type Router struct {
	registry      *Registry
	rooms         *RoomStore
	conversations *ConversationStore
	presence      *Presence
	sender        Sender
	uniqueNames   bool
	logger        *logging.Logger
}

func NewRouter(cfg config.ChatConfig, sender Sender, logger *logging.Logger) *Router {
	registry := NewRegistry()
	return &Router{
		registry:      registry,
		rooms:         NewRoomStore(cfg.MaxRoomHistory),
		conversations: NewConversationStore(cfg.MaxConversationHistory),
		presence:      NewPresence(registry, sender, logger),
		sender:        sender,
		uniqueNames:   cfg.UniqueNames,
		logger:        logger,
	}
}

// Dispatch decodes one inbound frame and routes it. Validation failures
// are reported back to the originating connection only; they never
// propagate to the transport.
func (r *Router) Dispatch(connID string, raw []byte) {
	var evt Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		r.logger.Warn("invalid event frame", "client_id", connID, "error", err)
		r.reportError(connID, CodeMalformedEvent, "invalid event frame")
		return
	}

	switch evt.Type {
	case EventJoin:
		var displayName string
		if err := json.Unmarshal(evt.Data, &displayName); err != nil {
			r.reportError(connID, CodeMalformedEvent, "join requires a display name")
			return
		}
		r.HandleJoin(connID, displayName)

	case EventJoinRoom:
		var roomName string
		if err := json.Unmarshal(evt.Data, &roomName); err != nil {
			r.reportError(connID, CodeMalformedEvent, "joinRoom requires a room name")
			return
		}
		r.HandleJoinRoom(connID, roomName)

	case EventLeaveRoom:
		var roomName string
		if err := json.Unmarshal(evt.Data, &roomName); err != nil {
			r.reportError(connID, CodeMalformedEvent, "leaveRoom requires a room name")
			return
		}
		r.HandleLeaveRoom(connID, roomName)

	case EventSendMessage:
		var req SendMessageRequest
		if err := json.Unmarshal(evt.Data, &req); err != nil {
			r.reportError(connID, CodeMalformedEvent, "invalid sendMessage payload")
			return
		}
		r.HandleSendMessage(connID, req)

	case EventSendFile:
		var req SendFileRequest
		if err := json.Unmarshal(evt.Data, &req); err != nil {
			r.reportError(connID, CodeMalformedEvent, "invalid sendFile payload")
			return
		}
		r.HandleSendFile(connID, req)

	case EventTyping:
		var req TypingRequest
		if err := json.Unmarshal(evt.Data, &req); err != nil {
			r.reportError(connID, CodeMalformedEvent, "invalid typing payload")
			return
		}
		r.HandleTyping(connID, req)

	case EventGetPrivateHistory:
		var withName string
		if err := json.Unmarshal(evt.Data, &withName); err != nil {
			r.reportError(connID, CodeMalformedEvent, "getPrivateHistory requires a user name")
			return
		}
		r.HandlePrivateHistory(connID, withName)

	default:
		r.reportError(connID, CodeMalformedEvent, fmt.Sprintf("unknown event type: %s", evt.Type))
	}
}

// HandleJoin binds a display name to the connection and announces global
// presence.
func (r *Router) HandleJoin(connID, displayName string) {
	if displayName == "" {
		r.reportError(connID, CodeMalformedEvent, "display name must not be empty")
		return
	}

	if r.uniqueNames && r.registry.HasName(displayName) {
		r.reportError(connID, CodeNameTaken, ErrNameTaken.Error())
		return
	}

	r.registry.Register(connID, displayName)
	r.presence.AnnounceJoin(connID, displayName)

	r.logger.Info("user joined", "client_id", connID, "username", displayName)
}

// HandleJoinRoom subscribes the connection to a room, replays the room
// history to the requester only, and notifies the other members.
func (r *Router) HandleJoinRoom(connID, roomName string) {
	displayName, ok := r.registry.Name(connID)
	if !ok {
		r.reportError(connID, CodeNotJoined, ErrNotJoined.Error())
		return
	}

	history, others := r.rooms.Join(connID, roomName)

	r.emit(connID, EventChatHistory, history)
	r.presence.AnnounceRoomJoin(displayName, roomName, others)
}

// HandleLeaveRoom unsubscribes the connection and notifies the remaining
// members. Safe even if the connection never joined the room.
func (r *Router) HandleLeaveRoom(connID, roomName string) {
	displayName, ok := r.registry.Name(connID)
	if !ok {
		r.reportError(connID, CodeNotJoined, ErrNotJoined.Error())
		return
	}

	remaining := r.rooms.Leave(connID, roomName)
	r.presence.AnnounceRoomLeave(displayName, roomName, remaining)
}

// HandleSendMessage routes a text message to a room or a single user.
func (r *Router) HandleSendMessage(connID string, req SendMessageRequest) {
	displayName, err := r.sendPreflight(connID, req.Room, req.To, req.Message != "")
	if err != nil {
		return
	}

	msg := NewTextMessage(displayName, req.Message)

	if req.Room != "" {
		members := r.rooms.Append(req.Room, msg)
		r.fanOut(members, EventMessage, msg)
		return
	}

	targetID, ok := r.registry.FindByName(req.To)
	if !ok {
		r.reportError(connID, CodeUnknownRecipient, ErrUnknownRecipient.Error())
		return
	}

	msg.From = displayName
	msg.To = req.To
	r.conversations.Append(displayName, req.To, msg)

	// Echo to the sender so its own view reflects the message.
	r.fanOut([]string{targetID, connID}, EventPrivateMessage, msg)
}

// HandleSendFile routes a file attachment with the same target rules as
// HandleSendMessage.
func (r *Router) HandleSendFile(connID string, req SendFileRequest) {
	displayName, err := r.sendPreflight(connID, req.Room, req.To, req.FileName != "")
	if err != nil {
		return
	}

	msg := NewFileMessage(displayName, req.FileName, req.FileData)

	if req.Room != "" {
		members := r.rooms.Append(req.Room, msg)
		r.fanOut(members, EventFileMessage, msg)
		return
	}

	targetID, ok := r.registry.FindByName(req.To)
	if !ok {
		r.reportError(connID, CodeUnknownRecipient, ErrUnknownRecipient.Error())
		return
	}

	msg.From = displayName
	msg.To = req.To
	r.conversations.Append(displayName, req.To, msg)

	r.fanOut([]string{targetID, connID}, EventPrivateFile, msg)
}

// HandleTyping relays an ephemeral typing indicator to the other members
// of the target room, or to a single recipient. Unknown targets are
// ignored; nothing is persisted.
func (r *Router) HandleTyping(connID string, req TypingRequest) {
	displayName, ok := r.registry.Name(connID)
	if !ok {
		r.reportError(connID, CodeNotJoined, ErrNotJoined.Error())
		return
	}

	if req.Room != "" {
		others := r.rooms.MembersExcept(req.Room, connID)
		r.presence.RelayTyping(displayName, req.IsTyping, others)
		return
	}

	if req.To != "" {
		if targetID, ok := r.registry.FindByName(req.To); ok {
			r.presence.RelayTyping(displayName, req.IsTyping, []string{targetID})
		}
	}
}

// HandlePrivateHistory replays the requester's conversation with another
// user, oldest first, whether or not that user is currently connected.
func (r *Router) HandlePrivateHistory(connID, withName string) {
	displayName, ok := r.registry.Name(connID)
	if !ok {
		r.reportError(connID, CodeNotJoined, ErrNotJoined.Error())
		return
	}

	history := r.conversations.History(displayName, withName)
	r.emit(connID, EventPrivateHistory, history)
}

// HandleDisconnect tears down all chat state for a connection. Idempotent
// and safe to race with in-flight sends from the same connection.
func (r *Router) HandleDisconnect(connID string) {
	r.rooms.DropConnection(connID)

	displayName, ok := r.registry.Unregister(connID)
	if !ok {
		return
	}

	r.presence.AnnounceLeave(connID, displayName)
	r.logger.Info("user left", "client_id", connID, "username", displayName)
}

// sendPreflight resolves the sender's display name and validates the
// target and payload of a send, reporting any failure to the sender.
func (r *Router) sendPreflight(connID, room, to string, hasPayload bool) (string, error) {
	displayName, ok := r.registry.Name(connID)
	if !ok {
		r.reportError(connID, CodeNotJoined, ErrNotJoined.Error())
		return "", ErrNotJoined
	}

	if (room == "") == (to == "") {
		r.reportError(connID, CodeMalformedEvent, ErrMalformedTarget.Error())
		return "", ErrMalformedTarget
	}

	if !hasPayload {
		r.reportError(connID, CodeEmptyMessage, ErrEmptyMessage.Error())
		return "", ErrEmptyMessage
	}

	return displayName, nil
}

func (r *Router) emit(connID string, t EventType, payload any) {
	frame, err := NewEvent(t, payload)
	if err != nil {
		r.logger.Error("failed to encode event", "type", t, "error", err)
		return
	}
	if err := r.sender.SendTo(connID, frame); err != nil {
		r.logger.Warn("failed to deliver event", "type", t, "client_id", connID, "error", err)
	}
}

func (r *Router) fanOut(targets []string, t EventType, payload any) {
	if len(targets) == 0 {
		return
	}
	frame, err := NewEvent(t, payload)
	if err != nil {
		r.logger.Error("failed to encode event", "type", t, "error", err)
		return
	}
	if err := r.sender.SendToMultiple(targets, frame); err != nil {
		r.logger.Warn("failed to deliver event", "type", t, "error", err)
	}
}

func (r *Router) reportError(connID, code, message string) {
	r.emit(connID, EventError, ErrorEvent{Code: code, Message: message})
}
