package chat

import "encoding/json"

// EventType names an event on the wire.
type EventType string

// Inbound event types.
const (
	EventJoin              EventType = "join"
	EventJoinRoom          EventType = "joinRoom"
	EventLeaveRoom         EventType = "leaveRoom"
	EventSendMessage       EventType = "sendMessage"
	EventSendFile          EventType = "sendFile"
	EventTyping            EventType = "typing"
	EventGetPrivateHistory EventType = "getPrivateHistory"
)

// Outbound event types.
const (
	EventUserJoined     EventType = "userJoined"
	EventUpdateUsers    EventType = "updateUsers"
	EventChatHistory    EventType = "chatHistory"
	EventUserJoinedRoom EventType = "userJoinedRoom"
	EventUserLeftRoom   EventType = "userLeftRoom"
	EventMessage        EventType = "message"
	EventPrivateMessage EventType = "privateMessage"
	EventFileMessage    EventType = "fileMessage"
	EventPrivateFile    EventType = "privateFile"
	EventUserTyping     EventType = "userTyping"
	EventUserLeft       EventType = "userLeft"
	EventPrivateHistory EventType = "privateHistory"
	EventError          EventType = "error"
)

// Event is the wire envelope in both directions.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals a payload into an enveloped wire frame.
func NewEvent(t EventType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: t, Data: data})
}

// SendMessageRequest carries a text message to a room or a single user.
// Exactly one of Room and To must be set.
type SendMessageRequest struct {
	Message string `json:"message"`
	Room    string `json:"room,omitempty"`
	To      string `json:"to,omitempty"`
}

// SendFileRequest carries a file attachment. Target rules match
// SendMessageRequest.
type SendFileRequest struct {
	FileName string `json:"fileName"`
	FileData []byte `json:"fileData"`
	Room     string `json:"room,omitempty"`
	To       string `json:"to,omitempty"`
}

// TypingRequest signals an ephemeral typing state change.
type TypingRequest struct {
	IsTyping bool   `json:"isTyping"`
	Room     string `json:"room,omitempty"`
	To       string `json:"to,omitempty"`
}

// UserEvent announces a user joining or leaving the server.
type UserEvent struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// RoomEvent announces a user joining or leaving a room.
type RoomEvent struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// TypingEvent relays a typing state change to other members.
type TypingEvent struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// ErrorEvent reports a validation or delivery failure to the
// originating connection.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
