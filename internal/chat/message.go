package chat

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind discriminates message variants so history replay can tell a text
// message from a file attachment.
type Kind string

const (
	KindText Kind = "message"
	KindFile Kind = "file"
)

// Message is a single chat entry, immutable once created. Room messages
// carry Username only; private messages additionally carry From and To.
// The timestamp is assigned by the server at creation and never taken
// from the client.
type Message struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Username  string    `json:"username"`
	Body      string    `json:"message,omitempty"`
	FileName  string    `json:"fileName,omitempty"`
	FileData  []byte    `json:"fileData,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTextMessage(author, body string) Message {
	return Message{
		ID:        ulid.Make().String(),
		Kind:      KindText,
		Username:  author,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}
}

func NewFileMessage(author, fileName string, fileData []byte) Message {
	return Message{
		ID:        ulid.Make().String(),
		Kind:      KindFile,
		Username:  author,
		FileName:  fileName,
		FileData:  fileData,
		Timestamp: time.Now().UTC(),
	}
}
