package config

import (
	"time"

	"github.com/banterhub/banter/logging"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Websocket WebsocketConfig `json:"websocket" yaml:"websocket"`
	Chat      ChatConfig      `json:"chat" yaml:"chat"`
	Logging   logging.Config  `json:"logging" yaml:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// WebsocketConfig tunes the per-connection pumps.
type WebsocketConfig struct {
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`
	PingInterval    time.Duration `json:"ping_interval" yaml:"ping_interval"`
	MaxMessageSize  int64         `json:"max_message_size" yaml:"max_message_size"`
	ReadBufferSize  int           `json:"read_buffer_size" yaml:"read_buffer_size"`
	WriteBufferSize int           `json:"write_buffer_size" yaml:"write_buffer_size"`
}

// ChatConfig governs the in-memory chat core.
type ChatConfig struct {
	// MaxRoomHistory caps the retained message count per room.
	// Zero means unbounded.
	MaxRoomHistory int `json:"max_room_history" yaml:"max_room_history"`

	// MaxConversationHistory caps the retained message count per
	// private conversation. Zero means unbounded.
	MaxConversationHistory int `json:"max_conversation_history" yaml:"max_conversation_history"`

	// UniqueNames rejects a join that claims a display name already
	// held by a live connection.
	UniqueNames bool `json:"unique_names" yaml:"unique_names"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         3001,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Websocket: WebsocketConfig{
			WriteTimeout:    10 * time.Second,
			ReadTimeout:     60 * time.Second,
			PingInterval:    30 * time.Second,
			MaxMessageSize:  512 * 1024, // 512KB, file payloads included
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Chat: ChatConfig{
			MaxRoomHistory:         1000,
			MaxConversationHistory: 1000,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return NewConfigError("server.port", "invalid port number")
	}

	if c.Server.ReadTimeout < 0 {
		return NewConfigError("server.read_timeout", "timeout cannot be negative")
	}

	if c.Server.WriteTimeout < 0 {
		return NewConfigError("server.write_timeout", "timeout cannot be negative")
	}

	if c.Websocket.MaxMessageSize <= 0 {
		return NewConfigError("websocket.max_message_size", "must be positive")
	}

	if c.Chat.MaxRoomHistory < 0 {
		return NewConfigError("chat.max_room_history", "cannot be negative")
	}

	if c.Chat.MaxConversationHistory < 0 {
		return NewConfigError("chat.max_conversation_history", "cannot be negative")
	}

	return nil
}
