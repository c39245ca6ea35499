package gateway

import (
	"context"
	"time"
)

// GatewayAdapter defines the interface for platform adapters.
type GatewayAdapter interface {
	Platform() string
	Connect(ctx context.Context) error
	Send(ctx context.Context, msg *OutboundMessage) error
	OnMessage(handler MessageHandler)
	Close() error
}

// MessageHandler processes inbound messages from any platform.
// It returns once every reply for msg has been sent.
type MessageHandler func(ctx context.Context, msg *InboundMessage)

// MessageType tags the payload kind of a message.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageAudio MessageType = "audio"
)

// InboundMessage is a normalized message from any platform.
type InboundMessage struct {
	Platform  string      `json:"platform"`
	ChannelID string      `json:"channel_id"`
	UserID    string      `json:"user_id"`
	UserName  string      `json:"user_name,omitempty"`
	MessageID string      `json:"message_id,omitempty"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// OutboundMessage is a message sent to a specific platform channel.
// Content is used for text messages, AudioURL for audio messages.
type OutboundMessage struct {
	Platform  string      `json:"platform"`
	ChannelID string      `json:"channel_id"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content,omitempty"`
	AudioURL  string      `json:"audio_url,omitempty"`
}

// AdapterStatus describes a registered platform adapter.
type AdapterStatus struct {
	Platform  string `json:"platform"`
	Connected bool   `json:"connected"`
	Details   string `json:"details,omitempty"`
}

// StatusReporter is implemented by adapters that can describe their state.
type StatusReporter interface {
	Status() AdapterStatus
}
