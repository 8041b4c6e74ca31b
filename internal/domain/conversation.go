package domain

import (
	"context"
	"time"
)

// MessageRole represents the sender of a transcript message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one entry of a conversation transcript. The transcript is
// append-only; entries are never reordered or deleted.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// Conversation is an open chat bound to a remote model. Attachments reference
// previously uploaded documents and are only needed on the bootstrap message.
type Conversation interface {
	Send(ctx context.Context, text string, attachments []RemoteHandle) (string, error)
}

// ConversationOpener creates new remote conversations.
type ConversationOpener interface {
	Open(ctx context.Context, model string) (Conversation, error)
}
