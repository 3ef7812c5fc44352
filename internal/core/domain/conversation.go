package domain

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message written by the user.
	RoleUser Role = "user"

	// RoleAssistant marks a message written by the assistant.
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a conversation.
// History is append-only; the context manager reads but never mutates it.
type Message struct {
	// ID is the unique identifier.
	ID string

	// ConversationID links to the owning conversation.
	ConversationID string

	// Role is who authored the message.
	Role Role

	// Content is the message text.
	Content string

	// Timestamp is when the message was recorded.
	Timestamp time.Time
}

// Conversation is an ordered sequence of messages.
type Conversation struct {
	// ID is the unique identifier.
	ID string

	// Title is an optional display title.
	Title string

	// CreatedAt is when the conversation started.
	CreatedAt time.Time
}
