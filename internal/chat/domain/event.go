package domain

import "time"

// Chat event types published to the reporting feed.
const (
	// EventMessageSent a message was persisted
	EventMessageSent = "message_sent"
	// EventMessageRead a message got its read timestamp
	EventMessageRead = "message_read"
	// EventMessageHidden a party soft-deleted a message
	EventMessageHidden = "message_hidden"
	// EventMessageRestored a party restored a soft-deleted message
	EventMessageRestored = "message_restored"
)

// ChatEvent reporting feed payload, emitted best-effort after commit
type ChatEvent struct {
	Type           string    `json:"type"`
	MessageID      string    `json:"message_id"`
	ConversationID uint      `json:"conversation_id"`
	Direction      Direction `json:"direction,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
