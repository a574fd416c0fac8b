package domain

// Action websocket request/event action
type Action string

const (
	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// MarkRead websocket action mark_read
	MarkRead Action = "mark_read"
	// DeleteMessage websocket action delete_message (per-party soft delete)
	DeleteMessage Action = "delete_message"
	// RestoreMessage websocket action restore_message
	RestoreMessage Action = "restore_message"
	// GetHistory websocket action get_history
	GetHistory Action = "get_history"
	// GetUnread websocket action get_unread
	GetUnread Action = "get_unread"

	// NotifyMessage outbound event carrying a pushed chat message
	NotifyMessage Action = "notify_message"
	// AckMessage outbound event: message stored, staff will respond
	AckMessage Action = "message_ack"
	// Welcome outbound event sent once after connecting
	Welcome Action = "welcome"
	// ChatError outbound structured error event
	ChatError Action = "chat_error"
)

// WSRequest canonical inbound envelope. Every connection sends exactly
// this shape; it is validated once at the boundary.
type WSRequest struct {
	Action      string `json:"action"`
	Content     string `json:"content"`
	ReplyTo     string `json:"reply_to"`
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
	Page        int    `json:"page"`
}

// WSResponse websocket outbound envelope
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// PresenceEntry live connection of one identity. Not persisted; a new
// registration for the same identity supersedes the old session.
type PresenceEntry struct {
	UserID    string
	Party     Party
	SessionID string
}
