package domain

import "time"

// ConversationStatus activity state of a conversation
type ConversationStatus string

const (
	// ConversationActive conversation still in use
	ConversationActive ConversationStatus = "active"
	// ConversationInactive deactivated by staff or the archival sweep
	ConversationInactive ConversationStatus = "inactive"
)

// Conversation the single persistent channel between one customer and the
// support pool. Exactly one row per customer, created lazily on first
// message, never hard-deleted.
type Conversation struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	CustomerID    string             `gorm:"uniqueIndex;size:64;not null" json:"customer_id"`
	Status        ConversationStatus `gorm:"size:16;not null;default:active" json:"status"`
	LastMessageAt time.Time          `gorm:"index" json:"last_message_at"`
	CreatedAt     time.Time          `json:"created_at"`
}

// StaffNote one entry of a conversation's append-only staff-notes log
type StaffNote struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	StaffID        string    `gorm:"size:64;not null" json:"staff_id"`
	Note           string    `gorm:"type:text;not null" json:"note"`
	CreatedAt      time.Time `json:"created_at"`
}

// Customer contact info of a chat customer, owned by the platform's member
// tables and read here for display and recipient resolution
type Customer struct {
	ID         int64  `json:"id"`
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}
