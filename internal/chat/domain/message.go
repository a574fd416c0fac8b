package domain

import "time"

// Party one side of a support conversation
type Party string

const (
	// PartyCustomer the customer side
	PartyCustomer Party = "customer"
	// PartyStaff the shared support pool side
	PartyStaff Party = "staff"
)

// Counterpart the other side
func (p Party) Counterpart() Party {
	if p == PartyCustomer {
		return PartyStaff
	}
	return PartyCustomer
}

// Direction who sent a message to whom
type Direction string

const (
	// CustomerToStaff message sent by a customer into the support pool
	CustomerToStaff Direction = "customer_to_staff"
	// StaffToCustomer message sent by support staff to a customer
	StaffToCustomer Direction = "staff_to_customer"
)

// Opposite the reverse direction; replies must target it
func (d Direction) Opposite() Direction {
	if d == CustomerToStaff {
		return StaffToCustomer
	}
	return CustomerToStaff
}

// Visibility per-party soft-delete state of a message. Modeled as one
// exhaustive tagged state so every combination is handled wherever
// visibility is computed.
type Visibility string

const (
	// VisibleBoth no side has deleted the message
	VisibleBoth Visibility = "visible_both"
	// HiddenCustomer deleted from the customer view only
	HiddenCustomer Visibility = "hidden_customer"
	// HiddenStaff deleted from the staff view only
	HiddenStaff Visibility = "hidden_staff"
	// HiddenBoth deleted from both views, eligible for purge after retention
	HiddenBoth Visibility = "hidden_both"
)

// HiddenFor report whether party's hidden flag is set
func (v Visibility) HiddenFor(p Party) bool {
	switch v {
	case HiddenBoth:
		return true
	case HiddenCustomer:
		return p == PartyCustomer
	case HiddenStaff:
		return p == PartyStaff
	}
	return false
}

// Hide set party's hidden flag
func (v Visibility) Hide(p Party) Visibility {
	switch v {
	case VisibleBoth:
		if p == PartyCustomer {
			return HiddenCustomer
		}
		return HiddenStaff
	case HiddenCustomer:
		if p == PartyStaff {
			return HiddenBoth
		}
	case HiddenStaff:
		if p == PartyCustomer {
			return HiddenBoth
		}
	}
	return v
}

// Show clear party's hidden flag
func (v Visibility) Show(p Party) Visibility {
	switch v {
	case HiddenBoth:
		if p == PartyCustomer {
			return HiddenStaff
		}
		return HiddenCustomer
	case HiddenCustomer:
		if p == PartyCustomer {
			return VisibleBoth
		}
	case HiddenStaff:
		if p == PartyStaff {
			return VisibleBoth
		}
	}
	return v
}

// MaxContentLength upper bound of message content, in characters
const MaxContentLength = 1000

// Message one support chat message
type Message struct {
	MessageID      string     `bson:"message_id" json:"message_id"`
	ConversationID uint       `bson:"conversation_id" json:"conversation_id"`
	SenderID       string     `bson:"sender_id" json:"sender_id"`
	ReceiverID     string     `bson:"receiver_id,omitempty" json:"receiver_id,omitempty"`
	Direction      Direction  `bson:"direction" json:"direction"`
	Content        string     `bson:"content" json:"content"`
	SentAt         time.Time  `bson:"sent_at" json:"sent_at"`
	ReadAt         *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
	ReplyTo        string     `bson:"reply_to,omitempty" json:"reply_to,omitempty"`
	Visibility     Visibility `bson:"visibility" json:"visibility"`
}

// ReplyContext reply target content/sender attached for display
type ReplyContext struct {
	MessageID string `bson:"message_id" json:"message_id"`
	SenderID  string `bson:"sender_id" json:"sender_id"`
	Content   string `bson:"content" json:"content"`
}

// MessageView message enriched with its reply target
type MessageView struct {
	Message `bson:",inline"`
	Reply   *ReplyContext `bson:"reply,omitempty" json:"reply,omitempty"`
}

// ConversationUnreadInfo unread count of one conversation
type ConversationUnreadInfo struct {
	ConversationID uint      `bson:"_id" json:"conversation_id"`
	UnreadCount    int       `bson:"unread_count" json:"unread_count"`
	LastUnreadAt   time.Time `bson:"last_unread_at" json:"last_unread_at"`
}

// UnreadSummary staff dashboard totals across all conversations
type UnreadSummary struct {
	TotalUnread   int                      `json:"total_unread"`
	Conversations []ConversationUnreadInfo `json:"conversations"`
}

// DailyCount messages per day, for reporting
type DailyCount struct {
	Date  string `bson:"_id" json:"date"`
	Count int64  `bson:"count" json:"count"`
}

// MessageStats time-ranged message statistics
type MessageStats struct {
	From          time.Time    `json:"from"`
	To            time.Time    `json:"to"`
	Total         int64        `json:"total"`
	FromCustomers int64        `json:"from_customers"`
	FromStaff     int64        `json:"from_staff"`
	PerDay        []DailyCount `json:"per_day"`
}
