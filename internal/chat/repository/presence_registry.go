package repository

import (
	"sync"

	"food_order_chat_service/internal/chat/domain"
)

// PresenceRegistry tracks which identities currently hold a live
// connection. Single-process and in-memory; every operation is one atomic
// map access, and a re-registration for the same identity supersedes the
// old session (reconnect wins).
type PresenceRegistry interface {
	Register(userID string, party domain.Party, sessionID string)
	// Unregister remove whatever entry maps to sessionID; unknown sessions
	// are a no-op so duplicate disconnect notifications stay harmless
	Unregister(sessionID string)
	IsAnyStaffOnline() bool
	OnlineCustomerIDs() []string
	OnlineCustomerCount() int
	OnlineStaffCount() int
	// IsOnline report whether userID currently holds a connection
	IsOnline(userID string) bool
}

type presenceRegistry struct {
	entries sync.Map // userID -> domain.PresenceEntry
}

// NewPresenceRegistry create an empty PresenceRegistry
func NewPresenceRegistry() PresenceRegistry {
	return &presenceRegistry{}
}

func (r *presenceRegistry) Register(userID string, party domain.Party, sessionID string) {
	r.entries.Store(userID, domain.PresenceEntry{
		UserID:    userID,
		Party:     party,
		SessionID: sessionID,
	})
}

func (r *presenceRegistry) Unregister(sessionID string) {
	// scan-by-value; concurrent support staff/customer counts are small
	r.entries.Range(func(key, value any) bool {
		entry := value.(domain.PresenceEntry)
		if entry.SessionID == sessionID {
			r.entries.Delete(key)
			return false
		}
		return true
	})
}

func (r *presenceRegistry) IsAnyStaffOnline() bool {
	online := false
	r.entries.Range(func(_, value any) bool {
		if value.(domain.PresenceEntry).Party == domain.PartyStaff {
			online = true
			return false
		}
		return true
	})
	return online
}

func (r *presenceRegistry) OnlineCustomerIDs() []string {
	var ids []string
	r.entries.Range(func(_, value any) bool {
		entry := value.(domain.PresenceEntry)
		if entry.Party == domain.PartyCustomer {
			ids = append(ids, entry.UserID)
		}
		return true
	})
	return ids
}

func (r *presenceRegistry) OnlineCustomerCount() int {
	return len(r.OnlineCustomerIDs())
}

func (r *presenceRegistry) OnlineStaffCount() int {
	count := 0
	r.entries.Range(func(_, value any) bool {
		if value.(domain.PresenceEntry).Party == domain.PartyStaff {
			count++
		}
		return true
	})
	return count
}

func (r *presenceRegistry) IsOnline(userID string) bool {
	_, ok := r.entries.Load(userID)
	return ok
}
