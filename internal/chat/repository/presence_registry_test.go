package repository

import (
	"fmt"
	"sync"
	"testing"

	"food_order_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
)

func TestPresenceRegistry(t *testing.T) {
	r := NewPresenceRegistry()

	assert.False(t, r.IsAnyStaffOnline())
	assert.Zero(t, r.OnlineCustomerCount())

	r.Register("cust-1", domain.PartyCustomer, "sess-1")
	r.Register("cust-2", domain.PartyCustomer, "sess-2")
	r.Register("staff-1", domain.PartyStaff, "sess-3")

	assert.True(t, r.IsAnyStaffOnline())
	assert.True(t, r.IsOnline("cust-1"))
	assert.Equal(t, 2, r.OnlineCustomerCount())
	assert.Equal(t, 1, r.OnlineStaffCount())
	assert.ElementsMatch(t, []string{"cust-1", "cust-2"}, r.OnlineCustomerIDs())

	r.Unregister("sess-3")
	assert.False(t, r.IsAnyStaffOnline())
	assert.False(t, r.IsOnline("staff-1"))

	// unknown session is a no-op
	r.Unregister("sess-3")
	r.Unregister("never-registered")
	assert.Equal(t, 2, r.OnlineCustomerCount())
}

func TestPresenceRegistry_ReconnectSupersedesOldSession(t *testing.T) {
	r := NewPresenceRegistry()

	r.Register("cust-1", domain.PartyCustomer, "sess-old")
	r.Register("cust-1", domain.PartyCustomer, "sess-new")
	assert.Equal(t, 1, r.OnlineCustomerCount())

	// the stale disconnect arrives after the reconnect; it must not kick
	// the new session out
	r.Unregister("sess-old")
	assert.True(t, r.IsOnline("cust-1"))

	r.Unregister("sess-new")
	assert.False(t, r.IsOnline("cust-1"))
}

func TestPresenceRegistry_Concurrent(t *testing.T) {
	r := NewPresenceRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("cust-%d", n)
			sess := fmt.Sprintf("sess-%d", n)
			r.Register(id, domain.PartyCustomer, sess)
			r.IsOnline(id)
			if n%2 == 0 {
				r.Unregister(sess)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, r.OnlineCustomerCount())
	assert.False(t, r.IsAnyStaffOnline())
}
