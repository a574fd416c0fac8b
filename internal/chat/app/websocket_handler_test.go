package app

import (
	"context"
	"errors"
	"testing"

	"food_order_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
)

func newWelcomeFixture() (*ChatWebsocketHandler, *MockMessageRepository, *MockConversationRepository, *MockPresenceRegistry) {
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	presence := new(MockPresenceRegistry)
	unreadUC := NewUnreadUseCase(msgRepo, convRepo, nil, 0)
	h := NewChatWebsocketHandler(nil, nil, unreadUC, nil, presence, nil)
	return h, msgRepo, convRepo, presence
}

func TestWelcomeEvent_StaffGetsPoolDashboard(t *testing.T) {
	ctx := context.Background()
	h, msgRepo, _, presence := newWelcomeFixture()

	presence.On("OnlineCustomerCount").Return(2)
	msgRepo.On("UnreadByConversation", ctx).Return([]domain.ConversationUnreadInfo{
		{ConversationID: 1, UnreadCount: 3},
		{ConversationID: 2, UnreadCount: 1},
	}, nil)

	resp := h.welcomeEvent(ctx, "staff-7", domain.PartyStaff)
	assert.Equal(t, string(domain.Welcome), resp.Action)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Payload["online_customer_count"])
	assert.Equal(t, 4, resp.Payload["unread_count"])
	assert.Len(t, resp.Payload["conversations"], 2)
}

func TestWelcomeEvent_StaffWelcomeSurvivesUnreadLookupFailure(t *testing.T) {
	ctx := context.Background()
	h, msgRepo, _, presence := newWelcomeFixture()

	presence.On("OnlineCustomerCount").Return(2)
	msgRepo.On("UnreadByConversation", ctx).Return(nil, errors.New("mongo down"))

	resp := h.welcomeEvent(ctx, "staff-7", domain.PartyStaff)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Payload["online_customer_count"])
	assert.NotContains(t, resp.Payload, "unread_count")
	assert.NotContains(t, resp.Payload, "conversations")
}

func TestWelcomeEvent_CustomerGetsOwnUnreadCount(t *testing.T) {
	ctx := context.Background()
	h, msgRepo, convRepo, _ := newWelcomeFixture()

	convRepo.On("FindByCustomer", ctx, "cust-1").Return(&domain.Conversation{ID: 5}, nil)
	msgRepo.On("CountUnread", ctx, uint(5), domain.PartyCustomer).Return(int64(3), nil)

	resp := h.welcomeEvent(ctx, "cust-1", domain.PartyCustomer)
	assert.Equal(t, string(domain.Welcome), resp.Action)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(3), resp.Payload["unread_count"])
}

func TestSessionSend_SkipsPayloadThatCannotMarshal(t *testing.T) {
	session := &wsSession{}

	// a channel cannot marshal; the frame must be dropped, not written empty
	session.send(domain.WSResponse{
		Action:  string(domain.Welcome),
		Payload: map[string]interface{}{"bad": make(chan int)},
	})
}
