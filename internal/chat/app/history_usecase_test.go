package app

import (
	"context"
	"testing"

	"food_order_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestCustomerHistory(t *testing.T) {
	ctx := context.Background()
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	uc := NewHistoryUseCase(msgRepo, convRepo, 20)

	convRepo.On("FindByCustomer", ctx, "cust-1").Return(&domain.Conversation{ID: 3}, nil)
	msgRepo.On("VisibleHistory", ctx, uint(3), domain.PartyCustomer, 2, 20).
		Return([]domain.MessageView{{Message: domain.Message{MessageID: "msg-1"}}}, nil)

	views, err := uc.CustomerHistory(ctx, "cust-1", 2)
	assert.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestCustomerHistory_NoConversationGivesEmptyPage(t *testing.T) {
	ctx := context.Background()
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	uc := NewHistoryUseCase(msgRepo, convRepo, 20)

	convRepo.On("FindByCustomer", ctx, "new-cust").Return(nil, gorm.ErrRecordNotFound)

	views, err := uc.CustomerHistory(ctx, "new-cust", 1)
	assert.NoError(t, err)
	assert.Empty(t, views)
	msgRepo.AssertNotCalled(t, "VisibleHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStaffInbox_UsesConfiguredPageSize(t *testing.T) {
	ctx := context.Background()
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	uc := NewHistoryUseCase(msgRepo, convRepo, 0) // falls back to the default

	msgRepo.On("CustomerMessages", ctx, 1, 50).Return([]domain.MessageView{}, nil)

	_, err := uc.StaffInbox(ctx, 1)
	assert.NoError(t, err)
	msgRepo.AssertCalled(t, "CustomerMessages", ctx, 1, 50)
}

func TestChattedCustomers(t *testing.T) {
	ctx := context.Background()
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	uc := NewHistoryUseCase(msgRepo, convRepo, 20)

	convRepo.On("ListCustomerIDs", ctx).Return([]string{"cust-1", "cust-2"}, nil)

	ids, err := uc.ChattedCustomers(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"cust-1", "cust-2"}, ids)
}
