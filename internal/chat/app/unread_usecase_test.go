package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"food_order_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// mockSummaryCache in-memory stand-in for the redis unread summary cache
type mockSummaryCache struct {
	mock.Mock
}

func (m *mockSummaryCache) Set(ctx context.Context, key string, value domain.UnreadSummary, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockSummaryCache) Get(ctx context.Context, key string) (domain.UnreadSummary, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.UnreadSummary), args.Error(1)
}

func (m *mockSummaryCache) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockSummaryCache) GetTTL(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *mockSummaryCache) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

func TestCustomerUnread(t *testing.T) {
	ctx := context.Background()
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	uc := NewUnreadUseCase(msgRepo, convRepo, nil, 0)

	convRepo.On("FindByCustomer", ctx, "cust-1").Return(&domain.Conversation{ID: 9, CustomerID: "cust-1"}, nil)
	msgRepo.On("CountUnread", ctx, uint(9), domain.PartyCustomer).Return(int64(4), nil)

	count, err := uc.CustomerUnread(ctx, "cust-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestCustomerUnread_NoConversationMeansZero(t *testing.T) {
	ctx := context.Background()
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	uc := NewUnreadUseCase(msgRepo, convRepo, nil, 0)

	convRepo.On("FindByCustomer", ctx, "new-cust").Return(nil, gorm.ErrRecordNotFound)

	count, err := uc.CustomerUnread(ctx, "new-cust")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
	msgRepo.AssertNotCalled(t, "CountUnread", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerUnreadMessages(t *testing.T) {
	ctx := context.Background()
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	uc := NewUnreadUseCase(msgRepo, convRepo, nil, 0)

	convRepo.On("FindByCustomer", ctx, "cust-1").Return(&domain.Conversation{ID: 9}, nil)
	msgRepo.On("FindUnread", ctx, uint(9), domain.PartyCustomer).
		Return([]domain.Message{{MessageID: "msg-1"}, {MessageID: "msg-2"}}, nil)

	messages, err := uc.CustomerUnreadMessages(ctx, "cust-1")
	assert.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestCustomerUnreadForStaff_CountsTheOppositeDirection(t *testing.T) {
	ctx := context.Background()
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	uc := NewUnreadUseCase(msgRepo, convRepo, nil, 0)

	convRepo.On("FindByCustomer", ctx, "cust-1").Return(&domain.Conversation{ID: 9}, nil)
	msgRepo.On("CountUnread", ctx, uint(9), domain.PartyStaff).Return(int64(2), nil)

	count, err := uc.CustomerUnreadForStaff(ctx, "cust-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestStaffDashboard_SumsConversations(t *testing.T) {
	ctx := context.Background()
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	uc := NewUnreadUseCase(msgRepo, convRepo, nil, 0)

	msgRepo.On("UnreadByConversation", ctx).Return([]domain.ConversationUnreadInfo{
		{ConversationID: 1, UnreadCount: 3},
		{ConversationID: 2, UnreadCount: 5},
	}, nil)

	summary, err := uc.StaffDashboard(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 8, summary.TotalUnread)
	assert.Len(t, summary.Conversations, 2)
}

func TestStaffDashboard_ServedFromCache(t *testing.T) {
	ctx := context.Background()
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	cache := new(mockSummaryCache)
	uc := NewUnreadUseCase(msgRepo, convRepo, cache, time.Minute)

	cache.On("Get", ctx, staffSummaryCacheKey).
		Return(domain.UnreadSummary{TotalUnread: 7}, nil)

	summary, err := uc.StaffDashboard(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 7, summary.TotalUnread)
	msgRepo.AssertNotCalled(t, "UnreadByConversation", mock.Anything)
}

func TestStaffDashboard_CacheMissFallsThroughAndWritesBack(t *testing.T) {
	ctx := context.Background()
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	cache := new(mockSummaryCache)
	uc := NewUnreadUseCase(msgRepo, convRepo, cache, time.Minute)

	cache.On("Get", ctx, staffSummaryCacheKey).
		Return(domain.UnreadSummary{}, errors.New("redis.Nil"))
	msgRepo.On("UnreadByConversation", ctx).Return([]domain.ConversationUnreadInfo{
		{ConversationID: 1, UnreadCount: 1},
	}, nil)
	cache.On("Set", ctx, staffSummaryCacheKey, mock.Anything, time.Minute).Return(nil)

	summary, err := uc.StaffDashboard(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.TotalUnread)
	cache.AssertCalled(t, "Set", ctx, staffSummaryCacheKey, mock.Anything, time.Minute)
}
