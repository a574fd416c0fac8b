package app

import (
	"context"
	"time"

	"food_order_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert mock insert message
func (m *MockMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByMessageID mock find message by message id
func (m *MockMessageRepository) FindByMessageID(ctx context.Context, messageID string) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkRead mock mark message read
func (m *MockMessageRepository) MarkRead(ctx context.Context, messageID string, readAt time.Time) error {
	args := m.Called(ctx, messageID, readAt)
	return args.Error(0)
}

// SetVisibility mock conditional visibility update
func (m *MockMessageRepository) SetVisibility(ctx context.Context, messageID string, from, next domain.Visibility) (bool, error) {
	args := m.Called(ctx, messageID, from, next)
	return args.Bool(0), args.Error(1)
}

// VisibleHistory mock page of visible history
func (m *MockMessageRepository) VisibleHistory(ctx context.Context, conversationID uint, party domain.Party, page, size int) ([]domain.MessageView, error) {
	args := m.Called(ctx, conversationID, party, page, size)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.MessageView), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindUnread mock unread messages of one conversation
func (m *MockMessageRepository) FindUnread(ctx context.Context, conversationID uint, party domain.Party) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, party)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// CustomerMessages mock staff inbox page
func (m *MockMessageRepository) CustomerMessages(ctx context.Context, page, size int) ([]domain.MessageView, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.MessageView), args.Error(1)
	}
	return nil, args.Error(1)
}

// CountUnread mock unread count
func (m *MockMessageRepository) CountUnread(ctx context.Context, conversationID uint, party domain.Party) (int64, error) {
	args := m.Called(ctx, conversationID, party)
	return args.Get(0).(int64), args.Error(1)
}

// UnreadByConversation mock grouped unread counts
func (m *MockMessageRepository) UnreadByConversation(ctx context.Context) ([]domain.ConversationUnreadInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ConversationUnreadInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

// MessagesInRange mock message stats
func (m *MockMessageRepository) MessagesInRange(ctx context.Context, from, to time.Time) (*domain.MessageStats, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.MessageStats), args.Error(1)
	}
	return nil, args.Error(1)
}

// PurgeFullyHidden mock retention purge
func (m *MockMessageRepository) PurgeFullyHidden(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockConversationRepository Mock ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

// GetOrCreate mock get or create conversation
func (m *MockConversationRepository) GetOrCreate(ctx context.Context, customerID string) (*domain.Conversation, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByID mock find conversation by id
func (m *MockConversationRepository) FindByID(ctx context.Context, id uint) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByCustomer mock find conversation by customer
func (m *MockConversationRepository) FindByCustomer(ctx context.Context, customerID string) (*domain.Conversation, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// Touch mock last-message timestamp update
func (m *MockConversationRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// SetStatus mock status update
func (m *MockConversationRepository) SetStatus(ctx context.Context, id uint, status domain.ConversationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// AppendNote mock staff note insert
func (m *MockConversationRepository) AppendNote(ctx context.Context, note *domain.StaffNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

// Notes mock staff notes of one conversation
func (m *MockConversationRepository) Notes(ctx context.Context, conversationID uint) ([]domain.StaffNote, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.StaffNote), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListActive mock active conversations
func (m *MockConversationRepository) ListActive(ctx context.Context) ([]domain.Conversation, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListCustomerIDs mock chatted customer ids
func (m *MockConversationRepository) ListCustomerIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// ArchiveInactiveSince mock archive sweep
func (m *MockConversationRepository) ArchiveInactiveSince(ctx context.Context, threshold time.Time) (int64, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustomerRepository Mock CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

// FindByCustomerID mock customer lookup
func (m *MockCustomerRepository) FindByCustomerID(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPubSub Mock PubSub
type MockPubSub struct {
	mock.Mock
}

// Publish mock publish
func (m *MockPubSub) Publish(channel string, resp domain.WSResponse) error {
	args := m.Called(channel, resp)
	return args.Error(0)
}

// Subscribe mock subscribe
func (m *MockPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	args := m.Called(ctx, channel, handler)
	return args.Error(0)
}

// MockEventRepository Mock EventRepository
type MockEventRepository struct {
	mock.Mock
}

// Emit mock event emission
func (m *MockEventRepository) Emit(ctx context.Context, event domain.ChatEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockPresenceRegistry Mock PresenceRegistry
type MockPresenceRegistry struct {
	mock.Mock
}

// Register mock presence register
func (m *MockPresenceRegistry) Register(userID string, party domain.Party, sessionID string) {
	m.Called(userID, party, sessionID)
}

// Unregister mock presence unregister
func (m *MockPresenceRegistry) Unregister(sessionID string) {
	m.Called(sessionID)
}

// IsAnyStaffOnline mock staff presence check
func (m *MockPresenceRegistry) IsAnyStaffOnline() bool {
	args := m.Called()
	return args.Bool(0)
}

// OnlineCustomerIDs mock online customer ids
func (m *MockPresenceRegistry) OnlineCustomerIDs() []string {
	args := m.Called()
	if args.Get(0) != nil {
		return args.Get(0).([]string)
	}
	return nil
}

// OnlineCustomerCount mock online customer count
func (m *MockPresenceRegistry) OnlineCustomerCount() int {
	args := m.Called()
	return args.Int(0)
}

// OnlineStaffCount mock online staff count
func (m *MockPresenceRegistry) OnlineStaffCount() int {
	args := m.Called()
	return args.Int(0)
}

// IsOnline mock per-user presence check
func (m *MockPresenceRegistry) IsOnline(userID string) bool {
	args := m.Called(userID)
	return args.Bool(0)
}
