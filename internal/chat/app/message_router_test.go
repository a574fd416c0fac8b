package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"food_order_chat_service/internal/chat/domain"
	"food_order_chat_service/internal/chat/repository"
	errprocess "food_order_chat_service/pkg/err"
	"food_order_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

func newRouterFixture() (*MessageRouter, *MockMessageRepository, *MockConversationRepository, *MockCustomerRepository, *MockPresenceRegistry, *MockPubSub, *MockEventRepository) {
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	customerRepo := new(MockCustomerRepository)
	presence := new(MockPresenceRegistry)
	pubSub := new(MockPubSub)
	events := new(MockEventRepository)
	router := NewMessageRouter(msgRepo, convRepo, customerRepo, presence, pubSub, events)
	return router, msgRepo, convRepo, customerRepo, presence, pubSub, events
}

func TestSendCustomerMessage_AckWhenNoStaffOnline(t *testing.T) {
	ctx := context.Background()
	router, msgRepo, convRepo, _, presence, pubSub, events := newRouterFixture()

	conv := &domain.Conversation{ID: 7, CustomerID: "cust-1", Status: domain.ConversationActive}
	convRepo.On("GetOrCreate", ctx, "cust-1").Return(conv, nil)
	msgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	convRepo.On("Touch", ctx, uint(7), mock.Anything).Return(nil)
	presence.On("IsAnyStaffOnline").Return(false)
	pubSub.On("Publish", repository.CustomerChannel("cust-1"), mock.Anything).Return(nil)
	events.On("Emit", ctx, mock.Anything).Return(nil)

	msg, err := router.SendCustomerMessage(ctx, "cust-1", "where is my order?", "")
	assert.NoError(t, err)
	assert.NotEmpty(t, msg.MessageID)
	assert.Equal(t, uint(7), msg.ConversationID)
	assert.Equal(t, domain.CustomerToStaff, msg.Direction)

	// the ack goes back to the sender, nothing reaches the staff channel
	pubSub.AssertCalled(t, "Publish", repository.CustomerChannel("cust-1"), mock.MatchedBy(func(resp domain.WSResponse) bool {
		return resp.Action == string(domain.AckMessage)
	}))
	pubSub.AssertNotCalled(t, "Publish", repository.StaffBroadcastChannel, mock.Anything)
	events.AssertCalled(t, "Emit", ctx, mock.Anything)
}

func TestSendCustomerMessage_BroadcastWhenStaffOnline(t *testing.T) {
	ctx := context.Background()
	router, msgRepo, convRepo, customerRepo, presence, pubSub, events := newRouterFixture()

	conv := &domain.Conversation{ID: 3, CustomerID: "cust-2"}
	convRepo.On("GetOrCreate", ctx, "cust-2").Return(conv, nil)
	msgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	convRepo.On("Touch", ctx, uint(3), mock.Anything).Return(nil)
	presence.On("IsAnyStaffOnline").Return(true)
	customerRepo.On("FindByCustomerID", ctx, "cust-2").
		Return(&domain.Customer{CustomerID: "cust-2", Name: "Amy", Email: "amy@example.com", Phone: "0912345678"}, nil)
	pubSub.On("Publish", repository.StaffBroadcastChannel, mock.Anything).Return(nil)
	events.On("Emit", ctx, mock.Anything).Return(nil)

	_, err := router.SendCustomerMessage(ctx, "cust-2", "my noodles are cold", "")
	assert.NoError(t, err)

	pubSub.AssertCalled(t, "Publish", repository.StaffBroadcastChannel, mock.MatchedBy(func(resp domain.WSResponse) bool {
		return resp.Action == string(domain.NotifyMessage) &&
			resp.Payload["sender_name"] == "Amy" &&
			resp.Payload["sender_id"] == "cust-2"
	}))
	pubSub.AssertNotCalled(t, "Publish", repository.CustomerChannel("cust-2"), mock.Anything)
}

func TestSendCustomerMessage_ContentValidation(t *testing.T) {
	ctx := context.Background()
	router, msgRepo, convRepo, _, presence, pubSub, events := newRouterFixture()

	_, err := router.SendCustomerMessage(ctx, "cust-1", "   ", "")
	assert.ErrorIs(t, err, errprocess.ErrValidation)

	_, err = router.SendCustomerMessage(ctx, "cust-1", strings.Repeat("a", domain.MaxContentLength+1), "")
	assert.ErrorIs(t, err, errprocess.ErrValidation)

	// exactly the limit passes validation
	convRepo.On("GetOrCreate", ctx, "cust-1").Return(&domain.Conversation{ID: 1, CustomerID: "cust-1"}, nil)
	msgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	convRepo.On("Touch", ctx, uint(1), mock.Anything).Return(nil)
	presence.On("IsAnyStaffOnline").Return(false)
	pubSub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	events.On("Emit", ctx, mock.Anything).Return(nil)

	_, err = router.SendCustomerMessage(ctx, "cust-1", strings.Repeat("a", domain.MaxContentLength), "")
	assert.NoError(t, err)
}

func TestSendCustomerMessage_ReplyTargetMissing(t *testing.T) {
	ctx := context.Background()
	router, msgRepo, _, _, _, _, _ := newRouterFixture()

	msgRepo.On("FindByMessageID", ctx, "msg-x").Return(nil, mongo.ErrNoDocuments)

	_, err := router.SendCustomerMessage(ctx, "cust-1", "re: my order", "msg-x")
	assert.ErrorIs(t, err, errprocess.ErrNotFound)
	msgRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSendCustomerMessage_ReplyDirectionMustOppose(t *testing.T) {
	ctx := context.Background()
	router, msgRepo, _, _, _, _, _ := newRouterFixture()

	// a customer can only reply to a staff message
	target := &domain.Message{MessageID: "msg-1", SenderID: "cust-9", Direction: domain.CustomerToStaff}
	msgRepo.On("FindByMessageID", ctx, "msg-1").Return(target, nil)

	_, err := router.SendCustomerMessage(ctx, "cust-1", "me too", "msg-1")
	assert.ErrorIs(t, err, errprocess.ErrValidation)
}

func TestSendStaffMessage_ReplyTargetWinsOverRecipient(t *testing.T) {
	ctx := context.Background()
	router, msgRepo, convRepo, customerRepo, _, pubSub, events := newRouterFixture()

	target := &domain.Message{MessageID: "msg-5", SenderID: "cust-9", Direction: domain.CustomerToStaff}
	msgRepo.On("FindByMessageID", ctx, "msg-5").Return(target, nil)
	conv := &domain.Conversation{ID: 11, CustomerID: "cust-9"}
	convRepo.On("GetOrCreate", ctx, "cust-9").Return(conv, nil)
	msgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	convRepo.On("Touch", ctx, uint(11), mock.Anything).Return(nil)
	pubSub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	events.On("Emit", ctx, mock.Anything).Return(nil)

	// the explicit recipient disagrees with the thread; the thread wins
	sent, err := router.SendStaffMessage(ctx, "staff-1", "refund is on its way", "msg-5", "cust-1")
	assert.NoError(t, err)
	assert.Len(t, sent, 1)
	assert.Equal(t, "cust-9", sent[0].ReceiverID)

	// a reply skips recipient resolution entirely
	customerRepo.AssertNotCalled(t, "FindByCustomerID", mock.Anything, mock.Anything)
	pubSub.AssertCalled(t, "Publish", repository.CustomerChannel("cust-9"), mock.Anything)
	pubSub.AssertCalled(t, "Publish", repository.StaffBroadcastChannel, mock.MatchedBy(func(resp domain.WSResponse) bool {
		return resp.Payload["reply_content"] == target.Content || resp.Payload["reply_sender_id"] == "cust-9"
	}))
}

func TestSendStaffMessage_UnknownRecipient(t *testing.T) {
	ctx := context.Background()
	router, msgRepo, _, customerRepo, _, _, _ := newRouterFixture()

	customerRepo.On("FindByCustomerID", ctx, "ghost").Return(nil, repository.ErrCustomerNotFound)

	_, err := router.SendStaffMessage(ctx, "staff-1", "hello?", "", "ghost")
	assert.ErrorIs(t, err, errprocess.ErrNotFound)
	msgRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSendStaffMessage_BroadcastFansOutToActiveConversations(t *testing.T) {
	ctx := context.Background()
	router, msgRepo, convRepo, _, presence, pubSub, events := newRouterFixture()

	convRepo.On("ListActive", ctx).Return([]domain.Conversation{
		{ID: 1, CustomerID: "cust-1"},
		{ID: 2, CustomerID: "cust-2"},
	}, nil)
	msgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	convRepo.On("Touch", ctx, mock.Anything, mock.Anything).Return(nil)
	// cust-3 is online but has no active conversation
	presence.On("OnlineCustomerIDs").Return([]string{"cust-1", "cust-3"})
	pubSub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	events.On("Emit", ctx, mock.Anything).Return(nil)

	sent, err := router.SendStaffMessage(ctx, "staff-1", "kitchen closes early today", "", "")
	assert.NoError(t, err)
	assert.Len(t, sent, 2)

	// distinct copies per conversation
	assert.NotEqual(t, sent[0].MessageID, sent[1].MessageID)
	assert.Equal(t, "cust-1", sent[0].ReceiverID)
	assert.Equal(t, "cust-2", sent[1].ReceiverID)

	pubSub.AssertCalled(t, "Publish", repository.CustomerChannel("cust-1"), mock.Anything)
	pubSub.AssertNotCalled(t, "Publish", repository.CustomerChannel("cust-2"), mock.Anything)
	pubSub.AssertNotCalled(t, "Publish", repository.CustomerChannel("cust-3"), mock.Anything)
	pubSub.AssertCalled(t, "Publish", repository.StaffBroadcastChannel, mock.MatchedBy(func(resp domain.WSResponse) bool {
		return resp.Payload["broadcast"] == true && resp.Payload["pushed"] == 1
	}))
	events.AssertNumberOfCalls(t, "Emit", 2)
}

func TestSendCustomerMessage_PushFailureDoesNotFailTheSend(t *testing.T) {
	ctx := context.Background()
	router, msgRepo, convRepo, _, presence, pubSub, events := newRouterFixture()

	conv := &domain.Conversation{ID: 4, CustomerID: "cust-1"}
	convRepo.On("GetOrCreate", ctx, "cust-1").Return(conv, nil)
	msgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	convRepo.On("Touch", ctx, uint(4), mock.Anything).Return(nil)
	presence.On("IsAnyStaffOnline").Return(false)
	pubSub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	events.On("Emit", ctx, mock.Anything).Return(errors.New("kafka down"))

	msg, err := router.SendCustomerMessage(ctx, "cust-1", "still waiting", "")
	assert.NoError(t, err)
	assert.NotNil(t, msg)
}
