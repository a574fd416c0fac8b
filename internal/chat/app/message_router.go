package app

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"food_order_chat_service/internal/chat/domain"
	"food_order_chat_service/internal/chat/repository"
	errprocess "food_order_chat_service/pkg/err"
	"food_order_chat_service/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MessageRouter persists each new message and decides how it is delivered:
// broadcast to the staff pool, push to a customer's private channel, or an
// acknowledgment back to the sender when nobody is online. The write is
// committed first; push delivery is a separate best-effort step that never
// fails the request.
type MessageRouter struct {
	msgRepo      repository.MessageRepository
	convRepo     repository.ConversationRepository
	customerRepo repository.CustomerRepository
	presence     repository.PresenceRegistry
	pubSub       repository.PubSub
	events       repository.EventRepository
}

// NewMessageRouter create a MessageRouter
func NewMessageRouter(
	msgRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
	customerRepo repository.CustomerRepository,
	presence repository.PresenceRegistry,
	pubSub repository.PubSub,
	events repository.EventRepository,
) *MessageRouter {
	return &MessageRouter{
		msgRepo:      msgRepo,
		convRepo:     convRepo,
		customerRepo: customerRepo,
		presence:     presence,
		pubSub:       pubSub,
		events:       events,
	}
}

// validateContent reject blank or overlong message content
func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errprocess.Validation("message content must not be blank")
	}
	if utf8.RuneCountInString(content) > domain.MaxContentLength {
		return errprocess.Validation(fmt.Sprintf("message content exceeds %d characters", domain.MaxContentLength))
	}
	return nil
}

// resolveReplyTarget load the reply target and check it opposes direction
func (r *MessageRouter) resolveReplyTarget(ctx context.Context, replyTo string, direction domain.Direction) (*domain.Message, error) {
	target, err := r.msgRepo.FindByMessageID(ctx, replyTo)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errprocess.NotFound("reply target does not exist: " + replyTo)
		}
		return nil, err
	}
	if target.Direction != direction.Opposite() {
		return nil, errprocess.Validation("reply target must have the opposite direction")
	}
	return target, nil
}

// SendCustomerMessage route one customer->staff message
func (r *MessageRouter) SendCustomerMessage(ctx context.Context, customerID, content, replyTo string) (*domain.Message, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	var replyTarget *domain.Message
	if replyTo != "" {
		var err error
		replyTarget, err = r.resolveReplyTarget(ctx, replyTo, domain.CustomerToStaff)
		if err != nil {
			return nil, err
		}
	}

	conv, err := r.convRepo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		MessageID:      uuid.New().String(),
		ConversationID: conv.ID,
		SenderID:       customerID,
		Direction:      domain.CustomerToStaff,
		Content:        content,
		SentAt:         time.Now(),
		ReplyTo:        replyTo,
		Visibility:     domain.VisibleBoth,
	}

	// commit step
	if err := r.msgRepo.Insert(ctx, msg); err != nil {
		return nil, err
	}
	if err := r.convRepo.Touch(ctx, conv.ID, msg.SentAt); err != nil {
		return nil, err
	}

	// notify step, best effort from here on
	if r.presence.IsAnyStaffOnline() {
		payload := r.eventPayload(msg, replyTarget)
		r.attachContact(ctx, payload, customerID)
		r.publish(repository.StaffBroadcastChannel, domain.WSResponse{
			Action:  string(domain.NotifyMessage),
			Success: true,
			Payload: payload,
		})
	} else {
		// nobody online; the message still surfaces through unread
		// accounting on the next staff connect
		r.publish(repository.CustomerChannel(customerID), domain.WSResponse{
			Action:  string(domain.AckMessage),
			Success: true,
			Payload: map[string]interface{}{
				"message_id": msg.MessageID,
				"note":       "received, staff will respond",
			},
		})
	}

	r.emit(ctx, domain.EventMessageSent, msg)
	return msg, nil
}

// SendStaffMessage route one staff->customer message. A reply target wins
// over an explicit recipient; with neither, the message is broadcast into
// every active conversation.
func (r *MessageRouter) SendStaffMessage(ctx context.Context, staffID, content, replyTo, recipientID string) ([]domain.Message, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	var replyTarget *domain.Message
	if replyTo != "" {
		var err error
		replyTarget, err = r.resolveReplyTarget(ctx, replyTo, domain.StaffToCustomer)
		if err != nil {
			return nil, err
		}
		// reply semantics win: the target's sender is the recipient
		recipientID = replyTarget.SenderID
	}

	if recipientID == "" {
		return r.broadcastStaffMessage(ctx, staffID, content)
	}

	if replyTarget == nil {
		// explicit recipient must resolve to a known customer
		if _, err := r.customerRepo.FindByCustomerID(ctx, recipientID); err != nil {
			if err == repository.ErrCustomerNotFound {
				return nil, errprocess.NotFound("unknown recipient: " + recipientID)
			}
			return nil, err
		}
	}

	conv, err := r.convRepo.GetOrCreate(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		MessageID:      uuid.New().String(),
		ConversationID: conv.ID,
		SenderID:       staffID,
		ReceiverID:     recipientID,
		Direction:      domain.StaffToCustomer,
		Content:        content,
		SentAt:         time.Now(),
		ReplyTo:        replyTo,
		Visibility:     domain.VisibleBoth,
	}

	if err := r.msgRepo.Insert(ctx, msg); err != nil {
		return nil, err
	}
	if err := r.convRepo.Touch(ctx, conv.ID, msg.SentAt); err != nil {
		return nil, err
	}

	payload := r.eventPayload(msg, replyTarget)
	r.publish(repository.CustomerChannel(recipientID), domain.WSResponse{
		Action:  string(domain.NotifyMessage),
		Success: true,
		Payload: payload,
	})
	if replyTarget != nil {
		// replies get confirmed on the shared staff channel so the whole
		// pool sees the thread was answered
		r.publish(repository.StaffBroadcastChannel, domain.WSResponse{
			Action:  string(domain.NotifyMessage),
			Success: true,
			Payload: payload,
		})
	}

	r.emit(ctx, domain.EventMessageSent, msg)
	return []domain.Message{*msg}, nil
}

// broadcastStaffMessage fan a staff announcement out into every active
// conversation at persistence time, so it remains part of each customer's
// durable history, then push to the customers who are online right now.
func (r *MessageRouter) broadcastStaffMessage(ctx context.Context, staffID, content string) ([]domain.Message, error) {
	convs, err := r.convRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	messages := make([]domain.Message, 0, len(convs))
	byCustomer := make(map[string]*domain.Message, len(convs))

	for i := range convs {
		conv := convs[i]
		msg := domain.Message{
			MessageID:      uuid.New().String(),
			ConversationID: conv.ID,
			SenderID:       staffID,
			ReceiverID:     conv.CustomerID,
			Direction:      domain.StaffToCustomer,
			Content:        content,
			SentAt:         now,
			Visibility:     domain.VisibleBoth,
		}
		if err := r.msgRepo.Insert(ctx, &msg); err != nil {
			return nil, err
		}
		if err := r.convRepo.Touch(ctx, conv.ID, now); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
		byCustomer[conv.CustomerID] = &messages[len(messages)-1]
	}

	pushed := 0
	for _, customerID := range r.presence.OnlineCustomerIDs() {
		msg, ok := byCustomer[customerID]
		if !ok {
			// online customer without an active conversation; nothing was
			// persisted for them, so nothing is pushed either
			continue
		}
		r.publish(repository.CustomerChannel(customerID), domain.WSResponse{
			Action:  string(domain.NotifyMessage),
			Success: true,
			Payload: r.eventPayload(msg, nil),
		})
		pushed++
	}

	r.publish(repository.StaffBroadcastChannel, domain.WSResponse{
		Action:  string(domain.NotifyMessage),
		Success: true,
		Payload: map[string]interface{}{
			"sender_id":     staffID,
			"content":       content,
			"sent_at":       now,
			"conversations": len(messages),
			"pushed":        pushed,
			"broadcast":     true,
		},
	})

	for i := range messages {
		r.emit(ctx, domain.EventMessageSent, &messages[i])
	}
	return messages, nil
}

// eventPayload build the push payload of one message
func (r *MessageRouter) eventPayload(msg *domain.Message, replyTarget *domain.Message) map[string]interface{} {
	payload := map[string]interface{}{
		"message_id":      msg.MessageID,
		"conversation_id": msg.ConversationID,
		"sender_id":       msg.SenderID,
		"direction":       msg.Direction,
		"content":         msg.Content,
		"sent_at":         msg.SentAt,
	}
	if msg.ReceiverID != "" {
		payload["receiver_id"] = msg.ReceiverID
	}
	if replyTarget != nil {
		payload["reply_to"] = msg.ReplyTo
		payload["reply_content"] = replyTarget.Content
		payload["reply_sender_id"] = replyTarget.SenderID
	}
	return payload
}

// attachContact add the sender's contact info for the staff view; lookup
// failures only cost the enrichment, never the push
func (r *MessageRouter) attachContact(ctx context.Context, payload map[string]interface{}, customerID string) {
	customer, err := r.customerRepo.FindByCustomerID(ctx, customerID)
	if err != nil {
		logger.Log.Warn("contact lookup failed", zap.String("customerID", customerID), zap.Error(err))
		return
	}
	payload["sender_name"] = customer.Name
	payload["sender_email"] = customer.Email
	payload["sender_phone"] = customer.Phone
}

// publish best-effort push; a transport failure is logged, never returned,
// the persisted message stays committed
func (r *MessageRouter) publish(channel string, resp domain.WSResponse) {
	if r.pubSub == nil {
		return
	}
	if err := r.pubSub.Publish(channel, resp); err != nil {
		logger.Log.Error("push delivery failed",
			zap.String("channel", channel),
			zap.String("action", resp.Action),
			zap.Error(err),
		)
	}
}

// emit best-effort reporting feed write
func (r *MessageRouter) emit(ctx context.Context, eventType string, msg *domain.Message) {
	if r.events == nil {
		return
	}
	err := r.events.Emit(ctx, domain.ChatEvent{
		Type:           eventType,
		MessageID:      msg.MessageID,
		ConversationID: msg.ConversationID,
		Direction:      msg.Direction,
		OccurredAt:     time.Now(),
	})
	if err != nil {
		logger.Log.Warn("event emit failed", zap.String("type", eventType), zap.Error(err))
	}
}
