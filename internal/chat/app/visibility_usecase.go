package app

import (
	"context"
	"fmt"
	"time"

	"food_order_chat_service/internal/chat/domain"
	"food_order_chat_service/internal/chat/repository"
	errprocess "food_order_chat_service/pkg/err"
	"food_order_chat_service/pkg/logger"
	"food_order_chat_service/pkg/token"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// VisibilityUseCase read-marking and per-party soft delete/restore.
// Read-state for staff is pool-wide: any staff member marking a message
// read clears it for the whole support inbox.
type VisibilityUseCase struct {
	msgRepo repository.MessageRepository
	events  repository.EventRepository
}

// NewVisibilityUseCase create a VisibilityUseCase
func NewVisibilityUseCase(msgRepo repository.MessageRepository, events repository.EventRepository) *VisibilityUseCase {
	return &VisibilityUseCase{msgRepo: msgRepo, events: events}
}

func (uc *VisibilityUseCase) findMessage(ctx context.Context, messageID string) (*domain.Message, error) {
	msg, err := uc.msgRepo.FindByMessageID(ctx, messageID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errprocess.NotFound("message does not exist: " + messageID)
		}
		return nil, err
	}
	return msg, nil
}

// MarkRead set the read timestamp; marking an already-read message again
// is a no-op. Customers may only mark messages of their own conversation,
// staff may mark anything in the pool
func (uc *VisibilityUseCase) MarkRead(ctx context.Context, messageID, actorID, actorRole string) error {
	msg, err := uc.findMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if !token.IsStaff(actorRole) && actorID != msg.SenderID && actorID != msg.ReceiverID {
		return errprocess.Authorization("message belongs to another conversation")
	}
	if msg.ReadAt != nil {
		return nil
	}
	if err := uc.msgRepo.MarkRead(ctx, messageID, time.Now()); err != nil {
		return err
	}
	uc.emit(ctx, domain.EventMessageRead, msg)
	return nil
}

// authorizeFlagChange the customer-side flag belongs to the message's
// sender; the staff-side flag to anyone in the support pool
func authorizeFlagChange(msg *domain.Message, party domain.Party, actorID, actorRole string) error {
	switch party {
	case domain.PartyCustomer:
		if actorID != msg.SenderID {
			return errprocess.Authorization("only the sender may change the customer visibility of a message")
		}
	case domain.PartyStaff:
		if !token.IsStaff(actorRole) {
			return errprocess.Authorization("staff role required to change the staff visibility of a message")
		}
	default:
		return errprocess.Validation("unknown party: " + string(party))
	}
	return nil
}

// visibilityRetries re-read attempts when the conditional write loses to
// a concurrent flag change of the other party
const visibilityRetries = 3

// SoftDelete set party's hidden flag; the message stays visible for the
// other side
func (uc *VisibilityUseCase) SoftDelete(ctx context.Context, messageID string, party domain.Party, actorID, actorRole string) error {
	return uc.changeVisibility(ctx, messageID, party, actorID, actorRole, domain.Visibility.Hide, domain.EventMessageHidden)
}

// Restore clear party's hidden flag; content and timestamps come back
// untouched
func (uc *VisibilityUseCase) Restore(ctx context.Context, messageID string, party domain.Party, actorID, actorRole string) error {
	return uc.changeVisibility(ctx, messageID, party, actorID, actorRole, domain.Visibility.Show, domain.EventMessageRestored)
}

// changeVisibility read, compute the next state, write conditional on the
// observed state. Both parties may flag the same message at once; a lost
// write re-reads so neither flag is dropped
func (uc *VisibilityUseCase) changeVisibility(
	ctx context.Context,
	messageID string,
	party domain.Party,
	actorID, actorRole string,
	transition func(domain.Visibility, domain.Party) domain.Visibility,
	eventType string,
) error {
	for attempt := 0; ; attempt++ {
		msg, err := uc.findMessage(ctx, messageID)
		if err != nil {
			return err
		}
		if err := authorizeFlagChange(msg, party, actorID, actorRole); err != nil {
			return err
		}

		next := transition(msg.Visibility, party)
		if next == msg.Visibility {
			return nil
		}
		ok, err := uc.msgRepo.SetVisibility(ctx, messageID, msg.Visibility, next)
		if err != nil {
			return err
		}
		if ok {
			uc.emit(ctx, eventType, msg)
			return nil
		}
		if attempt == visibilityRetries {
			return fmt.Errorf("concurrent visibility change on message %s", messageID)
		}
	}
}

func (uc *VisibilityUseCase) emit(ctx context.Context, eventType string, msg *domain.Message) {
	if uc.events == nil {
		return
	}
	err := uc.events.Emit(ctx, domain.ChatEvent{
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
