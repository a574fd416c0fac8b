package app

import (
	"context"
	"errors"
	"time"

	"food_order_chat_service/internal/chat/domain"
	"food_order_chat_service/internal/chat/repository"

	"gorm.io/gorm"
)

// HistoryUseCase read-side of the chat: paginated history views, the staff
// inbox, the customer directory and time-ranged statistics. Every view
// applies the same visibility rule as push delivery.
type HistoryUseCase struct {
	msgRepo  repository.MessageRepository
	convRepo repository.ConversationRepository
	pageSize int
}

// NewHistoryUseCase create a HistoryUseCase
func NewHistoryUseCase(msgRepo repository.MessageRepository, convRepo repository.ConversationRepository, pageSize int) *HistoryUseCase {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &HistoryUseCase{msgRepo: msgRepo, convRepo: convRepo, pageSize: pageSize}
}

// CustomerHistory one page of the customer's own conversation, newest
// first; a customer who never chatted gets an empty page
func (uc *HistoryUseCase) CustomerHistory(ctx context.Context, customerID string, page int) ([]domain.MessageView, error) {
	conv, err := uc.convRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []domain.MessageView{}, nil
		}
		return nil, err
	}
	return uc.msgRepo.VisibleHistory(ctx, conv.ID, domain.PartyCustomer, page, uc.pageSize)
}

// ConversationHistory one page of any conversation as seen by party
func (uc *HistoryUseCase) ConversationHistory(ctx context.Context, conversationID uint, party domain.Party, page int) ([]domain.MessageView, error) {
	return uc.msgRepo.VisibleHistory(ctx, conversationID, party, page, uc.pageSize)
}

// StaffInbox one page of every customer->staff message still visible to
// the pool
func (uc *HistoryUseCase) StaffInbox(ctx context.Context, page int) ([]domain.MessageView, error) {
	return uc.msgRepo.CustomerMessages(ctx, page, uc.pageSize)
}

// ChattedCustomers every customer who has ever chatted
func (uc *HistoryUseCase) ChattedCustomers(ctx context.Context) ([]string, error) {
	return uc.convRepo.ListCustomerIDs(ctx)
}

// Stats message statistics over [from, to)
func (uc *HistoryUseCase) Stats(ctx context.Context, from, to time.Time) (*domain.MessageStats, error) {
	return uc.msgRepo.MessagesInRange(ctx, from, to)
}
