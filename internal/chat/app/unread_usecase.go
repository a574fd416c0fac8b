package app

import (
	"context"
	"errors"
	"time"

	"food_order_chat_service/internal/chat/domain"
	"food_order_chat_service/internal/chat/repository"
	"food_order_chat_service/pkg/database"
	"food_order_chat_service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const staffSummaryCacheKey = "chat:unread:staff_summary"

// UnreadUseCase derives unread counts from the message store and the
// conversation directory. Counts follow the same visibility rule as
// history: a message a party deleted no longer counts against them.
type UnreadUseCase struct {
	msgRepo  repository.MessageRepository
	convRepo repository.ConversationRepository
	cache    database.RedisRepository[domain.UnreadSummary]
	cacheTTL time.Duration
}

// NewUnreadUseCase create an UnreadUseCase; cache may be nil
func NewUnreadUseCase(
	msgRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
	cache database.RedisRepository[domain.UnreadSummary],
	cacheTTL time.Duration,
) *UnreadUseCase {
	return &UnreadUseCase{
		msgRepo:  msgRepo,
		convRepo: convRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// UnreadForCustomer staff->customer messages the customer has not read and
// not deleted
func (uc *UnreadUseCase) UnreadForCustomer(ctx context.Context, conversationID uint) (int64, error) {
	return uc.msgRepo.CountUnread(ctx, conversationID, domain.PartyCustomer)
}

// UnreadForStaff customer->staff messages the pool has not read and not
// deleted
func (uc *UnreadUseCase) UnreadForStaff(ctx context.Context, conversationID uint) (int64, error) {
	return uc.msgRepo.CountUnread(ctx, conversationID, domain.PartyStaff)
}

// UnreadMessages the unread messages themselves, oldest first
func (uc *UnreadUseCase) UnreadMessages(ctx context.Context, conversationID uint, party domain.Party) ([]domain.Message, error) {
	return uc.msgRepo.FindUnread(ctx, conversationID, party)
}

// CustomerUnread unread count of one customer's own conversation; a
// customer without a conversation simply has zero unread
func (uc *UnreadUseCase) CustomerUnread(ctx context.Context, customerID string) (int64, error) {
	conv, err := uc.convRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return uc.UnreadForCustomer(ctx, conv.ID)
}

// CustomerUnreadMessages the customer's unread messages themselves, oldest
// first, for clients that render them instead of a badge
func (uc *UnreadUseCase) CustomerUnreadMessages(ctx context.Context, customerID string) ([]domain.Message, error) {
	conv, err := uc.convRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []domain.Message{}, nil
		}
		return nil, err
	}
	return uc.msgRepo.FindUnread(ctx, conv.ID, domain.PartyCustomer)
}

// CustomerUnreadForStaff staff-facing unread status of one customer
func (uc *UnreadUseCase) CustomerUnreadForStaff(ctx context.Context, customerID string) (int64, error) {
	conv, err := uc.convRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return uc.UnreadForStaff(ctx, conv.ID)
}

// StaffDashboard per-conversation unread counts plus the pool total,
// cached for a short window since every staff connect reads it
func (uc *UnreadUseCase) StaffDashboard(ctx context.Context) (*domain.UnreadSummary, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, staffSummaryCacheKey); err == nil {
			return &cached, nil
		}
	}

	infos, err := uc.msgRepo.UnreadByConversation(ctx)
	if err != nil {
		return nil, err
	}

	summary := domain.UnreadSummary{Conversations: infos}
	for _, info := range infos {
		summary.TotalUnread += info.UnreadCount
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, staffSummaryCacheKey, summary, uc.cacheTTL); err != nil {
			logger.Log.Warn("unread summary cache write failed", zap.Error(err))
		}
	}
	return &summary, nil
}
