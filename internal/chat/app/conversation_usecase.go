package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"food_order_chat_service/internal/chat/domain"
	"food_order_chat_service/internal/chat/repository"
	errprocess "food_order_chat_service/pkg/err"
	"food_order_chat_service/pkg/token"

	"gorm.io/gorm"
)

// ConversationUseCase staff-side conversation management: activity state
// and the append-only notes log. State changes are idempotent for the end
// state but always leave an audit note.
type ConversationUseCase struct {
	convRepo repository.ConversationRepository
}

// NewConversationUseCase create a ConversationUseCase
func NewConversationUseCase(convRepo repository.ConversationRepository) *ConversationUseCase {
	return &ConversationUseCase{convRepo: convRepo}
}

func (uc *ConversationUseCase) find(ctx context.Context, conversationID uint) (*domain.Conversation, error) {
	conv, err := uc.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errprocess.NotFound(fmt.Sprintf("conversation does not exist: %d", conversationID))
		}
		return nil, err
	}
	return conv, nil
}

func requireStaff(role string) error {
	if !token.IsStaff(role) {
		return errprocess.Authorization("staff role required")
	}
	return nil
}

// Deactivate mark a conversation inactive and record who did it
func (uc *ConversationUseCase) Deactivate(ctx context.Context, conversationID uint, staffID, staffRole string) error {
	return uc.setStatus(ctx, conversationID, staffID, staffRole, domain.ConversationInactive)
}

// Reactivate mark a conversation active again
func (uc *ConversationUseCase) Reactivate(ctx context.Context, conversationID uint, staffID, staffRole string) error {
	return uc.setStatus(ctx, conversationID, staffID, staffRole, domain.ConversationActive)
}

func (uc *ConversationUseCase) setStatus(ctx context.Context, conversationID uint, staffID, staffRole string, status domain.ConversationStatus) error {
	if err := requireStaff(staffRole); err != nil {
		return err
	}
	conv, err := uc.find(ctx, conversationID)
	if err != nil {
		return err
	}

	if conv.Status != status {
		if err := uc.convRepo.SetStatus(ctx, conversationID, status); err != nil {
			return err
		}
	}
	// re-applying the same state still leaves an audit note
	return uc.convRepo.AppendNote(ctx, &domain.StaffNote{
		ConversationID: conversationID,
		StaffID:        staffID,
		Note:           fmt.Sprintf("conversation set %s", status),
	})
}

// AddNote append a free-form staff note to the conversation's log
func (uc *ConversationUseCase) AddNote(ctx context.Context, conversationID uint, staffID, staffRole, note string) error {
	if err := requireStaff(staffRole); err != nil {
		return err
	}
	if strings.TrimSpace(note) == "" {
		return errprocess.Validation("note must not be blank")
	}
	if _, err := uc.find(ctx, conversationID); err != nil {
		return err
	}
	return uc.convRepo.AppendNote(ctx, &domain.StaffNote{
		ConversationID: conversationID,
		StaffID:        staffID,
		Note:           note,
	})
}

// Notes the conversation's note log, oldest first
func (uc *ConversationUseCase) Notes(ctx context.Context, conversationID uint, staffRole string) ([]domain.StaffNote, error) {
	if err := requireStaff(staffRole); err != nil {
		return nil, err
	}
	if _, err := uc.find(ctx, conversationID); err != nil {
		return nil, err
	}
	return uc.convRepo.Notes(ctx, conversationID)
}
