package repository

import (
	"context"
	"errors"
	"time"

	"food_order_chat_service/internal/chat/domain"

	"gorm.io/gorm"
)

// ConversationRepository definition the one-conversation-per-customer
// directory
type ConversationRepository interface {
	// GetOrCreate return the customer's conversation, creating it on first
	// message. Safe under concurrent first calls: the unique index on
	// customer_id plus a find retry guarantees a single row per customer.
	GetOrCreate(ctx context.Context, customerID string) (*domain.Conversation, error)
	FindByID(ctx context.Context, id uint) (*domain.Conversation, error)
	FindByCustomer(ctx context.Context, customerID string) (*domain.Conversation, error)
	// Touch set the last-message timestamp
	Touch(ctx context.Context, id uint, at time.Time) error
	SetStatus(ctx context.Context, id uint, status domain.ConversationStatus) error
	AppendNote(ctx context.Context, note *domain.StaffNote) error
	Notes(ctx context.Context, conversationID uint) ([]domain.StaffNote, error)
	ListActive(ctx context.Context) ([]domain.Conversation, error)
	// ListCustomerIDs every customer who has ever chatted
	ListCustomerIDs(ctx context.Context) ([]string, error)
	// ArchiveInactiveSince deactivate conversations idle since before the
	// threshold; returns how many rows changed
	ArchiveInactiveSince(ctx context.Context, threshold time.Time) (int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository create a ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// AutoMigrateConversations create/update the directory tables
func AutoMigrateConversations(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Conversation{}, &domain.StaffNote{})
}

func (r *conversationRepository) GetOrCreate(ctx context.Context, customerID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = domain.Conversation{
		CustomerID:    customerID,
		Status:        domain.ConversationActive,
		LastMessageAt: time.Now(),
	}
	createErr := r.db.WithContext(ctx).Create(&conv).Error
	if createErr == nil {
		return &conv, nil
	}

	// lost the insert race: another first-message created the row, re-read it
	if errors.Is(createErr, gorm.ErrDuplicatedKey) {
		var existing domain.Conversation
		if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	return nil, createErr
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := r.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindByCustomer(ctx context.Context, customerID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}

func (r *conversationRepository) SetStatus(ctx context.Context, id uint, status domain.ConversationStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *conversationRepository) AppendNote(ctx context.Context, note *domain.StaffNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *conversationRepository) Notes(ctx context.Context, conversationID uint) ([]domain.StaffNote, error) {
	var notes []domain.StaffNote
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&notes).Error
	return notes, err
}

func (r *conversationRepository) ListActive(ctx context.Context) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.ConversationActive).
		Find(&convs).Error
	return convs, err
}

func (r *conversationRepository) ListCustomerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Order("created_at asc").
		Pluck("customer_id", &ids).Error
	return ids, err
}

func (r *conversationRepository) ArchiveInactiveSince(ctx context.Context, threshold time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("status = ? AND last_message_at < ?", domain.ConversationActive, threshold).
		Update("status", domain.ConversationInactive)
	return res.RowsAffected, res.Error
}
