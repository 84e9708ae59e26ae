package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"roadside-service/internal/model"
)

type ContactMessageRepository struct {
	db *gorm.DB
}

func NewContactMessageRepository(db *gorm.DB) *ContactMessageRepository {
	return &ContactMessageRepository{db: db}
}

func (r *ContactMessageRepository) Create(ctx context.Context, msg *model.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *ContactMessageRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContactStatus) error {
	res := r.db.WithContext(ctx).Model(&model.ContactMessage{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ContactMessageRepository) List(ctx context.Context, status *model.ContactStatus) ([]model.ContactMessage, error) {
	var messages []model.ContactMessage
	query := r.db.WithContext(ctx).Model(&model.ContactMessage{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("created_at DESC").Find(&messages).Error
	return messages, err
}
