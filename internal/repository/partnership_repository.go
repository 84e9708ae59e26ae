package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"roadside-service/internal/model"
)

type PartnershipRepository struct {
	db *gorm.DB
}

func NewPartnershipRepository(db *gorm.DB) *PartnershipRepository {
	return &PartnershipRepository{db: db}
}

func (r *PartnershipRepository) Create(ctx context.Context, app *model.PartnershipApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *PartnershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PartnershipApplication, error) {
	var app model.PartnershipApplication
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *PartnershipRepository) Update(ctx context.Context, app *model.PartnershipApplication) error {
	return r.db.WithContext(ctx).Save(app).Error
}

func (r *PartnershipRepository) List(ctx context.Context, status *model.ApplicationStatus) ([]model.PartnershipApplication, error) {
	var apps []model.PartnershipApplication
	query := r.db.WithContext(ctx).Model(&model.PartnershipApplication{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("created_at DESC").Find(&apps).Error
	return apps, err
}
