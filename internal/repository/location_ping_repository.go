package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"roadside-service/internal/model"
)

type LocationPingRepository struct {
	db *gorm.DB
}

func NewLocationPingRepository(db *gorm.DB) *LocationPingRepository {
	return &LocationPingRepository{db: db}
}

func (r *LocationPingRepository) Create(ctx context.Context, ping *model.LocationPing) error {
	return r.db.WithContext(ctx).Create(ping).Error
}

func (r *LocationPingRepository) GetLastByProviderID(ctx context.Context, providerID uuid.UUID) (*model.LocationPing, error) {
	var ping model.LocationPing
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("recorded_at DESC").
		First(&ping).Error
	if err != nil {
		return nil, err
	}
	return &ping, nil
}
