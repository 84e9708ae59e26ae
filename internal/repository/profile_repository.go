package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"roadside-service/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// SetAvailability switches a provider on or off. Going offline clears the
// coordinates.
func (r *ProfileRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool, lat, lng *float64) error {
	updates := map[string]interface{}{
		"is_available": available,
		"current_lat":  lat,
		"current_lng":  lng,
	}
	if lat != nil && lng != nil {
		updates["location_updated_at"] = time.Now()
	} else {
		updates["location_updated_at"] = nil
	}

	res := r.db.WithContext(ctx).Model(&model.Profile{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ProfileRepository) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"current_lat":         lat,
			"current_lng":         lng,
			"location_updated_at": at,
		}).Error
}

// ListProviders returns provider profiles, optionally only those online.
func (r *ProfileRepository) ListProviders(ctx context.Context, onlyAvailable bool) ([]model.Profile, error) {
	var profiles []model.Profile
	query := r.db.WithContext(ctx).Model(&model.Profile{}).
		Joins("JOIN user_roles ur ON ur.user_id = profiles.id").
		Where("ur.role = ?", model.RoleProvider)
	if onlyAvailable {
		query = query.Where("profiles.is_available = ?", true)
	}
	err := query.Order("profiles.full_name ASC").Find(&profiles).Error
	return profiles, err
}
