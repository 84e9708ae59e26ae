package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"roadside-service/internal/model"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create inserts a rating. A second rating for the same request and customer
// fails with gorm.ErrDuplicatedKey.
func (r *RatingRepository) Create(ctx context.Context, rating *model.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *RatingRepository) GetByRequestAndCustomer(ctx context.Context, requestID, customerID uuid.UUID) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).
		Where("service_request_id = ? AND customer_id = ?", requestID, customerID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *RatingRepository) Update(ctx context.Context, rating *model.Rating) error {
	return r.db.WithContext(ctx).Model(rating).
		Select("rating", "review", "updated_at").
		Updates(rating).Error
}

func (r *RatingRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.Rating, error) {
	var ratings []model.Rating
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}

func (r *RatingRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Rating, error) {
	var ratings []model.Rating
	err := r.db.WithContext(ctx).
		Where("service_request_id = ?", requestID).
		Find(&ratings).Error
	return ratings, err
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

func (r *RatingRepository) SummaryForProvider(ctx context.Context, providerID uuid.UUID) (RatingSummary, error) {
	var summary RatingSummary
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("provider_id = ?", providerID).
		Scan(&summary).Error
	return summary, err
}
