package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"roadside-service/internal/model"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Settle records a payment. When completed is set, the request is written in
// the same database transaction, guarded by its version. A second payment for
// the same request fails with gorm.ErrDuplicatedKey.
func (r *TransactionRepository) Settle(ctx context.Context, txn *model.Transaction, completed *model.ServiceRequest, expected int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if completed != nil {
			if err := updateVersioned(tx, completed, expected, false); err != nil {
				return err
			}
		}
		return tx.Create(txn).Error
	})
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var txn model.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).
		Where("service_request_id = ?", requestID).
		Order("created_at ASC").
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) Update(ctx context.Context, txn *model.Transaction) error {
	return r.db.WithContext(ctx).Save(txn).Error
}

type Revenue struct {
	Total    float64 `json:"total"`
	Provider float64 `json:"provider"`
	Platform float64 `json:"platform"`
	Count    int64   `json:"count"`
}

// SumBetween totals transactions confirmed in [from, to).
func (r *TransactionRepository) SumBetween(ctx context.Context, from, to time.Time) (Revenue, error) {
	var revenue Revenue
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS total, COALESCE(SUM(provider_amount), 0) AS provider, "+
			"COALESCE(SUM(platform_amount), 0) AS platform, COUNT(*) AS count").
		Where("confirmed_at >= ? AND confirmed_at < ?", from, to).
		Scan(&revenue).Error
	return revenue, err
}
