package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"roadside-service/internal/model"
)

// ErrStaleVersion is returned when a versioned update finds the row changed
// since it was read.
var ErrStaleVersion = errors.New("stale version")

// activeStatuses are the statuses in which a provider is working a request.
var activeStatuses = []model.RequestStatus{
	model.RequestStatusAssigned,
	model.RequestStatusAccepted,
	model.RequestStatusEnRoute,
	model.RequestStatusInProgress,
}

type ServiceRequestRepository struct {
	db *gorm.DB
}

func NewServiceRequestRepository(db *gorm.DB) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: db}
}

func (r *ServiceRequestRepository) Create(ctx context.Context, req *model.ServiceRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *ServiceRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ServiceRequestRepository) GetByTrackingCode(ctx context.Context, code string) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := r.db.WithContext(ctx).Where("tracking_code = ?", code).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ServiceRequestRepository) TrackingCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ServiceRequest{}).
		Where("tracking_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateVersioned writes req if the stored version still equals expected,
// bumps the version and reloads req from the committed row. Provider
// coordinates are only written when withLocation is set; otherwise the
// latest location sample is kept.
func (r *ServiceRequestRepository) UpdateVersioned(ctx context.Context, req *model.ServiceRequest, expected int, withLocation bool) error {
	return updateVersioned(r.db.WithContext(ctx), req, expected, withLocation)
}

func updateVersioned(tx *gorm.DB, req *model.ServiceRequest, expected int, withLocation bool) error {
	omit := []string{"id", "created_at"}
	if !withLocation {
		omit = append(omit, "provider_lat", "provider_lng")
	}

	req.Version = expected + 1
	res := tx.Model(req).
		Clauses(clause.Returning{}).
		Where("version = ?", expected).
		Select("*").
		Omit(omit...).
		Updates(req)
	if res.Error != nil {
		req.Version = expected
		return res.Error
	}
	if res.RowsAffected == 0 {
		req.Version = expected
		return ErrStaleVersion
	}
	return nil
}

// UpdateProviderLocation refreshes the provider coordinates of a request the
// provider is still working and returns the committed row. It returns
// gorm.ErrRecordNotFound once the request has left the active statuses.
// Location samples do not bump the version.
func (r *ServiceRequestRepository) UpdateProviderLocation(ctx context.Context, id uuid.UUID, lat, lng float64) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	res := r.db.WithContext(ctx).Model(&req).
		Clauses(clause.Returning{}).
		Where("id = ? AND status IN ?", id, activeStatuses).
		UpdateColumns(map[string]interface{}{
			"provider_lat": lat,
			"provider_lng": lng,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &req, nil
}

func (r *ServiceRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ServiceRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type ServiceRequestFilter struct {
	Status      *model.RequestStatus
	ServiceType *model.ServiceType
	ProviderID  *uuid.UUID
	CustomerID  *uuid.UUID
	PhoneNumber *string
	Limit       int
}

func (r *ServiceRequestRepository) List(ctx context.Context, filter ServiceRequestFilter) ([]model.ServiceRequest, error) {
	var requests []model.ServiceRequest
	query := r.db.WithContext(ctx).Model(&model.ServiceRequest{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ServiceType != nil {
		query = query.Where("service_type = ?", *filter.ServiceType)
	}
	if filter.ProviderID != nil {
		query = query.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.PhoneNumber != nil {
		query = query.Where("phone_number = ?", *filter.PhoneNumber)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *ServiceRequestRepository) ListActiveByProvider(ctx context.Context, providerID uuid.UUID) ([]model.ServiceRequest, error) {
	var requests []model.ServiceRequest
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND status IN ?", providerID, activeStatuses).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *ServiceRequestRepository) CountByStatus(ctx context.Context) (map[model.RequestStatus]int64, error) {
	var rows []struct {
		Status model.RequestStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&model.ServiceRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.RequestStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *ServiceRequestRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ServiceRequest{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}
