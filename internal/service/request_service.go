package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"roadside-service/internal/model"
	"roadside-service/internal/realtime"
	"roadside-service/internal/repository"
	"roadside-service/internal/utils"
)

const maxTrackingCodeAttempts = 5

type RequestService struct {
	requestWriter
	newCode func() (string, error)
	now     func() time.Time
}

func NewRequestService(requests RequestStore, feed Publisher, log zerolog.Logger) *RequestService {
	return &RequestService{
		requestWriter: requestWriter{requests: requests, feed: feed, log: log},
		newCode:       NewTrackingCode,
		now:           time.Now,
	}
}

type CreateRequestInput struct {
	ServiceType     string
	Description     string
	Location        string
	VehicleMake     *string
	VehicleModel    *string
	VehicleYear     *int
	VehiclePlate    *string
	VehicleImageURL *string
	FuelType        *string
	FuelAmount      *float64
	CustomerLat     *float64
	CustomerLng     *float64
	PhoneNumber     *string
}

// Create opens a new pending request. A nil principal is a guest, who must
// leave a phone number to find the request again.
func (s *RequestService) Create(ctx context.Context, principal *model.Principal, input CreateRequestInput) (*model.ServiceRequest, error) {
	if principal != nil && !principal.IsCustomer() {
		return nil, ErrPermissionDenied
	}

	req, err := buildRequest(input, s.now())
	if err != nil {
		return nil, err
	}
	if principal != nil {
		customerID := principal.UserID
		req.CustomerID = &customerID
	} else if req.PhoneNumber == nil {
		return nil, invalidInput("phone number is required for guest requests")
	}

	for attempt := 1; ; attempt++ {
		code, err := s.uniqueTrackingCode(ctx)
		if err != nil {
			return nil, err
		}
		req.TrackingCode = code

		err = s.requests.Create(ctx, req)
		if err == nil {
			break
		}
		// another request took the code between the check and the insert
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt == maxTrackingCodeAttempts {
			return nil, err
		}
	}

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("tracking_code", req.TrackingCode).
		Str("service_type", string(req.ServiceType)).
		Bool("guest", principal == nil).
		Msg("service request created")
	s.publish(realtime.TableServiceRequests, realtime.EventInsert, nil, req)

	return req, nil
}

func (s *RequestService) uniqueTrackingCode(ctx context.Context) (string, error) {
	for i := 0; i < maxTrackingCodeAttempts; i++ {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		exists, err := s.requests.TrackingCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrConflict
}

func buildRequest(input CreateRequestInput, now time.Time) (*model.ServiceRequest, error) {
	serviceType := model.ServiceType(strings.TrimSpace(input.ServiceType))
	if !serviceType.Valid() {
		return nil, invalidInput("unknown service type %q", input.ServiceType)
	}

	location := strings.TrimSpace(input.Location)
	if location == "" {
		return nil, invalidInput("location is required")
	}

	if (input.CustomerLat == nil) != (input.CustomerLng == nil) {
		return nil, invalidInput("customer coordinates must be given together")
	}
	if input.CustomerLat != nil && !validCoordinates(*input.CustomerLat, *input.CustomerLng) {
		return nil, invalidInput("customer coordinates out of range")
	}

	if serviceType != model.ServiceTypeFuelDelivery && (input.FuelType != nil || input.FuelAmount != nil) {
		return nil, invalidInput("fuel details only apply to fuel delivery")
	}
	if input.FuelAmount != nil && *input.FuelAmount <= 0 {
		return nil, invalidInput("fuel amount must be positive")
	}

	if input.VehicleYear != nil && (*input.VehicleYear < 1900 || *input.VehicleYear > now.Year()+1) {
		return nil, invalidInput("vehicle year out of range")
	}

	req := &model.ServiceRequest{
		ServiceType:     serviceType,
		Description:     strings.TrimSpace(input.Description),
		Location:        location,
		VehicleMake:     trimmed(input.VehicleMake),
		VehicleModel:    trimmed(input.VehicleModel),
		VehicleYear:     input.VehicleYear,
		VehicleImageURL: trimmed(input.VehicleImageURL),
		FuelType:        trimmed(input.FuelType),
		FuelAmount:      input.FuelAmount,
		CustomerLat:     input.CustomerLat,
		CustomerLng:     input.CustomerLng,
		Status:          model.RequestStatusPending,
	}

	if input.VehiclePlate != nil {
		if plate := utils.NormalizePlate(*input.VehiclePlate); plate != "" {
			req.VehiclePlate = &plate
		}
	}
	if input.PhoneNumber != nil && strings.TrimSpace(*input.PhoneNumber) != "" {
		phone := utils.NormalizePhone(*input.PhoneNumber)
		if phone == "" {
			return nil, invalidInput("malformed phone number")
		}
		req.PhoneNumber = &phone
	}

	return req, nil
}

func (s *RequestService) Get(ctx context.Context, principal model.Principal, id string) (*model.ServiceRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && !req.HasParty(principal.UserID) {
		return nil, ErrPermissionDenied
	}
	return req, nil
}

// GetByTrackingCode is the public read-only lookup.
func (s *RequestService) GetByTrackingCode(ctx context.Context, code string) (*model.ServiceRequest, error) {
	code = NormalizeTrackingCode(code)
	if code == "" {
		return nil, invalidInput("tracking code is required")
	}
	req, err := s.requests.GetByTrackingCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// ListByPhone returns the requests a guest left with this phone number.
func (s *RequestService) ListByPhone(ctx context.Context, phone string) ([]model.ServiceRequest, error) {
	normalized := utils.NormalizePhone(phone)
	if normalized == "" {
		return nil, invalidInput("malformed phone number")
	}
	return s.requests.List(ctx, repository.ServiceRequestFilter{PhoneNumber: &normalized, Limit: 50})
}

func (s *RequestService) List(ctx context.Context, principal model.Principal, filter repository.ServiceRequestFilter) ([]model.ServiceRequest, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalidInput("unknown status %q", *filter.Status)
	}
	if filter.ServiceType != nil && !filter.ServiceType.Valid() {
		return nil, invalidInput("unknown service type %q", *filter.ServiceType)
	}

	switch {
	case principal.IsAdmin():
	case principal.IsProvider():
		providerID := principal.UserID
		filter.ProviderID = &providerID
		filter.CustomerID = nil
	case principal.IsCustomer():
		customerID := principal.UserID
		filter.CustomerID = &customerID
		filter.ProviderID = nil
	default:
		return nil, ErrPermissionDenied
	}

	return s.requests.List(ctx, filter)
}

// AdvanceStatus moves a request along the lifecycle on behalf of one of its
// parties. Only edges of the transition table are accepted.
func (s *RequestService) AdvanceStatus(ctx context.Context, principal model.Principal, id string, target model.RequestStatus, expectedVersion *int) (*model.ServiceRequest, error) {
	if !target.Valid() {
		return nil, invalidInput("unknown status %q", target)
	}
	if target == model.RequestStatusAssigned {
		return nil, invalidInput("providers are assigned through assignment")
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case principal.IsAdmin():
	case principal.IsProvider():
		if req.ProviderID == nil || *req.ProviderID != principal.UserID {
			return nil, ErrPermissionDenied
		}
	case principal.IsCustomer():
		if req.CustomerID == nil || *req.CustomerID != principal.UserID {
			return nil, ErrPermissionDenied
		}
	default:
		return nil, ErrPermissionDenied
	}

	if err := checkVersion(req, expectedVersion); err != nil {
		return nil, err
	}
	if err := checkTransition(req.Status, target, principal.Role); err != nil {
		return nil, err
	}

	before := *req
	req.Status = target
	if target == model.RequestStatusCompleted {
		completedAt := s.now()
		req.CompletedAt = &completedAt
	}

	if err := s.save(ctx, before, req); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("from", string(before.Status)).
		Str("status", string(req.Status)).
		Str("actor_role", string(principal.Role)).
		Msg("request status changed")

	return req, nil
}

func (s *RequestService) Cancel(ctx context.Context, principal model.Principal, id string, expectedVersion *int) (*model.ServiceRequest, error) {
	return s.AdvanceStatus(ctx, principal, id, model.RequestStatusCancelled, expectedVersion)
}

// OverrideStatus lets an admin set any status, bypassing the transition
// table. It still keeps the provider invariant: pending clears the provider,
// and statuses past assignment need one.
func (s *RequestService) OverrideStatus(ctx context.Context, principal model.Principal, id string, target model.RequestStatus, expectedVersion *int) (*model.ServiceRequest, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if !target.Valid() {
		return nil, invalidInput("unknown status %q", target)
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(req, expectedVersion); err != nil {
		return nil, err
	}
	if req.Status == target {
		return req, nil
	}
	if target.RequiresProvider() && req.ProviderID == nil {
		return nil, conflict("request has no provider, assign one first")
	}

	before := *req
	req.Status = target
	switch target {
	case model.RequestStatusPending:
		req.ProviderID = nil
		req.AssignedBy = nil
		req.AssignedAt = nil
		req.ProviderLat = nil
		req.ProviderLng = nil
		req.CompletedAt = nil
	case model.RequestStatusCompleted:
		if req.CompletedAt == nil {
			completedAt := s.now()
			req.CompletedAt = &completedAt
		}
	}

	if err := s.save(ctx, before, req); err != nil {
		return nil, err
	}

	s.log.Warn().
		Str("request_id", req.ID.String()).
		Str("from", string(before.Status)).
		Str("status", string(req.Status)).
		Str("admin_id", principal.UserID.String()).
		Msg("request status overridden")

	return req, nil
}

// Delete removes a request for good. Transactions, ratings and pings of the
// request go with it.
func (s *RequestService) Delete(ctx context.Context, principal model.Principal, id string) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.requests.Delete(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log.Info().Str("request_id", req.ID.String()).Str("admin_id", principal.UserID.String()).Msg("service request deleted")
	s.publish(realtime.TableServiceRequests, realtime.EventDelete, req, nil)
	return nil
}

func validCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
