package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"roadside-service/internal/model"
)

type AssignmentService struct {
	requestWriter
	users            UserStore
	profiles         ProfileStore
	requireAvailable bool
	now              func() time.Time
}

// NewAssignmentService creates the dispatcher. With requireAvailable set,
// offline providers are refused at write time instead of only logged.
func NewAssignmentService(
	requests RequestStore,
	users UserStore,
	profiles ProfileStore,
	feed Publisher,
	requireAvailable bool,
	log zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		requestWriter:    requestWriter{requests: requests, feed: feed, log: log},
		users:            users,
		profiles:         profiles,
		requireAvailable: requireAvailable,
		now:              time.Now,
	}
}

type AssignProviderInput struct {
	RequestID       string
	ProviderID      string
	ExpectedVersion *int
}

// Assign hands a request to a provider. Pending and denied requests can be
// assigned; an assigned one is reassigned, which replaces the provider and
// resets assigned_at.
func (s *AssignmentService) Assign(ctx context.Context, principal model.Principal, input AssignProviderInput) (*model.ServiceRequest, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	providerID, err := parseID(input.ProviderID)
	if err != nil {
		return nil, err
	}

	role, err := s.users.GetRole(ctx, providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidInput("provider %s does not exist", providerID)
		}
		return nil, err
	}
	if role != model.RoleProvider {
		return nil, invalidInput("user %s is not a provider", providerID)
	}

	profile, err := s.profiles.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidInput("provider %s has no profile", providerID)
		}
		return nil, err
	}
	profile.RepairAvailability()
	if !profile.IsAvailable {
		if s.requireAvailable {
			return nil, conflict("provider is not available")
		}
		s.log.Warn().
			Str("provider_id", providerID.String()).
			Str("request_id", input.RequestID).
			Msg("assigning a provider that is not available")
	}

	req, err := s.load(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(req, input.ExpectedVersion); err != nil {
		return nil, err
	}
	if !assignable(req.Status) {
		return nil, &TransitionError{From: req.Status, To: model.RequestStatusAssigned, Role: principal.Role}
	}

	before := *req
	adminID := principal.UserID
	assignedAt := s.now()
	req.ProviderID = &providerID
	req.AssignedBy = &adminID
	req.AssignedAt = &assignedAt
	req.Status = model.RequestStatusAssigned
	req.ProviderLat = profile.CurrentLat
	req.ProviderLng = profile.CurrentLng

	if err := s.save(ctx, before, req); err != nil {
		return nil, err
	}

	event := s.log.Info().
		Str("request_id", req.ID.String()).
		Str("provider_id", providerID.String()).
		Str("admin_id", adminID.String())
	if before.ProviderID != nil {
		event = event.Str("previous_provider_id", before.ProviderID.String())
	}
	event.Msg("provider assigned")

	return req, nil
}

func assignable(status model.RequestStatus) bool {
	switch status {
	case model.RequestStatusPending, model.RequestStatusAssigned, model.RequestStatusDenied:
		return true
	default:
		return false
	}
}
