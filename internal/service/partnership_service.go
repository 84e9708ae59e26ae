package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"roadside-service/internal/mailer"
	"roadside-service/internal/model"
	"roadside-service/internal/utils"
)

type PartnershipService struct {
	applications PartnershipStore
	accounts     *AuthService
	mailer       mailer.Mailer
	log          zerolog.Logger
	now          func() time.Time
}

func NewPartnershipService(applications PartnershipStore, accounts *AuthService, m mailer.Mailer, log zerolog.Logger) *PartnershipService {
	return &PartnershipService{
		applications: applications,
		accounts:     accounts,
		mailer:       m,
		log:          log,
		now:          time.Now,
	}
}

type PartnershipInput struct {
	FullName     string
	Email        string
	PhoneNumber  string
	BusinessName *string
	ServiceTypes []string
	Location     string
	Message      *string
}

func (s *PartnershipService) Submit(ctx context.Context, input PartnershipInput) (*model.PartnershipApplication, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, invalidInput("full name is required")
	}
	address, err := mail.ParseAddress(strings.TrimSpace(input.Email))
	if err != nil {
		return nil, invalidInput("malformed email")
	}
	phone := utils.NormalizePhone(input.PhoneNumber)
	if phone == "" {
		return nil, invalidInput("malformed phone number")
	}

	types := make([]string, 0, len(input.ServiceTypes))
	for _, t := range input.ServiceTypes {
		if !model.ServiceType(t).Valid() {
			return nil, invalidInput("unknown service type %q", t)
		}
		types = append(types, t)
	}

	app := &model.PartnershipApplication{
		FullName:     fullName,
		Email:        strings.ToLower(address.Address),
		PhoneNumber:  phone,
		BusinessName: trimmed(input.BusinessName),
		ServiceTypes: strings.Join(types, ","),
		Location:     strings.TrimSpace(input.Location),
		Message:      trimmed(input.Message),
		Status:       model.ApplicationStatusPending,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, err
	}

	s.log.Info().Str("application_id", app.ID.String()).Msg("partnership application received")
	return app, nil
}

func (s *PartnershipService) List(ctx context.Context, principal model.Principal, status *model.ApplicationStatus) ([]model.PartnershipApplication, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.applications.List(ctx, status)
}

// Approve turns a pending application into a provider account and mails the
// applicant a temporary password.
func (s *PartnershipService) Approve(ctx context.Context, principal model.Principal, id string, notes *string) (*model.PartnershipApplication, error) {
	app, err := s.pending(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	account, password, err := s.accounts.CreateAccount(ctx, principal, SignUpInput{
		Email:    app.Email,
		FullName: app.FullName,
		Phone:    app.PhoneNumber,
		Role:     string(model.RoleProvider),
	})
	if err != nil {
		return nil, err
	}

	userID := account.User.ID
	s.review(app, principal, model.ApplicationStatusApproved, notes)
	app.CreatedUserID = &userID
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, err
	}

	if err := s.mailer.SendPartnerWelcome(ctx, app.Email, app.FullName, password); err != nil {
		s.log.Error().Err(err).Str("application_id", app.ID.String()).Msg("failed to mail provider credentials")
	}

	s.log.Info().Str("application_id", app.ID.String()).Str("user_id", userID.String()).Msg("partnership approved")
	return app, nil
}

func (s *PartnershipService) Reject(ctx context.Context, principal model.Principal, id string, notes *string) (*model.PartnershipApplication, error) {
	app, err := s.pending(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	s.review(app, principal, model.ApplicationStatusRejected, notes)
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, err
	}

	s.log.Info().Str("application_id", app.ID.String()).Msg("partnership rejected")
	return app, nil
}

func (s *PartnershipService) pending(ctx context.Context, principal model.Principal, id string) (*model.PartnershipApplication, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	appID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	app, err := s.applications.GetByID(ctx, appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if app.Status != model.ApplicationStatusPending {
		return nil, conflict("application already reviewed")
	}
	return app, nil
}

func (s *PartnershipService) review(app *model.PartnershipApplication, principal model.Principal, status model.ApplicationStatus, notes *string) {
	reviewer := principal.UserID
	reviewedAt := s.now()
	app.Status = status
	app.ReviewedBy = &reviewer
	app.ReviewedAt = &reviewedAt
	if n := trimmed(notes); n != nil {
		app.AdminNotes = n
	}
}
