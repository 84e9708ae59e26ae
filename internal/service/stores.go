package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"roadside-service/internal/model"
	"roadside-service/internal/realtime"
	"roadside-service/internal/repository"
)

type RequestStore interface {
	Create(ctx context.Context, req *model.ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	GetByTrackingCode(ctx context.Context, code string) (*model.ServiceRequest, error)
	TrackingCodeExists(ctx context.Context, code string) (bool, error)
	UpdateVersioned(ctx context.Context, req *model.ServiceRequest, expected int, withLocation bool) error
	UpdateProviderLocation(ctx context.Context, id uuid.UUID, lat, lng float64) (*model.ServiceRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter repository.ServiceRequestFilter) ([]model.ServiceRequest, error)
	ListActiveByProvider(ctx context.Context, providerID uuid.UUID) ([]model.ServiceRequest, error)
	CountByStatus(ctx context.Context) (map[model.RequestStatus]int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type UserStore interface {
	CreateAccount(ctx context.Context, user *model.User, role model.Role, profile *model.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetRole(ctx context.Context, userID uuid.UUID) (model.Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	Update(ctx context.Context, profile *model.Profile) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool, lat, lng *float64) error
	UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64, at time.Time) error
	ListProviders(ctx context.Context, onlyAvailable bool) ([]model.Profile, error)
}

type TransactionStore interface {
	Settle(ctx context.Context, txn *model.Transaction, completed *model.ServiceRequest, expected int) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	GetByRequestID(ctx context.Context, requestID uuid.UUID) (*model.Transaction, error)
	Update(ctx context.Context, txn *model.Transaction) error
	SumBetween(ctx context.Context, from, to time.Time) (repository.Revenue, error)
}

type RatingStore interface {
	Create(ctx context.Context, rating *model.Rating) error
	GetByRequestAndCustomer(ctx context.Context, requestID, customerID uuid.UUID) (*model.Rating, error)
	Update(ctx context.Context, rating *model.Rating) error
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.Rating, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Rating, error)
	SummaryForProvider(ctx context.Context, providerID uuid.UUID) (repository.RatingSummary, error)
}

type LocationPingStore interface {
	Create(ctx context.Context, ping *model.LocationPing) error
	GetLastByProviderID(ctx context.Context, providerID uuid.UUID) (*model.LocationPing, error)
}

type PartnershipStore interface {
	Create(ctx context.Context, app *model.PartnershipApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PartnershipApplication, error)
	Update(ctx context.Context, app *model.PartnershipApplication) error
	List(ctx context.Context, status *model.ApplicationStatus) ([]model.PartnershipApplication, error)
}

type ContactStore interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContactStatus) error
	List(ctx context.Context, status *model.ContactStatus) ([]model.ContactMessage, error)
}

type ContentStore interface {
	ListSettings(ctx context.Context) ([]model.Setting, error)
	UpsertSetting(ctx context.Context, setting *model.Setting) error
	GetLegalDocument(ctx context.Context, docType string) (*model.LegalDocument, error)
	UpsertLegalDocument(ctx context.Context, doc *model.LegalDocument) error
}

// Publisher receives committed row changes.
type Publisher interface {
	Publish(table string, typ realtime.EventType, before, after any) error
}
