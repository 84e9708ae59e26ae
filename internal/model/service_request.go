package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusAssigned   RequestStatus = "assigned"
	RequestStatusAccepted   RequestStatus = "accepted"
	RequestStatusDenied     RequestStatus = "denied"
	RequestStatusEnRoute    RequestStatus = "en_route"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

var requestStatuses = map[RequestStatus]struct{}{
	RequestStatusPending:    {},
	RequestStatusAssigned:   {},
	RequestStatusAccepted:   {},
	RequestStatusDenied:     {},
	RequestStatusEnRoute:    {},
	RequestStatusInProgress: {},
	RequestStatusCompleted:  {},
	RequestStatusCancelled:  {},
}

func (s RequestStatus) Valid() bool {
	_, ok := requestStatuses[s]
	return ok
}

// IsTerminal reports whether no guarded transition leaves s. Denied counts as
// terminal for the provider; only an admin reassignment moves it on.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusCompleted, RequestStatusCancelled, RequestStatusDenied:
		return true
	default:
		return false
	}
}

// RequiresProvider reports whether a request in status s must carry a provider.
func (s RequestStatus) RequiresProvider() bool {
	switch s {
	case RequestStatusPending, RequestStatusCancelled:
		return false
	default:
		return true
	}
}

type ServiceType string

const (
	ServiceTypeTowing       ServiceType = "towing"
	ServiceTypeTireChange   ServiceType = "tire_change"
	ServiceTypeJumpStart    ServiceType = "jump_start"
	ServiceTypeLockout      ServiceType = "lockout"
	ServiceTypeFuelDelivery ServiceType = "fuel_delivery"
	ServiceTypeMinorRepair  ServiceType = "minor_repair"
)

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTypeTowing, ServiceTypeTireChange, ServiceTypeJumpStart,
		ServiceTypeLockout, ServiceTypeFuelDelivery, ServiceTypeMinorRepair:
		return true
	default:
		return false
	}
}

type ServiceRequest struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	TrackingCode    string        `gorm:"type:varchar(16);uniqueIndex;not null" json:"tracking_code"`
	CustomerID      *uuid.UUID    `gorm:"type:uuid;index" json:"customer_id"`
	ProviderID      *uuid.UUID    `gorm:"type:uuid;index" json:"provider_id"`
	AssignedBy      *uuid.UUID    `gorm:"type:uuid" json:"assigned_by"`
	ServiceType     ServiceType   `gorm:"type:varchar(32);not null" json:"service_type"`
	Description     string        `gorm:"type:text" json:"description"`
	Location        string        `gorm:"type:text;not null" json:"location"`
	VehicleMake     *string       `gorm:"type:varchar(64)" json:"vehicle_make"`
	VehicleModel    *string       `gorm:"type:varchar(64)" json:"vehicle_model"`
	VehicleYear     *int          `json:"vehicle_year"`
	VehiclePlate    *string       `gorm:"type:varchar(32)" json:"vehicle_plate"`
	VehicleImageURL *string       `gorm:"type:text" json:"vehicle_image_url"`
	FuelType        *string       `gorm:"type:varchar(32)" json:"fuel_type"`
	FuelAmount      *float64      `json:"fuel_amount"`
	CustomerLat     *float64      `json:"customer_lat"`
	CustomerLng     *float64      `json:"customer_lng"`
	ProviderLat     *float64      `json:"provider_lat"`
	ProviderLng     *float64      `json:"provider_lng"`
	PhoneNumber     *string       `gorm:"type:varchar(32);index" json:"phone_number"`
	Status          RequestStatus `gorm:"type:request_status;not null;default:pending" json:"status"`
	Version         int           `gorm:"not null;default:1" json:"version"`
	AssignedAt      *time.Time    `json:"assigned_at"`
	CompletedAt     *time.Time    `json:"completed_at"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ServiceRequest) TableName() string {
	return "service_requests"
}

func (r *ServiceRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Version == 0 {
		r.Version = 1
	}
	return nil
}

// HasParty reports whether userID is the customer or the provider of the request.
func (r *ServiceRequest) HasParty(userID uuid.UUID) bool {
	if r.CustomerID != nil && *r.CustomerID == userID {
		return true
	}
	return r.ProviderID != nil && *r.ProviderID == userID
}
