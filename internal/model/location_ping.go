package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocationPing is one provider position sample taken while the provider is online.
type LocationPing struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ProviderID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"provider_id"`
	ServiceRequestID *uuid.UUID `gorm:"type:uuid;index" json:"service_request_id"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	RecordedAt       time.Time  `gorm:"index;not null" json:"recorded_at"`
}

func (LocationPing) TableName() string {
	return "location_pings"
}

func (p *LocationPing) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
