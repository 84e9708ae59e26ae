package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Rating struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ServiceRequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_request_customer" json:"service_request_id"`
	CustomerID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_request_customer" json:"customer_id"`
	ProviderID       uuid.UUID `gorm:"type:uuid;not null;index" json:"provider_id"`
	Rating           int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Review           *string   `gorm:"type:text" json:"review"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
