package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

type PartnershipApplication struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	FullName      string            `gorm:"type:varchar(255);not null" json:"full_name"`
	Email         string            `gorm:"type:varchar(255);not null" json:"email"`
	PhoneNumber   string            `gorm:"type:varchar(32);not null" json:"phone_number"`
	BusinessName  *string           `gorm:"type:varchar(255)" json:"business_name"`
	ServiceTypes  string            `gorm:"type:text" json:"service_types"`
	Location      string            `gorm:"type:text" json:"location"`
	Message       *string           `gorm:"type:text" json:"message"`
	Status        ApplicationStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	AdminNotes    *string           `gorm:"type:text" json:"admin_notes"`
	ReviewedBy    *uuid.UUID        `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt    *time.Time        `json:"reviewed_at"`
	CreatedUserID *uuid.UUID        `gorm:"type:uuid" json:"created_user_id"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PartnershipApplication) TableName() string {
	return "partnership_applications"
}

func (a *PartnershipApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
