package model

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FullName          string     `gorm:"type:varchar(255);not null" json:"full_name"`
	PhoneNumber       *string    `gorm:"type:varchar(32)" json:"phone_number"`
	Location          *string    `gorm:"type:text" json:"location"`
	Bio               *string    `gorm:"type:text" json:"bio"`
	IsAvailable       bool       `gorm:"not null;default:false" json:"is_available"`
	CurrentLat        *float64   `json:"current_lat"`
	CurrentLng        *float64   `json:"current_lng"`
	LocationUpdatedAt *time.Time `json:"location_updated_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// RepairAvailability forces IsAvailable off when the profile claims to be
// available without coordinates. It reports whether a repair happened.
func (p *Profile) RepairAvailability() bool {
	if p.IsAvailable && (p.CurrentLat == nil || p.CurrentLng == nil) {
		p.IsAvailable = false
		return true
	}
	return false
}
