package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionTypeCustomerToBusiness TransactionType = "customer_to_business"
	TransactionTypeBusinessToProvider TransactionType = "business_to_provider"
)

type Transaction struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ServiceRequestID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_transactions_request_unique" json:"service_request_id"`
	Amount             float64         `gorm:"type:numeric(12,2);not null" json:"amount"`
	ProviderPercentage float64         `gorm:"type:numeric(5,2);not null" json:"provider_percentage"`
	ProviderAmount     float64         `gorm:"type:numeric(12,2);not null" json:"provider_amount"`
	PlatformAmount     float64         `gorm:"type:numeric(12,2);not null" json:"platform_amount"`
	TransactionType    TransactionType `gorm:"type:varchar(32);not null" json:"transaction_type"`
	PaymentMethod      string          `gorm:"type:varchar(32);not null" json:"payment_method"`
	ConfirmedBy        uuid.UUID       `gorm:"type:uuid;not null" json:"confirmed_by"`
	ConfirmedAt        time.Time       `gorm:"not null" json:"confirmed_at"`
	ReferenceNumber    *string         `gorm:"type:varchar(64)" json:"reference_number"`
	Notes              *string         `gorm:"type:text" json:"notes"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ApplySplit rounds Amount to minor units and recomputes both shares from
// ProviderPercentage. The platform share takes the rounding remainder so the
// two always add up to Amount.
func (t *Transaction) ApplySplit() {
	cents := math.Round(t.Amount * 100)
	providerCents := math.Round(cents * t.ProviderPercentage / 100)
	t.Amount = cents / 100
	t.ProviderAmount = providerCents / 100
	t.PlatformAmount = (cents - providerCents) / 100
}
