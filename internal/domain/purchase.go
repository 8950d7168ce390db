package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Deposit request statuses.
const (
	DepositPending = "pending"
)

// DepositRequest records a submitted purchase/deposit form. Card data is
// reduced to the last four digits; the CVV is never stored.
type DepositRequest struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	PropertyID      uuid.UUID       `gorm:"column:property_id;type:uuid;not null;index" json:"propertyId"`
	FullName        string          `gorm:"column:full_name;not null" json:"name"`
	Email           string          `gorm:"column:email;not null" json:"email"`
	Phone           string          `gorm:"column:phone;not null" json:"phone"`
	Deposit         decimal.Decimal `gorm:"column:deposit;type:decimal(18,2);not null" json:"deposit"`
	CardLast4       string          `gorm:"column:card_last4;type:varchar(4);not null" json:"cardLast4"`
	CardExpiry      string          `gorm:"column:card_expiry;type:varchar(5);not null" json:"expiryDate"`
	ListingSnapshot datatypes.JSON  `gorm:"column:listing_snapshot" json:"property"`
	Status          string          `gorm:"column:status;type:varchar(20);default:'pending'" json:"status"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"createdAt"`
}

func (DepositRequest) TableName() string {
	return "deposit_requests"
}

// BeforeCreate sets id if not already set.
func (d *DepositRequest) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = DepositPending
	}
	return nil
}
