package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PaymentProcessed = "processed"
	PaymentDuplicate = "duplicate"
)

// PaymentEvent stores every inbound gateway webhook verbatim. The unique
// reference makes webhook processing idempotent at the entry point.
type PaymentEvent struct {
	gorm.Model

	Reference string          `gorm:"uniqueIndex;size:64" json:"reference"`
	UserID    uint            `gorm:"index" json:"user_id"`
	PackageID *uint           `gorm:"index" json:"package_id,omitempty"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`

	// DiscountPercent is the pending percentage-voucher discount consumed
	// by this payment, if any.
	DiscountPercent *decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_percent,omitempty"`

	Status  string         `gorm:"size:16" json:"status"`
	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
}
