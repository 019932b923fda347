package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Package struct {
	gorm.Model

	Name         string          `gorm:"uniqueIndex;size:64" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	MessageQuota int64           `json:"message_quota"`
	DurationDays int             `json:"duration_days"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
}

type GrantSource string

const (
	GrantPayment GrantSource = "payment"
	GrantVoucher GrantSource = "voucher"
)

// CustomerPackage is an active package grant on a customer account, created
// by a verified payment or a package-type voucher.
type CustomerPackage struct {
	gorm.Model

	UserID    uint        `gorm:"index" json:"user_id"`
	PackageID uint        `gorm:"index" json:"package_id"`
	Source    GrantSource `gorm:"size:16" json:"source"`

	VoucherID        *uint   `gorm:"index" json:"voucher_id,omitempty"`
	PaymentReference *string `gorm:"size:64" json:"payment_reference,omitempty"`

	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`

	Package Package `gorm:"foreignKey:PackageID" json:"package"`
}
