package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VoucherType string

const (
	VoucherCredit     VoucherType = "credit"
	VoucherMessages   VoucherType = "messages"
	VoucherPercentage VoucherType = "percentage"
	VoucherPackage    VoucherType = "package"
)

type VoucherStatus string

const (
	VoucherValid     VoucherStatus = "valid"
	VoucherExpired   VoucherStatus = "expired"
	VoucherInactive  VoucherStatus = "inactive"
	VoucherExhausted VoucherStatus = "exhausted"
)

type Voucher struct {
	gorm.Model

	Code  string          `gorm:"uniqueIndex;size:32" json:"code"`
	Type  VoucherType     `gorm:"size:16" json:"type"`
	Value decimal.Decimal `gorm:"type:decimal(12,2)" json:"value"`

	UsageLimit *int64 `json:"usage_limit,omitempty"`
	UsageCount int64  `gorm:"default:0" json:"usage_count"`

	IsActive  bool       `gorm:"default:true" json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CreatedByID           *uint `gorm:"index" json:"created_by_id,omitempty"`
	AllowDealerRedemption bool  `gorm:"default:false" json:"allow_dealer_redemption"`

	// PackageID links package-type vouchers to the package they grant.
	PackageID *uint `gorm:"index" json:"package_id,omitempty"`
}

// StatusAt derives the voucher state; it is never stored.
func (v *Voucher) StatusAt(now time.Time) VoucherStatus {
	if v.ExpiresAt != nil && now.After(*v.ExpiresAt) {
		return VoucherExpired
	}
	if !v.IsActive {
		return VoucherInactive
	}
	if v.UsageLimit != nil && v.UsageCount >= *v.UsageLimit {
		return VoucherExhausted
	}
	return VoucherValid
}

// VoucherUsage records one successful redemption. The composite unique
// index is the anti-double-redemption invariant; the pre-check read inside
// the redemption transaction is only a fast path.
type VoucherUsage struct {
	gorm.Model

	VoucherID uint `gorm:"index;uniqueIndex:idx_voucher_user" json:"voucher_id"`
	UserID    uint `gorm:"index;uniqueIndex:idx_voucher_user" json:"user_id"`

	Voucher Voucher `gorm:"foreignKey:VoucherID" json:"voucher"`
}

type AttemptOutcome string

const (
	AttemptSuccess AttemptOutcome = "success"
	AttemptFailed  AttemptOutcome = "failed"
	AttemptBlocked AttemptOutcome = "blocked"
)

// RedemptionAttempt is the append-only audit log of every redemption try,
// written whether or not a usage row was created.
type RedemptionAttempt struct {
	gorm.Model

	VoucherID *uint          `gorm:"index" json:"voucher_id,omitempty"`
	Code      string         `gorm:"index;size:32" json:"code"`
	UserID    uint           `gorm:"index" json:"user_id"`
	Outcome   AttemptOutcome `gorm:"index;size:16" json:"outcome"`
	Reason    string         `gorm:"size:255" json:"reason"`
	Detail    datatypes.JSON `gorm:"type:jsonb" json:"detail,omitempty"`
}
