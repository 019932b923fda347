package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Role string

const (
	RoleOwner     Role = "OWNER"
	RoleAdmin     Role = "ADMIN"
	RoleEmployee  Role = "EMPLOYEE"
	RoleSubdealer Role = "SUBDEALER"
	RoleCustomer  Role = "CUSTOMER"
)

// DefaultCommissionPercent is the role-based commission rate in percent,
// used when a dealer has no per-account override.
func (r Role) DefaultCommissionPercent() decimal.Decimal {
	switch r {
	case RoleSubdealer:
		return decimal.NewFromInt(10)
	case RoleEmployee:
		return decimal.NewFromInt(3)
	case RoleAdmin:
		return decimal.NewFromInt(2)
	case RoleOwner:
		return decimal.NewFromInt(1)
	default:
		return decimal.Zero
	}
}

func (r Role) IsDealer() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEmployee, RoleSubdealer:
		return true
	}
	return false
}

type User struct {
	gorm.Model

	Name      string `gorm:"size:128" json:"name"`
	Email     string `gorm:"uniqueIndex;size:128" json:"email"`
	AuthToken string `gorm:"index;size:128" json:"-"`
	Role      Role   `gorm:"index;size:16" json:"role"`

	// ParentID points at the next dealer up the tree; nil at the root.
	ParentID *uint `gorm:"index" json:"parent_id,omitempty"`
	Parent   *User `gorm:"foreignKey:ParentID" json:"-"`

	// CommissionRate is a percent override; when nil or zero the role
	// default applies.
	CommissionRate *decimal.Decimal `gorm:"type:decimal(5,2)" json:"commission_rate,omitempty"`

	PointBalance   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"point_balance"`
	AccountBalance decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"account_balance"`
	MessageBalance int64           `gorm:"default:0" json:"message_balance"`

	// PendingDiscountPercent is set by percentage-voucher redemptions and
	// consumed by the next payment.
	PendingDiscountPercent *decimal.Decimal `gorm:"type:decimal(5,2)" json:"pending_discount_percent,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Transactions []PointTransaction `gorm:"foreignKey:UserID" json:"-"`
}
