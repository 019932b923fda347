package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TrxType string

const (
	TrxCommission         TrxType = "commission"
	TrxAdminCredit        TrxType = "admin_credit"
	TrxAdminDebit         TrxType = "admin_debit"
	TrxBonus              TrxType = "bonus"
	TrxSettlementWithdraw TrxType = "settlement_withdraw"
)

// PointTransaction is an immutable ledger row. Every point-balance change
// writes exactly one of these with the before/after snapshots taken inside
// the same transaction as the balance update.
//
// Reference is nil for adjustments without an external source. For
// commission rows it carries the payment reference, and the composite
// unique index rejects a replayed webhook crediting the same dealer twice.
type PointTransaction struct {
	gorm.Model

	UserID  uint    `gorm:"index;uniqueIndex:idx_user_reference" json:"user_id"`
	TrxType TrxType `gorm:"index;size:32" json:"trx_type"`

	Amount        decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(12,2)" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(12,2)" json:"balance_after"`

	Description string  `gorm:"size:255" json:"description"`
	Reference   *string `gorm:"size:64;uniqueIndex:idx_user_reference" json:"reference,omitempty"`

	// SourceUserID is the customer whose purchase earned a commission row.
	SourceUserID *uint `gorm:"index" json:"source_user_id,omitempty"`
}
