package services

import (
	"errors"
	"fmt"
	"wabiz/database"
	"wabiz/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInsufficientPoints = errors.New("insufficient point balance")
	ErrNotADealer         = errors.New("settlement requires a dealer account")
)

// SettleWithdraw converts a dealer's earned points into account balance.
// Both balance moves and the ledger row commit in one transaction.
func SettleWithdraw(db *gorm.DB, dealerID uint, amount decimal.Decimal) (*models.PointTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var trx models.PointTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var dealer models.User
		if err := database.LockForUpdate(tx).First(&dealer, dealerID).Error; err != nil {
			return err
		}
		if !dealer.Role.IsDealer() {
			return ErrNotADealer
		}
		if dealer.PointBalance.LessThan(amount) {
			return ErrInsufficientPoints
		}

		before := dealer.PointBalance
		after := before.Sub(amount)

		updates := map[string]any{
			"point_balance":   after,
			"account_balance": dealer.AccountBalance.Add(amount),
		}
		if err := tx.Model(&dealer).Updates(updates).Error; err != nil {
			return err
		}

		ref := uuid.New().String()
		trx = models.PointTransaction{
			UserID:        dealer.ID,
			TrxType:       models.TrxSettlementWithdraw,
			Amount:        amount.Neg(),
			BalanceBefore: before,
			BalanceAfter:  after,
			Description:   fmt.Sprintf("Settlement withdraw of %s points", amount.StringFixed(2)),
			Reference:     &ref,
		}
		return tx.Create(&trx).Error
	})
	if err != nil {
		return nil, err
	}
	return &trx, nil
}
