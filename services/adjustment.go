package services

import (
	"errors"
	"wabiz/database"
	"wabiz/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrInvalidAdjustmentType = errors.New("invalid adjustment type")

// AdjustPoints applies an admin credit, debit or bonus to a user's point
// balance with its paired ledger row. A debit can never push the balance
// negative.
func AdjustPoints(db *gorm.DB, userID uint, trxType models.TrxType, amount decimal.Decimal, note string) (*models.PointTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	switch trxType {
	case models.TrxAdminCredit, models.TrxAdminDebit, models.TrxBonus:
	default:
		return nil, ErrInvalidAdjustmentType
	}

	signed := amount
	if trxType == models.TrxAdminDebit {
		signed = amount.Neg()
	}

	var trx models.PointTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := database.LockForUpdate(tx).First(&user, userID).Error; err != nil {
			return err
		}

		before := user.PointBalance
		after := before.Add(signed)
		if after.IsNegative() {
			return ErrInsufficientPoints
		}

		if err := tx.Model(&user).Update("point_balance", after).Error; err != nil {
			return err
		}

		ref := uuid.New().String()
		trx = models.PointTransaction{
			UserID:        user.ID,
			TrxType:       trxType,
			Amount:        signed,
			BalanceBefore: before,
			BalanceAfter:  after,
			Description:   note,
			Reference:     &ref,
		}
		return tx.Create(&trx).Error
	})
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

// PointHistory lists a user's ledger rows, newest first.
func PointHistory(db *gorm.DB, userID uint) ([]models.PointTransaction, error) {
	var trxs []models.PointTransaction
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&trxs).Error
	return trxs, err
}
