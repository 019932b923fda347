package services

import (
	"errors"
	"wabiz/database"
	"wabiz/models"

	"gorm.io/gorm"
)

var ErrInsufficientMessages = errors.New("insufficient message balance")

// DebitMessages reserves n messages from a user's balance before handing
// the send off to the delivery layer. Returns the remaining balance.
func DebitMessages(db *gorm.DB, userID uint, n int64) (int64, error) {
	if n <= 0 {
		return 0, ErrInvalidAmount
	}

	var remaining int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := database.LockForUpdate(tx).First(&user, userID).Error; err != nil {
			return err
		}
		if user.MessageBalance < n {
			return ErrInsufficientMessages
		}
		remaining = user.MessageBalance - n
		return tx.Model(&user).Update("message_balance", remaining).Error
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}
