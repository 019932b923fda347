package services

import (
	"errors"
	"fmt"
	"log"
	"time"
	"wabiz/database"
	"wabiz/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrUnknownCustomer = errors.New("unknown customer")

type PaymentOutcome struct {
	Event            models.PaymentEvent `json:"event"`
	AmountCharged    decimal.Decimal     `json:"amount_charged"`
	AlreadyProcessed bool                `json:"already_processed"`

	// Commission is nil when the customer has no dealer assigned; that is
	// a normal outcome, not an error.
	Commission *CommissionReport `json:"commission,omitempty"`
}

// ProcessPayment records a verified gateway payment exactly once, activates
// the purchased package, consumes any pending percentage-voucher discount,
// and then distributes commission. Commission failure never fails the
// payment: the subscription is already active by the time the chain runs.
func ProcessPayment(db *gorm.DB, customerID uint, packageID *uint, amount decimal.Decimal, reference string, payload []byte) (*PaymentOutcome, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if reference == "" {
		return nil, ErrMissingReference
	}

	var existing models.PaymentEvent
	if err := db.Where("reference = ?", reference).First(&existing).Error; err == nil {
		return &PaymentOutcome{Event: existing, AmountCharged: existing.Amount, AlreadyProcessed: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	outcome := &PaymentOutcome{}
	err := db.Transaction(func(tx *gorm.DB) error {
		var customer models.User
		if err := database.LockForUpdate(tx).First(&customer, customerID).Error; err != nil {
			return ErrUnknownCustomer
		}
		if !customer.IsActive {
			return ErrUnknownCustomer
		}

		charged := amount
		var discount *decimal.Decimal
		if customer.PendingDiscountPercent != nil && customer.PendingDiscountPercent.IsPositive() {
			pct := *customer.PendingDiscountPercent
			charged = amount.Mul(decimal.NewFromInt(1).Sub(pct.Div(oneHundred))).Round(2)
			discount = &pct
			if err := tx.Model(&customer).Update("pending_discount_percent", nil).Error; err != nil {
				return err
			}
		}

		event := models.PaymentEvent{
			Reference:       reference,
			UserID:          customer.ID,
			PackageID:       packageID,
			Amount:          charged,
			DiscountPercent: discount,
			Status:          models.PaymentProcessed,
			Payload:         datatypes.JSON(payload),
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		if packageID != nil {
			var pkg models.Package
			if err := tx.First(&pkg, *packageID).Error; err != nil {
				return fmt.Errorf("package %d: %w", *packageID, err)
			}
			grant := models.CustomerPackage{
				UserID:           customer.ID,
				PackageID:        pkg.ID,
				Source:           models.GrantPayment,
				PaymentReference: &reference,
				ExpiresAt:        time.Now().AddDate(0, 0, pkg.DurationDays),
				IsActive:         true,
			}
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
		}

		outcome.Event = event
		outcome.AmountCharged = charged
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent replay of the same reference.
			if lookErr := db.Where("reference = ?", reference).First(&existing).Error; lookErr == nil {
				return &PaymentOutcome{Event: existing, AmountCharged: existing.Amount, AlreadyProcessed: true}, nil
			}
		}
		return nil, err
	}

	report, err := ProcessCommission(db, customerID, outcome.AmountCharged, reference)
	switch {
	case err == nil:
		outcome.Commission = report
	case errors.Is(err, ErrInvalidCommissionTarget):
		log.Printf("payment %s: customer %d has no dealer, commission skipped", reference, customerID)
	default:
		log.Printf("payment %s: commission run failed (payment unaffected): %v", reference, err)
	}

	return outcome, nil
}
