package services

import (
	"errors"
	"fmt"
	"log"
	"wabiz/database"
	"wabiz/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidCommissionTarget = errors.New("commission target must be an active customer with a dealer")
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrMissingReference        = errors.New("transaction reference required")
)

const (
	HopCredited  = "credited"
	HopDuplicate = "duplicate"
	HopFailed    = "failed"
	HopPreview   = "preview"
)

var errCommissionReplay = errors.New("reference already credited to dealer")

// CommissionEntry is the outcome for one dealer hop.
type CommissionEntry struct {
	DealerID   uint            `json:"dealer_id"`
	DealerName string          `json:"dealer_name"`
	Role       models.Role     `json:"role"`
	Level      int             `json:"level"`
	Rate       decimal.Decimal `json:"rate"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Status     string          `json:"status"`
	Reason     string          `json:"reason,omitempty"`
}

// CommissionReport is the structured result of one distribution run.
// Callers in the payment flow log it and move on; a hop that failed or was
// skipped never fails the run.
type CommissionReport struct {
	CustomerID       uint              `json:"customer_id"`
	Reference        string            `json:"reference,omitempty"`
	TotalDistributed decimal.Decimal   `json:"total_distributed"`
	Entries          []CommissionEntry `json:"entries"`
}

// ProcessCommission distributes commission for a completed customer
// transaction across the dealer chain. Each hop commits in its own
// transaction: the dealer row is locked, the balance snapshot is read, and
// the balance update plus the immutable ledger row commit together. A hop
// that fails is reported and skipped, never rolled back across hops.
func ProcessCommission(db *gorm.DB, customerID uint, amount decimal.Decimal, reference string) (*CommissionReport, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if reference == "" {
		return nil, ErrMissingReference
	}

	customer, chain, err := loadCommissionChain(db, customerID)
	if err != nil {
		return nil, err
	}

	report := &CommissionReport{
		CustomerID:       customer.ID,
		Reference:        reference,
		TotalDistributed: decimal.Zero,
		Entries:          make([]CommissionEntry, 0, len(chain)),
	}

	for _, hop := range chain {
		if !hop.Rate.IsPositive() {
			continue
		}

		entry := CommissionEntry{
			DealerID:   hop.Dealer.ID,
			DealerName: hop.Dealer.Name,
			Role:       hop.Dealer.Role,
			Level:      hop.Level,
			Rate:       hop.Rate,
			Amount:     amount.Mul(hop.Rate).Round(2),
		}

		err := creditDealer(db, customer, hop.Dealer.ID, &entry, amount, reference)
		switch {
		case err == nil:
			entry.Status = HopCredited
			report.TotalDistributed = report.TotalDistributed.Add(entry.Amount)
		case errors.Is(err, errCommissionReplay) || errors.Is(err, gorm.ErrDuplicatedKey):
			entry.Status = HopDuplicate
			entry.Reason = "reference already credited"
			log.Printf("commission: duplicate ref %s for dealer %d, hop skipped", reference, hop.Dealer.ID)
		default:
			entry.Status = HopFailed
			entry.Reason = err.Error()
			log.Printf("commission: crediting dealer %d for ref %s failed: %v", hop.Dealer.ID, reference, err)
		}

		report.Entries = append(report.Entries, entry)
	}

	return report, nil
}

// PreviewCommission resolves the same chain and amounts without touching
// any balance.
func PreviewCommission(db *gorm.DB, customerID uint, amount decimal.Decimal) (*CommissionReport, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	customer, chain, err := loadCommissionChain(db, customerID)
	if err != nil {
		return nil, err
	}

	report := &CommissionReport{
		CustomerID:       customer.ID,
		TotalDistributed: decimal.Zero,
		Entries:          make([]CommissionEntry, 0, len(chain)),
	}

	for _, hop := range chain {
		if !hop.Rate.IsPositive() {
			continue
		}
		hopAmount := amount.Mul(hop.Rate).Round(2)
		report.Entries = append(report.Entries, CommissionEntry{
			DealerID:   hop.Dealer.ID,
			DealerName: hop.Dealer.Name,
			Role:       hop.Dealer.Role,
			Level:      hop.Level,
			Rate:       hop.Rate,
			Amount:     hopAmount,
			Status:     HopPreview,
		})
		report.TotalDistributed = report.TotalDistributed.Add(hopAmount)
	}

	return report, nil
}

func loadCommissionChain(db *gorm.DB, customerID uint) (*models.User, []DealerHop, error) {
	var customer models.User
	if err := db.First(&customer, customerID).Error; err != nil {
		return nil, nil, ErrInvalidCommissionTarget
	}
	if customer.Role != models.RoleCustomer || customer.ParentID == nil {
		return nil, nil, ErrInvalidCommissionTarget
	}
	return &customer, ResolveDealerChain(db, &customer), nil
}

func creditDealer(db *gorm.DB, customer *models.User, dealerID uint, entry *CommissionEntry, sourceAmount decimal.Decimal, reference string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var dealer models.User
		if err := database.LockForUpdate(tx).First(&dealer, dealerID).Error; err != nil {
			return err
		}

		var replayed int64
		if err := tx.Model(&models.PointTransaction{}).
			Where("user_id = ? AND reference = ?", dealer.ID, reference).
			Count(&replayed).Error; err != nil {
			return err
		}
		if replayed > 0 {
			return errCommissionReplay
		}

		before := dealer.PointBalance
		after := before.Add(entry.Amount)

		if err := tx.Model(&dealer).Update("point_balance", after).Error; err != nil {
			return err
		}

		ref := reference
		trx := models.PointTransaction{
			UserID:        dealer.ID,
			TrxType:       models.TrxCommission,
			Amount:        entry.Amount,
			BalanceBefore: before,
			BalanceAfter:  after,
			Description: fmt.Sprintf("Commission %s%% from %s purchase of %s",
				entry.Rate.Mul(oneHundred).String(), customer.Name, sourceAmount.StringFixed(2)),
			Reference:    &ref,
			SourceUserID: &customer.ID,
		}
		if err := tx.Create(&trx).Error; err != nil {
			return err
		}

		entry.NewBalance = after
		return nil
	})
}
