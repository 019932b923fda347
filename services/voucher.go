package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"wabiz/database"
	"wabiz/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrVoucherNotFound      = errors.New("voucher not found")
	ErrVoucherNotRedeemable = errors.New("voucher not redeemable")
	ErrRedemptionForbidden  = errors.New("voucher redemption forbidden")
	ErrAlreadyRedeemed      = errors.New("voucher already redeemed")
	ErrUnknownVoucherType   = errors.New("unknown voucher type")
	ErrNoRedemptionTarget   = errors.New("no redemption target")
	ErrPersistence          = errors.New("persistence failure")
)

// redemptionDenial is a determinate rejection. It aborts (and rolls back)
// the redemption transaction, and the caller writes the audit row after
// rollback so it survives.
type redemptionDenial struct {
	outcome   models.AttemptOutcome
	reason    string
	err       error
	voucherID *uint
}

func (d *redemptionDenial) Error() string { return d.reason }

type RedemptionResult struct {
	Voucher models.Voucher `json:"voucher"`
	Benefit string         `json:"benefit"`

	AccountBalance         decimal.Decimal  `json:"account_balance"`
	MessageBalance         int64            `json:"message_balance"`
	PendingDiscountPercent *decimal.Decimal `json:"pending_discount_percent,omitempty"`
	GrantedPackageID       *uint            `json:"granted_package_id,omitempty"`
}

func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// RedeemVoucher validates and applies exactly one redemption of a code.
// The mutating path runs in a single transaction; any rejection rolls the
// whole thing back. Every attempt, whatever the outcome, leaves a
// RedemptionAttempt row.
func RedeemVoucher(db *gorm.DB, code string, actor models.User, targetID *uint) (*RedemptionResult, error) {
	norm := NormalizeVoucherCode(code)

	target := actor
	if targetID != nil && *targetID != actor.ID {
		var explicit models.User
		if err := db.First(&explicit, *targetID).Error; err != nil || explicit.Role != models.RoleCustomer {
			recordAttempt(db, nil, norm, actor.ID, models.AttemptFailed, "target customer not found", nil)
			return nil, ErrNoRedemptionTarget
		}
		target = explicit
	}

	var result *RedemptionResult
	txErr := db.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = redeemInTx(tx, norm, actor, target)
		return err
	})
	if txErr == nil {
		return result, nil
	}

	var denial *redemptionDenial
	if errors.As(txErr, &denial) {
		recordAttempt(db, denial.voucherID, norm, target.ID, denial.outcome, denial.reason, nil)
		return nil, denial.err
	}
	if errors.Is(txErr, gorm.ErrDuplicatedKey) {
		// Lost a concurrent race; the unique usage index is authoritative.
		recordAttempt(db, nil, norm, target.ID, models.AttemptFailed, "Voucher already used by this user", nil)
		return nil, ErrAlreadyRedeemed
	}

	log.Printf("voucher: redeeming %s for user %d failed: %v", norm, target.ID, txErr)
	return nil, ErrPersistence
}

func redeemInTx(tx *gorm.DB, code string, actor, target models.User) (*RedemptionResult, error) {
	var voucher models.Voucher
	if err := database.LockForUpdate(tx).Where("code = ?", code).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &redemptionDenial{models.AttemptFailed, "voucher not found", ErrVoucherNotFound, nil}
		}
		return nil, err
	}

	if status := voucher.StatusAt(time.Now()); status != models.VoucherValid {
		return nil, &redemptionDenial{
			models.AttemptFailed,
			fmt.Sprintf("voucher %s", status),
			fmt.Errorf("%w: %s", ErrVoucherNotRedeemable, status),
			&voucher.ID,
		}
	}

	if actor.Role.IsDealer() {
		if !voucher.AllowDealerRedemption {
			return nil, &redemptionDenial{models.AttemptBlocked, "dealer redemption not allowed for this voucher", ErrRedemptionForbidden, &voucher.ID}
		}
		if voucher.CreatedByID != nil && *voucher.CreatedByID == actor.ID {
			return nil, &redemptionDenial{models.AttemptBlocked, "voucher owner cannot redeem own voucher", ErrRedemptionForbidden, &voucher.ID}
		}
	}

	var used int64
	if err := tx.Model(&models.VoucherUsage{}).
		Where("voucher_id = ? AND user_id = ?", voucher.ID, target.ID).
		Count(&used).Error; err != nil {
		return nil, err
	}
	if used > 0 {
		return nil, &redemptionDenial{models.AttemptFailed, "Voucher already used by this user", ErrAlreadyRedeemed, &voucher.ID}
	}

	result, err := applyBenefit(tx, &voucher, target.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Create(&models.VoucherUsage{VoucherID: voucher.ID, UserID: target.ID}).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Voucher{}).Where("id = ?", voucher.ID).
		Update("usage_count", gorm.Expr("usage_count + 1")).Error; err != nil {
		return nil, err
	}

	detail, _ := json.Marshal(map[string]any{
		"voucher_id": voucher.ID,
		"type":       voucher.Type,
		"value":      voucher.Value,
		"benefit":    result.Benefit,
	})
	attempt := models.RedemptionAttempt{
		VoucherID: &voucher.ID,
		Code:      voucher.Code,
		UserID:    target.ID,
		Outcome:   models.AttemptSuccess,
		Reason:    "redeemed",
		Detail:    datatypes.JSON(detail),
	}
	if err := tx.Create(&attempt).Error; err != nil {
		return nil, err
	}

	voucher.UsageCount++
	result.Voucher = voucher
	return result, nil
}

func applyBenefit(tx *gorm.DB, voucher *models.Voucher, targetID uint) (*RedemptionResult, error) {
	var user models.User
	if err := database.LockForUpdate(tx).First(&user, targetID).Error; err != nil {
		return nil, err
	}

	res := &RedemptionResult{
		AccountBalance: user.AccountBalance,
		MessageBalance: user.MessageBalance,
	}

	switch voucher.Type {
	case models.VoucherCredit:
		newBalance := user.AccountBalance.Add(voucher.Value)
		if err := tx.Model(&user).Update("account_balance", newBalance).Error; err != nil {
			return nil, err
		}
		res.AccountBalance = newBalance
		res.Benefit = fmt.Sprintf("account credit of %s", voucher.Value.StringFixed(2))

	case models.VoucherMessages:
		newBalance := user.MessageBalance + voucher.Value.IntPart()
		if err := tx.Model(&user).Update("message_balance", newBalance).Error; err != nil {
			return nil, err
		}
		res.MessageBalance = newBalance
		res.Benefit = fmt.Sprintf("%d extra messages", voucher.Value.IntPart())

	case models.VoucherPercentage:
		pct := voucher.Value
		if err := tx.Model(&user).Update("pending_discount_percent", pct).Error; err != nil {
			return nil, err
		}
		res.PendingDiscountPercent = &pct
		res.Benefit = fmt.Sprintf("%s%% discount on next purchase", pct.String())

	case models.VoucherPackage:
		if voucher.PackageID == nil {
			return nil, &redemptionDenial{models.AttemptFailed, "voucher has no linked package", ErrUnknownVoucherType, &voucher.ID}
		}
		var pkg models.Package
		if err := tx.First(&pkg, *voucher.PackageID).Error; err != nil {
			return nil, &redemptionDenial{models.AttemptFailed, "linked package not found", ErrUnknownVoucherType, &voucher.ID}
		}
		grant := models.CustomerPackage{
			UserID:    user.ID,
			PackageID: pkg.ID,
			Source:    models.GrantVoucher,
			VoucherID: &voucher.ID,
			ExpiresAt: time.Now().AddDate(0, 0, pkg.DurationDays),
			IsActive:  true,
		}
		if err := tx.Create(&grant).Error; err != nil {
			return nil, err
		}
		res.GrantedPackageID = &pkg.ID
		res.Benefit = fmt.Sprintf("package %q granted", pkg.Name)

	default:
		return nil, &redemptionDenial{
			models.AttemptFailed,
			fmt.Sprintf("unknown voucher type %q", voucher.Type),
			ErrUnknownVoucherType,
			&voucher.ID,
		}
	}

	return res, nil
}

func recordAttempt(db *gorm.DB, voucherID *uint, code string, userID uint, outcome models.AttemptOutcome, reason string, detail map[string]any) {
	attempt := models.RedemptionAttempt{
		VoucherID: voucherID,
		Code:      code,
		UserID:    userID,
		Outcome:   outcome,
		Reason:    reason,
	}
	if detail != nil {
		if raw, err := json.Marshal(detail); err == nil {
			attempt.Detail = datatypes.JSON(raw)
		}
	}
	if err := db.Create(&attempt).Error; err != nil {
		log.Printf("voucher: audit row for %s (user %d, %s) not written: %v", code, userID, outcome, err)
	}
}

// RedemptionHistory lists a user's successful redemptions, newest first.
func RedemptionHistory(db *gorm.DB, userID uint) ([]models.VoucherUsage, error) {
	var usages []models.VoucherUsage
	err := db.Preload("Voucher").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&usages).Error
	return usages, err
}

type AttemptStats struct {
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
	Blocked int64 `json:"blocked"`
}

// RedemptionAttemptStats counts a user's attempts by outcome.
func RedemptionAttemptStats(db *gorm.DB, userID uint) (*AttemptStats, error) {
	rows := []struct {
		Outcome models.AttemptOutcome
		Total   int64
	}{}
	err := db.Model(&models.RedemptionAttempt{}).
		Select("outcome, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("outcome").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &AttemptStats{}
	for _, r := range rows {
		switch r.Outcome {
		case models.AttemptSuccess:
			stats.Success = r.Total
		case models.AttemptFailed:
			stats.Failed = r.Total
		case models.AttemptBlocked:
			stats.Blocked = r.Total
		}
	}
	return stats, nil
}
