package services

import (
	"testing"
	"time"
	"wabiz/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newVoucher(t *testing.T, db *gorm.DB, v models.Voucher) models.Voucher {
	t.Helper()
	require.NoError(t, db.Create(&v).Error)
	return v
}

func attemptRows(t *testing.T, db *gorm.DB, userID uint) []models.RedemptionAttempt {
	t.Helper()
	var attempts []models.RedemptionAttempt
	require.NoError(t, db.Where("user_id = ?", userID).Order("id").Find(&attempts).Error)
	return attempts
}

func TestRedeemCreditVoucher(t *testing.T) {
	db := setupDB(t)

	limit := int64(100)
	voucher := newVoucher(t, db, models.Voucher{
		Code: "WELCOME50", Type: models.VoucherCredit,
		Value: decimal.NewFromInt(50), UsageLimit: &limit, IsActive: true,
	})
	customer := newUser(t, db, "cust", models.RoleCustomer, nil)

	result, err := RedeemVoucher(db, "welcome50", customer, nil)
	require.NoError(t, err)
	require.Equal(t, "50.00", result.AccountBalance.StringFixed(2))
	require.EqualValues(t, 1, result.Voucher.UsageCount)

	require.Equal(t, "50.00", reload(t, db, customer.ID).AccountBalance.StringFixed(2))

	var usages []models.VoucherUsage
	require.NoError(t, db.Find(&usages).Error)
	require.Len(t, usages, 1)
	require.Equal(t, voucher.ID, usages[0].VoucherID)
	require.Equal(t, customer.ID, usages[0].UserID)

	attempts := attemptRows(t, db, customer.ID)
	require.Len(t, attempts, 1)
	require.Equal(t, models.AttemptSuccess, attempts[0].Outcome)
}

func TestRedeemTwiceFailsAndKeepsCount(t *testing.T) {
	db := setupDB(t)

	newVoucher(t, db, models.Voucher{
		Code: "ONCE", Type: models.VoucherCredit, Value: decimal.NewFromInt(10), IsActive: true,
	})
	customer := newUser(t, db, "cust", models.RoleCustomer, nil)

	_, err := RedeemVoucher(db, "ONCE", customer, nil)
	require.NoError(t, err)

	_, err = RedeemVoucher(db, "ONCE", customer, nil)
	require.ErrorIs(t, err, ErrAlreadyRedeemed)

	var voucher models.Voucher
	require.NoError(t, db.Where("code = ?", "ONCE").First(&voucher).Error)
	require.EqualValues(t, 1, voucher.UsageCount)
	require.Equal(t, "10.00", reload(t, db, customer.ID).AccountBalance.StringFixed(2))

	attempts := attemptRows(t, db, customer.ID)
	require.Len(t, attempts, 2)
	require.Equal(t, models.AttemptFailed, attempts[1].Outcome)
	require.Equal(t, "Voucher already used by this user", attempts[1].Reason)
}

func TestRedeemExpiredVoucher(t *testing.T) {
	db := setupDB(t)

	yesterday := time.Now().Add(-24 * time.Hour)
	newVoucher(t, db, models.Voucher{
		Code: "OLD", Type: models.VoucherCredit, Value: decimal.NewFromInt(10),
		IsActive: true, ExpiresAt: &yesterday,
	})
	customer := newUser(t, db, "cust", models.RoleCustomer, nil)

	_, err := RedeemVoucher(db, "OLD", customer, nil)
	require.ErrorIs(t, err, ErrVoucherNotRedeemable)
	require.Contains(t, err.Error(), "expired")

	require.Equal(t, "0.00", reload(t, db, customer.ID).AccountBalance.StringFixed(2))

	attempts := attemptRows(t, db, customer.ID)
	require.Len(t, attempts, 1)
	require.Equal(t, models.AttemptFailed, attempts[0].Outcome)
}

func TestRedeemInactiveAndExhausted(t *testing.T) {
	db := setupDB(t)
	customer := newUser(t, db, "cust", models.RoleCustomer, nil)

	newVoucher(t, db, models.Voucher{
		Code: "DISABLED", Type: models.VoucherCredit, Value: decimal.NewFromInt(10), IsActive: false,
	})
	_, err := RedeemVoucher(db, "DISABLED", customer, nil)
	require.ErrorIs(t, err, ErrVoucherNotRedeemable)
	require.Contains(t, err.Error(), "inactive")

	limit := int64(3)
	newVoucher(t, db, models.Voucher{
		Code: "FULL", Type: models.VoucherCredit, Value: decimal.NewFromInt(10),
		IsActive: true, UsageLimit: &limit, UsageCount: 3,
	})
	_, err = RedeemVoucher(db, "FULL", customer, nil)
	require.ErrorIs(t, err, ErrVoucherNotRedeemable)
	require.Contains(t, err.Error(), "exhausted")
}

func TestRedeemUnknownCode(t *testing.T) {
	db := setupDB(t)
	customer := newUser(t, db, "cust", models.RoleCustomer, nil)

	_, err := RedeemVoucher(db, "NOPE", customer, nil)
	require.ErrorIs(t, err, ErrVoucherNotFound)

	attempts := attemptRows(t, db, customer.ID)
	require.Len(t, attempts, 1)
	require.Equal(t, "voucher not found", attempts[0].Reason)
}

func TestDealerRedemptionRules(t *testing.T) {
	db := setupDB(t)

	owner := newUser(t, db, "owner", models.RoleOwner, nil)
	dealer := newUser(t, db, "dealer", models.RoleSubdealer, &owner.ID)
	other := newUser(t, db, "other", models.RoleSubdealer, &owner.ID)

	closed := newVoucher(t, db, models.Voucher{
		Code: "CUSTONLY", Type: models.VoucherCredit, Value: decimal.NewFromInt(10),
		IsActive: true, AllowDealerRedemption: false,
	})
	_, err := RedeemVoucher(db, "CUSTONLY", dealer, nil)
	require.ErrorIs(t, err, ErrRedemptionForbidden)

	attempts := attemptRows(t, db, dealer.ID)
	require.Len(t, attempts, 1)
	require.Equal(t, models.AttemptBlocked, attempts[0].Outcome)

	// Own voucher stays blocked even when dealers are allowed.
	newVoucher(t, db, models.Voucher{
		Code: "SELFMADE", Type: models.VoucherCredit, Value: decimal.NewFromInt(10),
		IsActive: true, AllowDealerRedemption: true, CreatedByID: &dealer.ID,
	})
	_, err = RedeemVoucher(db, "SELFMADE", dealer, nil)
	require.ErrorIs(t, err, ErrRedemptionForbidden)

	// Another dealer may redeem it.
	_, err = RedeemVoucher(db, "SELFMADE", other, nil)
	require.NoError(t, err)

	// Closed voucher untouched throughout.
	var v models.Voucher
	require.NoError(t, db.First(&v, closed.ID).Error)
	require.Zero(t, v.UsageCount)
}

func TestRedeemMessagesVoucher(t *testing.T) {
	db := setupDB(t)

	newVoucher(t, db, models.Voucher{
		Code: "MSG100", Type: models.VoucherMessages, Value: decimal.NewFromInt(100), IsActive: true,
	})
	customer := newUser(t, db, "cust", models.RoleCustomer, nil)

	result, err := RedeemVoucher(db, "MSG100", customer, nil)
	require.NoError(t, err)
	require.EqualValues(t, 100, result.MessageBalance)
	require.EqualValues(t, 100, reload(t, db, customer.ID).MessageBalance)
}

func TestRedeemPercentageVoucher(t *testing.T) {
	db := setupDB(t)

	newVoucher(t, db, models.Voucher{
		Code: "SAVE20", Type: models.VoucherPercentage, Value: decimal.NewFromInt(20), IsActive: true,
	})
	customer := newUser(t, db, "cust", models.RoleCustomer, nil)

	result, err := RedeemVoucher(db, "SAVE20", customer, nil)
	require.NoError(t, err)
	require.NotNil(t, result.PendingDiscountPercent)
	require.Equal(t, "20.00", result.PendingDiscountPercent.StringFixed(2))

	// No balance moves for a percentage voucher.
	fresh := reload(t, db, customer.ID)
	require.Equal(t, "0.00", fresh.AccountBalance.StringFixed(2))
	require.NotNil(t, fresh.PendingDiscountPercent)
}

func TestRedeemPackageVoucher(t *testing.T) {
	db := setupDB(t)

	pkg := models.Package{Name: "starter", Price: decimal.NewFromInt(100), MessageQuota: 500, DurationDays: 30, IsActive: true}
	require.NoError(t, db.Create(&pkg).Error)

	voucher := newVoucher(t, db, models.Voucher{
		Code: "STARTERPKG", Type: models.VoucherPackage, Value: decimal.NewFromInt(1),
		IsActive: true, PackageID: &pkg.ID,
	})
	customer := newUser(t, db, "cust", models.RoleCustomer, nil)

	result, err := RedeemVoucher(db, "STARTERPKG", customer, nil)
	require.NoError(t, err)
	require.NotNil(t, result.GrantedPackageID)
	require.Equal(t, pkg.ID, *result.GrantedPackageID)

	var grants []models.CustomerPackage
	require.NoError(t, db.Find(&grants).Error)
	require.Len(t, grants, 1)
	require.Equal(t, customer.ID, grants[0].UserID)
	require.Equal(t, models.GrantVoucher, grants[0].Source)
	require.NotNil(t, grants[0].VoucherID)
	require.Equal(t, voucher.ID, *grants[0].VoucherID)
	require.True(t, grants[0].ExpiresAt.After(time.Now()))
}

func TestRedeemPackageVoucherWithoutPackageRollsBack(t *testing.T) {
	db := setupDB(t)

	newVoucher(t, db, models.Voucher{
		Code: "BROKEN", Type: models.VoucherPackage, Value: decimal.NewFromInt(1), IsActive: true,
	})
	customer := newUser(t, db, "cust", models.RoleCustomer, nil)

	_, err := RedeemVoucher(db, "BROKEN", customer, nil)
	require.ErrorIs(t, err, ErrUnknownVoucherType)

	// Nothing applied, nothing counted; only the audit row remains.
	var voucher models.Voucher
	require.NoError(t, db.Where("code = ?", "BROKEN").First(&voucher).Error)
	require.Zero(t, voucher.UsageCount)

	var usageCount int64
	require.NoError(t, db.Model(&models.VoucherUsage{}).Count(&usageCount).Error)
	require.Zero(t, usageCount)

	attempts := attemptRows(t, db, customer.ID)
	require.Len(t, attempts, 1)
	require.Equal(t, models.AttemptFailed, attempts[0].Outcome)
}

func TestRedeemOnBehalfOfCustomer(t *testing.T) {
	db := setupDB(t)

	newVoucher(t, db, models.Voucher{
		Code: "GIFT", Type: models.VoucherCredit, Value: decimal.NewFromInt(25), IsActive: true,
	})
	admin := newUser(t, db, "admin", models.RoleAdmin, nil)
	customer := newUser(t, db, "cust", models.RoleCustomer, nil)

	// The usage binds to the target customer, not the acting admin, and
	// the admin's dealer role is still checked against the voucher.
	_, err := RedeemVoucher(db, "GIFT", admin, &customer.ID)
	require.ErrorIs(t, err, ErrRedemptionForbidden)

	require.NoError(t, db.Model(&models.Voucher{}).Where("code = ?", "GIFT").
		Update("allow_dealer_redemption", true).Error)

	result, err := RedeemVoucher(db, "GIFT", admin, &customer.ID)
	require.NoError(t, err)
	require.Equal(t, "25.00", result.AccountBalance.StringFixed(2))
	require.Equal(t, "25.00", reload(t, db, customer.ID).AccountBalance.StringFixed(2))
	require.Equal(t, "0.00", reload(t, db, admin.ID).AccountBalance.StringFixed(2))

	var usage models.VoucherUsage
	require.NoError(t, db.First(&usage).Error)
	require.Equal(t, customer.ID, usage.UserID)
}

func TestRedemptionHistoryAndStats(t *testing.T) {
	db := setupDB(t)

	newVoucher(t, db, models.Voucher{Code: "A1", Type: models.VoucherCredit, Value: decimal.NewFromInt(5), IsActive: true})
	newVoucher(t, db, models.Voucher{Code: "B2", Type: models.VoucherCredit, Value: decimal.NewFromInt(5), IsActive: true})
	customer := newUser(t, db, "cust", models.RoleCustomer, nil)

	_, err := RedeemVoucher(db, "A1", customer, nil)
	require.NoError(t, err)
	_, err = RedeemVoucher(db, "B2", customer, nil)
	require.NoError(t, err)
	_, err = RedeemVoucher(db, "B2", customer, nil)
	require.ErrorIs(t, err, ErrAlreadyRedeemed)
	_, err = RedeemVoucher(db, "MISSING", customer, nil)
	require.ErrorIs(t, err, ErrVoucherNotFound)

	history, err := RedemptionHistory(db, customer.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotEmpty(t, history[0].Voucher.Code)

	stats, err := RedemptionAttemptStats(db, customer.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.Success)
	require.EqualValues(t, 2, stats.Failed)
	require.EqualValues(t, 0, stats.Blocked)
}
