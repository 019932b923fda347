package voucher

import (
	"time"
	"wabiz/database"
	"wabiz/helpers"
	"wabiz/models"
	"wabiz/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	Code                  string          `json:"code" validate:"required,min=3,max=32"`
	Type                  string          `json:"type" validate:"required,oneof=credit messages percentage package"`
	Value                 decimal.Decimal `json:"value" validate:"required"`
	UsageLimit            *int64          `json:"usage_limit,omitempty"`
	ExpiresAt             *time.Time      `json:"expires_at,omitempty"`
	AllowDealerRedemption bool            `json:"allow_dealer_redemption"`
	PackageID             *uint           `json:"package_id,omitempty"`
}

func Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := helpers.ValidateStruct(&req); err != nil {
		return helpers.JSONError(c, err.Error())
	}
	if !req.Value.IsPositive() {
		return helpers.JSONError(c, "VALUE_MUST_BE_POSITIVE")
	}
	if models.VoucherType(req.Type) == models.VoucherPackage && req.PackageID == nil {
		return helpers.JSONError(c, "PACKAGE_ID_REQUIRED")
	}

	user, ok := c.Locals("user").(models.User)
	if !ok {
		return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
	}

	voucher := models.Voucher{
		Code:                  services.NormalizeVoucherCode(req.Code),
		Type:                  models.VoucherType(req.Type),
		Value:                 req.Value,
		UsageLimit:            req.UsageLimit,
		IsActive:              true,
		ExpiresAt:             req.ExpiresAt,
		CreatedByID:           &user.ID,
		AllowDealerRedemption: req.AllowDealerRedemption,
		PackageID:             req.PackageID,
	}
	if err := database.DB.Create(&voucher).Error; err != nil {
		return helpers.JSONError(c, "VOUCHER_CODE_ALREADY_EXISTS")
	}

	return helpers.JSONSuccess(c, "Voucher created", voucher)
}

// Deactivate soft-disables a voucher. Used vouchers are never deleted.
func Deactivate(c *fiber.Ctx) error {
	code := services.NormalizeVoucherCode(c.Params("code"))

	var voucher models.Voucher
	if err := database.DB.Where("code = ?", code).First(&voucher).Error; err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "VOUCHER_NOT_FOUND")
	}

	if err := database.DB.Model(&voucher).Update("is_active", false).Error; err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_DEACTIVATE")
	}

	voucher.IsActive = false
	return helpers.JSONSuccess(c, "Voucher deactivated", voucher)
}
