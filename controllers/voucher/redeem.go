package voucher

import (
	"errors"
	"wabiz/database"
	"wabiz/helpers"
	"wabiz/models"
	"wabiz/services"

	"github.com/gofiber/fiber/v2"
)

type RedeemRequest struct {
	Code             string `json:"code" validate:"required"`
	TargetCustomerID *uint  `json:"target_customer_id,omitempty"`
}

func Redeem(c *fiber.Ctx) error {
	var req RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := helpers.ValidateStruct(&req); err != nil {
		return helpers.JSONError(c, err.Error())
	}

	user, ok := c.Locals("user").(models.User)
	if !ok {
		return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
	}

	// Only admins may redeem on behalf of another customer.
	if req.TargetCustomerID != nil && *req.TargetCustomerID != user.ID {
		if user.Role != models.RoleOwner && user.Role != models.RoleAdmin {
			return helpers.JSONErrorStatus(c, fiber.StatusForbidden, "ON_BEHALF_REDEMPTION_NOT_ALLOWED")
		}
	}

	result, err := services.RedeemVoucher(database.DB, req.Code, user, req.TargetCustomerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVoucherNotFound):
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "VOUCHER_NOT_FOUND")
		case errors.Is(err, services.ErrVoucherNotRedeemable):
			return helpers.JSONError(c, "VOUCHER_NOT_REDEEMABLE: "+err.Error())
		case errors.Is(err, services.ErrRedemptionForbidden):
			return helpers.JSONErrorStatus(c, fiber.StatusForbidden, "REDEMPTION_FORBIDDEN")
		case errors.Is(err, services.ErrAlreadyRedeemed):
			return helpers.JSONError(c, "VOUCHER_ALREADY_REDEEMED")
		case errors.Is(err, services.ErrUnknownVoucherType):
			return helpers.JSONError(c, "VOUCHER_NOT_APPLICABLE")
		case errors.Is(err, services.ErrNoRedemptionTarget):
			return helpers.JSONError(c, "TARGET_CUSTOMER_NOT_FOUND")
		default:
			return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "REDEMPTION_FAILED")
		}
	}

	return helpers.JSONSuccess(c, "Voucher redeemed", result)
}
