package bizpoints

import (
	"errors"
	"wabiz/database"
	"wabiz/helpers"
	"wabiz/models"
	"wabiz/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SettleRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// Settle converts the calling dealer's points into account balance.
func Settle(c *fiber.Ctx) error {
	var req SettleRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	user, ok := c.Locals("user").(models.User)
	if !ok {
		return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
	}

	trx, err := services.SettleWithdraw(database.DB, user.ID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotADealer):
			return helpers.JSONErrorStatus(c, fiber.StatusForbidden, "DEALER_ACCOUNT_REQUIRED")
		case errors.Is(err, services.ErrInsufficientPoints):
			return helpers.JSONError(c, "INSUFFICIENT_POINT_BALANCE")
		case errors.Is(err, services.ErrInvalidAmount):
			return helpers.JSONError(c, "AMOUNT_MUST_BE_POSITIVE")
		default:
			return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "SETTLEMENT_FAILED")
		}
	}

	return helpers.JSONSuccess(c, "Points settled", trx)
}
