package bizpoints

import (
	"errors"
	"wabiz/database"
	"wabiz/helpers"
	"wabiz/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PreviewRequest struct {
	CustomerID uint            `json:"customer_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
}

// Preview resolves the commission chain for a hypothetical purchase amount
// without mutating anything. Same rate logic as the real distribution.
func Preview(c *fiber.Ctx) error {
	var req PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := helpers.ValidateStruct(&req); err != nil {
		return helpers.JSONError(c, err.Error())
	}

	report, err := services.PreviewCommission(database.DB, req.CustomerID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCommissionTarget):
			return helpers.JSONError(c, "CUSTOMER_HAS_NO_DEALER")
		case errors.Is(err, services.ErrInvalidAmount):
			return helpers.JSONError(c, "AMOUNT_MUST_BE_POSITIVE")
		default:
			return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "PREVIEW_FAILED")
		}
	}

	return helpers.JSONSuccess(c, "Commission preview", report)
}
