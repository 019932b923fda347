package admin

import (
	"errors"
	"wabiz/database"
	"wabiz/helpers"
	"wabiz/models"
	"wabiz/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type AdjustRequest struct {
	UserID uint            `json:"user_id" validate:"required"`
	Type   string          `json:"type" validate:"required,oneof=admin_credit admin_debit bonus"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Note   string          `json:"note" validate:"max=255"`
}

func AdjustBalance(c *fiber.Ctx) error {
	var req AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := helpers.ValidateStruct(&req); err != nil {
		return helpers.JSONError(c, err.Error())
	}

	note := req.Note
	if note == "" {
		note = "Manual balance adjustment"
	}

	trx, err := services.AdjustPoints(database.DB, req.UserID, models.TrxType(req.Type), req.Amount, note)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientPoints):
			return helpers.JSONError(c, "DEBIT_EXCEEDS_BALANCE")
		case errors.Is(err, services.ErrInvalidAmount):
			return helpers.JSONError(c, "AMOUNT_MUST_BE_POSITIVE")
		case errors.Is(err, services.ErrInvalidAdjustmentType):
			return helpers.JSONError(c, "INVALID_ADJUSTMENT_TYPE")
		default:
			return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "ADJUSTMENT_FAILED")
		}
	}

	return helpers.JSONSuccess(c, "Balance adjusted", trx)
}
