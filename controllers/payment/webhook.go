package payment

import (
	"errors"
	"wabiz/database"
	"wabiz/helpers"
	"wabiz/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WebhookRequest struct {
	Reference  string          `json:"reference" validate:"required,max=64"`
	CustomerID uint            `json:"customer_id" validate:"required"`
	PackageID  *uint           `json:"package_id,omitempty"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
}

// Webhook is the gateway's payment-verified callback. Replays of the same
// reference are acknowledged without reprocessing, and a failed commission
// run never turns into a non-2xx response: the gateway must not retry a
// payment that already activated.
func Webhook(c *fiber.Ctx) error {
	var req WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := helpers.ValidateStruct(&req); err != nil {
		return helpers.JSONError(c, err.Error())
	}

	outcome, err := services.ProcessPayment(database.DB, req.CustomerID, req.PackageID, req.Amount, req.Reference, c.Body())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownCustomer):
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "UNKNOWN_CUSTOMER")
		case errors.Is(err, services.ErrInvalidAmount):
			return helpers.JSONError(c, "AMOUNT_MUST_BE_POSITIVE")
		case errors.Is(err, services.ErrMissingReference):
			return helpers.JSONError(c, "REFERENCE_REQUIRED")
		default:
			return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "PAYMENT_PROCESSING_FAILED")
		}
	}

	if outcome.AlreadyProcessed {
		return helpers.JSONSuccess(c, "Payment already processed", outcome)
	}
	return helpers.JSONSuccess(c, "Payment processed", outcome)
}
