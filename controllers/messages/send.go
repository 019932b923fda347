package messages

import (
	"errors"
	"wabiz/database"
	"wabiz/helpers"
	"wabiz/models"
	"wabiz/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SendRequest struct {
	To   string `json:"to" validate:"required,e164"`
	Body string `json:"body" validate:"required,max=4096"`
}

// Send debits one message from the caller's balance and hands the payload
// to the delivery layer. Delivery itself is asynchronous and external.
func Send(c *fiber.Ctx) error {
	var req SendRequest
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

	remaining, err := services.DebitMessages(database.DB, user.ID, 1)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientMessages) {
			return helpers.JSONError(c, "INSUFFICIENT_MESSAGE_BALANCE")
		}
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "SEND_FAILED")
	}

	return helpers.JSONSuccess(c, "Message queued", fiber.Map{
		"message_id":        uuid.New().String(),
		"to":                req.To,
		"remaining_balance": remaining,
	})
}
