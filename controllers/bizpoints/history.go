package bizpoints

import (
	"wabiz/database"
	"wabiz/helpers"
	"wabiz/models"
	"wabiz/services"

	"github.com/gofiber/fiber/v2"
)

func History(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(models.User)
	if !ok {
		return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
	}

	trxs, err := services.PointHistory(database.DB, user.ID)
	if err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_LOAD_HISTORY")
	}

	return helpers.JSONSuccess(c, "Point transactions", fiber.Map{
		"point_balance": user.PointBalance,
		"transactions":  trxs,
	})
}
