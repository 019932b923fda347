package middlewares

import (
	"wabiz/database"
	"wabiz/helpers"
	"wabiz/models"

	"github.com/gofiber/fiber/v2"
)

// SessionAuth resolves the acting user from the identity headers issued by
// the session provider and stores the row in locals.
func SessionAuth(c *fiber.Ctx) error {
	email := c.Get("X-Auth-Email")
	token := c.Get("X-Auth-Token")

	if email == "" || token == "" {
		return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "AUTH_EMAIL_AND_TOKEN_REQUIRED")
	}

	var user models.User
	if err := database.DB.
		Where("email = ? AND auth_token = ? AND is_active = true", email, token).
		First(&user).Error; err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS")
	}

	c.Locals("user", user)
	return c.Next()
}

// RequireRole gates a route group to the given roles; must run after
// SessionAuth.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(models.User)
		if !ok {
			return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
		}
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return helpers.JSONErrorStatus(c, fiber.StatusForbidden, "INSUFFICIENT_ROLE")
	}
}
