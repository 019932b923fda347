package middlewares

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/gofiber/fiber/v2"
)

// WebhookAuth verifies the payment gateway's HMAC signature header over the
// raw body, keyed by GATEWAY_WEBHOOK_SECRET.
func WebhookAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := os.Getenv("GATEWAY_WEBHOOK_SECRET")
		signature := c.Get("X-Gateway-Signature")

		if secret == "" || signature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "MISSING_SIGNATURE",
			})
		}

		h := hmac.New(sha256.New, []byte(secret))
		h.Write(c.Body())
		expected := hex.EncodeToString(h.Sum(nil))

		if !hmac.Equal([]byte(signature), []byte(expected)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "INVALID_SIGNATURE",
			})
		}

		return c.Next()
	}
}
