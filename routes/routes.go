package routes

import (
	"wabiz/controllers/admin"
	"wabiz/controllers/bizpoints"
	"wabiz/controllers/messages"
	"wabiz/controllers/payment"
	"wabiz/controllers/voucher"
	"wabiz/middlewares"
	"wabiz/models"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App) {
	voucherRoutes := app.Group("/voucher", middlewares.SessionAuth)
	voucherRoutes.Post("/redeem", voucher.Redeem)
	voucherRoutes.Get("/history", voucher.History)
	voucherRoutes.Get("/attempts", voucher.AttemptStats)

	dealerVouchers := app.Group("/voucher", middlewares.SessionAuth,
		middlewares.RequireRole(models.RoleOwner, models.RoleAdmin, models.RoleEmployee, models.RoleSubdealer))
	dealerVouchers.Post("/", voucher.Create)
	dealerVouchers.Delete("/:code", voucher.Deactivate)

	pointsRoutes := app.Group("/bizpoints", middlewares.SessionAuth)
	pointsRoutes.Get("/history", bizpoints.History)
	pointsRoutes.Post("/settle", bizpoints.Settle)

	adminRoutes := app.Group("/admin", middlewares.SessionAuth,
		middlewares.RequireRole(models.RoleOwner, models.RoleAdmin))
	adminRoutes.Post("/bizpoints/preview", bizpoints.Preview)
	adminRoutes.Post("/balance/adjust", admin.AdjustBalance)

	messageRoutes := app.Group("/messages", middlewares.SessionAuth)
	messageRoutes.Post("/send", messages.Send)

	app.Post("/payment/webhook", middlewares.WebhookAuth(), payment.Webhook)
}
