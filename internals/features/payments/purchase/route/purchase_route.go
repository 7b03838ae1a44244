package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	purchaseController "sertifikatku_backend/internals/features/payments/purchase/controller"
	authMiddleware "sertifikatku_backend/internals/middlewares/auth"
)

func PaymentRoutes(api fiber.Router, db *gorm.DB) {
	purchaseCtrl := purchaseController.NewPurchaseController(db)

	payments := api.Group("/payments")
	payments.Post("/create-order", authMiddleware.AuthMiddleware(), purchaseCtrl.CreateOrder)
	payments.Post("/mark-success", authMiddleware.AuthMiddleware(), purchaseCtrl.MarkSuccess)
	payments.Post("/webhook", purchaseCtrl.HandleMidtransNotification) // Midtrans server-to-server

	purchase := api.Group("/purchase", authMiddleware.AuthMiddleware())
	purchase.Get("/history/:userId", purchaseCtrl.GetHistory)
	purchase.Get("/details/:purchaseId", purchaseCtrl.GetDetails)
}
