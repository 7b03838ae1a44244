package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	subscriptionController "sertifikatku_backend/internals/features/payments/subscription/controller"
	authMiddleware "sertifikatku_backend/internals/middlewares/auth"
)

func SubscriptionRoutes(api fiber.Router, db *gorm.DB) {
	subsCtrl := subscriptionController.NewSubscriptionController(db)

	subs := api.Group("/subscriptions")
	subs.Get("/plans", subsCtrl.GetPlans)
	subs.Post("/create-plan", authMiddleware.AuthMiddleware(), authMiddleware.IsAdmin(), subsCtrl.CreatePlan)
}
