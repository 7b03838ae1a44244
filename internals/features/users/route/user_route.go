package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userController "sertifikatku_backend/internals/features/users/controller"
	"sertifikatku_backend/internals/middlewares"
	authMiddleware "sertifikatku_backend/internals/middlewares/auth"
)

func AuthRoutes(api fiber.Router, db *gorm.DB) {
	authCtrl := userController.NewAuthController(db)

	auth := api.Group("/auth")
	auth.Post("/register", middlewares.RegisterRateLimiter(), authCtrl.Register)
	auth.Post("/login", middlewares.LoginRateLimiter(), authCtrl.Login)

	auth.Get("/me", authMiddleware.AuthMiddleware(), authCtrl.Me)
	auth.Post("/upload-signature", authMiddleware.AuthMiddleware(), authCtrl.UploadSignature)
}
