package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	templateController "sertifikatku_backend/internals/features/templates/controller"
	authMiddleware "sertifikatku_backend/internals/middlewares/auth"
)

func TemplateRoutes(api fiber.Router, db *gorm.DB) {
	templateCtrl := templateController.NewTemplateController(db)

	templates := api.Group("/templates")
	templates.Get("/", templateCtrl.GetAll)
	templates.Get("/user/:userId", templateCtrl.GetForUser)

	templates.Post("/", authMiddleware.AuthMiddleware(), authMiddleware.IsAdmin(), templateCtrl.Create)
	templates.Post("/migrate-layouts", authMiddleware.AuthMiddleware(), authMiddleware.IsAdmin(), templateCtrl.MigrateLayouts)
}
