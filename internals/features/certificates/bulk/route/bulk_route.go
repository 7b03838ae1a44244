package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	bulkController "sertifikatku_backend/internals/features/certificates/bulk/controller"
	authMiddleware "sertifikatku_backend/internals/middlewares/auth"
)

func BulkCertificateRoutes(api fiber.Router, db *gorm.DB) {
	bulkCtrl := bulkController.NewBulkController(db)

	bulk := api.Group("/bulk-certificates", authMiddleware.AuthMiddleware())
	bulk.Post("/upload", bulkCtrl.Upload)
	bulk.Post("/commit", bulkCtrl.Commit)
}
