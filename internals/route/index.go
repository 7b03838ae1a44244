package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sertifikatku_backend/internals/configs"
	bulkRoute "sertifikatku_backend/internals/features/certificates/bulk/route"
	certificateRoute "sertifikatku_backend/internals/features/certificates/certificate/route"
	purchaseRoute "sertifikatku_backend/internals/features/payments/purchase/route"
	subscriptionRoute "sertifikatku_backend/internals/features/payments/subscription/route"
	templateRoute "sertifikatku_backend/internals/features/templates/route"
	userRoute "sertifikatku_backend/internals/features/users/route"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Rendered PDFs, backgrounds and signatures are all under one root.
	app.Static("/uploads", configs.StorageRoot)

	api := app.Group("/api")

	log.Println("[INFO] Setting up AuthRoutes...")
	userRoute.AuthRoutes(api, db)

	log.Println("[INFO] Setting up TemplateRoutes...")
	templateRoute.TemplateRoutes(api, db)

	log.Println("[INFO] Setting up PaymentRoutes...")
	purchaseRoute.PaymentRoutes(api, db)

	log.Println("[INFO] Setting up SubscriptionRoutes...")
	subscriptionRoute.SubscriptionRoutes(api, db)

	log.Println("[INFO] Setting up CertificateRoutes...")
	certificateRoute.CertificateRoutes(api, db)

	log.Println("[INFO] Setting up BulkCertificateRoutes...")
	bulkRoute.BulkCertificateRoutes(api, db)
}
