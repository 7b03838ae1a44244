package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	certificateController "sertifikatku_backend/internals/features/certificates/certificate/controller"
	authMiddleware "sertifikatku_backend/internals/middlewares/auth"
)

func CertificateRoutes(api fiber.Router, db *gorm.DB) {
	certCtrl := certificateController.NewCertificateController(db)

	certs := api.Group("/certificates")

	// Public: anyone scanning a QR must be able to verify.
	certs.Get("/verify/:certificateId", certCtrl.Verify)

	certs.Post("/generate", authMiddleware.AuthMiddleware(), certCtrl.Generate)
	certs.Post("/generate-by-purchase", authMiddleware.AuthMiddleware(), certCtrl.GenerateByPurchase)
	certs.Get("/my", authMiddleware.AuthMiddleware(), certCtrl.GetMine)
	certs.Get("/download/:id", authMiddleware.AuthMiddleware(), certCtrl.Download)
}
