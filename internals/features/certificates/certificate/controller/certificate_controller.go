package controller

import (
	"errors"
	"log"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sertifikatku_backend/internals/configs"
	"sertifikatku_backend/internals/features/certificates/certificate/dto"
	"sertifikatku_backend/internals/features/certificates/certificate/model"
	certService "sertifikatku_backend/internals/features/certificates/certificate/service"
	"sertifikatku_backend/internals/features/certificates/pdf"
	purchaseService "sertifikatku_backend/internals/features/payments/purchase/service"
	templateModel "sertifikatku_backend/internals/features/templates/model"
	userModel "sertifikatku_backend/internals/features/users/model"
	helper "sertifikatku_backend/internals/helpers"
)

/*
	========================================================
	  Controller
========================================================
*/

type CertificateController struct {
	DB        *gorm.DB
	Validate  *validator.Validate
	Generator *certService.Generator
}

func NewCertificateController(db *gorm.DB) *CertificateController {
	return &CertificateController{
		DB:        db,
		Validate:  validator.New(),
		Generator: certService.NewGenerator(db),
	}
}

/*
	========================================================
	  Direct generation
========================================================
*/

// POST /api/certificates/generate
func (ctrl *CertificateController) Generate(c *fiber.Ctx) error {
	var body dto.GenerateRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	user, err := ctrl.currentUser(c)
	if err != nil {
		return err
	}

	var tpl *templateModel.TemplateModel
	if body.TemplateID != "" {
		templateID, _ := uuid.Parse(body.TemplateID)
		var t templateModel.TemplateModel
		if err := ctrl.DB.Where("template_id = ?", templateID).First(&t).Error; err != nil {
			return helper.Error(c, fiber.StatusNotFound, "Template not found")
		}
		tpl = &t
	}

	cert, err := ctrl.Generator.Generate(certService.GenerateInput{
		CertificateNumber: certService.DirectCertificateID(),
		UserID:            user.UserID,
		Template:          tpl,
		Data: pdf.CertificateData{
			CertificateTitle: body.CertificateTitle,
			RecipientName:    body.RecipientName,
			CourseName:       body.CourseName,
			Description:      body.Description,
			IssueDate:        body.IssueDate,
			OrganizationName: user.UserOrganizationName,
			SignatureURL:     user.UserSignatureURL,
		},
		Email: body.Email,
	})
	if err != nil {
		log.Println("[ERROR] certificate generation failed:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to generate certificate")
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Certificate generated", cert)
}

/*
	========================================================
	  Generation by purchase (the paid path)
========================================================
*/

// purchaseMetadata mirrors what create-order stored for a certificate order.
type purchaseMetadata struct {
	RecipientName    string `json:"recipientName"`
	CourseName       string `json:"courseName"`
	Description      string `json:"description"`
	Date             string `json:"date"`
	Email            string `json:"email"`
	CertificateTitle string `json:"certificateTitle"`
}

// POST /api/certificates/generate-by-purchase
//
// The usage flag is consumed BEFORE rendering via a conditional update, so
// two concurrent calls on one purchase can never both render. On failure
// after the consume the flag is reverted and the caller may retry.
func (ctrl *CertificateController) GenerateByPurchase(c *fiber.Ctx) error {
	var body dto.GenerateByPurchaseRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	purchaseID, err := uuid.Parse(body.PurchaseID)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid purchase ID")
	}

	purchase, err := purchaseService.ConsumePurchase(ctrl.DB, purchaseID)
	if err != nil {
		switch {
		case errors.Is(err, purchaseService.ErrPurchaseNotFound):
			return helper.Error(c, fiber.StatusNotFound, "Purchase not found")
		case errors.Is(err, purchaseService.ErrPurchaseNotPaid):
			return helper.Error(c, fiber.StatusBadRequest, "Payment not completed")
		case errors.Is(err, purchaseService.ErrPurchaseUsed):
			return helper.Error(c, fiber.StatusBadRequest, "Purchase already used")
		default:
			log.Println("[ERROR] purchase consume failed:", err)
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to process purchase")
		}
	}

	var user userModel.UserModel
	if err := ctrl.DB.Where("user_id = ?", purchase.PurchaseUserID).First(&user).Error; err != nil {
		purchaseService.RevertPurchaseUse(ctrl.DB, purchaseID)
		return helper.Error(c, fiber.StatusNotFound, "Account not found")
	}

	var meta purchaseMetadata
	if len(purchase.PurchaseMetadata) > 0 {
		if err := sonic.Unmarshal(purchase.PurchaseMetadata, &meta); err != nil {
			log.Println("[WARN] unreadable purchase metadata:", err)
		}
	}

	var tpl *templateModel.TemplateModel
	if purchase.PurchaseTemplateID != nil {
		var t templateModel.TemplateModel
		if err := ctrl.DB.Where("template_id = ?", *purchase.PurchaseTemplateID).First(&t).Error; err == nil {
			tpl = &t
		} else {
			log.Println("[WARN] purchased template missing, rendering on standard layout:", err)
		}
	}

	cert, err := ctrl.Generator.Generate(certService.GenerateInput{
		CertificateNumber: certService.DirectCertificateID(),
		UserID:            purchase.PurchaseUserID,
		Template:          tpl,
		Data: pdf.CertificateData{
			CertificateTitle: meta.CertificateTitle,
			RecipientName:    meta.RecipientName,
			CourseName:       meta.CourseName,
			Description:      meta.Description,
			IssueDate:        meta.Date,
			OrganizationName: user.UserOrganizationName,
			SignatureURL:     user.UserSignatureURL,
		},
		PaymentID: purchase.PurchasePaymentID,
		Email:     meta.Email,
	})
	if err != nil {
		purchaseService.RevertPurchaseUse(ctrl.DB, purchaseID)
		log.Println("[ERROR] certificate generation failed, purchase reverted:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to generate certificate")
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Certificate generated", cert)
}

/*
	========================================================
	  Verification & retrieval
========================================================
*/

// GET /api/certificates/verify/:certificateId (public)
func (ctrl *CertificateController) Verify(c *fiber.Ctx) error {
	certificateID := c.Params("certificateId")

	var cert model.CertificateModel
	if err := ctrl.DB.Where("certificate_number = ?", certificateID).First(&cert).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"valid":   false,
			"message": "Certificate not found",
		})
	}

	orgName := ""
	var user userModel.UserModel
	if err := ctrl.DB.Where("user_id = ?", cert.CertificateUserID).First(&user).Error; err == nil {
		orgName = user.UserOrganizationName
	}

	return helper.Success(c, "Certificate is valid", dto.VerifyResponse{
		Valid:            true,
		CertificateID:    cert.CertificateNumber,
		StudentName:      cert.CertificateStudentName,
		CourseName:       cert.CertificateCourseName,
		IssueDate:        cert.CertificateIssueDate,
		OrganizationName: orgName,
		GeneratedAt:      cert.CertificateGeneratedAt.Format("2006-01-02 15:04:05"),
	})
}

// GET /api/certificates/my
func (ctrl *CertificateController) GetMine(c *fiber.Ctx) error {
	user, err := ctrl.currentUser(c)
	if err != nil {
		return err
	}

	var certs []model.CertificateModel
	if err := ctrl.DB.Where("certificate_user_id = ?", user.UserID).
		Order("certificate_generated_at DESC").Find(&certs).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch certificates")
	}
	return helper.Success(c, "Certificates fetched", certs)
}

// GET /api/certificates/download/:id
func (ctrl *CertificateController) Download(c *fiber.Ctx) error {
	user, err := ctrl.currentUser(c)
	if err != nil {
		return err
	}

	var cert model.CertificateModel
	if err := ctrl.DB.Where("certificate_number = ?", c.Params("id")).First(&cert).Error; err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Certificate not found")
	}
	role, _ := c.Locals("role").(string)
	if cert.CertificateUserID != user.UserID && role != "admin" {
		return helper.Error(c, fiber.StatusForbidden, "Not your certificate")
	}

	path := filepath.Join(configs.StorageRoot, filepath.FromSlash(cert.CertificatePdfURL))
	if !pdf.FileExists(path) {
		log.Println("[ERROR] certificate artifact missing:", path)
		return helper.Error(c, fiber.StatusNotFound, "Certificate file is missing")
	}
	return c.Download(path, cert.CertificateNumber+".pdf")
}

func (ctrl *CertificateController) currentUser(c *fiber.Ctx) (*userModel.UserModel, error) {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	var user userModel.UserModel
	if err := ctrl.DB.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Account not found")
	}
	return &user, nil
}
