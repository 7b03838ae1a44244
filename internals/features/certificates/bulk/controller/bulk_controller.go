package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	bulkService "sertifikatku_backend/internals/features/certificates/bulk/service"
	certService "sertifikatku_backend/internals/features/certificates/certificate/service"
	"sertifikatku_backend/internals/features/certificates/pdf"
	purchaseService "sertifikatku_backend/internals/features/payments/purchase/service"
	templateModel "sertifikatku_backend/internals/features/templates/model"
	userModel "sertifikatku_backend/internals/features/users/model"
	helper "sertifikatku_backend/internals/helpers"
)

type BulkController struct {
	DB        *gorm.DB
	Validate  *validator.Validate
	Generator *certService.Generator
}

func NewBulkController(db *gorm.DB) *BulkController {
	return &BulkController{
		DB:        db,
		Validate:  validator.New(),
		Generator: certService.NewGenerator(db),
	}
}

/*
	========================================================
	  Upload & preview
========================================================
*/

// POST /api/bulk-certificates/upload
// Multipart file "file": parses the roster and reports the classification
// without issuing anything.
func (ctrl *BulkController) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "CSV file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Cannot read uploaded file")
	}
	defer src.Close()

	valid, invalid, err := bulkService.ParseRoster(src)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, err.Error())
	}

	preview := valid
	if len(preview) > 5 {
		preview = preview[:5]
	}

	return helper.Success(c, "Roster parsed", fiber.Map{
		"total_rows":    len(valid) + len(invalid),
		"valid_count":   len(valid),
		"invalid_count": len(invalid),
		"preview":       preview,
		"invalid_rows":  invalid,
		"rows":          valid,
	})
}

/*
	========================================================
	  Commit
========================================================
*/

type commitRow struct {
	Name      string `json:"name" validate:"required"`
	Course    string `json:"course" validate:"required"`
	IssueDate string `json:"issue_date"`
	Email     string `json:"email" validate:"omitempty,email"`
}

type commitRequest struct {
	PurchaseID string      `json:"purchase_id" validate:"omitempty,uuid"`
	TemplateID string      `json:"template_id" validate:"omitempty,uuid"`
	Rows       []commitRow `json:"rows" validate:"required,min=1,dive"`
}

// POST /api/bulk-certificates/commit
// Issues one certificate per row, ids {ISSUER}-{8 hex}. When a purchase id
// is given the bulk purchase is consumed first (same conditional-update gate
// as single generation) and reverted if the whole batch fails.
func (ctrl *BulkController) Commit(c *fiber.Ctx) error {
	var body commitRequest
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

	var consumedPurchase *uuid.UUID
	if body.PurchaseID != "" {
		purchaseID, _ := uuid.Parse(body.PurchaseID)
		if _, err := purchaseService.ConsumePurchase(ctrl.DB, purchaseID); err != nil {
			switch {
			case errors.Is(err, purchaseService.ErrPurchaseNotFound):
				return helper.Error(c, fiber.StatusNotFound, "Purchase not found")
			case errors.Is(err, purchaseService.ErrPurchaseNotPaid):
				return helper.Error(c, fiber.StatusBadRequest, "Payment not completed")
			case errors.Is(err, purchaseService.ErrPurchaseUsed):
				return helper.Error(c, fiber.StatusBadRequest, "Purchase already used")
			default:
				log.Println("[ERROR] bulk purchase consume failed:", err)
				return helper.Error(c, fiber.StatusInternalServerError, "Failed to process purchase")
			}
		}
		consumedPurchase = &purchaseID
	}

	var tpl *templateModel.TemplateModel
	if body.TemplateID != "" {
		templateID, _ := uuid.Parse(body.TemplateID)
		var t templateModel.TemplateModel
		if err := ctrl.DB.Where("template_id = ?", templateID).First(&t).Error; err != nil {
			if consumedPurchase != nil {
				purchaseService.RevertPurchaseUse(ctrl.DB, *consumedPurchase)
			}
			return helper.Error(c, fiber.StatusNotFound, "Template not found")
		}
		tpl = &t
	}

	issued := make([]fiber.Map, 0, len(body.Rows))
	failed := 0
	for _, row := range body.Rows {
		cert, err := ctrl.Generator.Generate(certService.GenerateInput{
			CertificateNumber: certService.BulkCertificateID(user.UserIssuerCode),
			UserID:            user.UserID,
			Template:          tpl,
			Data: pdf.CertificateData{
				RecipientName:    row.Name,
				CourseName:       row.Course,
				IssueDate:        row.IssueDate,
				OrganizationName: user.UserOrganizationName,
				SignatureURL:     user.UserSignatureURL,
			},
			Email: row.Email,
		})
		if err != nil {
			log.Printf("[ERROR] bulk row %q failed: %v", row.Name, err)
			failed++
			continue
		}
		issued = append(issued, fiber.Map{
			"certificate_id": cert.CertificateNumber,
			"student_name":   cert.CertificateStudentName,
		})
	}

	// A batch where nothing was issued releases the purchase for a retry.
	if len(issued) == 0 {
		if consumedPurchase != nil {
			purchaseService.RevertPurchaseUse(ctrl.DB, *consumedPurchase)
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to generate any certificate")
	}

	log.Printf("✅ Bulk batch done: %d issued, %d failed", len(issued), failed)
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Batch generated", fiber.Map{
		"generated_count": len(issued),
		"failed_count":    failed,
		"certificates":    issued,
	})
}

func (ctrl *BulkController) currentUser(c *fiber.Ctx) (*userModel.UserModel, error) {
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
