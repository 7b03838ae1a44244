package controller

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sertifikatku_backend/internals/configs"
	"sertifikatku_backend/internals/features/certificates/pdf"
	purchaseModel "sertifikatku_backend/internals/features/payments/purchase/model"
	"sertifikatku_backend/internals/features/templates/dto"
	"sertifikatku_backend/internals/features/templates/model"
	helper "sertifikatku_backend/internals/helpers"
)

type TemplateController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewTemplateController(db *gorm.DB) *TemplateController {
	return &TemplateController{DB: db, Validate: validator.New()}
}

var allowedBackgroundExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
}

// GET /api/templates
func (ctrl *TemplateController) GetAll(c *fiber.Ctx) error {
	var templates []model.TemplateModel
	if err := ctrl.DB.Where("template_is_active = ?", true).Order("created_at DESC").Find(&templates).Error; err != nil {
		log.Println("[ERROR] failed to list templates:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch templates")
	}
	return helper.Success(c, "Templates fetched", templates)
}

// POST /api/templates (admin)
// Multipart: fields per dto.CreateTemplateRequest + file "bgImage".
func (ctrl *TemplateController) Create(c *fiber.Ctx) error {
	var body dto.CreateTemplateRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	fh, err := c.FormFile("bgImage")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Background image (bgImage) is required")
	}
	if !allowedBackgroundExt[strings.ToLower(filepath.Ext(fh.Filename))] {
		return helper.Error(c, fiber.StatusBadRequest, "Background must be a PNG, JPG or WEBP image")
	}

	// Layout JSON, when present, must parse before it is stored.
	var layout datatypes.JSON
	if strings.TrimSpace(body.Layout) != "" {
		if _, _, err := pdf.ResolveLayout([]byte(body.Layout)); err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "Invalid layout: "+err.Error())
		}
		layout = datatypes.JSON(body.Layout)
	}

	rel, err := helper.SaveUploadedFile(fh, configs.StorageRoot, "templates")
	if err != nil {
		log.Println("[ERROR] failed to store background:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to store background image")
	}

	tplType := body.Type
	if tplType == "" {
		tplType = model.TemplateTypeFree
	}
	if tplType == model.TemplateTypeFree {
		body.Price = 0
	}

	tpl := model.TemplateModel{
		TemplateName:        strings.TrimSpace(body.Name),
		TemplateDescription: strings.TrimSpace(body.Description),
		TemplatePreviewURL:  rel,
		TemplateBgImageURL:  rel,
		TemplateType:        tplType,
		TemplatePrice:       body.Price,
		TemplateLayout:      layout,
	}
	if err := ctrl.DB.Create(&tpl).Error; err != nil {
		log.Println("[ERROR] failed to create template:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create template")
	}

	log.Println("✅ Template created:", tpl.TemplateID)
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Template created", tpl)
}

// GET /api/templates/user/:userId
// Same list as GetAll, each row flagged with the caller's purchase state.
func (ctrl *TemplateController) GetForUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	var templates []model.TemplateModel
	if err := ctrl.DB.Where("template_is_active = ?", true).Order("created_at DESC").Find(&templates).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch templates")
	}

	var purchases []purchaseModel.PurchaseModel
	if err := ctrl.DB.
		Where("purchase_user_id = ? AND purchase_status = ? AND purchase_template_id IS NOT NULL",
			userID, purchaseModel.PurchaseStatusSuccess).
		Find(&purchases).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch purchases")
	}
	owned := make(map[uuid.UUID]bool, len(purchases))
	for _, p := range purchases {
		if p.PurchaseTemplateID != nil {
			owned[*p.PurchaseTemplateID] = true
		}
	}

	out := make([]dto.TemplateForUser, 0, len(templates))
	for _, t := range templates {
		premium := t.TemplateType == model.TemplateTypePremium
		purchased := owned[t.TemplateID]
		out = append(out, dto.TemplateForUser{
			TemplateModel: t,
			IsPremium:     premium,
			IsPurchased:   purchased,
			IsLocked:      premium && !purchased,
		})
	}
	return helper.Success(c, "Templates fetched", out)
}

// POST /api/templates/migrate-layouts (admin)
// Rewrites legacy fixed-canvas layouts to the canonical percentage form.
// Idempotent: templates already canonical are counted as skipped.
func (ctrl *TemplateController) MigrateLayouts(c *fiber.Ctx) error {
	var templates []model.TemplateModel
	if err := ctrl.DB.Find(&templates).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch templates")
	}

	migrated, skipped, failed := 0, 0, 0
	for i := range templates {
		t := &templates[i]
		if len(t.TemplateLayout) == 0 {
			skipped++
			continue
		}
		canonical, changed, err := pdf.MigrateStored(t.TemplateLayout)
		if err != nil {
			log.Printf("[WARN] template %s layout unreadable, left as-is: %v", t.TemplateID, err)
			failed++
			continue
		}
		if !changed {
			skipped++
			continue
		}
		if err := ctrl.DB.Model(t).Update("template_layout", datatypes.JSON(canonical)).Error; err != nil {
			log.Printf("[ERROR] failed to migrate template %s: %v", t.TemplateID, err)
			failed++
			continue
		}
		migrated++
	}

	log.Printf("✅ Layout migration done: %d migrated, %d skipped, %d failed", migrated, skipped, failed)
	return helper.Success(c, "Layout migration complete", fiber.Map{
		"migrated": migrated,
		"skipped":  skipped,
		"failed":   failed,
	})
}
