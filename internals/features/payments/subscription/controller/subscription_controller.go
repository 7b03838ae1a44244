package controller

import (
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sertifikatku_backend/internals/features/payments/subscription/model"
	helper "sertifikatku_backend/internals/helpers"
)

type SubscriptionController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewSubscriptionController(db *gorm.DB) *SubscriptionController {
	return &SubscriptionController{DB: db, Validate: validator.New()}
}

type createPlanRequest struct {
	Name         string `json:"name" validate:"required,min=3"`
	DurationDays int    `json:"duration_days" validate:"required,gt=0"`
	Price        int    `json:"price" validate:"required,gt=0"`
}

// POST /api/subscriptions/create-plan (admin)
func (ctrl *SubscriptionController) CreatePlan(c *fiber.Ctx) error {
	var body createPlanRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	plan := model.SubscriptionPlanModel{
		PlanName:         strings.TrimSpace(body.Name),
		PlanDurationDays: body.DurationDays,
		PlanPrice:        body.Price,
	}
	if err := ctrl.DB.Create(&plan).Error; err != nil {
		log.Println("[ERROR] failed to create plan:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create plan")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Plan created", plan)
}

// GET /api/subscriptions/plans
func (ctrl *SubscriptionController) GetPlans(c *fiber.Ctx) error {
	var plans []model.SubscriptionPlanModel
	if err := ctrl.DB.Order("plan_duration_days ASC").Find(&plans).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch plans")
	}
	return helper.Success(c, "Plans fetched", plans)
}
