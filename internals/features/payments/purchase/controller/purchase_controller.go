package controller

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sertifikatku_backend/internals/configs"
	"sertifikatku_backend/internals/features/payments/purchase/dto"
	"sertifikatku_backend/internals/features/payments/purchase/model"
	purchaseService "sertifikatku_backend/internals/features/payments/purchase/service"
	subscriptionModel "sertifikatku_backend/internals/features/payments/subscription/model"
	templateModel "sertifikatku_backend/internals/features/templates/model"
	userModel "sertifikatku_backend/internals/features/users/model"
	helper "sertifikatku_backend/internals/helpers"
)

// Flat per-certificate price in whole rupiah.
const CertificatePrice = 50

type PurchaseController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewPurchaseController(db *gorm.DB) *PurchaseController {
	return &PurchaseController{DB: db, Validate: validator.New()}
}

/*
	========================================================
	  Create Order
========================================================
*/

// POST /api/payments/create-order
func (ctrl *PurchaseController) CreateOrder(c *fiber.Ctx) error {
	var body dto.CreateOrderRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	userIDStr, _ := c.Locals("user_id").(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var user userModel.UserModel
	if err := ctrl.DB.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Account not found")
	}

	purchase := model.PurchaseModel{
		PurchaseUserID:  userID,
		PurchaseOrderID: fmt.Sprintf("ORDER-%d", time.Now().UnixNano()),
		PurchaseType:    model.PurchaseType(body.Type),
		PurchaseStatus:  model.PurchaseStatusCreated,
	}

	switch purchase.PurchaseType {
	case model.PurchaseTypeCertificate:
		purchase.PurchaseAmount = CertificatePrice
		if body.TemplateID != nil {
			id, _ := uuid.Parse(*body.TemplateID)
			purchase.PurchaseTemplateID = &id
		}

	case model.PurchaseTypeBulk:
		if body.Quantity < 1 {
			return helper.Error(c, fiber.StatusBadRequest, "Quantity is required for bulk purchases")
		}
		purchase.PurchaseAmount = CertificatePrice * body.Quantity
		if body.TemplateID != nil {
			id, _ := uuid.Parse(*body.TemplateID)
			purchase.PurchaseTemplateID = &id
		}

	case model.PurchaseTypeTemplate:
		if body.TemplateID == nil {
			return helper.Error(c, fiber.StatusBadRequest, "Template ID is required")
		}
		templateID, _ := uuid.Parse(*body.TemplateID)
		var tpl templateModel.TemplateModel
		if err := ctrl.DB.Where("template_id = ?", templateID).First(&tpl).Error; err != nil {
			return helper.Error(c, fiber.StatusNotFound, "Template not found")
		}
		purchase.PurchaseTemplateID = &templateID
		purchase.PurchaseAmount = tpl.TemplatePrice
		if tpl.TemplateType == templateModel.TemplateTypeFree || tpl.TemplatePrice == 0 {
			// Nothing to pay: the purchase is born settled so the
			// generation gate works identically for free templates.
			purchase.PurchaseAmount = 0
			purchase.PurchaseStatus = model.PurchaseStatusSuccess
		}

	case model.PurchaseTypeSubscription:
		if body.PlanID == nil {
			return helper.Error(c, fiber.StatusBadRequest, "Plan ID is required")
		}
		planID, _ := uuid.Parse(*body.PlanID)
		var plan subscriptionModel.SubscriptionPlanModel
		if err := ctrl.DB.Where("plan_id = ?", planID).First(&plan).Error; err != nil {
			return helper.Error(c, fiber.StatusNotFound, "Subscription plan not found")
		}
		purchase.PurchasePlanID = &planID
		purchase.PurchaseAmount = plan.PlanPrice
	}

	if len(body.Metadata) > 0 {
		raw, err := sonic.Marshal(body.Metadata)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "Invalid metadata")
		}
		purchase.PurchaseMetadata = datatypes.JSON(raw)
	}

	if err := ctrl.DB.Create(&purchase).Error; err != nil {
		log.Println("[ERROR] failed to create purchase:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create order")
	}

	resp := dto.CreateOrderResponse{
		PurchaseID: purchase.PurchaseID.String(),
		OrderID:    purchase.PurchaseOrderID,
		Amount:     purchase.PurchaseAmount,
		Status:     string(purchase.PurchaseStatus),
	}

	// Zero-amount purchases skip the gateway entirely.
	if purchase.PurchaseStatus == model.PurchaseStatusSuccess {
		return helper.SuccessWithCode(c, fiber.StatusCreated, "Order created (no payment required)", resp)
	}

	token, redirectURL, err := purchaseService.GenerateSnapToken(
		purchase.PurchaseOrderID, purchase.PurchaseAmount, user.UserOrganizationName, user.UserEmail)
	if err != nil {
		log.Println("[ERROR] GenerateSnapToken failed:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create payment order")
	}
	resp.SnapToken = token
	resp.RedirectURL = redirectURL

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Order created", resp)
}

/*
	========================================================
	  Mark Success (client confirmation fallback)
========================================================
*/

// POST /api/payments/mark-success
func (ctrl *PurchaseController) MarkSuccess(c *fiber.Ctx) error {
	var body dto.MarkSuccessRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	purchaseID, _ := uuid.Parse(body.PurchaseID)
	var purchase model.PurchaseModel
	if err := ctrl.DB.Where("purchase_id = ?", purchaseID).First(&purchase).Error; err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Purchase not found")
	}

	if purchase.PurchaseStatus != model.PurchaseStatusSuccess {
		if err := ctrl.DB.Model(&purchase).Updates(map[string]interface{}{
			"purchase_status":     model.PurchaseStatusSuccess,
			"purchase_payment_id": body.PaymentID,
		}).Error; err != nil {
			log.Println("[ERROR] failed to mark purchase success:", err)
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to update purchase")
		}
		purchase.PurchaseStatus = model.PurchaseStatusSuccess
		purchase.PurchasePaymentID = &body.PaymentID
	}

	return helper.Success(c, "Purchase marked as successful", purchase)
}

/*
	========================================================
	  History & Details
========================================================
*/

// GET /api/purchase/history/:userId
func (ctrl *PurchaseController) GetHistory(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	var purchases []model.PurchaseModel
	if err := ctrl.DB.Where("purchase_user_id = ?", userID).
		Order("created_at DESC").Find(&purchases).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch purchase history")
	}
	return helper.Success(c, "Purchase history fetched", purchases)
}

// GET /api/purchase/details/:purchaseId
func (ctrl *PurchaseController) GetDetails(c *fiber.Ctx) error {
	purchaseID, err := uuid.Parse(c.Params("purchaseId"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid purchase ID")
	}

	var purchase model.PurchaseModel
	if err := ctrl.DB.Where("purchase_id = ?", purchaseID).First(&purchase).Error; err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Purchase not found")
	}
	return helper.Success(c, "Purchase details fetched", purchase)
}

/*
	========================================================
	  Midtrans Webhook
========================================================
*/

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Map status Midtrans → status internal app.
func mapMidtransStatus(txStatus, fraudStatus string) model.PurchaseStatus {
	switch txStatus {
	case "capture", "settlement":
		if txStatus == "capture" && fraudStatus == "challenge" {
			return ""
		}
		return model.PurchaseStatusSuccess
	case "expire", "expired", "cancel", "canceled", "deny", "failure", "failed":
		return model.PurchaseStatusFailed
	default:
		return ""
	}
}

// POST /api/payments/webhook
func (ctrl *PurchaseController) HandleMidtransNotification(c *fiber.Ctx) error {
	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil || len(body) == 0 {
		log.Println("[ERROR] webhook body unreadable:", err)
		return helper.Error(c, fiber.StatusBadRequest, "Invalid webhook payload")
	}

	orderID := getString(body, "order_id")
	statusCode := getString(body, "status_code")
	grossAmount := getString(body, "gross_amount")
	signatureKey := getString(body, "signature_key")
	txStatus := strings.ToLower(getString(body, "transaction_status"))
	fraudStatus := strings.ToLower(getString(body, "fraud_status"))
	paymentID := getString(body, "transaction_id")

	if orderID == "" || txStatus == "" {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid webhook payload")
	}

	if !purchaseService.VerifyWebhookSignature(orderID, statusCode, grossAmount, configs.MidtransServerKey, signatureKey) {
		log.Println("[WARN] webhook signature mismatch for order:", orderID)
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid signature")
	}

	log.Printf("🔔 Webhook: order_id=%s status=%s", orderID, txStatus)

	var purchase model.PurchaseModel
	if err := ctrl.DB.Where("purchase_order_id = ?", orderID).First(&purchase).Error; err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Purchase not found")
	}

	newStatus := mapMidtransStatus(txStatus, fraudStatus)
	if newStatus == "" || purchase.PurchaseStatus == newStatus {
		return helper.Success(c, "Webhook acknowledged", fiber.Map{
			"order_id": orderID,
			"status":   purchase.PurchaseStatus,
		})
	}

	// A consumed purchase, or one already settled as success, must not be
	// flipped to failed by a late expire/cancel/deny notification.
	if purchase.PurchaseUsed || (purchase.PurchaseStatus == model.PurchaseStatusSuccess && newStatus == model.PurchaseStatusFailed) {
		log.Printf("[WARN] ignoring late %s notification for settled order %s", txStatus, orderID)
		return helper.Success(c, "Webhook acknowledged", fiber.Map{
			"order_id": orderID,
			"status":   purchase.PurchaseStatus,
		})
	}

	updates := map[string]interface{}{"purchase_status": newStatus}
	if paymentID != "" {
		updates["purchase_payment_id"] = paymentID
	}
	if err := ctrl.DB.Model(&purchase).Updates(updates).Error; err != nil {
		log.Println("[ERROR] failed to update purchase from webhook:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to update purchase")
	}
	purchase.PurchaseStatus = newStatus

	// Subscription settlement grants the time-boxed elevation. Certificates
	// are NEVER generated here; the client calls generate-by-purchase.
	if newStatus == model.PurchaseStatusSuccess && purchase.PurchaseType == model.PurchaseTypeSubscription {
		ctrl.grantSubscription(&purchase, paymentID)
	}

	return helper.Success(c, "Webhook processed", fiber.Map{
		"order_id": orderID,
		"status":   newStatus,
	})
}

func (ctrl *PurchaseController) grantSubscription(purchase *model.PurchaseModel, paymentID string) {
	if purchase.PurchasePlanID == nil {
		log.Println("[WARN] subscription purchase without plan id:", purchase.PurchaseID)
		return
	}
	var plan subscriptionModel.SubscriptionPlanModel
	if err := ctrl.DB.Where("plan_id = ?", *purchase.PurchasePlanID).First(&plan).Error; err != nil {
		log.Println("[ERROR] subscription plan missing:", err)
		return
	}

	start := time.Now()
	end := start.AddDate(0, 0, plan.PlanDurationDays)
	updates := map[string]interface{}{
		"user_subscription_plan_id":    plan.PlanID,
		"user_subscription_start_date": start,
		"user_subscription_end_date":   end,
	}
	if paymentID != "" {
		updates["user_subscription_payment_id"] = paymentID
	}
	if err := ctrl.DB.Model(&userModel.UserModel{}).
		Where("user_id = ?", purchase.PurchaseUserID).
		Updates(updates).Error; err != nil {
		log.Println("[ERROR] failed to grant subscription:", err)
		return
	}
	log.Printf("✅ Subscription active for user %s until %s", purchase.PurchaseUserID, end.Format("2006-01-02"))
}
