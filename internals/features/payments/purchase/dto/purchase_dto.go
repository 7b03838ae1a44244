package dto

// CreateOrderRequest opens a purchase. Which extra fields matter depends on
// the type: template needs template_id, subscription needs plan_id,
// bulk_certificate needs quantity.
type CreateOrderRequest struct {
	Type       string                 `json:"type" validate:"required,oneof=template certificate subscription bulk_certificate"`
	TemplateID *string                `json:"template_id" validate:"omitempty,uuid"`
	PlanID     *string                `json:"plan_id" validate:"omitempty,uuid"`
	Quantity   int                    `json:"quantity" validate:"omitempty,gte=1"`
	Metadata   map[string]interface{} `json:"metadata"`
}

type CreateOrderResponse struct {
	PurchaseID  string `json:"purchase_id"`
	OrderID     string `json:"order_id"`
	Amount      int    `json:"amount"`
	Status      string `json:"status"`
	SnapToken   string `json:"snap_token,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type MarkSuccessRequest struct {
	PurchaseID string `json:"purchase_id" validate:"required,uuid"`
	PaymentID  string `json:"payment_id" validate:"required"`
}
