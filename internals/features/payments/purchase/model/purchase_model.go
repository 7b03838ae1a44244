package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PurchaseType string
type PurchaseStatus string

const (
	PurchaseTypeTemplate     PurchaseType = "template"
	PurchaseTypeCertificate  PurchaseType = "certificate"
	PurchaseTypeSubscription PurchaseType = "subscription"
	PurchaseTypeBulk         PurchaseType = "bulk_certificate"
)

const (
	PurchaseStatusCreated PurchaseStatus = "created"
	PurchaseStatusSuccess PurchaseStatus = "success"
	PurchaseStatusFailed  PurchaseStatus = "failed"
)

// PurchaseModel records one payment intent/outcome. PurchaseUsed is the
// at-most-once gate on paid certificate generation: it may only ever
// transition false → true, via a conditional update.
type PurchaseModel struct {
	PurchaseID         uuid.UUID  `json:"purchase_id" gorm:"column:purchase_id;type:uuid;primaryKey"`
	PurchaseUserID     uuid.UUID  `json:"purchase_user_id" gorm:"column:purchase_user_id;type:uuid;not null"`
	PurchaseTemplateID *uuid.UUID `json:"purchase_template_id" gorm:"column:purchase_template_id;type:uuid"`
	PurchasePlanID     *uuid.UUID `json:"purchase_plan_id" gorm:"column:purchase_plan_id;type:uuid"`

	// Gateway order id (Midtrans order_id), key for webhook lookups.
	PurchaseOrderID   string  `json:"purchase_order_id" gorm:"column:purchase_order_id;uniqueIndex;not null"`
	PurchasePaymentID *string `json:"purchase_payment_id" gorm:"column:purchase_payment_id"`

	PurchaseAmount int            `json:"purchase_amount" gorm:"column:purchase_amount;not null"`
	PurchaseType   PurchaseType   `json:"purchase_type" gorm:"column:purchase_type;not null"`
	PurchaseStatus PurchaseStatus `json:"purchase_status" gorm:"column:purchase_status;not null;default:created"`

	// 🔐 one payment = one usage
	PurchaseUsed bool `json:"purchase_used" gorm:"column:purchase_used;not null;default:false"`

	PurchaseMetadata datatypes.JSON `json:"purchase_metadata" gorm:"column:purchase_metadata"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (PurchaseModel) TableName() string {
	return "purchases"
}

func (m *PurchaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.PurchaseID == uuid.Nil {
		m.PurchaseID = uuid.New()
	}
	return nil
}
