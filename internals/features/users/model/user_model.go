package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel is an organization account. Only whitelisted issuer codes may
// register (see ValidOrganizationModel).
type UserModel struct {
	UserID               uuid.UUID `json:"user_id" gorm:"column:user_id;type:uuid;primaryKey"`
	UserOrganizationName string    `json:"user_organization_name" gorm:"column:user_organization_name;not null"`
	UserEmail            string    `json:"user_email" gorm:"column:user_email;uniqueIndex;not null"`
	UserPasswordHash     string    `json:"-" gorm:"column:user_password_hash;not null"`

	// Short unique code like 'CDAC' or 'IITB', prefixed onto bulk certificate ids.
	UserIssuerCode string `json:"user_issuer_code" gorm:"column:user_issuer_code;uniqueIndex;not null"`
	UserVerified   bool   `json:"user_verified" gorm:"column:user_verified;not null;default:false"`

	UserContactPhone string `json:"user_contact_phone" gorm:"column:user_contact_phone"`
	UserSignatureURL string `json:"user_signature_url" gorm:"column:user_signature_url"`

	UserRole    string `json:"user_role" gorm:"column:user_role;not null;default:organization"` // organization | admin
	UserCredits int    `json:"user_credits" gorm:"column:user_credits;not null;default:0"`

	// Time-boxed role elevation granted by a subscription purchase.
	UserSubscriptionPlanID    *uuid.UUID `json:"user_subscription_plan_id" gorm:"column:user_subscription_plan_id;type:uuid"`
	UserSubscriptionStartDate *time.Time `json:"user_subscription_start_date" gorm:"column:user_subscription_start_date"`
	UserSubscriptionEndDate   *time.Time `json:"user_subscription_end_date" gorm:"column:user_subscription_end_date"`
	UserSubscriptionPaymentID *string    `json:"user_subscription_payment_id" gorm:"column:user_subscription_payment_id"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) BeforeCreate(tx *gorm.DB) error {
	if m.UserID == uuid.Nil {
		m.UserID = uuid.New()
	}
	return nil
}
