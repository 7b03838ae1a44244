package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriptionPlanModel: "1 Month", "3 Months", ... priced in whole rupiah.
type SubscriptionPlanModel struct {
	PlanID           uuid.UUID `json:"plan_id" gorm:"column:plan_id;type:uuid;primaryKey"`
	PlanName         string    `json:"plan_name" gorm:"column:plan_name;not null"`
	PlanDurationDays int       `json:"plan_duration_days" gorm:"column:plan_duration_days;not null"`
	PlanPrice        int       `json:"plan_price" gorm:"column:plan_price;not null"`
	CreatedAt        time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (SubscriptionPlanModel) TableName() string {
	return "subscription_plans"
}

func (m *SubscriptionPlanModel) BeforeCreate(tx *gorm.DB) error {
	if m.PlanID == uuid.Nil {
		m.PlanID = uuid.New()
	}
	return nil
}
