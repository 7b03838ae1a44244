package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidOrganizationModel is the registration whitelist: only codes listed
// here may create an account.
type ValidOrganizationModel struct {
	ValidOrgID               uuid.UUID `json:"valid_org_id" gorm:"column:valid_org_id;type:uuid;primaryKey"`
	ValidOrgOrganizationName string    `json:"valid_org_organization_name" gorm:"column:valid_org_organization_name;not null"`
	ValidOrgIssuerCode       string    `json:"valid_org_issuer_code" gorm:"column:valid_org_issuer_code;uniqueIndex;not null"`
	ValidOrgEmailDomain      string    `json:"valid_org_email_domain" gorm:"column:valid_org_email_domain"`
	ValidOrgPreVerified      bool      `json:"valid_org_pre_verified" gorm:"column:valid_org_pre_verified;not null;default:true"`
	CreatedAt                time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt                time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (ValidOrganizationModel) TableName() string {
	return "valid_organizations"
}

func (m *ValidOrganizationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ValidOrgID == uuid.Nil {
		m.ValidOrgID = uuid.New()
	}
	return nil
}
