package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TemplateTypeFree    = "free"
	TemplateTypePremium = "premium"
)

// TemplateModel is an admin-authored certificate background plus an optional
// stored layout. Read-mostly: created once through the upload endpoint and
// only rewritten by the bulk layout migration.
type TemplateModel struct {
	TemplateID          uuid.UUID `json:"template_id" gorm:"column:template_id;type:uuid;primaryKey"`
	TemplateName        string    `json:"template_name" gorm:"column:template_name;not null"`
	TemplateDescription string    `json:"template_description" gorm:"column:template_description"`

	// Preview shown while browsing; background used for rendering.
	TemplatePreviewURL string `json:"template_preview_url" gorm:"column:template_preview_url"`
	TemplateBgImageURL string `json:"template_bg_image_url" gorm:"column:template_bg_image_url;not null"`

	TemplateType  string `json:"template_type" gorm:"column:template_type;not null;default:free"` // free | premium
	TemplatePrice int    `json:"template_price" gorm:"column:template_price;not null;default:0"`

	// Layout JSON: canonical percentage elements, or a legacy fixed-canvas
	// layout awaiting migration. Empty = standard layout.
	TemplateLayout datatypes.JSON `json:"template_layout" gorm:"column:template_layout"`

	TemplateIsActive bool `json:"template_is_active" gorm:"column:template_is_active;not null;default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (TemplateModel) TableName() string {
	return "templates"
}

func (m *TemplateModel) BeforeCreate(tx *gorm.DB) error {
	if m.TemplateID == uuid.Nil {
		m.TemplateID = uuid.New()
	}
	return nil
}
