package dto

import "sertifikatku_backend/internals/features/templates/model"

// CreateTemplateRequest rides a multipart form next to the bgImage file.
type CreateTemplateRequest struct {
	Name        string `form:"name" validate:"required,min=3"`
	Description string `form:"description"`
	Type        string `form:"type" validate:"omitempty,oneof=free premium"`
	Price       int    `form:"price" validate:"omitempty,gte=0"`
	Layout      string `form:"layout" validate:"omitempty,json"`
}

// TemplateForUser decorates a template with the caller's purchase state.
type TemplateForUser struct {
	model.TemplateModel
	IsPremium   bool `json:"is_premium"`
	IsPurchased bool `json:"is_purchased"`
	IsLocked    bool `json:"is_locked"`
}
