package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateModel is the permanent proof artifact. Created exactly once per
// successful render and never mutated afterward. Student name, course and
// date are denormalized so verification stays correct even if the template
// is edited later.
type CertificateModel struct {
	CertificateID uuid.UUID `json:"certificate_id" gorm:"column:certificate_id;type:uuid;primaryKey"`

	// Human-meaningful public id: CERT-<base36 millis> or <ISSUER>-<8 hex>.
	CertificateNumber string `json:"certificate_number" gorm:"column:certificate_number;uniqueIndex;not null"`

	CertificateUserID     uuid.UUID  `json:"certificate_user_id" gorm:"column:certificate_user_id;type:uuid;not null"`
	CertificateTemplateID *uuid.UUID `json:"certificate_template_id" gorm:"column:certificate_template_id;type:uuid"`

	CertificatePdfURL     string  `json:"certificate_pdf_url" gorm:"column:certificate_pdf_url;not null"`
	CertificateQrCodeData string  `json:"certificate_qr_code_data" gorm:"column:certificate_qr_code_data;not null"`
	CertificatePaymentID  *string `json:"certificate_payment_id" gorm:"column:certificate_payment_id"`

	CertificateStudentName string `json:"certificate_student_name" gorm:"column:certificate_student_name;not null"`
	CertificateCourseName  string `json:"certificate_course_name" gorm:"column:certificate_course_name;not null"`
	// Kept as string: CSV sources carry free-form dates.
	CertificateIssueDate string `json:"certificate_issue_date" gorm:"column:certificate_issue_date"`

	CertificateGeneratedAt time.Time `json:"certificate_generated_at" gorm:"column:certificate_generated_at;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (CertificateModel) TableName() string {
	return "certificates"
}

func (m *CertificateModel) BeforeCreate(tx *gorm.DB) error {
	if m.CertificateID == uuid.Nil {
		m.CertificateID = uuid.New()
	}
	return nil
}
