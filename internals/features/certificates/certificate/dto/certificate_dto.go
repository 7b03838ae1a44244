package dto

// GenerateRequest issues one certificate directly from the caller's account.
type GenerateRequest struct {
	TemplateID       string `json:"template_id" validate:"omitempty,uuid"`
	CertificateTitle string `json:"certificate_title"`
	RecipientName    string `json:"recipient_name" validate:"required,min=2"`
	CourseName       string `json:"course_name" validate:"required,min=2"`
	Description      string `json:"description"`
	IssueDate        string `json:"issue_date"`
	Email            string `json:"email" validate:"omitempty,email"`
}

type GenerateByPurchaseRequest struct {
	PurchaseID string `json:"purchase_id" validate:"required"`
}

// VerifyResponse is the public proof payload. Denormalized at issue time so
// later template edits cannot change what a QR scan reports.
type VerifyResponse struct {
	Valid            bool   `json:"valid"`
	CertificateID    string `json:"certificate_id"`
	StudentName      string `json:"student_name"`
	CourseName       string `json:"course_name"`
	IssueDate        string `json:"issue_date"`
	OrganizationName string `json:"organization_name"`
	GeneratedAt      string `json:"generated_at"`
}
