package pdf

import (
	"strings"
	"time"
)

const (
	defaultTitle      = "CERTIFICATE OF APPRECIATION"
	defaultRecipient  = "Recipient Name"
	defaultCourseName = "Course Name"
	defaultOrgName    = "Organization"
)

// CertificateData is the normalized field bag one render call consumes.
// Built from a purchase's stored metadata plus caller overrides; never
// persisted on its own.
type CertificateData struct {
	CertificateTitle string `json:"certificateTitle"`
	RecipientName    string `json:"recipientName"`
	CourseName       string `json:"courseName"`
	Description      string `json:"description"`
	IssueDate        string `json:"issueDate"`
	OrganizationName string `json:"organizationName"`
	SignatureURL     string `json:"signatureUrl"`
	Email            string `json:"email"`
}

// ApplyDefaults guarantees recipient, course and organization always render
// as a non-empty display value.
func (d *CertificateData) ApplyDefaults() {
	if strings.TrimSpace(d.CertificateTitle) == "" {
		d.CertificateTitle = defaultTitle
	}
	if strings.TrimSpace(d.RecipientName) == "" {
		d.RecipientName = defaultRecipient
	}
	if strings.TrimSpace(d.CourseName) == "" {
		// An empty course borrows the description before the generic default,
		// so free-form metadata still reads naturally on the page.
		if desc := strings.TrimSpace(d.Description); desc != "" {
			d.CourseName = desc
		} else {
			d.CourseName = defaultCourseName
		}
	}
	if strings.TrimSpace(d.OrganizationName) == "" {
		d.OrganizationName = defaultOrgName
	}
}

// DisplayDate formats the caller-supplied issue date, falling back to today.
// CSV rows carry free-form dates, so unparseable input is printed as-is.
func (d CertificateData) DisplayDate() string {
	raw := strings.TrimSpace(d.IssueDate)
	if raw == "" {
		return time.Now().Format("2 January 2006")
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "02/01/2006", "01/02/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2 January 2006")
		}
	}
	return raw
}
