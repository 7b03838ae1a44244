package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sertifikatku_backend/internals/configs"
	"sertifikatku_backend/internals/features/certificates/certificate/model"
	"sertifikatku_backend/internals/features/certificates/pdf"
	"sertifikatku_backend/internals/features/notifications"
	templateModel "sertifikatku_backend/internals/features/templates/model"
)

// Generator runs the full issue path: layout resolve → render → Certificate
// row → best-effort email. The artifact is written before the row so a
// stored certificate always has a file behind it.
type Generator struct {
	DB       *gorm.DB
	Renderer *pdf.Renderer
	Mailer   *notifications.Mailer
}

func NewGenerator(db *gorm.DB) *Generator {
	wd, _ := os.Getwd()
	return &Generator{
		DB: db,
		Renderer: &pdf.Renderer{Paths: pdf.Resolver{
			BaseDir:    wd,
			UploadsDir: configs.StorageRoot,
		}},
		Mailer: NewMailer(),
	}
}

// NewMailer is a hook point for tests.
var NewMailer = notifications.NewMailerFromEnv

// DirectCertificateID: CERT-<unix millis in base36>, the single-issue form.
func DirectCertificateID() string {
	return "CERT-" + strconv.FormatInt(time.Now().UnixMilli(), 36)
}

// BulkCertificateID: <ISSUER>-<8 upper hex>, the batch form.
func BulkCertificateID(issuerCode string) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// Degenerate fallback, still unique enough per batch.
		return fmt.Sprintf("%s-%08X", strings.ToUpper(issuerCode), time.Now().UnixNano()&0xFFFFFFFF)
	}
	return strings.ToUpper(issuerCode) + "-" + strings.ToUpper(hex.EncodeToString(b))
}

// GenerateInput is one certificate to issue.
type GenerateInput struct {
	CertificateNumber string
	UserID            uuid.UUID
	Template          *templateModel.TemplateModel // nil = standard layout on a blank page
	Data              pdf.CertificateData
	PaymentID         *string
	Email             string
}

// Generate renders and persists one certificate. On any failure nothing is
// left behind: a partially written artifact is removed, and no row exists
// without its file.
func (g *Generator) Generate(in GenerateInput) (*model.CertificateModel, error) {
	in.Data.ApplyDefaults()

	layout := pdf.Standard()
	backgroundRef := ""
	var templateID *uuid.UUID

	if in.Template != nil {
		backgroundRef = in.Template.TemplateBgImageURL
		templateID = &in.Template.TemplateID
		if len(in.Template.TemplateLayout) > 0 {
			resolved, _, err := pdf.ResolveLayout(in.Template.TemplateLayout)
			if err != nil {
				log.Printf("[WARN] template %s layout unreadable, using standard: %v", in.Template.TemplateID, err)
			} else {
				layout = resolved
			}
		}
	}

	qrURL := pdf.VerificationURL(configs.FrontendURL, in.CertificateNumber)
	relPath := filepath.ToSlash(filepath.Join("certificates", in.CertificateNumber+".pdf"))
	outPath := filepath.Join(configs.StorageRoot, "certificates", in.CertificateNumber+".pdf")

	if _, err := g.Renderer.Render(
		pdf.RenderInput{BackgroundRef: backgroundRef, Layout: layout},
		in.Data, outPath, in.CertificateNumber, qrURL,
	); err != nil {
		return nil, fmt.Errorf("render certificate %s: %w", in.CertificateNumber, err)
	}

	cert := model.CertificateModel{
		CertificateNumber:      in.CertificateNumber,
		CertificateUserID:      in.UserID,
		CertificateTemplateID:  templateID,
		CertificatePdfURL:      relPath,
		CertificateQrCodeData:  qrURL,
		CertificatePaymentID:   in.PaymentID,
		CertificateStudentName: in.Data.RecipientName,
		CertificateCourseName:  in.Data.CourseName,
		CertificateIssueDate:   in.Data.IssueDate,
		CertificateGeneratedAt: time.Now(),
	}
	if err := g.DB.Create(&cert).Error; err != nil {
		if rmErr := os.Remove(outPath); rmErr != nil {
			log.Printf("[WARN] could not remove orphan artifact %s: %v", outPath, rmErr)
		}
		return nil, fmt.Errorf("persist certificate %s: %w", in.CertificateNumber, err)
	}

	if in.Email != "" {
		if err := g.Mailer.SendCertificate(in.Email, in.Data.RecipientName, in.CertificateNumber, outPath); err != nil {
			log.Printf("[WARN] certificate %s issued but email to %s failed: %v", in.CertificateNumber, in.Email, err)
		}
	}

	return &cert, nil
}
