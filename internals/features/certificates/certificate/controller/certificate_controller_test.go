package controller_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sertifikatku_backend/internals/configs"
	certModel "sertifikatku_backend/internals/features/certificates/certificate/model"
	certificateRoute "sertifikatku_backend/internals/features/certificates/certificate/route"
	purchaseModel "sertifikatku_backend/internals/features/payments/purchase/model"
	userModel "sertifikatku_backend/internals/features/users/model"
)

type apiEnvelope struct {
	Code    int             `json:"code"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB, *userModel.UserModel, string) {
	t.Helper()

	configs.JWTSecret = "test-secret"
	configs.StorageRoot = t.TempDir()
	configs.FrontendURL = "https://certs.example"

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(
		&userModel.UserModel{},
		&purchaseModel.PurchaseModel{},
		&certModel.CertificateModel{},
	); err != nil {
		t.Fatal(err)
	}

	user := userModel.UserModel{
		UserOrganizationName: "Sun Institute",
		UserEmail:            "admin@sun.example",
		UserPasswordHash:     "x",
		UserIssuerCode:       "SUN",
		UserVerified:         true,
		UserRole:             "organization",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}

	claims := jwt.MapClaims{
		"id":                user.UserID.String(),
		"role":              user.UserRole,
		"organization_name": user.UserOrganizationName,
		"issuer_code":       user.UserIssuerCode,
		"exp":               time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(configs.JWTSecret))
	if err != nil {
		t.Fatal(err)
	}

	app := fiber.New()
	certificateRoute.CertificateRoutes(app.Group("/api"), db)
	return app, db, &user, token
}

func seedPaidPurchase(t *testing.T, db *gorm.DB, userID uuid.UUID, status purchaseModel.PurchaseStatus, used bool) purchaseModel.PurchaseModel {
	t.Helper()
	meta := `{"recipientName":"Asha Rao","courseName":"Data Structures","date":"2024-01-10","email":""}`
	p := purchaseModel.PurchaseModel{
		PurchaseUserID:   userID,
		PurchaseOrderID:  "ORDER-" + uuid.NewString(),
		PurchaseAmount:   50,
		PurchaseType:     purchaseModel.PurchaseTypeCertificate,
		PurchaseStatus:   status,
		PurchaseUsed:     used,
		PurchaseMetadata: datatypes.JSON(meta),
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	return p
}

func postJSON(t *testing.T, app *fiber.App, path, token, body string) (*http.Response, apiEnvelope) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, 30000)
	if err != nil {
		t.Fatal(err)
	}
	return resp, decodeEnvelope(t, resp)
}

func decodeEnvelope(t *testing.T, resp *http.Response) apiEnvelope {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var env apiEnvelope
	_ = json.Unmarshal(raw, &env)
	return env
}

func TestGenerateByPurchaseFlow(t *testing.T) {
	app, db, user, token := setupApp(t)
	purchase := seedPaidPurchase(t, db, user.UserID, purchaseModel.PurchaseStatusSuccess, false)

	resp, env := postJSON(t, app, "/api/certificates/generate-by-purchase", token,
		`{"purchase_id":"`+purchase.PurchaseID.String()+`"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, message = %q", resp.StatusCode, env.Message)
	}

	var cert certModel.CertificateModel
	if err := json.Unmarshal(env.Data, &cert); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(cert.CertificateNumber, "CERT-") {
		t.Errorf("certificate number %q lacks CERT- prefix", cert.CertificateNumber)
	}
	if cert.CertificateStudentName != "Asha Rao" || cert.CertificateCourseName != "Data Structures" {
		t.Errorf("metadata not carried into certificate: %+v", cert)
	}

	// The artifact really exists.
	pdfPath := filepath.Join(configs.StorageRoot, "certificates", cert.CertificateNumber+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		t.Errorf("rendered PDF missing: %v", err)
	}

	// The purchase is consumed.
	var stored purchaseModel.PurchaseModel
	if err := db.Where("purchase_id = ?", purchase.PurchaseID).First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if !stored.PurchaseUsed {
		t.Error("purchase not marked used")
	}

	// A second call on the same purchase is refused.
	resp, env = postJSON(t, app, "/api/certificates/generate-by-purchase", token,
		`{"purchase_id":"`+purchase.PurchaseID.String()+`"}`)
	if resp.StatusCode != fiber.StatusBadRequest || env.Message != "Purchase already used" {
		t.Errorf("second call: status=%d message=%q", resp.StatusCode, env.Message)
	}

	// Public verification round-trip.
	req := httptest.NewRequest(fiber.MethodGet, "/api/certificates/verify/"+cert.CertificateNumber, nil)
	vresp, err := app.Test(req, 30000)
	if err != nil {
		t.Fatal(err)
	}
	venv := decodeEnvelope(t, vresp)
	if vresp.StatusCode != fiber.StatusOK {
		t.Fatalf("verify status = %d", vresp.StatusCode)
	}
	var verify struct {
		Valid            bool   `json:"valid"`
		StudentName      string `json:"student_name"`
		OrganizationName string `json:"organization_name"`
	}
	if err := json.Unmarshal(venv.Data, &verify); err != nil {
		t.Fatal(err)
	}
	if !verify.Valid || verify.StudentName != "Asha Rao" || verify.OrganizationName != "Sun Institute" {
		t.Errorf("verify payload wrong: %+v", verify)
	}
}

func TestGenerateByPurchaseGate(t *testing.T) {
	app, db, user, token := setupApp(t)

	t.Run("unknown purchase", func(t *testing.T) {
		resp, _ := postJSON(t, app, "/api/certificates/generate-by-purchase", token,
			`{"purchase_id":"`+uuid.NewString()+`"}`)
		if resp.StatusCode != fiber.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("unpaid purchase", func(t *testing.T) {
		p := seedPaidPurchase(t, db, user.UserID, purchaseModel.PurchaseStatusCreated, false)
		resp, env := postJSON(t, app, "/api/certificates/generate-by-purchase", token,
			`{"purchase_id":"`+p.PurchaseID.String()+`"}`)
		if resp.StatusCode != fiber.StatusBadRequest || env.Message != "Payment not completed" {
			t.Errorf("status=%d message=%q", resp.StatusCode, env.Message)
		}
	})

	t.Run("malformed purchase id", func(t *testing.T) {
		resp, _ := postJSON(t, app, "/api/certificates/generate-by-purchase", token,
			`{"purchase_id":"not-a-uuid"}`)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		resp, _ := postJSON(t, app, "/api/certificates/generate-by-purchase", "",
			`{"purchase_id":"`+uuid.NewString()+`"}`)
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})
}

func TestDirectGenerate(t *testing.T) {
	app, db, _, token := setupApp(t)

	resp, env := postJSON(t, app, "/api/certificates/generate", token,
		`{"recipient_name":"Budi Santoso","course_name":"Go Programming","issue_date":"2024-03-01"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, message = %q", resp.StatusCode, env.Message)
	}

	var cert certModel.CertificateModel
	if err := json.Unmarshal(env.Data, &cert); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(cert.CertificateNumber, "CERT-") {
		t.Errorf("certificate number %q lacks CERT- prefix", cert.CertificateNumber)
	}

	var count int64
	db.Model(&certModel.CertificateModel{}).Count(&count)
	if count != 1 {
		t.Errorf("certificate rows = %d, want 1", count)
	}
}
