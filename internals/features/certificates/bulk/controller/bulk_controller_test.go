package controller_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sertifikatku_backend/internals/configs"
	bulkRoute "sertifikatku_backend/internals/features/certificates/bulk/route"
	certModel "sertifikatku_backend/internals/features/certificates/certificate/model"
	purchaseModel "sertifikatku_backend/internals/features/payments/purchase/model"
	userModel "sertifikatku_backend/internals/features/users/model"
)

func setupBulkApp(t *testing.T) (*fiber.App, *gorm.DB, string) {
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
		UserRole:             "organization",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}

	claims := jwt.MapClaims{
		"id":          user.UserID.String(),
		"role":        user.UserRole,
		"issuer_code": user.UserIssuerCode,
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(configs.JWTSecret))
	if err != nil {
		t.Fatal(err)
	}

	app := fiber.New()
	bulkRoute.BulkCertificateRoutes(app.Group("/api"), db)
	return app, db, token
}

func uploadCSV(t *testing.T, app *fiber.App, token, csv string) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "roster.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(csv)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(fiber.MethodPost, "/api/bulk-certificates/upload", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	return resp, raw
}

func TestBulkUploadPreview(t *testing.T) {
	app, _, token := setupBulkApp(t)

	csv := "name,course,issuedate,email\n" +
		"Asha,Go,2024-01-10,a@x.com\n" +
		",Go,2024-01-10,b@x.com\n" +
		"Budi,Go,2024-01-10,\n"

	resp, raw := uploadCSV(t, app, token, csv)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}

	var env struct {
		Data struct {
			TotalRows    int `json:"total_rows"`
			ValidCount   int `json:"valid_count"`
			InvalidCount int `json:"invalid_count"`
			Preview      []struct {
				Name string `json:"name"`
			} `json:"preview"`
			InvalidRows []struct {
				Line   int    `json:"line"`
				Reason string `json:"reason"`
			} `json:"invalid_rows"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}
	if env.Data.ValidCount != 2 || env.Data.InvalidCount != 1 {
		t.Errorf("counts: %+v", env.Data)
	}
	if len(env.Data.InvalidRows) != 1 || env.Data.InvalidRows[0].Reason != "missing name" {
		t.Errorf("invalid rows: %+v", env.Data.InvalidRows)
	}
}

func TestBulkUploadMissingHeader(t *testing.T) {
	app, _, token := setupBulkApp(t)
	resp, _ := uploadCSV(t, app, token, "name,course\nAsha,Go\n")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

var bulkIDPattern = regexp.MustCompile(`^SUN-[0-9A-F]{8}$`)

func TestBulkCommit(t *testing.T) {
	app, db, token := setupBulkApp(t)

	body := `{"rows":[
		{"name":"Asha Rao","course":"Data Structures","issue_date":"2024-01-10"},
		{"name":"Budi Santoso","course":"Algorithms","issue_date":"2024-01-10"},
		{"name":"Citra Dewi","course":"Networking","issue_date":"2024-01-10"}
	]}`
	req := httptest.NewRequest(fiber.MethodPost, "/api/bulk-certificates/commit", bytes.NewReader([]byte(body)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req, 60000)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}

	var env struct {
		Data struct {
			GeneratedCount int `json:"generated_count"`
			Certificates   []struct {
				CertificateID string `json:"certificate_id"`
			} `json:"certificates"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}
	if env.Data.GeneratedCount != 3 {
		t.Fatalf("generated = %d, want 3", env.Data.GeneratedCount)
	}
	for _, cert := range env.Data.Certificates {
		if !bulkIDPattern.MatchString(cert.CertificateID) {
			t.Errorf("id %q does not match ISSUER-XXXXXXXX", cert.CertificateID)
		}
	}

	// Exactly N rows and N artifacts.
	var count int64
	db.Model(&certModel.CertificateModel{}).Count(&count)
	if count != 3 {
		t.Errorf("certificate rows = %d, want 3", count)
	}
}

func TestBulkCommitConsumesPurchase(t *testing.T) {
	app, db, token := setupBulkApp(t)

	var user userModel.UserModel
	if err := db.First(&user).Error; err != nil {
		t.Fatal(err)
	}
	purchase := purchaseModel.PurchaseModel{
		PurchaseUserID:  user.UserID,
		PurchaseOrderID: "ORDER-BULK-1",
		PurchaseAmount:  100,
		PurchaseType:    purchaseModel.PurchaseTypeBulk,
		PurchaseStatus:  purchaseModel.PurchaseStatusSuccess,
	}
	if err := db.Create(&purchase).Error; err != nil {
		t.Fatal(err)
	}

	body := `{"purchase_id":"` + purchase.PurchaseID.String() + `","rows":[
		{"name":"Asha Rao","course":"Data Structures"},
		{"name":"Budi Santoso","course":"Algorithms"}
	]}`
	req := httptest.NewRequest(fiber.MethodPost, "/api/bulk-certificates/commit", bytes.NewReader([]byte(body)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req, 60000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}

	var stored purchaseModel.PurchaseModel
	if err := db.Where("purchase_id = ?", purchase.PurchaseID).First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if !stored.PurchaseUsed {
		t.Error("bulk purchase not consumed")
	}

	// Replaying the same purchase is refused.
	req = httptest.NewRequest(fiber.MethodPost, "/api/bulk-certificates/commit", bytes.NewReader([]byte(body)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err = app.Test(req, 60000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("replay status = %d, want 400", resp.StatusCode)
	}
}
