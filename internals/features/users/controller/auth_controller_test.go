package controller_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sertifikatku_backend/internals/configs"
	"sertifikatku_backend/internals/features/users/model"
	userRoute "sertifikatku_backend/internals/features/users/route"
)

type apiEnvelope struct {
	Code    int             `json:"code"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupAuthApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	configs.JWTSecret = "test-secret"
	configs.StorageRoot = t.TempDir()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&model.UserModel{}, &model.ValidOrganizationModel{}); err != nil {
		t.Fatal(err)
	}

	org := model.ValidOrganizationModel{
		ValidOrgOrganizationName: "Sun Institute",
		ValidOrgIssuerCode:       "SUN",
		ValidOrgPreVerified:      true,
	}
	if err := db.Create(&org).Error; err != nil {
		t.Fatal(err)
	}

	app := fiber.New()
	userRoute.AuthRoutes(app.Group("/api"), db)
	return app, db
}

func post(t *testing.T, app *fiber.App, path, body string) (*http.Response, apiEnvelope) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var env apiEnvelope
	_ = json.Unmarshal(raw, &env)
	return resp, env
}

const registerBody = `{
	"organization_name": "Sun Institute",
	"email": "Admin@Sun.Example",
	"password": "supersecret1",
	"issuer_code": "sun"
}`

func TestRegister(t *testing.T) {
	app, db := setupAuthApp(t)

	resp, env := post(t, app, "/api/auth/register", registerBody)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, message = %q", resp.StatusCode, env.Message)
	}

	var user model.UserModel
	if err := db.Where("user_email = ?", "admin@sun.example").First(&user).Error; err != nil {
		t.Fatal("user not stored with normalized email:", err)
	}
	if user.UserIssuerCode != "SUN" {
		t.Errorf("issuer code = %q, want upper-cased SUN", user.UserIssuerCode)
	}
	if !user.UserVerified {
		t.Error("pre-verified whitelist entry did not verify the account")
	}
	if user.UserPasswordHash == "supersecret1" {
		t.Error("password stored in plain text")
	}

	// Same code again → conflict.
	resp, _ = post(t, app, "/api/auth/register", registerBody)
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", resp.StatusCode)
	}
}

func TestRegisterUnknownIssuer(t *testing.T) {
	app, _ := setupAuthApp(t)

	resp, _ := post(t, app, "/api/auth/register", `{
		"organization_name": "Ghost Org",
		"email": "ghost@x.example",
		"password": "supersecret1",
		"issuer_code": "GHOST"
	}`)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	app, _ := setupAuthApp(t)

	if resp, env := post(t, app, "/api/auth/register", registerBody); resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register failed: %q", env.Message)
	}

	resp, env := post(t, app, "/api/auth/login",
		`{"email":"admin@sun.example","password":"supersecret1"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login status = %d, message = %q", resp.StatusCode, env.Message)
	}
	var out struct {
		Token string `json:"token"`
		User  struct {
			IssuerCode string `json:"issuer_code"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Token == "" {
		t.Error("no token returned")
	}
	if out.User.IssuerCode != "SUN" {
		t.Errorf("issuer code = %q", out.User.IssuerCode)
	}

	// Wrong password.
	resp, _ = post(t, app, "/api/auth/login",
		`{"email":"admin@sun.example","password":"wrong-password"}`)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", resp.StatusCode)
	}
}
