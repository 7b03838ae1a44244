package controller_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
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
	purchaseModel "sertifikatku_backend/internals/features/payments/purchase/model"
	"sertifikatku_backend/internals/features/templates/model"
	templateRoute "sertifikatku_backend/internals/features/templates/route"
	userModel "sertifikatku_backend/internals/features/users/model"
)

func setupTemplateApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	configs.JWTSecret = "test-secret"
	configs.StorageRoot = t.TempDir()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(
		&model.TemplateModel{},
		&purchaseModel.PurchaseModel{},
		&userModel.UserModel{},
	); err != nil {
		t.Fatal(err)
	}

	app := fiber.New()
	templateRoute.TemplateRoutes(app.Group("/api"), db)
	return app, db
}

func adminToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"id":   uuid.NewString(),
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(configs.JWTSecret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestGetForUserFlags(t *testing.T) {
	app, db := setupTemplateApp(t)

	free := model.TemplateModel{TemplateName: "Classic", TemplateBgImageURL: "templates/a.png", TemplateType: model.TemplateTypeFree}
	paid := model.TemplateModel{TemplateName: "Gold", TemplateBgImageURL: "templates/b.png", TemplateType: model.TemplateTypePremium, TemplatePrice: 500}
	owned := model.TemplateModel{TemplateName: "Silver", TemplateBgImageURL: "templates/c.png", TemplateType: model.TemplateTypePremium, TemplatePrice: 300}
	for _, tpl := range []*model.TemplateModel{&free, &paid, &owned} {
		if err := db.Create(tpl).Error; err != nil {
			t.Fatal(err)
		}
	}

	userID := uuid.New()
	if err := db.Create(&purchaseModel.PurchaseModel{
		PurchaseUserID:     userID,
		PurchaseTemplateID: &owned.TemplateID,
		PurchaseOrderID:    "ORDER-" + uuid.NewString(),
		PurchaseAmount:     300,
		PurchaseType:       purchaseModel.PurchaseTypeTemplate,
		PurchaseStatus:     purchaseModel.PurchaseStatusSuccess,
	}).Error; err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/api/templates/user/"+userID.String(), nil)
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var env struct {
		Data []struct {
			TemplateName string `json:"template_name"`
			IsPremium    bool   `json:"is_premium"`
			IsPurchased  bool   `json:"is_purchased"`
			IsLocked     bool   `json:"is_locked"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}

	flags := map[string][3]bool{}
	for _, tpl := range env.Data {
		flags[tpl.TemplateName] = [3]bool{tpl.IsPremium, tpl.IsPurchased, tpl.IsLocked}
	}
	if got := flags["Classic"]; got != [3]bool{false, false, false} {
		t.Errorf("free template flags = %v", got)
	}
	if got := flags["Gold"]; got != [3]bool{true, false, true} {
		t.Errorf("unpurchased premium flags = %v", got)
	}
	if got := flags["Silver"]; got != [3]bool{true, true, false} {
		t.Errorf("purchased premium flags = %v", got)
	}
}

func TestGetForUserBadID(t *testing.T) {
	app, _ := setupTemplateApp(t)
	req := httptest.NewRequest(fiber.MethodGet, "/api/templates/user/not-a-uuid", nil)
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMigrateLayouts(t *testing.T) {
	app, db := setupTemplateApp(t)

	legacy := `{"canvas":{"w":1600,"h":1100},"recipientName":{"x":800,"y":462,"fontSize":90}}`
	canonical := `{"recipientName":{"x":0.5,"y":0.42,"fontSize":0.06}}`

	tpls := []model.TemplateModel{
		{TemplateName: "Legacy", TemplateBgImageURL: "a.png", TemplateLayout: datatypes.JSON(legacy)},
		{TemplateName: "Canonical", TemplateBgImageURL: "b.png", TemplateLayout: datatypes.JSON(canonical)},
		{TemplateName: "Bare", TemplateBgImageURL: "c.png"},
	}
	for i := range tpls {
		if err := db.Create(&tpls[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(fiber.MethodPost, "/api/templates/migrate-layouts", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken(t))
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var env struct {
		Data struct {
			Migrated int `json:"migrated"`
			Skipped  int `json:"skipped"`
			Failed   int `json:"failed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}
	if env.Data.Migrated != 1 || env.Data.Failed != 0 {
		t.Errorf("migration counts = %+v", env.Data)
	}

	var stored model.TemplateModel
	if err := db.Where("template_name = ?", "Legacy").First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	var layout struct {
		Canvas *struct{} `json:"canvas"`
		Recipient *struct {
			X float64 `json:"x"`
		} `json:"recipientName"`
	}
	if err := json.Unmarshal(stored.TemplateLayout, &layout); err != nil {
		t.Fatal(err)
	}
	if layout.Canvas != nil {
		t.Error("canvas block still present after migration")
	}
	if layout.Recipient == nil || layout.Recipient.X != 0.5 {
		t.Errorf("recipientName not rescaled to fractions: %+v", layout.Recipient)
	}
}

func TestMigrateLayoutsRequiresAdmin(t *testing.T) {
	app, _ := setupTemplateApp(t)

	// No token at all.
	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/api/templates/migrate-layouts", nil), 10000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
