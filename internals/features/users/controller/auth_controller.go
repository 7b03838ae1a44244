package controller

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sertifikatku_backend/internals/configs"
	"sertifikatku_backend/internals/features/users/dto"
	"sertifikatku_backend/internals/features/users/model"
	helper "sertifikatku_backend/internals/helpers"
)

/*
	========================================================
	  Controller
========================================================
*/

type AuthController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validate: validator.New()}
}

const tokenLifetime = 7 * 24 * time.Hour

var allowedSignatureExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
}

/*
	========================================================
	  Register & Login
========================================================
*/

// POST /api/auth/register
func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	var body dto.RegisterRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	issuerCode := strings.ToUpper(strings.TrimSpace(body.IssuerCode))
	email := strings.ToLower(strings.TrimSpace(body.Email))

	// Whitelist check, case-insensitive on the stored code.
	var org model.ValidOrganizationModel
	if err := ctrl.DB.Where("UPPER(valid_org_issuer_code) = ?", issuerCode).First(&org).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.Error(c, fiber.StatusForbidden, "Organization is not authorized to issue certificates")
		}
		log.Println("[ERROR] whitelist lookup failed:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to verify organization")
	}

	var count int64
	ctrl.DB.Model(&model.UserModel{}).
		Where("user_email = ? OR user_issuer_code = ?", email, issuerCode).
		Count(&count)
	if count > 0 {
		return helper.Error(c, fiber.StatusConflict, "Email or issuer code already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("[ERROR] bcrypt failed:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create account")
	}

	user := model.UserModel{
		UserOrganizationName: strings.TrimSpace(body.OrganizationName),
		UserEmail:            email,
		UserPasswordHash:     string(hash),
		UserIssuerCode:       issuerCode,
		UserVerified:         org.ValidOrgPreVerified,
		UserContactPhone:     strings.TrimSpace(body.ContactPhone),
		UserRole:             "organization",
	}
	if err := ctrl.DB.Create(&user).Error; err != nil {
		log.Println("[ERROR] failed to create user:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create account")
	}

	log.Println("✅ Organization registered:", user.UserIssuerCode)
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Registration successful", profileBrief(&user))
}

// POST /api/auth/login
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var body dto.LoginRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	var user model.UserModel
	if err := ctrl.DB.Where("user_email = ?", strings.ToLower(strings.TrimSpace(body.Email))).First(&user).Error; err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.UserPasswordHash), []byte(body.Password)); err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	token, err := signToken(&user)
	if err != nil {
		log.Println("[ERROR] failed to sign token:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create session")
	}

	return helper.Success(c, "Login successful", dto.LoginResponse{
		Token: token,
		User:  profileBrief(&user),
	})
}

func signToken(user *model.UserModel) (string, error) {
	claims := jwt.MapClaims{
		"id":                user.UserID.String(),
		"role":              user.UserRole,
		"organization_name": user.UserOrganizationName,
		"issuer_code":       user.UserIssuerCode,
		"exp":               time.Now().Add(tokenLifetime).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(configs.JWTSecret))
}

/*
	========================================================
	  Profile
========================================================
*/

// GET /api/auth/me
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	user, err := ctrl.currentUser(c)
	if err != nil {
		return err
	}
	return helper.Success(c, "OK", profileBrief(user))
}

// POST /api/auth/upload-signature
// Multipart field "signature", image only, max 2MB.
func (ctrl *AuthController) UploadSignature(c *fiber.Ctx) error {
	user, err := ctrl.currentUser(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("signature")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Signature file is required")
	}
	if fh.Size > 2*1024*1024 {
		return helper.Error(c, fiber.StatusBadRequest, "Signature must be 2MB or smaller")
	}
	if !allowedSignatureExt[strings.ToLower(filepath.Ext(fh.Filename))] {
		return helper.Error(c, fiber.StatusBadRequest, "Signature must be a PNG, JPG or WEBP image")
	}

	rel, err := helper.SaveUploadedFile(fh, configs.StorageRoot, "signatures")
	if err != nil {
		log.Println("[ERROR] failed to store signature:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to store signature")
	}

	if err := ctrl.DB.Model(user).Update("user_signature_url", rel).Error; err != nil {
		log.Println("[ERROR] failed to update signature url:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to update signature")
	}
	user.UserSignatureURL = rel

	return helper.Success(c, "Signature uploaded", fiber.Map{
		"signature_url": rel,
	})
}

func (ctrl *AuthController) currentUser(c *fiber.Ctx) (*model.UserModel, error) {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	var user model.UserModel
	if err := ctrl.DB.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Account not found")
	}
	return &user, nil
}

func profileBrief(u *model.UserModel) dto.ProfileBrief {
	return dto.ProfileBrief{
		UserID:           u.UserID.String(),
		OrganizationName: u.UserOrganizationName,
		Email:            u.UserEmail,
		IssuerCode:       u.UserIssuerCode,
		Role:             u.UserRole,
		Verified:         u.UserVerified,
		SignatureURL:     u.UserSignatureURL,
		Credits:          u.UserCredits,
	}
}
