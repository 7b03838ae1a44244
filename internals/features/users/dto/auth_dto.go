package dto

// RegisterRequest creates an organization account. The issuer code must be
// present in the valid_organizations whitelist.
type RegisterRequest struct {
	OrganizationName string `json:"organization_name" validate:"required,min=3"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	IssuerCode       string `json:"issuer_code" validate:"required,min=2,max=12"`
	ContactPhone     string `json:"contact_phone" validate:"omitempty,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  ProfileBrief `json:"user"`
}

// ProfileBrief is the account shape returned by login and /auth/me.
type ProfileBrief struct {
	UserID           string `json:"user_id"`
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	IssuerCode       string `json:"issuer_code"`
	Role             string `json:"role"`
	Verified         bool   `json:"verified"`
	SignatureURL     string `json:"signature_url"`
	Credits          int    `json:"credits"`
}
