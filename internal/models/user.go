package models

import (
	"slices"
	"strings"
	"time"

	"canteen-system/internal/apperror"
)

// CapabilityAdmin grants access to the admin routes
const CapabilityAdmin = "admin"

// User is an account able to obtain tokens
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

// Capabilities returns the capability claims granted to u at token issuance
func (u *User) Capabilities() []string {
	if u.IsStaff {
		return []string{CapabilityAdmin}
	}
	return []string{}
}

// Principal is the authenticated caller of a request
type Principal struct {
	UserID       int64
	Username     string
	Email        string
	Capabilities []string
}

// HasCapability reports whether the principal carries the named capability
func (p *Principal) HasCapability(name string) bool {
	return p != nil && slices.Contains(p.Capabilities, name)
}

// IsAdmin reports whether the principal carries the admin capability
func (p *Principal) IsAdmin() bool {
	return p.HasCapability(CapabilityAdmin)
}

// TokenRequest represents a login attempt
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the login request
func (req *TokenRequest) Validate() error {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return apperror.Validation("username", "username is required")
	}
	if req.Password == "" {
		return apperror.Validation("password", "password is required")
	}
	return nil
}

// TokenResponse is an issued bearer token
type TokenResponse struct {
	Access    string `json:"access"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

// CreateUserRequest is the input of the create-user mode
type CreateUserRequest struct {
	Username string
	Email    string
	Password string
	IsStaff  bool
}

// Validate validates the create-user input
func (req *CreateUserRequest) Validate() error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || len(req.Username) > 150 {
		return apperror.Validation("username", "username must be 1 to 150 characters")
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		return apperror.Validation("email", "email is invalid")
	}
	if len(req.Password) < 8 {
		return apperror.Validation("password", "password must be at least 8 characters")
	}
	return nil
}
