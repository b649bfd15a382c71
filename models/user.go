package models

import (
	"time"
)

// User roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents an application account. Accounts are created either by an
// administrator (local password login) or on first OIDC sign-in.
type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Role         string    `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"` // empty for OIDC-only accounts
	OIDCSubject  string    `json:"-" db:"oidc_subject"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RefreshToken is a stored, revocable refresh credential
type RefreshToken struct {
	ID        string    `json:"id" db:"id"` // uuid, the opaque token value
	UserID    int       `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the refresh token is past its expiry
func (t *RefreshToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// LoginRequest is the payload for password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Validate applies semantic checks on the login payload
func (r *LoginRequest) Validate() ValidationErrors {
	return ValidateStruct(r)
}

// RefreshRequest is the payload for rotating a token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Validate applies semantic checks on the refresh payload
func (r *RefreshRequest) Validate() ValidationErrors {
	return ValidateStruct(r)
}

// TokenPair is the response to a successful login or refresh
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
