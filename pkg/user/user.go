// Package user is the record store consumed by the demo's combined-data
// path: user-like records keyed by a unique email. The core only ever reads
// records; mutation happens through the boundary endpoints.
package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/Abraxas-365/concourse/pkg/errx"
)

// User is one stored record.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateUserRequest is the boundary payload for creating a record.
type CreateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Validate checks the request before it reaches the store.
func (r CreateUserRequest) Validate() error {
	email := strings.TrimSpace(r.Email)
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail().WithDetail("email", r.Email)
	}
	return nil
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeUserNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeEmailTaken   = ErrRegistry.Register("EMAIL_TAKEN", errx.TypeConflict, http.StatusConflict, "Email already registered")
	CodeInvalidEmail = ErrRegistry.Register("INVALID_EMAIL", errx.TypeValidation, http.StatusBadRequest, "Invalid email address")
	CodeStoreFailure = ErrRegistry.Register("STORE_FAILURE", errx.TypeInternal, http.StatusInternalServerError, "Record store operation failed")
)

// ErrUserNotFound builds the not-found error.
func ErrUserNotFound() *errx.Error {
	return ErrRegistry.New(CodeUserNotFound)
}

// ErrEmailTaken builds the conflict error.
func ErrEmailTaken() *errx.Error {
	return ErrRegistry.New(CodeEmailTaken)
}

// ErrInvalidEmail builds the validation error.
func ErrInvalidEmail() *errx.Error {
	return ErrRegistry.New(CodeInvalidEmail)
}
