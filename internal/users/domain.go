package users

import (
	"errors"
	"time"
)

// User represents an application account.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	PasswordHash string `json:"-"`
}

// CreateInput carries fields for account creation.
type CreateInput struct {
	Username string
	Password string
	Role     string
}

// UpdateInput carries optional account mutations.
type UpdateInput struct {
	Password *string
	Role     *string
}

var (
	// ErrNotFound indicates a missing account.
	ErrNotFound = errors.New("users: user not found")
	// ErrDuplicateUsername indicates a username uniqueness conflict.
	ErrDuplicateUsername = errors.New("users: username already taken")
	// ErrInvalidRole indicates an unknown role name.
	ErrInvalidRole = errors.New("users: role must be admin or staff")
	// ErrInvalidInput indicates a rejected field value.
	ErrInvalidInput = errors.New("users: invalid input")
)
