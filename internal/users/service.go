package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/atelier-pos/atelier/internal/auth"
)

// Service wraps account management rules.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Create registers a new account with a hashed password.
func (s *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(input.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	role := input.Role
	if role == "" {
		role = auth.RoleStaff
	}
	if role != auth.RoleAdmin && role != auth.RoleStaff {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, username, string(hash), role)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Update changes an account's password and/or role.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*User, error) {
	var hash *string
	if input.Password != nil {
		if len(*input.Password) < 6 {
			return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
		}
		h, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashed := string(h)
		hash = &hashed
	}
	if input.Role != nil && *input.Role != auth.RoleAdmin && *input.Role != auth.RoleStaff {
		return nil, ErrInvalidRole
	}

	if err := s.repo.Update(ctx, id, hash, input.Role); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
