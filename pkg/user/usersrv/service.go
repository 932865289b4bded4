package usersrv

import (
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/concourse/pkg/errx"
	"github.com/Abraxas-365/concourse/pkg/kernel"
	"github.com/Abraxas-365/concourse/pkg/user"
	"github.com/google/uuid"
)

// UserService owns the record store use cases.
type UserService struct {
	repo user.UserRepository
}

// NewUserService creates the service.
func NewUserService(repo user.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetByEmail looks a record up by its key.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.repo.FindByEmail(ctx, normalizeEmail(email))
}

// Create registers a new record, rejecting duplicate emails.
func (s *UserService) Create(ctx context.Context, req user.CreateUserRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errx.IsType(err, errx.TypeNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, user.ErrEmailTaken().WithDetail("email", email)
	}

	u := user.User{
		ID:        uuid.NewString(),
		Email:     email,
		FullName:  strings.TrimSpace(req.FullName),
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns a page of records.
func (s *UserService) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[user.User], error) {
	return s.repo.List(ctx, opts.Normalized())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
