package user

import (
	"context"

	"github.com/Abraxas-365/concourse/pkg/kernel"
)

// UserRepository is the storage port for user records.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, u User) error
	List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[User], error)
}
