package userinfra

import (
	"context"
	"sort"
	"sync"

	"github.com/Abraxas-365/concourse/pkg/kernel"
	"github.com/Abraxas-365/concourse/pkg/user"
)

// MemoryUserRepository is the in-memory backend used when the demo runs
// without Postgres. Safe for concurrent readers and writers.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]user.User
}

// NewMemoryUserRepository creates an empty in-memory repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byEmail: make(map[string]user.User)}
}

// FindByEmail returns the record for email or a not-found error.
func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, user.ErrUserNotFound().WithDetail("email", email)
	}
	return &u, nil
}

// Save inserts or replaces a record keyed by its email.
func (r *MemoryUserRepository) Save(ctx context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[u.Email] = u
	return nil
}

// List returns records ordered by email.
func (r *MemoryUserRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[user.User], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	emails := make([]string, 0, len(r.byEmail))
	for email := range r.byEmail {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	total := len(emails)
	start := opts.Offset()
	if start > total {
		start = total
	}
	end := start + opts.PageSize
	if end > total {
		end = total
	}

	items := make([]user.User, 0, end-start)
	for _, email := range emails[start:end] {
		items = append(items, r.byEmail[email])
	}

	return kernel.NewPaginated(items, opts.Page, opts.PageSize, total), nil
}
