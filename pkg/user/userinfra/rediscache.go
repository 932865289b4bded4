package userinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/concourse/pkg/kernel"
	"github.com/Abraxas-365/concourse/pkg/logx"
	"github.com/Abraxas-365/concourse/pkg/user"
	"github.com/redis/go-redis/v9"
)

// CachedUserRepository decorates a UserRepository with a Redis read-through
// cache on the by-email lookup. Cache problems degrade to the inner
// repository; they never fail a request.
type CachedUserRepository struct {
	inner user.UserRepository
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedUserRepository wraps inner with a Redis cache.
func NewCachedUserRepository(inner user.UserRepository, rdb *redis.Client, ttl time.Duration) user.UserRepository {
	return &CachedUserRepository{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(email string) string {
	return fmt.Sprintf("user:email:%s", email)
}

// FindByEmail serves from cache when possible, falling back to the inner
// repository and populating the cache on a hit there.
func (r *CachedUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	if data, err := r.rdb.Get(ctx, cacheKey(email)).Bytes(); err == nil {
		var u user.User
		if err := json.Unmarshal(data, &u); err == nil {
			return &u, nil
		}
		// Corrupt entry: drop it and fall through.
		r.rdb.Del(ctx, cacheKey(email))
	} else if err != redis.Nil {
		logx.WithError(err).Debug("userinfra: cache read failed, falling back to store")
	}

	u, err := r.inner.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(u); err == nil {
		if err := r.rdb.Set(ctx, cacheKey(email), data, r.ttl).Err(); err != nil {
			logx.WithError(err).Debug("userinfra: cache write failed")
		}
	}
	return u, nil
}

// Save writes through to the inner repository and invalidates the cache.
func (r *CachedUserRepository) Save(ctx context.Context, u user.User) error {
	if err := r.inner.Save(ctx, u); err != nil {
		return err
	}
	if err := r.rdb.Del(ctx, cacheKey(u.Email)).Err(); err != nil {
		logx.WithError(err).Debug("userinfra: cache invalidation failed")
	}
	return nil
}

// List is not cached; it delegates directly.
func (r *CachedUserRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[user.User], error) {
	return r.inner.List(ctx, opts)
}
