package identity

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/user"
)

// DefaultKeyPrefix namespaces directory keys.
const DefaultKeyPrefix = "searchgate:"

// store is the consumer interface for the Redis directory (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Redis is a directory kept in Redis: one hash per user plus an index set of emails.
type Redis struct {
	store  store
	prefix string
}

// NewRedis creates a Redis-backed directory.
func NewRedis(s store, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{store: s, prefix: prefix}
}

// Lookup returns the user registered under email.
func (r *Redis) Lookup(ctx context.Context, email string) (user.User, error) {
	m, err := r.store.HGetAll(ctx, r.userKey(email))
	if err != nil {
		return user.User{}, fmt.Errorf("hgetall user %s: %w", email, err)
	}
	if len(m) == 0 {
		return user.User{}, domain.ErrUserNotFound
	}
	return userFromHash(m)
}

// List returns every user sorted by ID.
// Index entries whose hash has disappeared are skipped.
func (r *Redis) List(ctx context.Context) ([]user.User, error) {
	emails, err := r.store.SMembers(ctx, r.indexKey())
	if err != nil {
		return nil, fmt.Errorf("smembers users: %w", err)
	}
	if len(emails) == 0 {
		return []user.User{}, nil
	}

	keys := make([]string, len(emails))
	for i, e := range emails {
		keys[i] = r.userKey(e)
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi users: %w", err)
	}

	users := make([]user.User, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		u, err := userFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse user %s: %w", emails[i], err)
		}
		users = append(users, u)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})

	return users, nil
}

// Put stores u, replacing any previous record with the same email.
func (r *Redis) Put(ctx context.Context, u user.User) error {
	if u.Email == "" {
		return domain.NewValidationError("email", "is required")
	}
	if err := r.store.HSet(ctx, r.userKey(u.Email), userToHash(u)); err != nil {
		return fmt.Errorf("hset user %s: %w", u.Email, err)
	}
	if err := r.store.SAdd(ctx, r.indexKey(), u.Email); err != nil {
		cleanupErr := r.store.Del(ctx, r.userKey(u.Email))
		return errors.Join(fmt.Errorf("sadd user %s: %w", u.Email, err), cleanupErr)
	}
	return nil
}

// Delete removes the user registered under email.
func (r *Redis) Delete(ctx context.Context, email string) error {
	if err := r.store.Del(ctx, r.userKey(email)); err != nil {
		return fmt.Errorf("del user %s: %w", email, err)
	}
	if err := r.store.SRem(ctx, r.indexKey(), email); err != nil {
		return fmt.Errorf("srem user %s: %w", email, err)
	}
	return nil
}

// Seed stores every user in users.
func (r *Redis) Seed(ctx context.Context, users []user.User) error {
	for _, u := range users {
		if err := r.Put(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// Key patterns: searchgate:user:{email}, searchgate:users

func (r *Redis) userKey(email string) string {
	return r.prefix + "user:" + email
}

func (r *Redis) indexKey() string {
	return r.prefix + "users"
}
