package auth

import (
	"context"

	"github.com/kailas-cloud/searchgate/internal/domain/user"
)

// Directory resolves identities.
type Directory interface {
	Lookup(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
}

// Tokens issues and verifies access tokens.
type Tokens interface {
	Issue(subject string) (string, error)
	Subject(token string) (string, error)
}
