package identity

import (
	"fmt"

	"github.com/kailas-cloud/searchgate/internal/domain/role"
	"github.com/kailas-cloud/searchgate/internal/domain/user"
)

// userToHash converts a user to a map for HSET.
func userToHash(u user.User) map[string]string {
	return map[string]string{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"department": u.Department,
		"position":   u.Position,
		"role":       u.Role.String(),
		"company":    u.Company,
	}
}

// userFromHash hydrates a user from an HGETALL result map.
func userFromHash(m map[string]string) (user.User, error) {
	r, err := role.Parse(m["role"])
	if err != nil {
		return user.User{}, fmt.Errorf("invalid role: %w", err)
	}
	return user.User{
		ID:         m["id"],
		Name:       m["name"],
		Email:      m["email"],
		Department: m["department"],
		Position:   m["position"],
		Role:       r,
		Company:    m["company"],
	}, nil
}
