package user

import "github.com/kailas-cloud/searchgate/internal/domain/role"

// User is the identity attached to an authenticated request.
// The role is trusted as issued by the identity directory.
type User struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Email      string    `json:"email" yaml:"email"`
	Department string    `json:"department" yaml:"department"`
	Position   string    `json:"position" yaml:"position"`
	Role       role.Role `json:"role" yaml:"role"`
	Company    string    `json:"company,omitempty" yaml:"company"`
}

// Boost returns the ranking boost for the user's role.
func (u User) Boost() role.Boost { return role.BoostsFor(u.Role) }
