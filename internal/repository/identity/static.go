// Package identity implements the user directories behind authentication.
package identity

import (
	"context"

	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/role"
	"github.com/kailas-cloud/searchgate/internal/domain/user"
)

// DemoUsers returns the built-in directory used when none is configured.
func DemoUsers() []user.User {
	const company = "Test Bank"
	return []user.User{
		{ID: "1", Name: "John Smith", Email: "john.smith@testbank.com", Department: "IT Leadership",
			Position: "CTO", Role: role.Executive, Company: company},
		{ID: "2", Name: "Sarah Johnson", Email: "sarah.johnson@testbank.com", Department: "Risk Management",
			Position: "Risk Manager", Role: role.Manager, Company: company},
		{ID: "3", Name: "Mike Chen", Email: "mike.chen@testbank.com", Department: "Software Engineering",
			Position: "Senior Developer", Role: role.Employee, Company: company},
		{ID: "4", Name: "Lisa Davis", Email: "lisa.davis@testbank.com", Department: "Business Analysis",
			Position: "Senior Business Analyst", Role: role.Employee, Company: company},
		{ID: "5", Name: "System Admin", Email: "admin@testbank.com", Department: "IT Administration",
			Position: "System Administrator", Role: role.Admin, Company: company},
	}
}

// Static is an in-memory directory fixed at startup.
type Static struct {
	users   []user.User
	byEmail map[string]int
}

// NewStatic creates a directory from users, falling back to DemoUsers when empty.
// Later entries with a duplicate email replace earlier ones.
func NewStatic(users []user.User) *Static {
	if len(users) == 0 {
		users = DemoUsers()
	}

	s := &Static{byEmail: make(map[string]int, len(users))}
	for _, u := range users {
		if i, ok := s.byEmail[u.Email]; ok {
			s.users[i] = u
			continue
		}
		s.byEmail[u.Email] = len(s.users)
		s.users = append(s.users, u)
	}
	return s
}

// Lookup returns the user registered under email.
func (s *Static) Lookup(_ context.Context, email string) (user.User, error) {
	i, ok := s.byEmail[email]
	if !ok {
		return user.User{}, domain.ErrUserNotFound
	}
	return s.users[i], nil
}

// List returns every user in registration order.
func (s *Static) List(_ context.Context) ([]user.User, error) {
	out := make([]user.User, len(s.users))
	copy(out, s.users)
	return out, nil
}
