package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/role"
	"github.com/kailas-cloud/searchgate/internal/domain/user"
)

// --- Mocks ---

type mockDirectory struct {
	users   map[string]user.User
	listErr error
	lookErr error
}

func (m *mockDirectory) Lookup(_ context.Context, email string) (user.User, error) {
	if m.lookErr != nil {
		return user.User{}, m.lookErr
	}
	u, ok := m.users[email]
	if !ok {
		return user.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockDirectory) List(_ context.Context) ([]user.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

// mockTokens encodes the subject into the token verbatim.
type mockTokens struct {
	issueErr error
}

func (m *mockTokens) Issue(subject string) (string, error) {
	if m.issueErr != nil {
		return "", m.issueErr
	}
	return "tok:" + subject, nil
}

func (m *mockTokens) Subject(token string) (string, error) {
	sub, ok := strings.CutPrefix(token, "tok:")
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return sub, nil
}

var admin = user.User{ID: "5", Name: "System Admin", Email: "admin@testbank.com", Role: role.Admin}

func newTestService() *Service {
	return New(&mockDirectory{users: map[string]user.User{admin.Email: admin}}, &mockTokens{})
}

// --- Tests ---

func TestLogin_Success(t *testing.T) {
	s, err := newTestService().Login(context.Background(), " admin@testbank.com ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.AccessToken != "tok:admin@testbank.com" || s.TokenType != "bearer" {
		t.Errorf("unexpected token: %+v", s.Token)
	}
	if s.User != admin {
		t.Errorf("unexpected user: %+v", s.User)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	_, err := newTestService().Login(context.Background(), "nobody@testbank.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLogin_EmptyEmail(t *testing.T) {
	_, err := newTestService().Login(context.Background(), "  ")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestLogin_IssueFailure(t *testing.T) {
	svc := New(&mockDirectory{users: map[string]user.User{admin.Email: admin}}, &mockTokens{issueErr: errors.New("no key")})
	if _, err := svc.Login(context.Background(), admin.Email); err == nil {
		t.Fatal("expected error")
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService()

	u, err := svc.Authenticate(context.Background(), "tok:admin@testbank.com")
	if err != nil || u != admin {
		t.Errorf("Authenticate = %+v, %v", u, err)
	}

	_, err = svc.Authenticate(context.Background(), "garbage")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	_, err = svc.Authenticate(context.Background(), "tok:ghost@testbank.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthenticate_DirectoryFailure(t *testing.T) {
	svc := New(&mockDirectory{lookErr: errors.New("redis down")}, &mockTokens{})
	_, err := svc.Authenticate(context.Background(), "tok:admin@testbank.com")
	if err == nil || errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected opaque failure, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	tok, err := newTestService().Refresh(context.Background(), admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "tok:admin@testbank.com" || tok.TokenType != TokenType {
		t.Errorf("unexpected token: %+v", tok)
	}
}

func TestUsers(t *testing.T) {
	users, err := newTestService().Users(context.Background())
	if err != nil || len(users) != 1 {
		t.Errorf("Users = %v, %v", users, err)
	}

	svc := New(&mockDirectory{listErr: errors.New("boom")}, &mockTokens{})
	if _, err := svc.Users(context.Background()); err == nil {
		t.Error("expected error")
	}
}
