package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/user"
	"github.com/kailas-cloud/searchgate/internal/logger"
)

// TokenType is the scheme clients present tokens with.
const TokenType = "bearer"

// Token is an issued access token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Session is the result of a successful login.
type Session struct {
	Token
	User user.User `json:"user"`
}

// Service authenticates users against a directory.
type Service struct {
	dir    Directory
	tokens Tokens
}

// New creates an auth service.
func New(dir Directory, tokens Tokens) *Service {
	return &Service{dir: dir, tokens: tokens}
}

// Login issues a token for the user registered under email.
func (s *Service) Login(ctx context.Context, email string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Session{}, domain.NewValidationError("email", "is required")
	}

	u, err := s.dir.Lookup(ctx, email)
	if err != nil {
		return Session{}, err
	}

	tok, err := s.issue(u)
	if err != nil {
		return Session{}, err
	}

	logger.FromContext(ctx).Info("user logged in",
		zap.String("user_id", u.ID), zap.String("role", u.Role.String()))
	return Session{Token: tok, User: u}, nil
}

// Authenticate resolves the user behind an access token.
// Bad tokens yield domain.ErrUnauthorized; unknown subjects domain.ErrUserNotFound.
func (s *Service) Authenticate(ctx context.Context, token string) (user.User, error) {
	sub, err := s.tokens.Subject(token)
	if err != nil {
		return user.User{}, err
	}

	u, err := s.dir.Lookup(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("lookup %s: %w", sub, err)
	}
	return u, nil
}

// Refresh issues a fresh token for an authenticated user.
func (s *Service) Refresh(_ context.Context, u user.User) (Token, error) {
	return s.issue(u)
}

// Users lists the directory.
func (s *Service) Users(ctx context.Context) ([]user.User, error) {
	users, err := s.dir.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Service) issue(u user.User) (Token, error) {
	access, err := s.tokens.Issue(u.Email)
	if err != nil {
		return Token{}, fmt.Errorf("issue token: %w", err)
	}
	return Token{AccessToken: access, TokenType: TokenType}, nil
}
