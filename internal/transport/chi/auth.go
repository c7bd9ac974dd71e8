package chi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/user"
	"github.com/kailas-cloud/searchgate/internal/logger"
)

type userCtxKey struct{}

func contextWithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

func userFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(user.User)
	return u, ok
}

// bearerToken extracts the credentials of an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authenticate resolves the caller and returns a request carrying the user
// and a logger annotated with its id.
func (s *Server) authenticate(r *http.Request) (*http.Request, error) {
	token, ok := bearerToken(r)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	u, err := s.auth.Authenticate(r.Context(), token)
	if err != nil {
		return nil, err
	}

	ctx := contextWithUser(r.Context(), u)
	ctx = logger.With(ctx, zap.String("user_id", u.ID))
	return r.WithContext(ctx), nil
}

// requireUser rejects requests without a valid bearer token.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed, err := s.authenticate(r)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		next.ServeHTTP(w, authed)
	})
}

// optionalUser attaches the caller when the token is valid and never rejects.
func (s *Server) optionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authed, err := s.authenticate(r); err == nil {
			r = authed
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin must run after requireUser.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := userFromContext(r.Context())
		if !ok || !u.Role.IsAdmin() {
			writeError(w, http.StatusForbidden, CodeForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Email string `json:"email"`
}

// Login handles POST /api/v1/auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	session, err := s.auth.Login(r.Context(), req.Email)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type userListResponse struct {
	Users []user.User `json:"users"`
}

// ListUsers handles GET /api/v1/auth/users.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.Users(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if users == nil {
		users = []user.User{}
	}
	writeJSON(w, http.StatusOK, userListResponse{Users: users})
}

// Me handles GET /api/v1/auth/me.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, u)
}

// Refresh handles POST /api/v1/auth/refresh.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	u, _ := userFromContext(r.Context())
	tok, err := s.auth.Refresh(r.Context(), u)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}
