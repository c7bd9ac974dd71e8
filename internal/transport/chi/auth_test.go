package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/searchgate/internal/transport/token"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc ", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, ok := bearerToken(req)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRequireUser_MissingHeader_401(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodGet, "/api/v1/auth/me", "", "")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
	assert.Equal(t, CodeUnauthorized, errResp.Code)
	assert.Equal(t, "Could not validate credentials", errResp.Detail)
}

func TestRequireUser_InvalidToken_401(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodGet, "/api/v1/auth/me", "not-a-jwt", "")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
}

func TestRequireUser_ForeignSecret_401(t *testing.T) {
	h := newHarness(t, true)
	other, err := token.NewIssuer("other-secret", time.Minute)
	require.NoError(t, err)
	tok, err := other.Issue(adminEmail)
	require.NoError(t, err)

	rr := h.do(http.MethodGet, "/api/v1/auth/me", tok, "")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireUser_UnknownSubject_404(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodGet, "/api/v1/auth/me", h.tokenFor(t, "ghost@testbank.com"), "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"code":"user_not_found","detail":"User not found"}`, rr.Body.String())
}

func TestMe(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodGet, "/api/v1/auth/me", h.tokenFor(t, employeeEmail), "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"id": "3",
		"name": "Mike Chen",
		"email": "mike.chen@testbank.com",
		"department": "Software Engineering",
		"position": "Senior Developer",
		"role": "employee",
		"company": "Test Bank"
	}`, rr.Body.String())
}

func TestLogin(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"admin@testbank.com"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		User        struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, adminEmail, resp.User.Email)
	assert.Equal(t, "admin", resp.User.Role)

	sub, err := h.issuer.Subject(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, adminEmail, sub)
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown user", `{"email":"nobody@testbank.com"}`, http.StatusNotFound},
		{"empty email", `{"email":"  "}`, http.StatusBadRequest},
		{"malformed body", `{"email":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)
			rr := h.do(http.MethodPost, "/api/v1/auth/login", "", tt.body)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRefresh(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodPost, "/api/v1/auth/refresh", h.tokenFor(t, employeeEmail), "")
	require.Equal(t, http.StatusOK, rr.Code)

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&tok))
	assert.Equal(t, "bearer", tok.TokenType)

	sub, err := h.issuer.Subject(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, employeeEmail, sub)
}

func TestListUsers_Exposed(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodGet, "/api/v1/auth/users", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp userListResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp.Users, 5)
}

func TestListUsers_AdminOnly(t *testing.T) {
	h := newHarness(t, false)

	tests := []struct {
		name string
		tok  string
		want int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"employee", h.tokenFor(t, employeeEmail), http.StatusForbidden},
		{"admin", h.tokenFor(t, adminEmail), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := h.do(http.MethodGet, "/api/v1/auth/users", tt.tok, "")
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestOptionalUser(t *testing.T) {
	h := newHarness(t, true)

	tests := []struct {
		name string
		tok  string
		want bool
	}{
		{"anonymous", "", false},
		{"bad token", "garbage", false},
		{"valid token", h.tokenFor(t, employeeEmail), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := h.do(http.MethodGet, "/api/v1/health/elasticsearch", tt.tok, "")
			require.Equal(t, http.StatusOK, rr.Code)

			var resp backendHealthResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.want, resp.UserAuthenticated)
		})
	}
}
