package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/search/filter"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
)

func TestHealthCheck(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp healthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, ServiceName, resp.Service)
	assert.Equal(t, "ok", string(resp.Checks["elasticsearch"]))
}

func TestHealthCheck_BackendDown(t *testing.T) {
	h := newHarness(t, true)
	h.prober.clusterErr = errors.New("connection refused")

	rr := h.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var resp healthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "degraded", resp.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodGet, "/metrics", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestBackendHealth(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodGet, "/api/v1/health/elasticsearch", "", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"status": "connected",
		"details": {"cluster_health": "connected", "index": "available"},
		"user_authenticated": false
	}`, rr.Body.String())
}

func TestBackendHealth_Unreachable(t *testing.T) {
	h := newHarness(t, true)
	h.prober.clusterErr = errors.New("dial tcp: connection refused")

	rr := h.do(http.MethodGet, "/api/v1/health/elasticsearch", "", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"status": "error",
		"error": "dial tcp: connection refused",
		"user_authenticated": false
	}`, rr.Body.String())
}

func TestSearch_Post(t *testing.T) {
	h := newHarness(t, true)
	body := `{
		"query": "payment processing",
		"filters": {"source": ["jira"], "date_range": "last_month"},
		"size": 5,
		"from": 10,
		"semantic_enabled": true,
		"hybrid_weight": 0
	}`

	rr := h.do(http.MethodPost, "/api/v1/search", h.tokenFor(t, employeeEmail), body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	req := h.repo.lastReq
	require.NotNil(t, req)
	assert.Equal(t, "payment processing", req.Query())
	assert.Equal(t, 5, req.Size())
	assert.Equal(t, 10, req.From())
	require.NotNil(t, req.HybridWeight())
	assert.Zero(t, *req.HybridWeight())
	assert.Equal(t, []string{"jira"}, req.Filters().Source)

	var resp result.Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "payment processing", resp.Query)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, "elasticsearch", resp.SearchMode)
	assert.Equal(t, filter.DateLastMonth, resp.FiltersApplied.DateRange)
}

func TestSearch_PostDefaults(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodPost, "/api/v1/search", h.tokenFor(t, employeeEmail), `{"query":"vpn"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, 20, h.repo.lastReq.Size())
	assert.Equal(t, 0, h.repo.lastReq.From())
	assert.Nil(t, h.repo.lastReq.SemanticEnabled())

	var raw map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	assert.Equal(t, map[string]any{
		"source": []any{}, "content_type": []any{}, "author": []any{}, "tags": []any{}, "date_range": "all",
	}, raw["filters_applied"])
}

func TestSearch_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{"size": 5}`},
		{"malformed", `{"query":`},
		{"negative size", `{"query":"x","size":-1}`},
		{"negative from", `{"query":"x","from":-3}`},
		{"weight out of range", `{"query":"x","hybrid_weight":1.5}`},
		{"unknown date range", `{"query":"x","filters":{"date_range":"last_decade"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)

			rr := h.do(http.MethodPost, "/api/v1/search", h.tokenFor(t, employeeEmail), tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.False(t, h.repo.called, "backend must not be called")

			var errResp ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
			assert.Equal(t, CodeValidationFailed, errResp.Code)
		})
	}
}

func TestSearch_BackendFailure(t *testing.T) {
	h := newHarness(t, true)
	h.repo.err = &domain.BackendError{Status: 503, Body: "unavailable"}

	rr := h.do(http.MethodPost, "/api/v1/search", h.tokenFor(t, employeeEmail), `{"query":"x"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{
		"code": "search_failed",
		"detail": "Search failed: search backend error: status 503: unavailable"
	}`, rr.Body.String())
}

func TestSearch_RequiresAuth(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodPost, "/api/v1/search", "", `{"query":"x"}`)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, h.repo.called)
}

func TestSearch_QueryString(t *testing.T) {
	h := newHarness(t, true)
	path := "/api/v1/search?q=fraud+detection&size=3&from=6&semantic=false&hybrid_weight=0.4" +
		"&source=jira&source=confluence&tags=risk&date_range=last_week"

	rr := h.do(http.MethodGet, path, h.tokenFor(t, employeeEmail), "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	req := h.repo.lastReq
	assert.Equal(t, "fraud detection", req.Query())
	assert.Equal(t, 3, req.Size())
	assert.Equal(t, 6, req.From())
	require.NotNil(t, req.SemanticEnabled())
	assert.False(t, *req.SemanticEnabled())
	require.NotNil(t, req.HybridWeight())
	assert.InDelta(t, 0.4, *req.HybridWeight(), 1e-9)
	assert.Equal(t, []string{"jira", "confluence"}, req.Filters().Source)
	assert.Equal(t, []string{"risk"}, req.Filters().Tags)
	assert.Nil(t, req.Filters().Author)
	assert.Equal(t, filter.DateLastWeek, req.Filters().DateRange)
}

func TestSearch_QueryStringBadNumber(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodGet, "/api/v1/search?q=x&size=ten", h.tokenFor(t, employeeEmail), "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, h.repo.called)
}

func TestSearch_SizeCapped(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodGet, "/api/v1/search?q=x&size=1000", h.tokenFor(t, employeeEmail), "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 100, h.repo.lastReq.Size())
}

func TestTestConnection(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodGet, "/api/v1/search/test-connection", h.tokenFor(t, employeeEmail), "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"status": "success",
		"connection_details": {"cluster_health": "connected", "index": "available"},
		"user": {"id": "3", "name": "Mike Chen", "department": "Software Engineering", "role": "employee"}
	}`, rr.Body.String())
}

func TestTestConnection_IndexMissing(t *testing.T) {
	h := newHarness(t, true)
	h.prober.exists = false

	rr := h.do(http.MethodGet, "/api/v1/search/test-connection", h.tokenFor(t, employeeEmail), "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"index":"not_found"`)
}

func TestTestConnection_Failure(t *testing.T) {
	h := newHarness(t, true)
	h.prober.clusterErr = errors.New("timeout")

	rr := h.do(http.MethodGet, "/api/v1/search/test-connection", h.tokenFor(t, employeeEmail), "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"code":"connection_failed","detail":"Connection test failed: timeout"}`, rr.Body.String())
}

func TestSummary(t *testing.T) {
	h := newHarness(t, true)
	body := `{"query":"pci","search_results":[
		{"id":"1","title":"PCI","source":"confluence"},
		{"id":"2","title":"PCI audit","source":"jira"},
		{"id":"3","title":"PCI scope","source":"confluence"}
	]}`

	rr := h.do(http.MethodPost, "/api/v1/llm/summary", h.tokenFor(t, employeeEmail), body)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"summary": "generated",
		"source_distribution": {"confluence": 2, "jira": 1},
		"confidence_score": 0.8
	}`, rr.Body.String())
}

func TestSummary_Fallback(t *testing.T) {
	h := newHarness(t, true)
	h.gen.err = &domain.GenerationError{Status: 500, Detail: "boom"}

	rr := h.do(http.MethodPost, "/api/v1/llm/summary", h.tokenFor(t, employeeEmail),
		`{"query":"pci","search_results":[{"id":"1","title":"PCI","source":"confluence"}]}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Summary         string   `json:"summary"`
		ConfidenceScore *float64 `json:"confidence_score"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, strings.HasPrefix(resp.Summary, "Found 1 relevant documents across confluence."))
	require.NotNil(t, resp.ConfidenceScore)
	assert.Zero(t, *resp.ConfidenceScore)
}

func TestSummary_BadBody(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodPost, "/api/v1/llm/summary", h.tokenFor(t, employeeEmail), `[`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestComprehensiveSummary(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodPost, "/api/v1/llm/comprehensive-summary", h.tokenFor(t, employeeEmail),
		`{"selected_documents":[{"id":"1","title":"PCI","source":"confluence"}]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"summary":"generated"}`, rr.Body.String())
}

func TestChat(t *testing.T) {
	h := newHarness(t, true)
	body := `{
		"message": "what changed?",
		"search_context": [{"title":"PCI","source":"jira"}],
		"conversation_history": [{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]
	}`

	rr := h.do(http.MethodPost, "/api/v1/llm/chat", h.tokenFor(t, employeeEmail), body)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"response":"generated","context_used":true,"sources_referenced":["jira"]}`, rr.Body.String())
}

func TestChat_BadBodyNeverFails(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(http.MethodPost, "/api/v1/llm/chat", h.tokenFor(t, employeeEmail), `{"message":`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Response          string   `json:"response"`
		ContextUsed       bool     `json:"context_used"`
		SourcesReferenced []string `json:"sources_referenced"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, strings.HasPrefix(resp.Response, "I'm sorry, I'm having trouble accessing the AI system right now."))
	assert.False(t, resp.ContextUsed)
	assert.NotNil(t, resp.SourcesReferenced)
	assert.Empty(t, resp.SourcesReferenced)
}

func TestChat_RateLimitedFallback(t *testing.T) {
	h := newHarness(t, true)
	h.gen.err = &domain.GenerationError{Status: http.StatusTooManyRequests, Detail: "slow down"}

	rr := h.do(http.MethodPost, "/api/v1/llm/chat", h.tokenFor(t, employeeEmail),
		`{"message":"hi","search_context":[{"source":"jira"},{"source":"slack"}]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "rate limited")
	assert.Contains(t, rr.Body.String(), "review the 2 search results")
}

func TestSafeDomainMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", domain.NewValidationError("size", "must be >= 0"), "size: must be >= 0"},
		{"operation", domain.NewOperationError("search", errors.New("boom")), "Search failed: boom"},
		{"unauthorized", domain.ErrUnauthorized, "Could not validate credentials"},
		{"not found", domain.ErrUserNotFound, "User not found"},
		{"forbidden", domain.ErrForbidden, "Insufficient permissions"},
		{"unknown", errors.New("redis: connection pool exhausted"), "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safeDomainMessage(tt.err))
		})
	}
}

func TestHandleDomainError_Unknown500(t *testing.T) {
	srv := NewServer(nil, nil, nil, nil, zap.NewNop())
	rr := httptest.NewRecorder()

	srv.handleDomainError(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody), errors.New("secret detail"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"code":"internal_error","detail":"internal error"}`, rr.Body.String())
}

func TestRecoverer(t *testing.T) {
	handler := Recoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"code":"internal_error","detail":"internal error"}`, rr.Body.String())
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set("Origin", "http://localhost:3000")
		rr := httptest.NewRecorder()

		CORS([]string{"http://localhost:3000"})(ok).ServeHTTP(rr, req)

		assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disabled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set("Origin", "http://evil.example")
		rr := httptest.NewRecorder()

		CORS([]string{""})(ok).ServeHTTP(rr, req)

		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
