package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/searchgate/internal/db"
	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn    func(ctx context.Context, index string, body any) (*db.SearchResponse, error)
	searchAppFn func(ctx context.Context, name string, body any) (*db.SearchResponse, error)
}

func (m *mockStore) Search(ctx context.Context, index string, body any) (*db.SearchResponse, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, index, body)
	}
	return &db.SearchResponse{}, nil
}

func (m *mockStore) SearchApplication(ctx context.Context, name string, body any) (*db.SearchResponse, error) {
	if m.searchAppFn != nil {
		return m.searchAppFn(ctx, name, body)
	}
	return &db.SearchResponse{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "enterprise-docs", "enterprise-app")
	return repo, ms
}

func mustRequest(t *testing.T, p request.Params) *request.Request {
	t.Helper()
	req, err := request.New(p, request.Limits{})
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func score(v float64) *float64 { return &v }
