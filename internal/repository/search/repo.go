package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/searchgate/internal/db"
	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/search/mode"
	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
	"github.com/kailas-cloud/searchgate/internal/query"
)

// store is the consumer interface for backend search operations (ISP).
type store interface {
	Search(ctx context.Context, index string, body any) (*db.SearchResponse, error)
	SearchApplication(ctx context.Context, name string, body any) (*db.SearchResponse, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store       store
	index       string
	application string
}

// New creates a search repository bound to an index and an application name.
func New(s store, index, application string) *Repo {
	return &Repo{store: s, index: index, application: application}
}

// Search dispatches call and normalizes the backend answer for req.
func (r *Repo) Search(ctx context.Context, call query.Call, req *request.Request) (result.Response, error) {
	raw, err := r.Dispatch(ctx, call)
	if err != nil {
		return result.Response{}, err
	}
	return Normalize(raw, req), nil
}

// Dispatch sends call to the backend path matching its mode. It never retries.
// Failures come back as *domain.BackendError.
func (r *Repo) Dispatch(ctx context.Context, call query.Call) (*db.SearchResponse, error) {
	var (
		raw *db.SearchResponse
		err error
	)
	switch call.Mode {
	case mode.DirectIndex:
		if call.Compiled == nil {
			return nil, fmt.Errorf("direct dispatch without compiled query: %w", domain.ErrValidation)
		}
		raw, err = r.store.Search(ctx, r.index, call.Compiled.Body(call.Size, call.From))
	case mode.Application:
		if call.Params == nil {
			return nil, fmt.Errorf("application dispatch without params: %w", domain.ErrValidation)
		}
		raw, err = r.store.SearchApplication(ctx, r.application, query.ApplicationBody{Params: call.Params})
	default:
		return nil, fmt.Errorf("unknown dispatch mode %q: %w", call.Mode, domain.ErrValidation)
	}
	if err != nil {
		return nil, backendError(err)
	}
	return raw, nil
}

// backendError maps a store failure to *domain.BackendError.
func backendError(err error) error {
	var se *db.StatusError
	if errors.As(err, &se) {
		return &domain.BackendError{Status: se.Status, Body: se.Body, Err: err}
	}
	return &domain.BackendError{Err: err}
}
