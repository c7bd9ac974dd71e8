package search

import (
	"context"

	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
	"github.com/kailas-cloud/searchgate/internal/query"
)

// Repository dispatches a compiled call and normalizes the answer.
type Repository interface {
	Search(ctx context.Context, call query.Call, req *request.Request) (result.Response, error)
}
