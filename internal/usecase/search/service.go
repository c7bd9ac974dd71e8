package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/search/mode"
	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
	"github.com/kailas-cloud/searchgate/internal/domain/user"
	"github.com/kailas-cloud/searchgate/internal/logger"
	"github.com/kailas-cloud/searchgate/internal/query"
)

// opSearch names the operation in OperationError.
const opSearch = "search"

// Service runs searches against the backend on behalf of a user.
type Service struct {
	repo     Repository
	compiler *query.Compiler
	mode     mode.Mode
}

// New creates a search service. m is fixed for the life of the process.
func New(repo Repository, compiler *query.Compiler, m mode.Mode) *Service {
	if !m.IsValid() {
		m = mode.DirectIndex
	}
	return &Service{repo: repo, compiler: compiler, mode: m}
}

// Mode returns the dispatch mode in use.
func (s *Service) Mode() mode.Mode { return s.mode }

// Search resolves the user's role boost, compiles the request for the
// configured dispatch mode, runs it and normalizes the hits.
// Any failure is returned as *domain.OperationError; results are never partial.
func (s *Service) Search(ctx context.Context, req *request.Request, u user.User) (result.Response, error) {
	if req == nil {
		return result.Response{}, domain.NewOperationError(opSearch,
			domain.NewValidationError("request", "is required"))
	}

	in := query.InputFor(req.Query(), req.Filters(), req.SemanticEnabled(), req.HybridWeight(), u)

	var call query.Call
	switch s.mode {
	case mode.Application:
		call = query.Application(s.compiler.ApplicationParams(in, u, req.Size(), req.From()))
	case mode.DirectIndex:
		call = query.Direct(s.compiler.Compile(in), req.Size(), req.From())
	}

	start := time.Now()
	resp, err := s.repo.Search(ctx, call, req)
	if err != nil {
		logger.FromContext(ctx).Warn("search failed",
			zap.String("mode", string(s.mode)),
			zap.String("role", u.Role.String()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return result.Response{}, domain.NewOperationError(opSearch, err)
	}

	logger.FromContext(ctx).Debug("search completed",
		zap.String("mode", string(s.mode)),
		zap.Bool("filtered", !req.Filters().IsEmpty()),
		zap.Int("hits", len(resp.Results)),
		zap.Int64("total", resp.Total),
		zap.Int("took_ms", resp.Took),
	)
	return resp, nil
}
