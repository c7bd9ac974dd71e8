package chi

import (
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/search/filter"
	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
)

// searchQuery is the JSON body of POST /api/v1/search.
type searchQuery struct {
	Query           *string         `json:"query"`
	Filters         *filter.Filters `json:"filters"`
	Size            *int            `json:"size"`
	From            *int            `json:"from"`
	SemanticEnabled *bool           `json:"semantic_enabled"`
	HybridWeight    *float64        `json:"hybrid_weight"`
}

// searchQueryParams is the query-string form of GET /api/v1/search.
// Multi-valued filters repeat the parameter: ?source=jira&source=confluence.
type searchQueryParams struct {
	Q            *string
	Size         *int
	From         *int
	Semantic     *bool
	HybridWeight *float64
	Source       *[]string
	ContentType  *[]string
	Author       *[]string
	Tags         *[]string
	DateRange    *string
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body searchQuery
	if err := decodeJSON(r, &body); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if body.Query == nil {
		s.handleDomainError(w, r, domain.NewValidationError("query", "is required"))
		return
	}

	p := request.Params{
		Query:           *body.Query,
		Size:            body.Size,
		From:            deref(body.From),
		SemanticEnabled: body.SemanticEnabled,
		HybridWeight:    body.HybridWeight,
	}
	if body.Filters != nil {
		p.Filters = *body.Filters
	}
	s.runSearch(w, r, p)
}

// SearchQuery handles GET /api/v1/search.
func (s *Server) SearchQuery(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchQuery(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	s.runSearch(w, r, request.Params{
		Query: deref(params.Q),
		Filters: filter.Filters{
			Source:      deref(params.Source),
			ContentType: deref(params.ContentType),
			Author:      deref(params.Author),
			Tags:        deref(params.Tags),
			DateRange:   filter.DateRange(deref(params.DateRange)),
		},
		Size:            params.Size,
		From:            deref(params.From),
		SemanticEnabled: params.Semantic,
		HybridWeight:    params.HybridWeight,
	})
}

func bindSearchQuery(r *http.Request) (searchQueryParams, error) {
	var p searchQueryParams
	q := r.URL.Query()

	bindings := []struct {
		name string
		dest any
	}{
		{"q", &p.Q},
		{"size", &p.Size},
		{"from", &p.From},
		{"semantic", &p.Semantic},
		{"hybrid_weight", &p.HybridWeight},
		{"source", &p.Source},
		{"content_type", &p.ContentType},
		{"author", &p.Author},
		{"tags", &p.Tags},
		{"date_range", &p.DateRange},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return searchQueryParams{}, domain.NewValidationError(b.name, err.Error())
		}
	}
	return p, nil
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, p request.Params) {
	req, err := request.New(p, s.limits)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	u, _ := userFromContext(r.Context())
	resp, err := s.search.Search(r.Context(), &req, u)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if resp.Results == nil {
		resp.Results = []result.Result{}
	}
	writeJSON(w, http.StatusOK, resp)
}

type connectionUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

type connectionResponse struct {
	Status            string            `json:"status"`
	ConnectionDetails map[string]string `json:"connection_details"`
	User              connectionUser    `json:"user"`
}

// TestConnection handles GET /api/v1/search/test-connection.
func (s *Server) TestConnection(w http.ResponseWriter, r *http.Request) {
	report := s.health.CheckBackend(r.Context())
	if report.Status == healthuc.Unhealthy {
		writeError(w, http.StatusInternalServerError, CodeConnectionFailed, "Connection test failed: "+report.Error)
		return
	}

	u, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, connectionResponse{
		Status:            "success",
		ConnectionDetails: report.Details,
		User: connectionUser{
			ID:         u.ID,
			Name:       u.Name,
			Department: u.Department,
			Role:       u.Role.String(),
		},
	})
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
