package request

import (
	"fmt"
	"unicode/utf8"

	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultSize    = 20
	MaxSize        = 100
)

// Limits bound the page size of a request.
type Limits struct {
	DefaultSize int
	MaxSize     int
}

// Params are the raw search parameters as received from a client.
type Params struct {
	Query           string
	Filters         filter.Filters
	Size            *int
	From            int
	SemanticEnabled *bool
	HybridWeight    *float64
}

// Request is a validated search query.
type Request struct {
	query           string
	filters         filter.Filters
	size            int
	from            int
	semanticEnabled *bool
	hybridWeight    *float64
}

// New validates and normalizes search parameters.
// Defaults: size=20 when absent, capped at 100. Zero limits use the defaults.
func New(p Params, lim Limits) (Request, error) {
	if lim.DefaultSize <= 0 {
		lim.DefaultSize = DefaultSize
	}
	if lim.MaxSize <= 0 {
		lim.MaxSize = MaxSize
	}

	if utf8.RuneCountInString(p.Query) > MaxQueryLength {
		return Request{}, domain.NewValidationError("query", fmt.Sprintf("too long (max %d chars)", MaxQueryLength))
	}

	size := lim.DefaultSize
	if p.Size != nil {
		size = *p.Size
	}
	if size < 0 {
		return Request{}, domain.NewValidationError("size", "must be >= 0")
	}
	if size > lim.MaxSize {
		size = lim.MaxSize
	}
	if p.From < 0 {
		return Request{}, domain.NewValidationError("from", "must be >= 0")
	}

	if p.HybridWeight != nil {
		w := *p.HybridWeight
		if w < 0 || w > 1 {
			return Request{}, domain.NewValidationError("hybrid_weight", "must be between 0 and 1")
		}
	}
	if err := p.Filters.Validate(); err != nil {
		return Request{}, domain.NewValidationError("filters", err.Error())
	}

	return Request{
		query:           p.Query,
		filters:         p.Filters,
		size:            size,
		from:            p.From,
		semanticEnabled: p.SemanticEnabled,
		hybridWeight:    p.HybridWeight,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Filters returns the filters exactly as the client sent them.
func (r *Request) Filters() filter.Filters { return r.filters }

// Size returns the page size.
func (r *Request) Size() int { return r.size }

// From returns the result offset.
func (r *Request) From() int { return r.from }

// SemanticEnabled returns the semantic override, nil when not set.
func (r *Request) SemanticEnabled() *bool { return r.semanticEnabled }

// HybridWeight returns the hybrid weight override, nil when not set.
func (r *Request) HybridWeight() *float64 { return r.hybridWeight }
