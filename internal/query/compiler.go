package query

import (
	"github.com/kailas-cloud/searchgate/internal/domain/role"
	"github.com/kailas-cloud/searchgate/internal/domain/search/filter"
	"github.com/kailas-cloud/searchgate/internal/domain/search/mode"
)

// DefaultFieldPrefix names the semantic mirror of a text field, e.g. semantic_title.
const DefaultFieldPrefix = "semantic_"

// Multipliers applied to the hybrid weight per semantic mirror field.
const (
	contentMultiplier = 1.0
	titleMultiplier   = 1.5
	summaryMultiplier = 1.2
)

// fieldDepartment is matched against the requester's department when the
// role boost is folded into the scored query.
const fieldDepartment = "department"

// Defaults are the process-wide compiler settings.
type Defaults struct {
	SemanticEnabled  bool
	SemanticModel    string
	HybridWeight     float64
	FieldPrefix      string
	RoleBoostInQuery bool
}

// Compiler builds backend queries from search input. Safe for concurrent use.
type Compiler struct {
	defaults Defaults
}

// NewCompiler creates a compiler. An empty field prefix becomes "semantic_".
func NewCompiler(d Defaults) *Compiler {
	if d.FieldPrefix == "" {
		d.FieldPrefix = DefaultFieldPrefix
	}
	d.HybridWeight = clamp01(d.HybridWeight)
	return &Compiler{defaults: d}
}

// Defaults returns the effective compiler settings.
func (c *Compiler) Defaults() Defaults { return c.defaults }

// Input is everything the compiler needs from one request.
type Input struct {
	Text            string
	Filters         filter.Filters
	SemanticEnabled *bool
	HybridWeight    *float64
	Boost           role.Boost
	Department      string
}

// Compiled is a backend query ready for a direct-index search.
type Compiled struct {
	Query     *Bool
	Highlight Highlight
	// Boost is the requester's role boost. It is folded into Query only
	// when RoleBoostInQuery is set.
	Boost    role.Boost
	Strategy mode.Strategy

	department string
	boosted    bool
}

// Body is the JSON body of a direct-index search request.
type Body struct {
	Query     Clause    `json:"query"`
	Highlight Highlight `json:"highlight"`
	Size      int       `json:"size"`
	From      int       `json:"from"`
}

// Body renders the search request body with pagination.
func (c *Compiled) Body(size, from int) Body {
	root := c.Query.Clause()
	if c.boosted {
		outer := &Bool{
			Must:   []Clause{root},
			Filter: []Clause{},
			Boost:  c.Boost.Priority,
		}
		if c.department != "" {
			outer.Should = []Clause{Term(fieldDepartment, c.department, c.Boost.DepartmentBoost)}
		}
		root = outer.Clause()
	}
	return Body{
		Query:     root,
		Highlight: c.Highlight,
		Size:      size,
		From:      from,
	}
}

// SemanticEnabled resolves the request override against the default.
func (c *Compiler) SemanticEnabled(override *bool) bool {
	if override != nil {
		return *override
	}
	return c.defaults.SemanticEnabled
}

// HybridWeight resolves the request override against the default, clamped to [0,1].
func (c *Compiler) HybridWeight(override *float64) float64 {
	if override != nil {
		return clamp01(*override)
	}
	return c.defaults.HybridWeight
}

// Compile builds a lexical or hybrid query for in.
func (c *Compiler) Compile(in Input) *Compiled {
	semantic := c.SemanticEnabled(in.SemanticEnabled)
	filters := CompileFilters(in.Filters)

	out := &Compiled{
		Boost:      in.Boost,
		department: in.Department,
		boosted:    c.defaults.RoleBoostInQuery,
	}

	if !semantic {
		out.Strategy = mode.Lexical
		out.Query = &Bool{
			Must:   []Clause{MultiMatch(in.Text, nil)},
			Filter: filters,
		}
		out.Highlight = newHighlight("title", "content", "summary")
		return out
	}

	w := c.HybridWeight(in.HybridWeight)
	lexical := 1 - w
	prefix := c.defaults.FieldPrefix

	out.Strategy = mode.Hybrid
	out.Query = &Bool{
		Should: []Clause{
			Semantic(prefix+"content", in.Text, w*contentMultiplier),
			Semantic(prefix+"title", in.Text, w*titleMultiplier),
			Semantic(prefix+"summary", in.Text, w*summaryMultiplier),
			MultiMatch(in.Text, &lexical),
		},
		MinimumShouldMatch: 1,
		Filter:             filters,
	}
	out.Highlight = newHighlight(
		"title", "content", "summary",
		prefix+"content", prefix+"title", prefix+"summary",
	)
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
