package query

import (
	"github.com/kailas-cloud/searchgate/internal/domain/role"
	"github.com/kailas-cloud/searchgate/internal/domain/search/filter"
	"github.com/kailas-cloud/searchgate/internal/domain/search/mode"
	"github.com/kailas-cloud/searchgate/internal/domain/user"
)

// UserContext identifies the requester to a search application template.
type UserContext struct {
	UserID     string `json:"user_id"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

// Params is the flattened parameter set of a search application call.
type Params struct {
	Query               string      `json:"query"`
	Size                int         `json:"size"`
	From                int         `json:"from"`
	UserContext         UserContext `json:"user_context"`
	SemanticEnabled     bool        `json:"semantic_enabled"`
	SemanticModel       string      `json:"semantic_model,omitempty"`
	SemanticFieldPrefix string      `json:"semantic_field_prefix"`
	HybridWeight        float64     `json:"hybrid_weight"`
	SourceFilter        []string    `json:"source_filter,omitempty"`
	ContentTypeFilter   []string    `json:"content_type_filter,omitempty"`
	AuthorFilter        []string    `json:"author_filter,omitempty"`
	TagsFilter          []string    `json:"tags_filter,omitempty"`
	DateRange           string      `json:"date_range,omitempty"`
	BoostConfig         role.Boost  `json:"boost_config"`
}

// ApplicationBody is the JSON body of a search application request.
type ApplicationBody struct {
	Params *Params `json:"params"`
}

// ApplicationParams builds the parameter set for a stored search application.
// The role boost always travels as boost_config.
func (c *Compiler) ApplicationParams(in Input, u user.User, size, from int) *Params {
	p := &Params{
		Query: in.Text,
		Size:  size,
		From:  from,
		UserContext: UserContext{
			UserID:     u.ID,
			Department: u.Department,
			Position:   u.Position,
			Email:      u.Email,
			Role:       u.Role.String(),
		},
		SemanticEnabled:     c.SemanticEnabled(in.SemanticEnabled),
		SemanticModel:       c.defaults.SemanticModel,
		SemanticFieldPrefix: c.defaults.FieldPrefix,
		HybridWeight:        c.HybridWeight(in.HybridWeight),
		SourceFilter:        nonEmpty(in.Filters.Source),
		ContentTypeFilter:   nonEmpty(in.Filters.ContentType),
		AuthorFilter:        nonEmpty(in.Filters.Author),
		TagsFilter:          nonEmpty(in.Filters.Tags),
		BoostConfig:         in.Boost,
	}
	if _, ok := in.Filters.DateRange.LowerBound(); ok {
		p.DateRange = string(in.Filters.DateRange)
	}
	return p
}

func nonEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

// Call is one dispatch to the search backend. Exactly one of Compiled and
// Params is set, matching Mode.
type Call struct {
	Mode     mode.Mode
	Compiled *Compiled
	Params   *Params
	Size     int
	From     int
}

// Direct builds a direct-index call.
func Direct(c *Compiled, size, from int) Call {
	return Call{Mode: mode.DirectIndex, Compiled: c, Size: size, From: from}
}

// Application builds a search application call.
func Application(p *Params) Call {
	return Call{Mode: mode.Application, Params: p, Size: p.Size, From: p.From}
}

// InputFor assembles compiler input for a user's request.
func InputFor(text string, f filter.Filters, semantic *bool, weight *float64, u user.User) Input {
	return Input{
		Text:            text,
		Filters:         f,
		SemanticEnabled: semantic,
		HybridWeight:    weight,
		Boost:           u.Boost(),
		Department:      u.Department,
	}
}
