// Package query compiles search requests into Elasticsearch query DSL.
package query

// Clause is a single query DSL node, e.g. {"terms": {"source": [...]}}.
type Clause map[string]any

// LexicalFields are the weighted fields of the lexical multi_match clause.
var LexicalFields = []string{
	"title^3",
	"content^2",
	"summary^2",
	"tags^1.5",
	"name",
	"description",
}

// Terms matches documents whose field intersects values.
func Terms(field string, values []string) Clause {
	return Clause{"terms": map[string]any{field: values}}
}

// RangeGTE bounds field from below with a date-math expression.
func RangeGTE(field, gte string) Clause {
	return Clause{"range": map[string]any{field: map[string]any{"gte": gte}}}
}

// Term matches an exact field value with a boost.
func Term(field, value string, boost float64) Clause {
	return Clause{"term": map[string]any{field: map[string]any{"value": value, "boost": boost}}}
}

// MultiMatch is the fuzzy best_fields lexical clause. A nil boost omits the key.
func MultiMatch(text string, boost *float64) Clause {
	body := map[string]any{
		"query":     text,
		"fields":    LexicalFields,
		"type":      "best_fields",
		"fuzziness": "AUTO",
	}
	if boost != nil {
		body["boost"] = *boost
	}
	return Clause{"multi_match": body}
}

// Semantic is a semantic-similarity clause against a mirror field.
func Semantic(field, text string, boost float64) Clause {
	return Clause{"semantic": map[string]any{
		"field": field,
		"query": text,
		"boost": boost,
	}}
}

// Bool is the boolean combinator at the root of every compiled query.
type Bool struct {
	Must               []Clause `json:"must,omitempty"`
	Should             []Clause `json:"should,omitempty"`
	Filter             []Clause `json:"filter"`
	MinimumShouldMatch int      `json:"minimum_should_match,omitempty"`
	Boost              float64  `json:"boost,omitempty"`
}

// Clause wraps b as a {"bool": ...} node.
func (b *Bool) Clause() Clause {
	return Clause{"bool": b}
}

// Highlight is the highlighting request sent with a direct-index query.
type Highlight struct {
	Fields   map[string]struct{} `json:"fields"`
	PreTags  []string            `json:"pre_tags"`
	PostTags []string            `json:"post_tags"`
}

// Highlight delimiters.
const (
	PreTag  = "<mark>"
	PostTag = "</mark>"
)

func newHighlight(fields ...string) Highlight {
	h := Highlight{
		Fields:   make(map[string]struct{}, len(fields)),
		PreTags:  []string{PreTag},
		PostTags: []string{PostTag},
	}
	for _, f := range fields {
		h.Fields[f] = struct{}{}
	}
	return h
}
