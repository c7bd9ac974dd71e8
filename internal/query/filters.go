package query

import "github.com/kailas-cloud/searchgate/internal/domain/search/filter"

// Backend field names used by filter clauses.
const (
	fieldSource      = "source"
	fieldContentType = "content_type"
	fieldAuthor      = "author"
	fieldTags        = "tags"
	fieldTimestamp   = "timestamp"
)

// CompileFilters converts request filters into backend filter clauses.
// One terms clause per non-empty set in the order source, content_type,
// author, tags; then a range clause for a bounded date range.
// Unknown date ranges produce no clause.
func CompileFilters(f filter.Filters) []Clause {
	clauses := make([]Clause, 0, 5)
	for _, set := range []struct {
		field  string
		values []string
	}{
		{fieldSource, f.Source},
		{fieldContentType, f.ContentType},
		{fieldAuthor, f.Author},
		{fieldTags, f.Tags},
	} {
		if len(set.values) > 0 {
			clauses = append(clauses, Terms(set.field, set.values))
		}
	}
	if bound, ok := f.DateRange.LowerBound(); ok {
		clauses = append(clauses, RangeGTE(fieldTimestamp, bound))
	}
	return clauses
}
