package search

import (
	"encoding/json"
	"strconv"

	"github.com/kailas-cloud/searchgate/internal/db"
	"github.com/kailas-cloud/searchgate/internal/domain/search/mode"
	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
)

// Normalize maps a raw backend response into the client-facing shape.
// Hit order is preserved; nothing is re-sorted or de-duplicated.
func Normalize(raw *db.SearchResponse, req *request.Request) result.Response {
	out := result.Response{
		Results:        []result.Result{},
		Query:          req.Query(),
		FiltersApplied: req.Filters(),
		SearchMode:     mode.Tag,
	}
	if raw == nil {
		return out
	}

	out.Total = raw.Hits.Total.Value
	out.Took = raw.Took
	out.Results = make([]result.Result, 0, len(raw.Hits.Hits))
	for i := range raw.Hits.Hits {
		out.Results = append(out.Results, normalizeHit(&raw.Hits.Hits[i]))
	}
	return out
}

func normalizeHit(h *db.Hit) result.Result {
	src := h.Source

	content, hasContent := field(src, "content")
	summary, hasSummary := field(src, "summary")

	r := result.Result{
		ID:          h.ID,
		Title:       fieldOr(src, "title", result.DefaultTitle),
		Source:      fieldOr(src, "source", result.DefaultSource),
		URL:         fieldOr(src, "url", result.DefaultURL),
		Author:      fieldOr(src, "author", result.DefaultAuthor),
		Date:        fieldOr(src, "timestamp", result.DefaultDate),
		ContentType: fieldOr(src, "content_type", result.DefaultContentType),
		Tags:        tags(src["tags"]),
		Highlights:  h.Highlight,
	}

	switch {
	case hasSummary:
		r.Summary = summary
	case hasContent:
		r.Summary = result.DeriveSummary(content)
	}

	switch {
	case hasContent:
		r.Content = content
	case hasSummary:
		r.Content = summary
	}

	if h.Score != nil {
		r.RelevanceScore = result.ScaleScore(*h.Score)
	}
	if r.Highlights == nil {
		r.Highlights = map[string][]string{}
	}
	return r
}

// field returns the string form of src[key]. Missing and null values are absent.
func field(src map[string]any, key string) (string, bool) {
	v, ok := src[key]
	if !ok || v == nil {
		return "", false
	}
	return stringify(v), true
}

func fieldOr(src map[string]any, key, def string) string {
	if s, ok := field(src, key); ok {
		return s
	}
	return def
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// tags accepts a list or a single string.
func tags(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			out = append(out, stringify(item))
		}
		return out
	case string:
		return []string{t}
	default:
		return []string{}
	}
}
