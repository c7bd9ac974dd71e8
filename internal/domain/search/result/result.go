package result

import (
	"math"

	"github.com/kailas-cloud/searchgate/internal/domain/search/filter"
)

// Field defaults for hits that lack them.
const (
	DefaultTitle       = "Untitled"
	DefaultSource      = "unknown"
	DefaultURL         = "#"
	DefaultAuthor      = "Unknown"
	DefaultDate        = "Unknown"
	DefaultContentType = "document"

	// SummaryRunes is the length of a summary derived from content.
	SummaryRunes  = 200
	summarySuffix = "..."
)

// Result is a single normalized search hit.
type Result struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Summary        string              `json:"summary"`
	Source         string              `json:"source"`
	URL            string              `json:"url"`
	Author         string              `json:"author"`
	Date           string              `json:"date"`
	ContentType    string              `json:"content_type"`
	Tags           []string            `json:"tags"`
	RelevanceScore int                 `json:"relevance_score"`
	Highlights     map[string][]string `json:"highlights"`
	Content        string              `json:"content"`
}

// Response is the client-facing result of one search call.
type Response struct {
	Results        []Result       `json:"results"`
	Total          int64          `json:"total"`
	Query          string         `json:"query"`
	Took           int            `json:"took"`
	FiltersApplied filter.Filters `json:"filters_applied"`
	SearchMode     string         `json:"search_mode"`
}

// ScaleScore maps a backend relevance score to the integer shown to clients.
// Halves round to even.
func ScaleScore(score float64) int {
	return int(math.RoundToEven(score * 10))
}

// DeriveSummary returns the first SummaryRunes characters of content
// followed by "...", or "" for empty content.
func DeriveSummary(content string) string {
	if content == "" {
		return ""
	}
	runes := []rune(content)
	if len(runes) > SummaryRunes {
		runes = runes[:SummaryRunes]
	}
	return string(runes) + summarySuffix
}
