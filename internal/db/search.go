package db

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SearchResponse is the raw backend answer to a search request.
type SearchResponse struct {
	Took int        `json:"took"`
	Hits SearchHits `json:"hits"`
}

// SearchHits holds the hit list and total match count.
type SearchHits struct {
	Total Total `json:"total"`
	Hits  []Hit `json:"hits"`
}

// Hit is a single raw document match.
type Hit struct {
	ID        string              `json:"_id"`
	Score     *float64            `json:"_score"`
	Source    map[string]any      `json:"_source"`
	Highlight map[string][]string `json:"highlight"`
}

// Total is the total match count. The backend reports either
// {"value": n, "relation": "eq"} or a bare number.
type Total struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation,omitempty"`
}

// UnmarshalJSON accepts both the object and the bare number form.
func (t *Total) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '{' {
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("total: %w", err)
		}
		t.Value = n
		t.Relation = "eq"
		return nil
	}
	type plain Total
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("total: %w", err)
	}
	*t = Total(p)
	return nil
}

// StatusError is a non-success HTTP answer from the backend.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Body)
}
