package filter

import (
	"encoding/json"
	"fmt"
)

// MaxValuesPerField is the maximum number of values in a single filter set.
const MaxValuesPerField = 64

// DateRange is a relative publication window.
type DateRange string

// Date range constants.
const (
	DateAll       DateRange = "all"
	DateLastWeek  DateRange = "last_week"
	DateLastMonth DateRange = "last_month"
	DateLastYear  DateRange = "last_year"
)

// IsValid reports whether d is a known range. The empty value means "all".
func (d DateRange) IsValid() bool {
	switch d {
	case "", DateAll, DateLastWeek, DateLastMonth, DateLastYear:
		return true
	default:
		return false
	}
}

// IsAll reports whether d places no constraint on the date.
func (d DateRange) IsAll() bool { return d == "" || d == DateAll }

// LowerBound returns the backend date-math lower bound for d.
// ok is false for "all" and for unknown values.
func (d DateRange) LowerBound() (bound string, ok bool) {
	switch d {
	case DateLastWeek:
		return "now-7d", true
	case DateLastMonth:
		return "now-30d", true
	case DateLastYear:
		return "now-365d", true
	default:
		return "", false
	}
}

// Filters are the optional constraints of a search request.
// An empty set means no constraint on that field.
type Filters struct {
	Source      []string  `json:"source"`
	ContentType []string  `json:"content_type"`
	Author      []string  `json:"author"`
	Tags        []string  `json:"tags"`
	DateRange   DateRange `json:"date_range"`
}

// Validate checks value counts and the date range enum.
func (f Filters) Validate() error {
	sets := []struct {
		name   string
		values []string
	}{
		{"source", f.Source},
		{"content_type", f.ContentType},
		{"author", f.Author},
		{"tags", f.Tags},
	}
	for _, s := range sets {
		if len(s.values) > MaxValuesPerField {
			return fmt.Errorf("%s: too many values (max %d)", s.name, MaxValuesPerField)
		}
	}
	if !f.DateRange.IsValid() {
		return fmt.Errorf("date_range: unknown value %q", f.DateRange)
	}
	return nil
}

// IsEmpty reports whether no filter constrains the search.
func (f Filters) IsEmpty() bool {
	return len(f.Source) == 0 && len(f.ContentType) == 0 &&
		len(f.Author) == 0 && len(f.Tags) == 0 && f.DateRange.IsAll()
}

// MarshalJSON renders absent sets as empty lists and an absent range as "all".
func (f Filters) MarshalJSON() ([]byte, error) {
	type wire Filters
	w := wire(f)
	w.Source = orEmpty(w.Source)
	w.ContentType = orEmpty(w.ContentType)
	w.Author = orEmpty(w.Author)
	w.Tags = orEmpty(w.Tags)
	if w.DateRange == "" {
		w.DateRange = DateAll
	}
	return json.Marshal(w)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
