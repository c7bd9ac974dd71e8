package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/searchgate/internal/db"
	"github.com/kailas-cloud/searchgate/internal/metrics"
)

// Metric labels for the two dispatch paths.
const (
	labelDirect      = "direct"
	labelApplication = "application"
)

// Search runs body against index via POST /{index}/_search.
func (s *Store) Search(ctx context.Context, index string, body any) (*db.SearchResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("encode body: %w", err)}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(index),
		s.es.Search.WithBody(bytes.NewReader(payload)),
	)
	return finish(db.OpSearch, labelDirect, start, res, err)
}

// SearchApplication invokes a stored search application via
// POST /_application/search_application/{name}/_search.
func (s *Store) SearchApplication(ctx context.Context, name string, body any) (*db.SearchResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &db.Error{Op: db.OpAppSearch, Err: fmt.Errorf("encode body: %w", err)}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.es.SearchApplicationSearch(name,
		s.es.SearchApplicationSearch.WithContext(ctx),
		s.es.SearchApplicationSearch.WithBody(bytes.NewReader(payload)),
	)
	return finish(db.OpAppSearch, labelApplication, start, res, err)
}

func finish(op, label string, start time.Time, res *esapi.Response, err error) (*db.SearchResponse, error) {
	metrics.BackendRequestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(label, "error").Inc()
		return nil, &db.Error{Op: op, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		metrics.BackendRequestsTotal.WithLabelValues(label, "error").Inc()
		return nil, &db.Error{Op: op, Err: statusError(res)}
	}

	var out db.SearchResponse
	if err := decode(res, &out); err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(label, "error").Inc()
		return nil, &db.Error{Op: op, Err: err}
	}

	metrics.BackendRequestsTotal.WithLabelValues(label, "success").Inc()
	metrics.BackendHits.WithLabelValues(label).Observe(float64(len(out.Hits.Hits)))
	return &out, nil
}

func decode(res *esapi.Response, v any) error {
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
