package elastic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/searchgate/internal/db"
)

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 4096

// Config holds connection parameters for an Elasticsearch store.
type Config struct {
	URL        string
	APIKey     string
	MaxRetries int
	// Timeout bounds a single backend request. Zero means no limit
	// beyond the caller's context.
	Timeout time.Duration
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Store talks to Elasticsearch over its REST API.
// One Store per process; the underlying client pools connections.
type Store struct {
	es      *elasticsearch.Client
	timeout time.Duration
}

// NewStore creates an Elasticsearch store.
// Transport retries are disabled unless MaxRetries > 0.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{strings.TrimRight(cfg.URL, "/")},
		APIKey:       cfg.APIKey,
		DisableRetry: cfg.MaxRetries <= 0,
		MaxRetries:   cfg.MaxRetries,
		Transport:    cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{es: es, timeout: cfg.Timeout}, nil
}

// Ping checks connectivity via the cluster health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.ClusterHealth(ctx)
	return err
}

// ClusterHealth returns the cluster status color ("green", "yellow", "red").
func (s *Store) ClusterHealth(ctx context.Context) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.es.Cluster.Health(s.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return "", &db.Error{Op: db.OpClusterHealth, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		return "", &db.Error{Op: db.OpClusterHealth, Err: statusError(res)}
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := decode(res, &body); err != nil {
		return "", &db.Error{Op: db.OpClusterHealth, Err: err}
	}
	return body.Status, nil
}

// IndexExists reports whether the named index exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.es.Indices.Exists([]string{name}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, &db.Error{Op: db.OpIndexExists, Err: err}
	}
	defer drain(res)

	return existence(db.OpIndexExists, res)
}

// ApplicationExists reports whether the named search application exists.
func (s *Store) ApplicationExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.es.SearchApplicationGet(name, s.es.SearchApplicationGet.WithContext(ctx))
	if err != nil {
		return false, &db.Error{Op: db.OpApplicationGet, Err: err}
	}
	defer drain(res)

	return existence(db.OpApplicationGet, res)
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func existence(op string, res *esapi.Response) (bool, error) {
	switch {
	case res.StatusCode == http.StatusNotFound:
		return false, nil
	case res.IsError():
		return false, &db.Error{Op: op, Err: statusError(res)}
	default:
		return true, nil
	}
}

func statusError(res *esapi.Response) *db.StatusError {
	var body []byte
	if res.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	}
	return &db.StatusError{Status: res.StatusCode, Body: strings.TrimSpace(string(body))}
}

func drain(res *esapi.Response) {
	if res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}

// IsStatus reports whether err carries a backend status error with the given code.
func IsStatus(err error, code int) bool {
	var se *db.StatusError
	return errors.As(err, &se) && se.Status == code
}
