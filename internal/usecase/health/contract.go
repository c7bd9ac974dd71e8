package health

import "context"

// BackendProber probes the search backend.
type BackendProber interface {
	ClusterHealth(ctx context.Context) (string, error)
	IndexExists(ctx context.Context, name string) (bool, error)
	ApplicationExists(ctx context.Context, name string) (bool, error)
}

// GeneratorChecker checks text-generation provider availability.
type GeneratorChecker interface {
	HealthCheck(ctx context.Context) error
}
