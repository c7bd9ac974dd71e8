package health

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/searchgate/internal/domain/search/mode"
	"github.com/kailas-cloud/searchgate/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Connected indicates the search backend answered its cluster probe.
	Connected Status = "connected"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Liveness check names.
const (
	CheckBackendName   = "elasticsearch"
	CheckGeneratorName = "llm"
)

// Backend sub-check values.
const (
	Available = "available"
	NotFound  = "not_found"
)

// Detail keys of a backend report.
const (
	KeyCluster     = "cluster_health"
	KeyApplication = "search_application"
	KeyIndex       = "index"
)

// Report aggregates liveness check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// BackendReport describes search backend connectivity and configuration.
// Details always carries cluster_health; the application or index entry is
// present only when that resource is the configured search target.
type BackendReport struct {
	Status  Status
	Details map[string]string
	Error   string
}

// Target names the backend resources searches are sent to.
type Target struct {
	Mode        mode.Mode
	Index       string
	Application string
}

// Service coordinates health checks.
type Service struct {
	backend   BackendProber
	generator GeneratorChecker
	target    Target
}

// New creates a Service. generator can be nil.
func New(backend BackendProber, generator GeneratorChecker, target Target) *Service {
	return &Service{backend: backend, generator: generator, target: target}
}

// Check runs liveness checks against all components concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, 2)
	)
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			logger.FromContext(ctx).Warn("liveness check failed", zap.String("check", name), zap.Error(err))
			checks[name] = CheckError
			return
		}
		checks[name] = CheckOK
	}

	// Probes report through record and never fail the group.
	var g errgroup.Group
	g.Go(func() error {
		_, err := s.backend.ClusterHealth(ctx)
		record(CheckBackendName, err)
		return nil
	})
	if s.generator != nil {
		g.Go(func() error {
			record(CheckGeneratorName, s.generator.HealthCheck(ctx))
			return nil
		})
	}
	_ = g.Wait()

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

// CheckBackend probes the cluster and then the configured search target.
// A failing cluster probe ends the check with an error report; sub-check
// failures are recorded in Details and leave the status connected.
func (s *Service) CheckBackend(ctx context.Context) BackendReport {
	log := logger.FromContext(ctx)

	if _, err := s.backend.ClusterHealth(ctx); err != nil {
		log.Error("backend connection test failed", zap.Error(err))
		return BackendReport{
			Status:  Unhealthy,
			Details: map[string]string{KeyCluster: "error: " + err.Error()},
			Error:   err.Error(),
		}
	}

	details := map[string]string{KeyCluster: string(Connected)}

	switch {
	case s.target.Mode == mode.Application && s.target.Application != "":
		details[KeyApplication] = probe(ctx, KeyApplication, s.target.Application, s.backend.ApplicationExists)
	case s.target.Mode != mode.Application && s.target.Index != "":
		details[KeyIndex] = probe(ctx, KeyIndex, s.target.Index, s.backend.IndexExists)
	}

	return BackendReport{Status: Connected, Details: details}
}

func probe(ctx context.Context, kind, name string, exists func(context.Context, string) (bool, error)) string {
	ok, err := exists(ctx, name)
	switch {
	case err != nil:
		logger.FromContext(ctx).Error("backend probe failed",
			zap.String("kind", kind), zap.String("name", name), zap.Error(err))
		return "error: " + err.Error()
	case !ok:
		logger.FromContext(ctx).Warn("backend resource not found",
			zap.String("kind", kind), zap.String("name", name))
		return NotFound
	default:
		return Available
	}
}
