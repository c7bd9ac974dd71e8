package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/config"
	dbElastic "github.com/kailas-cloud/searchgate/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/searchgate/internal/db/redis"
	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/searchgate/internal/logger"
	"github.com/kailas-cloud/searchgate/internal/metrics"
	"github.com/kailas-cloud/searchgate/internal/query"
	"github.com/kailas-cloud/searchgate/internal/repository/identity"
	searchrepo "github.com/kailas-cloud/searchgate/internal/repository/search"
	chiTransport "github.com/kailas-cloud/searchgate/internal/transport/chi"
	openaiGen "github.com/kailas-cloud/searchgate/internal/transport/openai"
	"github.com/kailas-cloud/searchgate/internal/transport/token"
	assistantuc "github.com/kailas-cloud/searchgate/internal/usecase/assistant"
	authuc "github.com/kailas-cloud/searchgate/internal/usecase/auth"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
	searchuc "github.com/kailas-cloud/searchgate/internal/usecase/search"
	"github.com/kailas-cloud/searchgate/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	searchMode := cfg.SearchMode()
	logger.Info("Starting searchgate API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("search_mode", string(searchMode)),
		zap.Bool("semantic_enabled", cfg.Elasticsearch.Semantic.Enabled),
		zap.String("identity_driver", cfg.Identity.Driver),
	)

	metrics.RegisterBackendMetrics()
	metrics.RegisterLLMMetrics()

	backend, err := dbElastic.NewStore(dbElastic.Config{
		URL:        cfg.Elasticsearch.URL,
		APIKey:     cfg.Elasticsearch.APIKey,
		MaxRetries: cfg.Elasticsearch.MaxRetries,
		Timeout:    time.Duration(cfg.Elasticsearch.TimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create search backend client", zap.Error(err))
	}

	ctx := context.Background()
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := backend.Ping(pingCtx); err != nil {
		logger.Warn("Search backend unreachable at startup, serving degraded", zap.Error(err))
	}
	cancelPing()

	directory, closeDirectory := buildDirectory(ctx, cfg, logger)
	defer closeDirectory()

	issuer, err := token.NewIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)
	if err != nil {
		logger.Fatal("Failed to create token issuer", zap.Error(err))
	}
	logger.Info("Token issuer ready", zap.Duration("ttl", issuer.TTL()))

	// A nil interface, not a typed nil pointer, keeps the fallback path reachable.
	var generator assistantuc.Generator
	var generatorChecker healthuc.GeneratorChecker
	if cfg.LLM.APIKey != "" {
		gen := openaiGen.NewGenerator(&openaiGen.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: float32(cfg.Temperature()),
			Logger:      logger,
		})
		generator, generatorChecker = gen, gen
		logger.Info("Text generation enabled", zap.String("model", cfg.LLM.Model))
	} else {
		logger.Warn("llm.api_key not set, assistant endpoints will serve fallback text")
	}

	compiler := query.NewCompiler(query.Defaults{
		SemanticEnabled:  cfg.Elasticsearch.Semantic.Enabled,
		SemanticModel:    cfg.Elasticsearch.Semantic.Model,
		HybridWeight:     cfg.HybridWeight(),
		FieldPrefix:      cfg.Elasticsearch.Semantic.FieldPrefix,
		RoleBoostInQuery: cfg.Search.RoleBoostInQuery,
	})
	searchRepo := searchrepo.New(backend, cfg.Elasticsearch.Index, cfg.Elasticsearch.SearchApplication)

	searchSvc := searchuc.New(searchRepo, compiler, searchMode)
	healthSvc := healthuc.New(backend, generatorChecker, healthuc.Target{
		Mode:        searchMode,
		Index:       cfg.Elasticsearch.Index,
		Application: cfg.Elasticsearch.SearchApplication,
	})
	authSvc := authuc.New(directory, issuer)
	assistantSvc := assistantuc.New(generator)

	server := chiTransport.NewServer(searchSvc, healthSvc, authSvc, assistantSvc, logger).
		WithLimits(request.Limits{DefaultSize: cfg.Search.DefaultPageSize, MaxSize: cfg.Search.MaxPageSize}).
		WithDirectoryExposed(cfg.Auth.ExposeDirectory)

	r := chi.NewRouter()
	r.Use(chiTransport.Recoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.RequestLogger(logger))
	r.Use(chiTransport.CORS(cfg.HTTP.CORSOrigins))
	r.Use(metrics.Middleware("/metrics"))
	r.Use(chiMiddleware.Timeout(time.Duration(cfg.HTTP.RequestTimeoutSec) * time.Second))
	r.Use(chiMiddleware.Compress(5))
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildDirectory selects the identity backend. The returned func releases it.
func buildDirectory(ctx context.Context, cfg config.Config, logger *zap.Logger) (authuc.Directory, func()) {
	switch cfg.Identity.Driver {
	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Identity.Addrs,
			Password: cfg.Identity.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create identity store", zap.Error(err))
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.Identity.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Identity store not ready", zap.Error(err))
		}

		dir := identity.NewRedis(store, cfg.Identity.KeyPrefix)
		if len(cfg.Auth.Users) > 0 {
			if err := dir.Seed(ctx, cfg.Auth.Users); err != nil {
				logger.Fatal("Failed to seed identity store", zap.Error(err))
			}
			logger.Info("Seeded identity store", zap.Int("users", len(cfg.Auth.Users)))
		}
		logger.Info("Connected to identity store", zap.Strings("addrs", cfg.Identity.Addrs))
		return dir, store.Close
	default:
		dir := identity.NewStatic(cfg.Auth.Users)
		logger.Info("Using static identity directory")
		return dir, func() {}
	}
}
