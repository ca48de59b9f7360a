// Package taxservice runs the TaxWise export HTTP service.
package taxservice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/taxwise/taxwise-server/internal/api"
	"github.com/taxwise/taxwise-server/internal/audit"
	"github.com/taxwise/taxwise-server/internal/config"
	"github.com/taxwise/taxwise-server/internal/deductions"
	"github.com/taxwise/taxwise-server/internal/export"
	"github.com/taxwise/taxwise-server/internal/factory"
	"github.com/taxwise/taxwise-server/internal/health"
	"github.com/taxwise/taxwise-server/internal/logger"
	"github.com/taxwise/taxwise-server/internal/objectstore"
)

type dependencies struct {
	auditStore factory.AuditStore
	recorder   *audit.Recorder
	objects    objectstore.Fetcher
	generator  deductions.Generator // nil when suggestions are disabled
}

// Run starts the export service HTTP server and blocks until shutdown or error.
// buildTarget, when non-empty, overrides TAXWISE_BUILD_TARGET.
func Run(buildTarget string) error {
	log := logger.New("taxwise-service")

	cfg, err := config.Load(buildTarget)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Warn().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level; keeping default")
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("audit_driver", cfg.AuditDriver).
		Str("object_store_driver", cfg.ObjectStoreDriver).
		Int("http_port", cfg.HTTPPort).
		Int("fetch_concurrency", cfg.FetchConcurrency).
		Msg("TaxWise service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	deps, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = deps.auditStore.Close() }()

	svcHealth := startHealthCheckers(ctx, cfg, log, deps)
	router := buildRouter(cfg, log, deps, svcHealth)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), writeTimeout(cfg))
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		if err := deps.recorder.Drain(ctxShutdown); err != nil {
			log.Warn().Err(err).Msg("audit records still pending at exit")
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs required components and fails fast on missing ones.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*dependencies, error) {
	st, err := factory.NewAuditStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Audit store unavailable")
		return nil, err
	}

	objects, err := factory.NewObjectStore(cfg, log)
	if err != nil {
		_ = st.Close()
		log.Error().Stack().Err(err).Msg("Object store unavailable")
		return nil, err
	}

	gen, err := factory.NewGenerator(ctx, cfg, log)
	if err != nil {
		_ = st.Close()
		log.Error().Stack().Err(err).Msg("Suggestion model unavailable")
		return nil, err
	}
	recorder := audit.NewRecorder(st, cfg.AuditTimeout(), log.With().Str("component", "audit").Logger())
	return &dependencies{auditStore: st, recorder: recorder, objects: objects, generator: gen}, nil
}

// buildRouter wires services into the HTTP routes.
func buildRouter(cfg *config.Config, log zerolog.Logger, deps *dependencies, svcHealth *health.ServiceHealthChecker) *mux.Router {
	assembler := export.NewAssembler(deps.objects, deps.recorder, log.With().Str("component", "export").Logger(), export.Options{
		Prefix:       cfg.ExportPrefix,
		Concurrency:  cfg.FetchConcurrency,
		FetchTimeout: cfg.FetchTimeout(),
	})

	d := api.Deps{
		Assembler:       assembler,
		AuditLog:        deps.auditStore,
		Healthy:         svcHealth.IsHealthy,
		MaxRequestBytes: cfg.MaxRequestBytes,
	}
	if deps.generator != nil {
		d.Suggester = deductions.NewService(deps.generator, deps.recorder, log.With().Str("component", "deductions").Logger())
	}
	return api.NewRouter(d)
}

// startHealthCheckers starts dependency checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, deps *dependencies) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	checkers := []health.HealthChecker{
		health.NewPingChecker("audit-store", deps.auditStore, log, probeTimeout),
	}
	// Signed-URL hosts are per request; only a local object root can be probed.
	if p, ok := deps.objects.(health.HealthPinger); ok {
		checkers = append(checkers, health.NewPingChecker("object-store", p, log, probeTimeout))
	}
	for _, c := range checkers {
		go c.Start(ctx, interval)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout(cfg),
		IdleTimeout:       120 * time.Second,
		// Requests keep ctx values but not its cancellation; Shutdown drains them.
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
}

// writeTimeout leaves room for one full round of fetches plus archive encoding.
func writeTimeout(cfg *config.Config) time.Duration {
	return 2*cfg.FetchTimeout() + 30*time.Second
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
