package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/adapters/file"
	httpadapter "github.com/aretw0/arbor/pkg/adapters/http"
	mcpadapter "github.com/aretw0/arbor/pkg/adapters/mcp"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/builder"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Service is a driver wired to everything the configuration asks for.
type Service struct {
	Config  config.Config
	Driver  *runner.Driver
	Result  *builder.Result
	Catalog *builder.Catalog
	Metrics *prometheus.Registry
	Streams *httpadapter.StreamManager
	Store   ports.SnapshotStore

	logger *slog.Logger
	closer func() error
}

// NewService builds the configured tree and activates a driver for it.
func NewService(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Service, error) {
	if cfg.Blueprint == "" {
		return nil, errors.New("no blueprint configured")
	}
	_, logger = withDefaults(nil, logger)
	caps, err := LoadCapabilities(cfg.Script, cfg.Commands, logger)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		Config:  cfg,
		Catalog: caps.Catalog(cfg.Catalog.Actions, cfg.Catalog.Senses),
		Metrics: prometheus.NewRegistry(),
		Streams: httpadapter.NewStreamManager(logger),
		logger:  logger,
	}

	doc, err := loadBlueprint(ctx, cfg.Blueprint)
	if err != nil {
		return nil, err
	}
	b := builder.New(svc.Catalog, builder.WithPolicy(cfg.PolicyValue()), builder.WithLogger(logger))
	if svc.Result, err = b.Build(doc); err != nil {
		return nil, err
	}
	if !svc.Result.Usable() {
		return nil, fmt.Errorf("%s: %w", cfg.Blueprint, domain.ErrNoTree)
	}

	if svc.Store, svc.closer, err = newStore(cfg); err != nil {
		return nil, err
	}

	svc.Metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(svc.Metrics)
	if err != nil {
		return nil, err
	}

	opts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithHooks(metrics.Hooks()),
		runner.WithHooks(observability.LoggingHooks(logger)),
		runner.WithSnapshotStore(svc.Store),
		runner.WithReporter(svc.Streams),
	}
	if cfg.AgentID != "" {
		opts = append(opts, runner.WithAgentID(cfg.AgentID))
	}
	svc.Driver = runner.New(opts...)
	if err := svc.Driver.Activate(ctx, svc.Result.Tree, caps); err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}

func newStore(cfg config.Config) (ports.SnapshotStore, func() error, error) {
	store, closer := baseStore(cfg)

	var mws []middleware.Middleware
	if cfg.Snapshots.ChangesOnly {
		mws = append(mws, middleware.ChangesOnly(middleware.WithMaxAge(cfg.SnapshotMaxAge())))
	}
	if cfg.Snapshots.KeyEnv != "" {
		key, err := hex.DecodeString(os.Getenv(cfg.Snapshots.KeyEnv))
		if err != nil {
			return nil, nil, fmt.Errorf("%s: invalid snapshot key: %w", cfg.Snapshots.KeyEnv, err)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", cfg.Snapshots.KeyEnv, err)
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(store, mws...), closer, nil
}

func baseStore(cfg config.Config) (ports.SnapshotStore, func() error) {
	switch {
	case cfg.Redis.Addr != "":
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(time.Duration(cfg.Redis.TTL)))
		}
		s := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		return s, s.Close
	case cfg.SnapshotDir != "":
		return file.New(cfg.SnapshotDir), nil
	default:
		return memory.NewStore(), nil
	}
}

// Handler returns the HTTP inspection handler of the service.
func (s *Service) Handler(version string) http.Handler {
	return httpadapter.NewHandler(s.Driver,
		httpadapter.WithStreams(s.Streams),
		httpadapter.WithMetrics(s.Metrics),
		httpadapter.WithLogger(s.logger),
		httpadapter.WithVersion(version))
}

// MCP returns an MCP server exposing the service driver.
func (s *Service) MCP(version string) *mcpadapter.Server {
	return mcpadapter.NewServer(s.Driver, version,
		mcpadapter.WithCatalog(s.Catalog),
		mcpadapter.WithLogger(s.logger))
}

// Close releases the snapshot store.
func (s *Service) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// Serve ticks the driver at the configured interval and serves HTTP until
// ctx is cancelled.
func Serve(ctx context.Context, svc *Service, version string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:              svc.Config.HTTP.Addr,
		Handler:           svc.Handler(version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		svc.logger.Info("serving", "addr", srv.Addr, "agent", svc.Driver.AgentID())
		serverErrors <- srv.ListenAndServe()
	}()

	runErrors := make(chan error, 1)
	go func() {
		runErrors <- svc.Driver.Run(ctx, time.Duration(svc.Config.Interval))
	}()

	var err error
	select {
	case err = <-serverErrors:
	case err = <-runErrors:
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		svc.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", serr)
		_ = srv.Close()
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}
