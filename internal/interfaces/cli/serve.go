package cli

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/kvalencee/alfaia/internal/analysis/pipeline"
	"github.com/kvalencee/alfaia/internal/config"
	"github.com/kvalencee/alfaia/internal/infrastructure/cache"
	"github.com/kvalencee/alfaia/internal/infrastructure/database/postgres"
	"github.com/kvalencee/alfaia/internal/infrastructure/messaging/kafka"
	"github.com/kvalencee/alfaia/internal/infrastructure/monitoring/logging"
	"github.com/kvalencee/alfaia/internal/infrastructure/monitoring/prometheus"
	httpapi "github.com/kvalencee/alfaia/internal/interfaces/http"
)

// newServeCmd creates the API server command.  Postgres, Redis, and
// Kafka are all optional; the analysis pipeline runs with whatever
// subset is configured.
func newServeCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Arranca el servidor HTTP de análisis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, false)
			if err != nil {
				return err
			}
			logging.SetDefault(log)
			return runServer(cmd.Context(), cfg, opts.ConfigPath, log)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, configPath string, log logging.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := promclient.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := prometheus.NewMetrics(reg)

	c, err := buildCache(cfg, metrics, log)
	if err != nil {
		return err
	}
	defer c.Close()

	pipelineOpts := []pipeline.Option{
		pipeline.WithCache(c),
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(log.Named("pipeline")),
	}
	deps := httpapi.Dependencies{
		Metrics:  metrics,
		Gatherer: reg,
		Logger:   log.Named("http"),
	}

	if cfg.Database.Host != "" {
		conn, err := postgres.NewConnection(ctx, cfg.Database, log.Named("postgres"))
		if err != nil {
			return err
		}
		defer conn.Close()
		if cfg.Database.MigrationPath != "" {
			if err := conn.RunMigrations(cfg.Database.MigrationPath); err != nil {
				return err
			}
		}
		repo := postgres.NewScoreRepository(conn, log.Named("scores"))
		pipelineOpts = append(pipelineOpts, pipeline.WithScoreRepository(repo))
		deps.Scores = repo
		deps.Ready = conn.HealthCheck
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka, log.Named("kafka"))
		defer producer.Close()
		pipelineOpts = append(pipelineOpts, pipeline.WithScorePublisher(producer))
	}

	pipe := pipeline.New(cfg.Analysis, pipelineOpts...)
	deps.Analyzer = pipe

	// Hot-reload the tunable analysis settings when serving from a
	// config file.
	if configPath != "" {
		config.Watch(configPath, func(next *config.Config) {
			pipe.ApplyConfig(next.Analysis)
		})
	}

	router := httpapi.NewRouter(cfg.Server, deps)
	server := httpapi.NewServer(cfg.Server, router, log.Named("server"))

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := server.Shutdown(context.Background()); err != nil {
		log.Error("graceful shutdown failed", logging.Err(err))
		return err
	}
	log.Info("server stopped")
	return nil
}

// buildCache picks the Redis backend when configured and falls back to
// the in-process LRU, wiring cache events into the metric instruments
// either way.
func buildCache(cfg *config.Config, metrics *prometheus.Metrics, log logging.Logger) (cache.Cache, error) {
	if cfg.Redis.Addr != "" {
		return cache.NewRedisCache(cfg.Redis, log.Named("cache"))
	}
	hooks := cache.Hooks{
		OnHit:   func(key string) { metrics.CacheHitsTotal.WithLabelValues(analyzerOf(key)).Inc() },
		OnMiss:  func(key string) { metrics.CacheMissesTotal.WithLabelValues(analyzerOf(key)).Inc() },
		OnEvict: func(key string) { metrics.CacheEvictions.WithLabelValues(analyzerOf(key)).Inc() },
	}
	return cache.NewMemoryCache(cfg.Analysis.CacheCapacity, cache.WithHooks(hooks))
}

// analyzerOf recovers the analyzer label from a cache key of the form
// "analyzer:digest".
func analyzerOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
