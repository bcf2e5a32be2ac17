package http

import (
	"context"

	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kvalencee/alfaia/internal/config"
	"github.com/kvalencee/alfaia/internal/infrastructure/database/postgres"
	"github.com/kvalencee/alfaia/internal/infrastructure/monitoring/logging"
	"github.com/kvalencee/alfaia/internal/infrastructure/monitoring/prometheus"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

// Analyzer is the pipeline surface the API depends on.
type Analyzer interface {
	Analyze(ctx context.Context, text, learnerID string) (*analysis.AnalysisResult, error)
}

// ReadyChecker reports whether a backing dependency is reachable.
type ReadyChecker func(ctx context.Context) error

// Dependencies carries everything the router needs.  Scores, Ready and
// Gatherer are optional; nil disables the score listing endpoint, makes
// readiness unconditional, and hides /metrics respectively.
type Dependencies struct {
	Analyzer Analyzer
	Scores   postgres.ScoreRepository
	Ready    ReadyChecker
	Metrics  *prometheus.Metrics
	Gatherer promclient.Gatherer
	Logger   logging.Logger
}

// NewRouter assembles the gin engine with all routes and middleware.
func NewRouter(cfg config.ServerConfig, deps Dependencies) *gin.Engine {
	switch cfg.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	log := deps.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(requestMetrics(metrics))
	if cfg.MaxBodySize > 0 {
		r.Use(bodySizeLimit(cfg.MaxBodySize))
	}

	h := &handlers{analyzer: deps.Analyzer, scores: deps.Scores, logger: log}

	r.GET("/healthz", h.health)
	r.GET("/readyz", h.readiness(deps.Ready))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	{
		v1.POST("/analyze", h.analyze)
		v1.GET("/learners/:learner_id/scores", h.listScores)
	}

	return r
}
