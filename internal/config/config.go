// Package config defines all configuration structures for the AlfaIA analysis
// core.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the score store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the shared analysis cache.
// The Redis backend is optional; when Addr is empty the pipeline uses the
// in-process LRU cache only.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer parameters for score-record publication.
// Publication is best-effort; when Brokers is empty it is disabled.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	ScoreTopic      string        `mapstructure:"score_topic"`
	ProducerRetries int           `mapstructure:"producer_retries"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	RequiredAcks    int           `mapstructure:"required_acks"`
}

// AnalysisConfig holds the tunables of the analysis pipeline itself, the
// configuration surface consumed by the core.
type AnalysisConfig struct {
	// ConfidenceThreshold drops candidate issues below this confidence before
	// reconciliation clustering.  In [0,1].
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`

	// CacheCapacity bounds the per-analyzer LRU sentence cache.
	CacheCapacity int `mapstructure:"cache_capacity"`

	// AnalyzerTimeout bounds each individual analyzer invocation.
	AnalyzerTimeout time.Duration `mapstructure:"analyzer_timeout"`

	// PipelineTimeout bounds the whole analyze call; on expiry the best
	// partial result assembled so far is returned.
	PipelineTimeout time.Duration `mapstructure:"pipeline_timeout"`

	// MaxSubmissionBytes rejects oversized submissions before analysis.
	MaxSubmissionBytes int `mapstructure:"max_submission_bytes"`

	// CategoryWeights maps issue category → scoring penalty weight.
	CategoryWeights map[string]float64 `mapstructure:"category_weights"`

	// MaxSuggestions caps the suggestions surfaced per issue.
	MaxSuggestions int `mapstructure:"max_suggestions"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "console"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// Config is the root configuration structure for the analysis core.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Log      LogConfig      `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database (optional: empty host disables the score store)
	if c.Database.Host != "" {
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required when database.host is set")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required when database.host is set")
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
		}
	}

	// Redis (optional)
	if c.Redis.Addr != "" && c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Kafka (optional)
	if len(c.Kafka.Brokers) > 0 && c.Kafka.ScoreTopic == "" {
		return fmt.Errorf("config: kafka.score_topic is required when kafka.brokers is set")
	}

	// Analysis
	if c.Analysis.ConfidenceThreshold < 0 || c.Analysis.ConfidenceThreshold > 1 {
		return fmt.Errorf("config: analysis.confidence_threshold %.3f is out of range [0,1]", c.Analysis.ConfidenceThreshold)
	}
	if c.Analysis.CacheCapacity < 1 {
		return fmt.Errorf("config: analysis.cache_capacity must be >= 1, got %d", c.Analysis.CacheCapacity)
	}
	if c.Analysis.AnalyzerTimeout <= 0 {
		return fmt.Errorf("config: analysis.analyzer_timeout must be positive, got %s", c.Analysis.AnalyzerTimeout)
	}
	if c.Analysis.PipelineTimeout < c.Analysis.AnalyzerTimeout {
		return fmt.Errorf("config: analysis.pipeline_timeout %s must not be shorter than analyzer_timeout %s",
			c.Analysis.PipelineTimeout, c.Analysis.AnalyzerTimeout)
	}
	for cat, w := range c.Analysis.CategoryWeights {
		switch cat {
		case "spelling", "grammar", "style":
		default:
			return fmt.Errorf("config: analysis.category_weights contains unknown category %q", cat)
		}
		if w < 0 {
			return fmt.Errorf("config: analysis.category_weights[%s] must be >= 0, got %.3f", cat, w)
		}
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
