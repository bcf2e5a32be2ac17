package config

import "time"

// Default value constants.
const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultDBPort     = 5432
	DefaultDBName     = "alfaia"
	DefaultDBMaxConns = 25

	DefaultRedisDB        = 0
	DefaultRedisTTL       = 15 * time.Minute
	DefaultRedisKeyPrefix = "alfaia:"

	DefaultScoreTopic = "alfaia.scores"

	DefaultConfidenceThreshold = 0.4
	DefaultCacheCapacity       = 512
	DefaultAnalyzerTimeout     = 2 * time.Second
	DefaultPipelineTimeout     = 10 * time.Second
	DefaultMaxSubmissionBytes  = 64 * 1024
	DefaultMaxSuggestions      = 5

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultCategoryWeights are the scoring penalty weights per issue category.
// Grammar errors weigh heaviest for progress tracking; style is advisory.
func DefaultCategoryWeights() map[string]float64 {
	return map[string]float64{
		"spelling": 3,
		"grammar":  4,
		"style":    1,
	}
}

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller are left unchanged so that
// explicit configuration always wins.  It must be called after unmarshalling
// and before Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// Database (only when enabled)
	if cfg.Database.Host != "" {
		if cfg.Database.Port == 0 {
			cfg.Database.Port = DefaultDBPort
		}
		if cfg.Database.DBName == "" {
			cfg.Database.DBName = DefaultDBName
		}
		if cfg.Database.MaxConns == 0 {
			cfg.Database.MaxConns = DefaultDBMaxConns
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
	}

	// Redis
	if cfg.Redis.Addr != "" {
		if cfg.Redis.DefaultTTL == 0 {
			cfg.Redis.DefaultTTL = DefaultRedisTTL
		}
		if cfg.Redis.KeyPrefix == "" {
			cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
		}
	}

	// Kafka
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.ScoreTopic == "" {
		cfg.Kafka.ScoreTopic = DefaultScoreTopic
	}

	// Analysis
	if cfg.Analysis.ConfidenceThreshold == 0 {
		cfg.Analysis.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cfg.Analysis.CacheCapacity == 0 {
		cfg.Analysis.CacheCapacity = DefaultCacheCapacity
	}
	if cfg.Analysis.AnalyzerTimeout == 0 {
		cfg.Analysis.AnalyzerTimeout = DefaultAnalyzerTimeout
	}
	if cfg.Analysis.PipelineTimeout == 0 {
		cfg.Analysis.PipelineTimeout = DefaultPipelineTimeout
	}
	if cfg.Analysis.MaxSubmissionBytes == 0 {
		cfg.Analysis.MaxSubmissionBytes = DefaultMaxSubmissionBytes
	}
	if cfg.Analysis.MaxSuggestions == 0 {
		cfg.Analysis.MaxSuggestions = DefaultMaxSuggestions
	}
	if len(cfg.Analysis.CategoryWeights) == 0 {
		cfg.Analysis.CategoryWeights = DefaultCategoryWeights()
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}

// NewDefaultConfig returns a Config populated entirely with defaults.
// External backends (postgres, redis, kafka) are disabled; the analysis
// pipeline itself is fully usable.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
