package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig_IsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.4, cfg.Analysis.ConfidenceThreshold)
	assert.Equal(t, 512, cfg.Analysis.CacheCapacity)
	assert.Equal(t, 2*time.Second, cfg.Analysis.AnalyzerTimeout)
	assert.Equal(t, 10*time.Second, cfg.Analysis.PipelineTimeout)
	assert.Equal(t, float64(4), cfg.Analysis.CategoryWeights["grammar"])

	// External backends are disabled by default.
	assert.Empty(t, cfg.Database.Host)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestApplyDefaults_DoesNotOverrideExplicit(t *testing.T) {
	cfg := &Config{}
	cfg.Analysis.ConfidenceThreshold = 0.7
	cfg.Analysis.CacheCapacity = 16
	ApplyDefaults(cfg)

	assert.Equal(t, 0.7, cfg.Analysis.ConfidenceThreshold)
	assert.Equal(t, 16, cfg.Analysis.CacheCapacity)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad mode", func(c *Config) { c.Server.Mode = "production" }},
		{"threshold above one", func(c *Config) { c.Analysis.ConfidenceThreshold = 1.5 }},
		{"pipeline shorter than analyzer", func(c *Config) {
			c.Analysis.AnalyzerTimeout = 5 * time.Second
			c.Analysis.PipelineTimeout = time.Second
		}},
		{"unknown weight category", func(c *Config) {
			c.Analysis.CategoryWeights = map[string]float64{"punctuation": 1}
		}},
		{"negative weight", func(c *Config) {
			c.Analysis.CategoryWeights = map[string]float64{"grammar": -1}
		}},
		{"db without user", func(c *Config) {
			c.Database.Host = "localhost"
			c.Database.Port = 5432
			c.Database.MaxConns = 5
			c.Database.DBName = "alfaia"
		}},
		{"kafka without topic", func(c *Config) {
			c.Kafka.Brokers = []string{"localhost:9092"}
			c.Kafka.ScoreTopic = ""
		}},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9100
  mode: test
analysis:
  confidence_threshold: 0.25
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("ALFAIA_SERVER_PORT", "9200")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port, "env var must override file value")
	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Equal(t, 0.25, cfg.Analysis.ConfidenceThreshold)
	// Unset fields take defaults.
	assert.Equal(t, DefaultCacheCapacity, cfg.Analysis.CacheCapacity)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWatch_DeliversValidChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("analysis:\n  confidence_threshold: 0.4\n"), 0o644))

	ch := make(chan *Config, 1)
	Watch(path, func(c *Config) {
		select {
		case ch <- c:
		default:
		}
	})

	// Let the watcher register before rewriting the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path,
		[]byte("analysis:\n  confidence_threshold: 0.7\n"), 0o644))

	select {
	case got := <-ch:
		assert.Equal(t, 0.7, got.Analysis.ConfidenceThreshold)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}
