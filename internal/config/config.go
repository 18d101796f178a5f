package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the analysis pipeline. Values come from
// the environment; CLI flags may override them afterwards.
type Config struct {
	IntervalSeconds    float64 `env:"CLIPSIGHT_INTERVAL_SECONDS"      envDefault:"1.0"`
	ConcurrencyLimit   int     `env:"CLIPSIGHT_CONCURRENCY"           envDefault:"4"`
	RequestsPerMinute  int     `env:"CLIPSIGHT_RPM_LIMIT"             envDefault:"60"`
	MaxRetries         int     `env:"CLIPSIGHT_MAX_RETRIES"           envDefault:"3"`
	PerCallTimeoutSecs float64 `env:"CLIPSIGHT_CALL_TIMEOUT_SECONDS"  envDefault:"60"`
	DeadlineSeconds    float64 `env:"CLIPSIGHT_DEADLINE_SECONDS"      envDefault:"600"`

	MaxUploadBytes int64 `env:"CLIPSIGHT_MAX_UPLOAD_BYTES" envDefault:"104857600"`

	OllamaBaseURL string `env:"CLIPSIGHT_OLLAMA_BASE_URL" envDefault:"http://localhost"`
	OllamaPort    int    `env:"CLIPSIGHT_OLLAMA_PORT"     envDefault:"11434"`
	Model         string `env:"CLIPSIGHT_MODEL"           envDefault:"llama3.2-vision:11b"`

	MetricsPort int    `env:"CLIPSIGHT_METRICS_PORT" envDefault:"0"`
	LogLevel    string `env:"CLIPSIGHT_LOG_LEVEL"    envDefault:"info"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("interval must be > 0, got %v", c.IntervalSeconds)
	}
	if c.ConcurrencyLimit < 1 {
		return fmt.Errorf("concurrency limit must be >= 1, got %d", c.ConcurrencyLimit)
	}
	if c.RequestsPerMinute < 1 {
		return fmt.Errorf("requests-per-minute limit must be >= 1, got %d", c.RequestsPerMinute)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must be >= 0, got %d", c.MaxRetries)
	}
	if c.PerCallTimeoutSecs <= 0 {
		return fmt.Errorf("per-call timeout must be > 0, got %v", c.PerCallTimeoutSecs)
	}
	if c.DeadlineSeconds <= 0 {
		return fmt.Errorf("overall deadline must be > 0, got %v", c.DeadlineSeconds)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be > 0, got %d", c.MaxUploadBytes)
	}
	return nil
}
