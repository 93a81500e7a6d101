package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"SignalFusion/internal/services/engine"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		AllowOrigins    []string      `yaml:"allow_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logger struct {
		Level      string `yaml:"level" default:"info"`
		Format     string `yaml:"format" default:"json"`
		Output     string `yaml:"output" default:"stdout"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"logger"`
	Engine   engine.Config `yaml:"engine"`
	Analysis struct {
		DefaultBars    int           `yaml:"default_bars" default:"500"`
		Timeout        time.Duration `yaml:"timeout" default:"15s"`
		MaxConcurrency int           `yaml:"max_concurrency" default:"8"`
		StoreTimeline  bool          `yaml:"store_timeline"`
		PublishBundles bool          `yaml:"publish_bundles"`
	} `yaml:"analysis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequestTopic string   `yaml:"request_topic" default:"analysis.requests"`
		BundleTopic  string   `yaml:"bundle_topic" default:"analysis.bundles"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"20ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"signal-fusion"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"analysis.requests.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"market"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
		BarsTable        string        `yaml:"bars_table" default:"bars"`
		SignalsTable     string        `yaml:"signals_table" default:"signal_timeline"`
	} `yaml:"clickhouse"`
	Prediction struct {
		Enabled        bool          `yaml:"enabled"`
		URL            string        `yaml:"url"`
		Timeout        time.Duration `yaml:"timeout" default:"3s"`
		MaxFailures    uint32        `yaml:"max_failures" default:"5"`
		BreakerTimeout time.Duration `yaml:"breaker_timeout" default:"30s"`
	} `yaml:"prediction"`
	Cache struct {
		Type       string        `yaml:"type" default:"memory"`
		TTL        time.Duration `yaml:"ttl" default:"60s"`
		MaxEntries int           `yaml:"max_entries" default:"1024"`
		Redis      struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"fusion:"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled" default:"true"`
		RPS     float64 `yaml:"rps" default:"10"`
		Burst   int     `yaml:"burst" default:"20"`
	} `yaml:"ratelimit"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{Environment: "development", Engine: engine.DefaultConfig()}
	_ = defaults.Set(c)
	return c
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("FUSION_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := getenv("PREDICTION_URL"); v != "" {
		c.Prediction.URL = v
		c.Prediction.Enabled = true
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Type = "redis"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	if c.Engine.BacktestHoldBars <= 0 {
		return fmt.Errorf("engine.backtest_hold_bars must be positive")
	}
	if c.Engine.Timeline.FallbackLimit <= 0 {
		return fmt.Errorf("engine.timeline.fallback_limit must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Prediction.Enabled && c.Prediction.URL == "" {
		return fmt.Errorf("prediction.url is required when prediction is enabled")
	}
	if c.Cache.Type != "memory" && c.Cache.Type != "redis" && c.Cache.Type != "none" {
		return fmt.Errorf("cache.type must be 'memory', 'redis' or 'none', got '%s'", c.Cache.Type)
	}
	if c.Analysis.PublishBundles && !c.Kafka.Enabled {
		return fmt.Errorf("analysis.publish_bundles requires kafka")
	}
	if c.Analysis.StoreTimeline && !c.ClickHouse.Enabled {
		return fmt.Errorf("analysis.store_timeline requires clickhouse")
	}
	return nil
}
