package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Provider struct {
		BaseURL        string        `yaml:"base_url"`
		TokenURL       string        `yaml:"token_url"`
		Exchange       string        `yaml:"exchange"`
		Series         string        `yaml:"series"`
		Resolution     string        `yaml:"resolution"`
		Symbols        []string      `yaml:"symbols"`
		LookbackWindow time.Duration `yaml:"lookback_window"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		BatchSize      int           `yaml:"batch_size"`
		BatchDelay     time.Duration `yaml:"batch_delay"`
		RequestDelay   time.Duration `yaml:"request_delay"`
		Retry          struct {
			Attempts  int           `yaml:"attempts"`
			BaseDelay time.Duration `yaml:"base_delay"`
			MaxDelay  time.Duration `yaml:"max_delay"`
			Jitter    float64       `yaml:"jitter"`
		} `yaml:"retry"`
		Breaker struct {
			FailureThreshold int           `yaml:"failure_threshold"`
			Timeout          time.Duration `yaml:"timeout"`
		} `yaml:"breaker"`
	} `yaml:"provider"`
	Storage struct {
		Endpoint        string `yaml:"endpoint"`
		AccessKey       string `yaml:"access_key"`
		SecretKey       string `yaml:"secret_key"`
		Bucket          string `yaml:"bucket"`
		Region          string `yaml:"region"`
		UseSSL          bool   `yaml:"use_ssl"`
		PartitionPrefix string `yaml:"partition_prefix"`
		RawPrefix       string `yaml:"raw_prefix"`
	} `yaml:"storage"`
	Secrets struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"secrets"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		Table        string        `yaml:"table"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
		MaxSize int           `yaml:"max_size"`
	} `yaml:"cache"`
	Query struct {
		MaxRangeDays int `yaml:"max_range_days"`
		MoversLimit  int `yaml:"movers_limit"`
	} `yaml:"query"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Provider.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("PROVIDER_TOKEN_URL"); v != "" {
		c.Provider.TokenURL = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		c.Storage.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		c.Storage.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		c.Storage.SecretKey = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Secrets.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Secrets.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Provider.Resolution == "" {
		c.Provider.Resolution = "5"
	}
	if c.Provider.Exchange == "" {
		c.Provider.Exchange = "NSE"
	}
	if c.Provider.Series == "" {
		c.Provider.Series = "EQ"
	}
	if c.Provider.LookbackWindow == 0 {
		c.Provider.LookbackWindow = 10 * time.Minute
	}
	if c.Provider.RequestTimeout == 0 {
		c.Provider.RequestTimeout = 30 * time.Second
	}
	if c.Provider.BatchSize == 0 {
		c.Provider.BatchSize = 5
	}
	if c.Provider.BatchDelay == 0 {
		c.Provider.BatchDelay = 2 * time.Second
	}
	if c.Provider.RequestDelay == 0 {
		c.Provider.RequestDelay = 500 * time.Millisecond
	}
	if c.Provider.Retry.Attempts == 0 {
		c.Provider.Retry.Attempts = 3
	}
	if c.Provider.Retry.BaseDelay == 0 {
		c.Provider.Retry.BaseDelay = time.Second
	}
	if c.Provider.Retry.MaxDelay == 0 {
		c.Provider.Retry.MaxDelay = 30 * time.Second
	}
	if c.Provider.Retry.Jitter == 0 {
		c.Provider.Retry.Jitter = 0.5
	}
	if c.Provider.Breaker.FailureThreshold == 0 {
		c.Provider.Breaker.FailureThreshold = 3
	}
	if c.Provider.Breaker.Timeout == 0 {
		c.Provider.Breaker.Timeout = 5 * time.Minute
	}
	if c.Storage.PartitionPrefix == "" {
		c.Storage.PartitionPrefix = "analytics/csv"
	}
	if c.Storage.RawPrefix == "" {
		c.Storage.RawPrefix = "raw"
	}
	if c.Secrets.Prefix == "" {
		c.Secrets.Prefix = "candlevault"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Cache.MaxSize == 0 {
		c.Cache.MaxSize = 1000
	}
	if c.Query.MaxRangeDays == 0 {
		c.Query.MaxRangeDays = 31
	}
	if c.Query.MoversLimit == 0 {
		c.Query.MoversLimit = 10
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if c.Provider.TokenURL == "" {
		return fmt.Errorf("provider.token_url is required")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
