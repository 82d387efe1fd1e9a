package config

import (
	"fmt"
	"os"
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
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Cache struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		TTL struct {
			Calendar time.Duration `yaml:"calendar"`
			History  time.Duration `yaml:"history"`
			Options  time.Duration `yaml:"options"`
			News     time.Duration `yaml:"news"`
			Session  time.Duration `yaml:"session"`
		} `yaml:"ttl"`
	} `yaml:"cache"`
	Providers struct {
		Finnhub struct {
			APIKey  string        `yaml:"api_key"`
			BaseURL string        `yaml:"base_url"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"finnhub"`
		AlphaVantage struct {
			APIKey  string        `yaml:"api_key"`
			BaseURL string        `yaml:"base_url"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"alphavantage"`
		Tradier struct {
			Token   string        `yaml:"token"`
			BaseURL string        `yaml:"base_url"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"tradier"`
		Yahoo struct {
			Enabled bool          `yaml:"enabled"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"yahoo"`
	} `yaml:"providers"`
	Orchestrator struct {
		BatchSize         int           `yaml:"batch_size"`
		BatchDelay        time.Duration `yaml:"batch_delay"`
		MaxQuarters       int           `yaml:"max_quarters"`
		WeeklyOptionsCap  float64       `yaml:"weekly_options_min_market_cap"`
		NewsLookbackDays  int           `yaml:"news_lookback_days"`
	} `yaml:"orchestrator"`
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

// LoadWithEnv loads config from YAML and overrides credentials with
// environment variables. Every provider key is optional; the orchestrator
// reports a typed "not configured" result when no calendar provider has one.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Providers.Finnhub.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.Providers.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("TRADIER_TOKEN"); v != "" {
		c.Providers.Tradier.Token = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
		c.Cache.Redis.Enabled = true
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Cache.TTL.Calendar == 0 {
		c.Cache.TTL.Calendar = time.Hour
	}
	if c.Cache.TTL.History == 0 {
		c.Cache.TTL.History = 24 * time.Hour
	}
	if c.Cache.TTL.Options == 0 {
		c.Cache.TTL.Options = 24 * time.Hour
	}
	if c.Cache.TTL.News == 0 {
		c.Cache.TTL.News = 8 * time.Hour
	}
	if c.Cache.TTL.Session == 0 {
		c.Cache.TTL.Session = 10 * time.Minute
	}
	if c.Providers.Finnhub.BaseURL == "" {
		c.Providers.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if c.Providers.Finnhub.Timeout == 0 {
		c.Providers.Finnhub.Timeout = 10 * time.Second
	}
	if c.Providers.AlphaVantage.BaseURL == "" {
		c.Providers.AlphaVantage.BaseURL = "https://www.alphavantage.co/query"
	}
	if c.Providers.AlphaVantage.Timeout == 0 {
		c.Providers.AlphaVantage.Timeout = 20 * time.Second
	}
	if c.Providers.Tradier.BaseURL == "" {
		c.Providers.Tradier.BaseURL = "https://api.tradier.com/v1"
	}
	if c.Providers.Tradier.Timeout == 0 {
		c.Providers.Tradier.Timeout = 10 * time.Second
	}
	if c.Providers.Yahoo.Timeout == 0 {
		c.Providers.Yahoo.Timeout = 8 * time.Second
	}
	if c.Orchestrator.BatchSize == 0 {
		c.Orchestrator.BatchSize = 10
	}
	if c.Orchestrator.BatchDelay == 0 {
		c.Orchestrator.BatchDelay = 1500 * time.Millisecond
	}
	if c.Orchestrator.MaxQuarters == 0 {
		c.Orchestrator.MaxQuarters = 20
	}
	if c.Orchestrator.WeeklyOptionsCap == 0 {
		c.Orchestrator.WeeklyOptionsCap = 5e9
	}
	if c.Orchestrator.NewsLookbackDays == 0 {
		c.Orchestrator.NewsLookbackDays = 7
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Orchestrator.BatchSize < 1 {
		return fmt.Errorf("orchestrator.batch_size must be >= 1")
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Host == "" {
		return fmt.Errorf("cache.redis.host is required when redis is enabled")
	}
	return nil
}
