package config

import (
	"fmt"
	"time"

	"twse-announcements/pkg/config"
)

// Storage selects the announcement store backend.
type Storage struct {
	Driver string `mapstructure:"driver"` // "postgres" or "mongo"
}

// TWSE holds settings for the exchange portal client.
type TWSE struct {
	BaseURL           string        `mapstructure:"base_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	DocumentCacheTTL  time.Duration `mapstructure:"document_cache_ttl"`
}

// Scraper holds defaults for scrape runs.
type Scraper struct {
	DuplicateMode string `mapstructure:"duplicate_mode"`
	Company       string `mapstructure:"company"`
	SaveRawHTML   bool   `mapstructure:"save_raw_html"`
	OutputDir     string `mapstructure:"output_dir"`
}

// Scheduler holds scheduling-service configuration.
type Scheduler struct {
	Enabled         bool     `mapstructure:"enabled"`
	CronExpressions []string `mapstructure:"cron_expressions"`
	PollingInterval string   `mapstructure:"polling_interval"`
	LookbackDays    int      `mapstructure:"lookback_days"`
}

// Executor holds execution-service configuration.
type Executor struct {
	TaskTimeout  time.Duration `mapstructure:"task_timeout"`
	ReadBlock    time.Duration `mapstructure:"read_block"`
	ConsumerName string        `mapstructure:"consumer_name"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Mail holds configuration for the e-mail notifier.
type Mail struct {
	Enabled  bool     `mapstructure:"enabled"`
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// Config holds the full configuration shared by the services and the CLI.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Mongo     config.Mongo    `mapstructure:"mongo"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Storage   Storage         `mapstructure:"storage"`
	TWSE      TWSE            `mapstructure:"twse"`
	Scraper   Scraper         `mapstructure:"scraper"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
	Executor  Executor        `mapstructure:"executor"`
	Telegram  Telegram        `mapstructure:"telegram"`
	Mail      Mail            `mapstructure:"mail"`
}

// Load loads the configuration from the given path and fills defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Encoding == "" {
		c.Logger.Encoding = "json"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.TWSE.BaseURL == "" {
		c.TWSE.BaseURL = "https://mopsov.twse.com.tw"
	}
	if c.TWSE.Timeout == 0 {
		c.TWSE.Timeout = 30 * time.Second
	}
	if c.TWSE.RequestsPerMinute == 0 {
		c.TWSE.RequestsPerMinute = 20
	}
	if c.TWSE.DocumentCacheTTL == 0 {
		c.TWSE.DocumentCacheTTL = 30 * time.Minute
	}
	if c.Scraper.DuplicateMode == "" {
		c.Scraper.DuplicateMode = "upsert"
	}
	if c.Scheduler.PollingInterval == "" {
		c.Scheduler.PollingInterval = "30s"
	}
	if c.Executor.TaskTimeout == 0 {
		c.Executor.TaskTimeout = 5 * time.Minute
	}
	if c.Executor.ReadBlock == 0 {
		c.Executor.ReadBlock = 2 * time.Second
	}
	if c.Executor.ConsumerName == "" {
		c.Executor.ConsumerName = "scrape-consumer"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "twse_db"
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = "announcements"
	}
	if c.Mongo.ClauseCodeCollection == "" {
		c.Mongo.ClauseCodeCollection = "clause_codes"
	}
	if c.Mongo.ScrapeRunCollection == "" {
		c.Mongo.ScrapeRunCollection = "scrape_runs"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
}

// Validate rejects settings no service can run with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "mongo":
	default:
		return fmt.Errorf("unsupported storage driver: %s. supported: postgres, mongo", c.Storage.Driver)
	}
	if c.Storage.Driver == "mongo" && c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri is required when storage.driver is mongo")
	}
	return nil
}
