package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres
	Path            string        `mapstructure:"path"`   // sqlite file
	URL             string        `mapstructure:"url"`    // postgres DSN
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogSQL          bool          `mapstructure:"log_sql"`
}

// DSN returns the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.URL
	}
	return c.Path
}

// ScraperConfig holds the values both extraction strategies treat as fixed inputs.
type ScraperConfig struct {
	TimeoutSeconds       int     `mapstructure:"timeout_seconds"`
	DelaySeconds         float64 `mapstructure:"delay_seconds"`
	Headless             bool    `mapstructure:"headless"`
	MaxPages             int     `mapstructure:"max_pages"`
	SettleTimeoutSeconds int     `mapstructure:"settle_timeout_seconds"`
	BrowserBin           string  `mapstructure:"browser_bin"`
	UserAgent            string  `mapstructure:"user_agent"`
}

// Timeout is the navigation / request timeout.
func (c ScraperConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Delay is the politeness delay between requests.
func (c ScraperConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

// SettleTimeout bounds the wait for network quiescence on each page.
func (c ScraperConfig) SettleTimeout() time.Duration {
	return time.Duration(c.SettleTimeoutSeconds) * time.Second
}

type SchedulerConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PollSeconds int  `mapstructure:"poll_seconds"`
}

// PollInterval is the fixed period between scheduler ticks.
func (c SchedulerConfig) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// RedisConfig enables event publication when URL is set.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// StorageConfig configures S3-compatible storage for blocked-page snapshots.
type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"` // r2, s3, s3compatible
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from an optional YAML file, the environment and
// a .env file, in increasing order of precedence for the environment.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// legacy variable names still honoured
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("redis.url", "REDIS_URL")
	_ = v.BindEnv("scraper.headless", "PLAYWRIGHT_HEADLESS", "SCRAPER_HEADLESS")
	_ = v.BindEnv("scraper.timeout_seconds", "SCRAPER_TIMEOUT_SECONDS")
	_ = v.BindEnv("scraper.delay_seconds", "SCRAPER_DELAY_SECONDS")
	_ = v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	_ = v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
		if cfg.Database.URL != "" {
			cfg.Database.Driver = "postgres"
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("database.driver", "")
	v.SetDefault("database.path", "./data/req-hunter.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_sql", false)

	v.SetDefault("scraper.timeout_seconds", 30)
	v.SetDefault("scraper.delay_seconds", 2)
	v.SetDefault("scraper.headless", true)
	v.SetDefault("scraper.max_pages", 30)
	v.SetDefault("scraper.settle_timeout_seconds", 10)
	v.SetDefault("scraper.browser_bin", "")
	v.SetDefault("scraper.user_agent", "")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.poll_seconds", 20)

	v.SetDefault("redis.url", "")

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.type", "")
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "req-hunter")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.public_url", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
