package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Fetcher  FetcherConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Importer ImporterConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type FetcherConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	BackoffBase  time.Duration
	MaxRedirects int
	RateLimitMin time.Duration
	RateLimitMax time.Duration
	UserAgents   []string
}

type BrowserConfig struct {
	Enabled         bool
	Headless        bool
	NavigateTimeout time.Duration
	PollInterval    time.Duration
	PollAttempts    int
	ViewportWidth   int
	ViewportHeight  int
	AcceptLanguage  string
	TimezoneID      string
	Locale          string
	// RenderPlatforms lists platforms whose product data is only present
	// after client-side rendering and therefore skip the plain-fetch path.
	RenderPlatforms []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

type ImporterConfig struct {
	Workers              int
	QueueMaxSize         int
	DefaultMarginPercent float64
}

type LoggingConfig struct {
	Level  string
	Format string
	// Production strips diagnostics from every record leaving the pipeline.
	Production bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Fetcher: FetcherConfig{
			Timeout:      getDurationOrDefault("FETCHER_TIMEOUT", 20*time.Second),
			MaxRetries:   getIntOrDefault("FETCHER_MAX_RETRIES", 3),
			BackoffBase:  getDurationOrDefault("FETCHER_BACKOFF_BASE", 1*time.Second),
			MaxRedirects: getIntOrDefault("FETCHER_MAX_REDIRECTS", 10),
			RateLimitMin: getDurationOrDefault("FETCHER_RATE_LIMIT_MIN", 500*time.Millisecond),
			RateLimitMax: getDurationOrDefault("FETCHER_RATE_LIMIT_MAX", 2*time.Second),
			UserAgents:   getStringSliceOrDefault("FETCHER_USER_AGENTS", defaultUserAgents()),
		},
		Browser: BrowserConfig{
			Enabled:         getBoolOrDefault("BROWSER_ENABLED", true),
			Headless:        getBoolOrDefault("BROWSER_HEADLESS", true),
			NavigateTimeout: getDurationOrDefault("BROWSER_NAVIGATE_TIMEOUT", 30*time.Second),
			PollInterval:    getDurationOrDefault("BROWSER_POLL_INTERVAL", 500*time.Millisecond),
			PollAttempts:    getIntOrDefault("BROWSER_POLL_ATTEMPTS", 20),
			ViewportWidth:   getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight:  getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage:  getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "es-PE,es;q=0.9,en;q=0.8"),
			TimezoneID:      getEnvOrDefault("BROWSER_TIMEZONE", "America/Lima"),
			Locale:          getEnvOrDefault("BROWSER_LOCALE", "es-PE"),
			RenderPlatforms: getStringSliceOrDefault("BROWSER_RENDER_PLATFORMS", []string{"ALIEXPRESS"}),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "dropflow"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxConns: int32(getIntOrDefault("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			Stream:   getEnvOrDefault("REDIS_STREAM", "stream:product_extracted"),
		},
		Importer: ImporterConfig{
			Workers:              getIntOrDefault("IMPORTER_WORKERS", 3),
			QueueMaxSize:         getIntOrDefault("IMPORTER_QUEUE_MAX_SIZE", 1000),
			DefaultMarginPercent: getFloatOrDefault("IMPORTER_DEFAULT_MARGIN_PERCENT", 30),
		},
		Logging: LoggingConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
			Production: getBoolOrDefault("PRODUCTION", false),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Fetcher.MaxRetries < 0 {
		return fmt.Errorf("FETCHER_MAX_RETRIES cannot be negative")
	}

	if c.Fetcher.RateLimitMin > c.Fetcher.RateLimitMax {
		return fmt.Errorf("FETCHER_RATE_LIMIT_MIN cannot be greater than FETCHER_RATE_LIMIT_MAX")
	}

	if c.Browser.PollAttempts < 1 {
		return fmt.Errorf("BROWSER_POLL_ATTEMPTS must be at least 1")
	}

	if c.Importer.Workers < 1 {
		return fmt.Errorf("IMPORTER_WORKERS must be at least 1")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func defaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}
