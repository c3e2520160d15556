package config

import (
	"net"
	"strconv"
	"time"

	"github.com/getmockd/apisim/pkg/logging"
	"github.com/getmockd/apisim/pkg/store"
)

// Defaults.
const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 5050
	DefaultMockPrefix      = "mock"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogQueueSize    = 1024
	DefaultRateLimitRPS    = 100
	DefaultRateLimitBurst  = 200
)

// Config is the complete server configuration.
type Config struct {
	Host       string `yaml:"host" env:"HOST" validate:"required"`
	Port       int    `yaml:"port" env:"PORT" validate:"min=1,max=65535"`
	MockPrefix string `yaml:"mock_prefix" env:"MOCK_PREFIX" validate:"required,excludesall=/ "`

	// DataDir holds the SQLite database. Empty means the XDG data directory.
	DataDir string `yaml:"data_dir" env:"DATA_DIR"`
	Backend string `yaml:"backend" env:"BACKEND" validate:"oneof=sqlite memory"`

	Log         LogConfig       `yaml:"log" envPrefix:"LOG_"`
	CORSOrigins []string        `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	RateLimit   RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	// LogQueueSize bounds the request log queue; entries beyond it are dropped.
	LogQueueSize int `yaml:"log_queue_size" env:"LOG_QUEUE_SIZE" validate:"min=1"`
}

// LogConfig configures operational logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env:"FORMAT" validate:"oneof=text json"`
	// File, when set, also writes JSON logs to a rotating file.
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" env:"MAX_AGE_DAYS" validate:"gte=0"`
	Compress   bool   `yaml:"compress" env:"COMPRESS"`
}

// RateLimitConfig limits management API requests per client IP.
// RPS 0 disables the limit.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" env:"RPS" validate:"gte=0"`
	Burst int     `yaml:"burst" env:"BURST" validate:"gte=0"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Host:       DefaultHost,
		Port:       DefaultPort,
		MockPrefix: DefaultMockPrefix,
		DataDir:    store.DefaultDataDir(),
		Backend:    string(store.BackendSQLite),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		CORSOrigins: []string{"*"},
		RateLimit: RateLimitConfig{
			RPS:   DefaultRateLimitRPS,
			Burst: DefaultRateLimitBurst,
		},
		ShutdownTimeout: DefaultShutdownTimeout,
		LogQueueSize:    DefaultLogQueueSize,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Store returns the store configuration.
func (c *Config) Store() store.Config {
	return store.Config{Backend: store.Backend(c.Backend), DataDir: c.DataDir}
}

// Logging returns the logging configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	cfg.Format = logging.ParseFormat(c.Log.Format)
	cfg.File = logging.FileConfig{
		Path:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
	}
	return cfg
}
