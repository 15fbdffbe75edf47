package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	Host            string        `yaml:"host" envconfig:"HOST" default:""`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/hoteldash.log"`
}

// DataConfig contains dataset configuration
type DataConfig struct {
	// DatasetPath points at the hotel booking CSV loaded at startup.
	// The file must exist; startup aborts otherwise.
	DatasetPath string `yaml:"dataset_path" envconfig:"DATASET_PATH" default:"data/hotel_booking_clean.csv" validate:"required"`
	PreviewRows int    `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" default:"5" validate:"gt=0"`
	// MaxUploadBytes bounds the decoded size of an uploaded file.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"10485760" validate:"gt=0"`
}

// SecurityConfig contains request-protection configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50" validate:"gt=0"`
}

// Load loads configuration from environment variables and an optional
// config.yaml next to the working directory. Environment variables win.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("DASH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getConfigFilePath returns the path to the optional YAML config file.
// DASH_CONFIG_FILE overrides the default location.
func getConfigFilePath() string {
	if path := os.Getenv("DASH_CONFIG_FILE"); path != "" {
		return path
	}
	return filepath.Join(".", "config.yaml")
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config, env values take precedence
// over file values when they differ from the envconfig defaults.
func mergeConfigs(fileCfg, envCfg Config) Config {
	merged := fileCfg

	defaults := defaultConfig()

	if envCfg.Server.Port != defaults.Server.Port {
		merged.Server.Port = envCfg.Server.Port
	}
	if envCfg.Server.Host != defaults.Server.Host {
		merged.Server.Host = envCfg.Server.Host
	}
	if envCfg.Server.ReadTimeout != defaults.Server.ReadTimeout {
		merged.Server.ReadTimeout = envCfg.Server.ReadTimeout
	}
	if envCfg.Server.WriteTimeout != defaults.Server.WriteTimeout {
		merged.Server.WriteTimeout = envCfg.Server.WriteTimeout
	}
	if envCfg.Server.IdleTimeout != defaults.Server.IdleTimeout {
		merged.Server.IdleTimeout = envCfg.Server.IdleTimeout
	}
	if envCfg.Server.ShutdownTimeout != defaults.Server.ShutdownTimeout {
		merged.Server.ShutdownTimeout = envCfg.Server.ShutdownTimeout
	}
	if envCfg.Logging.Level != defaults.Logging.Level {
		merged.Logging.Level = envCfg.Logging.Level
	}
	if envCfg.Logging.Output != defaults.Logging.Output {
		merged.Logging.Output = envCfg.Logging.Output
	}
	if envCfg.Logging.FilePath != defaults.Logging.FilePath {
		merged.Logging.FilePath = envCfg.Logging.FilePath
	}
	if envCfg.Data.DatasetPath != defaults.Data.DatasetPath {
		merged.Data.DatasetPath = envCfg.Data.DatasetPath
	}
	if envCfg.Data.PreviewRows != defaults.Data.PreviewRows {
		merged.Data.PreviewRows = envCfg.Data.PreviewRows
	}
	if envCfg.Data.MaxUploadBytes != defaults.Data.MaxUploadBytes {
		merged.Data.MaxUploadBytes = envCfg.Data.MaxUploadBytes
	}
	if envCfg.Security.RateLimit.Enabled != defaults.Security.RateLimit.Enabled {
		merged.Security.RateLimit.Enabled = envCfg.Security.RateLimit.Enabled
	}
	if envCfg.Security.RateLimit.RPS != defaults.Security.RateLimit.RPS {
		merged.Security.RateLimit.RPS = envCfg.Security.RateLimit.RPS
	}
	if envCfg.Security.RateLimit.Burst != defaults.Security.RateLimit.Burst {
		merged.Security.RateLimit.Burst = envCfg.Security.RateLimit.Burst
	}

	// Fill gaps the file left empty with defaults
	if merged.Server.Port == 0 {
		merged.Server.Port = defaults.Server.Port
	}
	if merged.Server.ReadTimeout == 0 {
		merged.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if merged.Server.WriteTimeout == 0 {
		merged.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if merged.Server.IdleTimeout == 0 {
		merged.Server.IdleTimeout = defaults.Server.IdleTimeout
	}
	if merged.Server.ShutdownTimeout == 0 {
		merged.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if merged.Logging.Level == "" {
		merged.Logging.Level = defaults.Logging.Level
	}
	if merged.Logging.Output == "" {
		merged.Logging.Output = defaults.Logging.Output
	}
	if merged.Logging.FilePath == "" {
		merged.Logging.FilePath = defaults.Logging.FilePath
	}
	if merged.Data.DatasetPath == "" {
		merged.Data.DatasetPath = defaults.Data.DatasetPath
	}
	if merged.Data.PreviewRows == 0 {
		merged.Data.PreviewRows = defaults.Data.PreviewRows
	}
	if merged.Data.MaxUploadBytes == 0 {
		merged.Data.MaxUploadBytes = defaults.Data.MaxUploadBytes
	}
	if merged.Security.RateLimit.RPS == 0 {
		merged.Security.RateLimit.RPS = defaults.Security.RateLimit.RPS
	}
	if merged.Security.RateLimit.Burst == 0 {
		merged.Security.RateLimit.Burst = defaults.Security.RateLimit.Burst
	}

	return merged
}

// defaultConfig returns the configuration produced by the struct defaults
// alone, used to detect which env values were explicitly set.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/hoteldash.log",
		},
		Data: DataConfig{
			DatasetPath:    "data/hotel_booking_clean.csv",
			PreviewRows:    5,
			MaxUploadBytes: 10 * 1024 * 1024,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
	}
}
