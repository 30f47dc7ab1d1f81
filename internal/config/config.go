package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort                 = "8080"
	defaultCMSConfigSource      = "cms-config.yaml"
	defaultSiteTitle            = "Content Manager"
	defaultBackendEndpoint      = "http://localhost:3000"
	defaultPublicURL            = "."
	defaultLogLevel             = "info"
	defaultConfigRequestTimeout = 10 * time.Second
	defaultRateLimitRPS         = 25.0
	defaultRateLimitBurst       = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	CMSConfigSource      string
	CacheBustConfig      bool
	ConfigRequestTimeout time.Duration
	SiteTitle            string
	BackendEndpoint      string
	BackendAPIKey        string
	PublicURL            string
	StaticDir            string
	LogLevel             string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	// AllowedOrigins restricts CORS. Empty allows any origin.
	AllowedOrigins []string
}

// yamlConfig represents the YAML configuration file structure. Pointers mark
// keys that were actually present.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	CMSConfigSource      string        `yaml:"cms_config_uri"`
	CacheBustConfig      *bool         `yaml:"cache_bust_config"`
	ConfigRequestTimeout string        `yaml:"config_request_timeout"`
	SiteTitle            string        `yaml:"site_title"`
	BackendEndpoint      string        `yaml:"backend_endpoint"`
	BackendAPIKey        string        `yaml:"backend_api_key"`
	PublicURL            string        `yaml:"public_url"`
	StaticDir            string        `yaml:"static_dir"`
	LogLevel             string        `yaml:"log_level"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
	AllowedOrigins       []string      `yaml:"allowed_origins"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile      string
	Port            *string
	CMSConfigSource *string
	LogLevel        *string
	RateLimitRPS    *float64
	RateLimitBurst  *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment first so the YAML file can override it.
	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		CMSConfigSource:      defaultCMSConfigSource,
		CacheBustConfig:      true,
		ConfigRequestTimeout: defaultConfigRequestTimeout,
		SiteTitle:            defaultSiteTitle,
		BackendEndpoint:      defaultBackendEndpoint,
		PublicURL:            defaultPublicURL,
		LogLevel:             defaultLogLevel,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	setString(&cfg.Port, yamlCfg.Port)
	setString(&cfg.CMSConfigSource, yamlCfg.CMSConfigSource)
	setString(&cfg.SiteTitle, yamlCfg.SiteTitle)
	setString(&cfg.BackendEndpoint, yamlCfg.BackendEndpoint)
	setString(&cfg.BackendAPIKey, yamlCfg.BackendAPIKey)
	setString(&cfg.PublicURL, yamlCfg.PublicURL)
	setString(&cfg.StaticDir, yamlCfg.StaticDir)
	setString(&cfg.LogLevel, yamlCfg.LogLevel)

	if yamlCfg.CacheBustConfig != nil {
		cfg.CacheBustConfig = *yamlCfg.CacheBustConfig
	}
	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	durations := []struct {
		key   string
		raw   string
		value *time.Duration
	}{
		{"config_request_timeout", yamlCfg.ConfigRequestTimeout, &cfg.ConfigRequestTimeout},
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.value = parsed
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	if origins := splitOrigins(yamlCfg.AllowedOrigins); len(origins) > 0 {
		cfg.AllowedOrigins = origins
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	setString(&cfg.Port, os.Getenv("PORT"))
	setString(&cfg.CMSConfigSource, os.Getenv("CMS_CONFIG_URI"))
	setString(&cfg.BackendEndpoint, os.Getenv("CMS_BACKEND_ENDPOINT"))
	setString(&cfg.BackendAPIKey, os.Getenv("CMS_BACKEND_API_KEY"))
	setString(&cfg.PublicURL, os.Getenv("CMS_PUBLIC_URL"))
	setString(&cfg.SiteTitle, os.Getenv("CMS_SITE_TITLE"))
	setString(&cfg.LogLevel, os.Getenv("LOG_LEVEL"))

	if origins := splitOrigins(strings.Split(os.Getenv("CMS_ALLOWED_ORIGINS"), ",")); len(origins) > 0 {
		cfg.AllowedOrigins = origins
	}

	if raw := strings.TrimSpace(os.Getenv("CMS_CONFIG_CACHE_BUST")); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.CacheBustConfig = value
		}
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil {
		setString(&cfg.Port, *overrides.Port)
	}
	if overrides.CMSConfigSource != nil {
		setString(&cfg.CMSConfigSource, *overrides.CMSConfigSource)
	}
	if overrides.LogLevel != nil {
		setString(&cfg.LogLevel, *overrides.LogLevel)
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.CMSConfigSource == "" {
		return errors.New("cms config source cannot be empty")
	}
	if cfg.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return errors.New("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.ConfigRequestTimeout <= 0 {
		return errors.New("config request timeout must be positive")
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

// splitOrigins trims entries and drops empty ones.
func splitOrigins(raw []string) []string {
	var origins []string
	for _, origin := range raw {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
