package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "CMS_CONFIG_URI", "CMS_CONFIG_CACHE_BUST", "CMS_BACKEND_ENDPOINT",
		"CMS_BACKEND_API_KEY", "CMS_PUBLIC_URL", "CMS_SITE_TITLE", "LOG_LEVEL",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CMS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.CMSConfigSource != defaultCMSConfigSource {
		t.Fatalf("expected default config source, got %s", cfg.CMSConfigSource)
	}
	if !cfg.CacheBustConfig || !cfg.EnableRequestLogging {
		t.Fatalf("expected cache busting and request logging enabled by default")
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if cfg.RateLimitRPS != defaultRateLimitRPS || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("unexpected rate limit defaults: %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("CMS_CONFIG_URI", "https://cdn.example.com/cms-config.yaml")
	t.Setenv("CMS_CONFIG_CACHE_BUST", "false")
	t.Setenv("CMS_BACKEND_API_KEY", "secret")
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg, err := Load(&CLIOverrides{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.CMSConfigSource != "https://cdn.example.com/cms-config.yaml" {
		t.Fatalf("unexpected config source %s", cfg.CMSConfigSource)
	}
	if cfg.CacheBustConfig {
		t.Fatalf("expected cache busting disabled")
	}
	if cfg.BackendAPIKey != "secret" {
		t.Fatalf("unexpected API key %q", cfg.BackendAPIKey)
	}
	if cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("unexpected rate limit: %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("LOG_LEVEL", "warn")

	path := writeYAML(t, `
port: "7100"
cms_config_uri: /srv/cms-config.yaml
site_title: Newsroom
enable_request_logging: false
write_timeout: 3s
rate_limit:
  rps: 0
`)
	port := "7200"
	cfg, err := Load(&CLIOverrides{ConfigFile: path, Port: &port})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "7200" {
		t.Fatalf("expected CLI port to win, got %s", cfg.Port)
	}
	if cfg.CMSConfigSource != "/srv/cms-config.yaml" || cfg.SiteTitle != "Newsroom" {
		t.Fatalf("expected YAML values, got %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env log level to survive, got %s", cfg.LogLevel)
	}
	if cfg.EnableRequestLogging {
		t.Fatalf("expected request logging disabled by YAML")
	}
	if cfg.WriteTimeout != 3*time.Second {
		t.Fatalf("unexpected write timeout %s", cfg.WriteTimeout)
	}
	if cfg.RateLimitRPS != 0 || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("unexpected rate limit: %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadAllowedOrigins(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("expected no origin restriction by default, got %v", cfg.AllowedOrigins)
	}

	t.Setenv("CMS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")
	cfg, err = Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if want := []string{"https://a.example.com", "https://b.example.com"}; !slices.Equal(cfg.AllowedOrigins, want) {
		t.Fatalf("expected env origins %v, got %v", want, cfg.AllowedOrigins)
	}

	path := writeYAML(t, "allowed_origins:\n  - https://admin.example.com\n")
	cfg, err = Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if want := []string{"https://admin.example.com"}; !slices.Equal(cfg.AllowedOrigins, want) {
		t.Fatalf("expected YAML origins to win, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsInvalidInput(t *testing.T) {
	clearEnv(t)

	t.Run("bad duration", func(t *testing.T) {
		path := writeYAML(t, "idle_timeout: soon\n")
		if _, err := Load(&CLIOverrides{ConfigFile: path}); err == nil {
			t.Fatalf("expected error for invalid duration")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(&CLIOverrides{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})

	t.Run("bad log level", func(t *testing.T) {
		level := "chatty"
		if _, err := Load(&CLIOverrides{LogLevel: &level}); err == nil {
			t.Fatalf("expected error for invalid log level")
		}
	})

	t.Run("negative burst", func(t *testing.T) {
		path := writeYAML(t, "rate_limit:\n  burst: -1\n")
		if _, err := Load(&CLIOverrides{ConfigFile: path}); err == nil {
			t.Fatalf("expected error for negative burst")
		}
	})
}
