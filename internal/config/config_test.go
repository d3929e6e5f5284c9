package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SPREADWATCH_CONFIG", "SPREADWATCH_LOG_LEVEL", "SPREADWATCH_HTTP_ADDR",
		"SPREADWATCH_UPSTREAM_BASE_URL", "SPREADWATCH_UPSTREAM_TIMEOUT_SECONDS",
		"SPREADWATCH_UPSTREAM_MAX_CONCURRENCY", "SPREADWATCH_ADMIN_ALLOW_CIDRS",
	} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestDefaultConfig(t *testing.T) {
	clearEnv(t)

	c := Load()
	if c.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %s", c.Logging.Level)
	}
	if c.Upstream.BaseURL != "https://www.buda.com/api/v2" {
		t.Fatalf("unexpected default base url %s", c.Upstream.BaseURL)
	}
	if c.Upstream.MaxConcurrency != 8 {
		t.Fatalf("expected default concurrency 8, got %d", c.Upstream.MaxConcurrency)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPREADWATCH_LOG_LEVEL", "debug")
	t.Setenv("SPREADWATCH_UPSTREAM_BASE_URL", "http://localhost:8080/api/v2/")
	t.Setenv("SPREADWATCH_UPSTREAM_MAX_CONCURRENCY", "3")
	t.Setenv("SPREADWATCH_ADMIN_ALLOW_CIDRS", "10.0.0.0/8, 192.168.0.0/16")

	c := Load()
	if c.Logging.Level != "debug" {
		t.Fatalf("env override failed for log level, got %s", c.Logging.Level)
	}
	if c.Upstream.BaseURL != "http://localhost:8080/api/v2" {
		t.Fatalf("env override failed for base url, got %s", c.Upstream.BaseURL)
	}
	if c.Upstream.MaxConcurrency != 3 {
		t.Fatalf("env override failed for concurrency, got %d", c.Upstream.MaxConcurrency)
	}
	if len(c.Server.AdminAllowCIDRs) != 2 || c.Server.AdminAllowCIDRs[1] != "192.168.0.0/16" {
		t.Fatalf("unexpected cidrs %v", c.Server.AdminAllowCIDRs)
	}
}

func TestYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "upstream:\n  base_url: http://example.test/api/v2\n  timeout_seconds: 0\nserver:\n  addr: \":7000\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SPREADWATCH_CONFIG", path)

	c := Load()
	if c.Upstream.BaseURL != "http://example.test/api/v2" {
		t.Fatalf("yaml base url not applied, got %s", c.Upstream.BaseURL)
	}
	if c.Server.Addr != ":7000" {
		t.Fatalf("yaml addr not applied, got %s", c.Server.Addr)
	}
	// zero timeout falls back to the default
	if c.Upstream.TimeoutSeconds != 10 {
		t.Fatalf("expected timeout fallback 10, got %d", c.Upstream.TimeoutSeconds)
	}
}
