package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Server struct {
		Addr                string   `yaml:"addr"`
		Pprof               bool     `yaml:"pprof"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
		IdleTimeoutSeconds  int      `yaml:"idle_timeout_seconds"`
		AdminAllowCIDRs     []string `yaml:"admin_allow_cidrs"`
	} `yaml:"server"`
	Upstream struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		MaxConcurrency int    `yaml:"max_concurrency"`
	} `yaml:"upstream"`
}

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.Server.Addr = ":5000"
	c.Server.Pprof = false
	c.Server.ReadTimeoutSeconds = 5
	// listing every market fans out one upstream call per market
	c.Server.WriteTimeoutSeconds = 60
	c.Server.IdleTimeoutSeconds = 60
	c.Server.AdminAllowCIDRs = []string{"127.0.0.0/8", "::1/128"}
	c.Upstream.BaseURL = "https://www.buda.com/api/v2"
	c.Upstream.TimeoutSeconds = 10
	c.Upstream.MaxConcurrency = 8
	return c
}

// Load builds the config from defaults, an optional .env file, an optional
// YAML file (SPREADWATCH_CONFIG) and SPREADWATCH_* env overrides, in that order.
func Load() Config {
	_ = godotenv.Load()
	c := defaultConfig()
	if path := os.Getenv("SPREADWATCH_CONFIG"); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	if v := os.Getenv("SPREADWATCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SPREADWATCH_LOG_PRETTY"); v == "1" || v == "true" {
		c.Logging.Pretty = true
	}
	if v := os.Getenv("SPREADWATCH_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SPREADWATCH_PPROF"); v == "1" || v == "true" {
		c.Server.Pprof = true
	}
	if v := os.Getenv("SPREADWATCH_ADMIN_ALLOW_CIDRS"); v != "" {
		c.Server.AdminAllowCIDRs = splitCSV(v)
	}
	if v := os.Getenv("SPREADWATCH_UPSTREAM_BASE_URL"); v != "" {
		c.Upstream.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("SPREADWATCH_UPSTREAM_TIMEOUT_SECONDS"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Upstream.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("SPREADWATCH_UPSTREAM_MAX_CONCURRENCY"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Upstream.MaxConcurrency = n
		}
	}
	c.normalize()
	return c
}

// normalize repairs values a YAML file may have zeroed out.
func (c *Config) normalize() {
	d := defaultConfig()
	c.Upstream.BaseURL = strings.TrimRight(c.Upstream.BaseURL, "/")
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = d.Upstream.BaseURL
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		c.Upstream.TimeoutSeconds = d.Upstream.TimeoutSeconds
	}
	if c.Upstream.MaxConcurrency <= 0 {
		c.Upstream.MaxConcurrency = d.Upstream.MaxConcurrency
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
