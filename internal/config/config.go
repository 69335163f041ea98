// Package config handles CLI configuration loading and validation for
// trafficmirrorctl, providing a type-safe configuration structure backed by
// a YAML file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	interceptor "github.com/plt-oss/traffic-interceptor"
)

// Config holds everything trafficmirrorctl needs to construct an
// interceptor.Options and run the demo server or the inspect REPL.
type Config struct {
	// ListenAddr is the address serve-demo binds to.
	ListenAddr string `yaml:"listen_addr"`
	// UpstreamURL is the origin demo requests are actually forwarded to.
	UpstreamURL string `yaml:"upstream_url"`

	TrafficInspector TrafficInspectorConfig `yaml:"traffic_inspector"`
	BloomFilter      BloomFilterConfig      `yaml:"bloom_filter"`

	MaxResponseSize          int64    `yaml:"max_response_size"`
	MatchingDomains          []string `yaml:"matching_domains"`
	SkippingRequestHeaders   []string `yaml:"skipping_request_headers"`
	SkippingResponseHeaders  []string `yaml:"skipping_response_headers"`
	SkippingCookieSessionIDs []string `yaml:"skipping_cookie_session_ids"`

	Labels map[string]string `yaml:"labels"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// TrafficInspectorConfig mirrors interceptor.TrafficInspectorConfig for
// YAML unmarshalling purposes.
type TrafficInspectorConfig struct {
	URL          string `yaml:"url"`
	PathSendBody string `yaml:"path_send_body"`
	PathSendMeta string `yaml:"path_send_meta"`
}

// BloomFilterConfig mirrors interceptor.BloomFilterConfig.
type BloomFilterConfig struct {
	Size      int     `yaml:"size"`
	ErrorRate float64 `yaml:"error_rate"`
}

// Default returns the out-of-the-box configuration used by serve-demo when
// no config file is supplied.
func Default() *Config {
	return &Config{
		ListenAddr:  getEnvString("TRAFFICMIRRORCTL_LISTEN_ADDR", ":8088"),
		UpstreamURL: getEnvString("TRAFFICMIRRORCTL_UPSTREAM_URL", "https://httpbin.org"),
		TrafficInspector: TrafficInspectorConfig{
			URL:          getEnvString("TRAFFICMIRRORCTL_INSPECTOR_URL", "http://localhost:9090"),
			PathSendBody: getEnvString("TRAFFICMIRRORCTL_INSPECTOR_BODY_PATH", "/v1/mirror/body"),
			PathSendMeta: getEnvString("TRAFFICMIRRORCTL_INSPECTOR_META_PATH", "/v1/mirror/meta"),
		},
		BloomFilter: BloomFilterConfig{
			Size:      getEnvInt("TRAFFICMIRRORCTL_BLOOM_SIZE", 10000),
			ErrorRate: getEnvFloat("TRAFFICMIRRORCTL_BLOOM_ERROR_RATE", 0.01),
		},
		MaxResponseSize: getEnvInt64("TRAFFICMIRRORCTL_MAX_RESPONSE_SIZE", interceptor.DefaultMaxResponseSize),
		LogLevel:        getEnvString("TRAFFICMIRRORCTL_LOG_LEVEL", "info"),
		LogFormat:       getEnvString("TRAFFICMIRRORCTL_LOG_FORMAT", "console"),
	}
}

// Load reads a YAML config file from path, applies a .env file (if one
// exists alongside it) and environment variable overrides on top, and
// validates the result. An empty path returns Default() unmodified.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.validate()
	}

	if envPath := envFileNextTo(path); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, cfg.validate()
}

func envFileNextTo(configPath string) string {
	dir := configPath
	if i := strings.LastIndexByte(configPath, '/'); i >= 0 {
		dir = configPath[:i]
	} else {
		dir = "."
	}
	candidate := dir + "/.env"
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// applyEnvOverrides lets environment variables win over the YAML file,
// mirroring the precedence order of the teacher's own config loader.
func (c *Config) applyEnvOverrides() {
	c.ListenAddr = getEnvString("TRAFFICMIRRORCTL_LISTEN_ADDR", c.ListenAddr)
	c.UpstreamURL = getEnvString("TRAFFICMIRRORCTL_UPSTREAM_URL", c.UpstreamURL)
	c.TrafficInspector.URL = getEnvString("TRAFFICMIRRORCTL_INSPECTOR_URL", c.TrafficInspector.URL)
	c.TrafficInspector.PathSendBody = getEnvString("TRAFFICMIRRORCTL_INSPECTOR_BODY_PATH", c.TrafficInspector.PathSendBody)
	c.TrafficInspector.PathSendMeta = getEnvString("TRAFFICMIRRORCTL_INSPECTOR_META_PATH", c.TrafficInspector.PathSendMeta)
	c.BloomFilter.Size = getEnvInt("TRAFFICMIRRORCTL_BLOOM_SIZE", c.BloomFilter.Size)
	c.BloomFilter.ErrorRate = getEnvFloat("TRAFFICMIRRORCTL_BLOOM_ERROR_RATE", c.BloomFilter.ErrorRate)
	c.MaxResponseSize = getEnvInt64("TRAFFICMIRRORCTL_MAX_RESPONSE_SIZE", c.MaxResponseSize)
	c.LogLevel = getEnvString("TRAFFICMIRRORCTL_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvString("TRAFFICMIRRORCTL_LOG_FORMAT", c.LogFormat)
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.TrafficInspector.URL) == "" {
		return fmt.Errorf("config: traffic_inspector.url is required")
	}
	if c.BloomFilter.Size <= 0 {
		return fmt.Errorf("config: bloom_filter.size must be positive, got %d", c.BloomFilter.Size)
	}
	if c.BloomFilter.ErrorRate <= 0 || c.BloomFilter.ErrorRate >= 1 {
		return fmt.Errorf("config: bloom_filter.error_rate must be in (0, 1), got %f", c.BloomFilter.ErrorRate)
	}
	return nil
}

// ToOptions builds an interceptor.Options from the loaded configuration.
func (c *Config) ToOptions() interceptor.Options {
	return interceptor.Options{
		Labels: c.Labels,
		TrafficInspector: interceptor.TrafficInspectorConfig{
			URL:          c.TrafficInspector.URL,
			PathSendBody: c.TrafficInspector.PathSendBody,
			PathSendMeta: c.TrafficInspector.PathSendMeta,
		},
		BloomFilter: interceptor.BloomFilterConfig{
			Size:      c.BloomFilter.Size,
			ErrorRate: c.BloomFilter.ErrorRate,
		},
		MaxResponseSize:          c.MaxResponseSize,
		MatchingDomains:          c.MatchingDomains,
		SkippingRequestHeaders:   c.SkippingRequestHeaders,
		SkippingResponseHeaders:  c.SkippingResponseHeaders,
		SkippingCookieSessionIDs: c.SkippingCookieSessionIDs,
	}
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	return EnvIntOrDefault(key, defaultValue)
}

func getEnvInt64(key string, defaultValue int64) int64 {
	return EnvInt64OrDefault(key, defaultValue)
}

func getEnvFloat(key string, defaultValue float64) float64 {
	return EnvFloat64OrDefault(key, defaultValue)
}
