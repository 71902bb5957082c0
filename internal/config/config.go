// Package config loads server settings from an optional YAML file, an
// optional .env file and the process environment, in that order of
// increasing precedence.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config is the effective server configuration.
type Config struct {
	Port         string `yaml:"port"`
	MetricsAddr  string `yaml:"metrics_addr"`
	LogLevel     string `yaml:"log_level"`
	LogFile      string `yaml:"log_file"`
	StoreBackend string `yaml:"store_backend"`

	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`

	JWT struct {
		Secret    string            `yaml:"secret"`
		Keys      map[string]string `yaml:"keys"`
		ActiveKid string            `yaml:"active_kid"`
		TTL       time.Duration     `yaml:"ttl"`
	} `yaml:"jwt"`

	RateLimitRPM   int `yaml:"rate_limit_rpm"`
	RateLimitBurst int `yaml:"rate_limit_burst"`

	TLS struct {
		Cert    string `yaml:"cert"`
		Key     string `yaml:"key"`
		Require bool   `yaml:"require"`
	} `yaml:"tls"`

	ValkeyAddrs   []string `yaml:"valkey_addrs"`
	ValkeyChannel string   `yaml:"valkey_channel"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	c := &Config{
		Port:           "50051",
		MetricsAddr:    ":9090",
		LogLevel:       "info",
		StoreBackend:   BackendMongo,
		RateLimitRPM:   120,
		RateLimitBurst: 10,
	}
	c.Mongo.Database = "pulsechat"
	c.JWT.TTL = 24 * time.Hour
	c.ValkeyChannel = "pulsechat:events"
	return c
}

// Load builds the effective config. path may be empty; a missing .env is
// ignored.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config file")
		}
	}

	// existing environment variables win over .env
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Port)
	str("METRICS_ADDR", &c.MetricsAddr)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FILE", &c.LogFile)
	str("STORE_BACKEND", &c.StoreBackend)
	str("MONGODB_URI", &c.Mongo.URI)
	str("MONGODB_DATABASE", &c.Mongo.Database)
	str("JWT_SECRET", &c.JWT.Secret)
	str("JWT_ACTIVE_KID", &c.JWT.ActiveKid)
	str("TLS_CERT", &c.TLS.Cert)
	str("TLS_KEY", &c.TLS.Key)
	str("VALKEY_CHANNEL", &c.ValkeyChannel)

	if v := os.Getenv("JWT_KEYS"); v != "" {
		keys, err := ParseKeys(v)
		if err != nil {
			return err
		}
		c.JWT.Keys = keys
	}
	if v := os.Getenv("RATE_LIMIT_RPM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errors.Errorf("invalid RATE_LIMIT_RPM %q", v)
		}
		c.RateLimitRPM = n
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errors.Errorf("invalid RATE_LIMIT_BURST %q", v)
		}
		c.RateLimitBurst = n
	}
	if v := os.Getenv("REQUIRE_TLS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Errorf("invalid REQUIRE_TLS %q", v)
		}
		c.TLS.Require = b
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		c.ValkeyAddrs = splitList(v)
	}
	return nil
}

// ParseKeys parses "kid:secret,kid2:secret2".
func ParseKeys(v string) (map[string]string, error) {
	keys := map[string]string{}
	for _, pair := range splitList(v) {
		kid, secret, ok := strings.Cut(pair, ":")
		if !ok || kid == "" || secret == "" {
			return nil, errors.Errorf("invalid JWT_KEYS entry %q", pair)
		}
		keys[kid] = secret
	}
	return keys, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGODB_URI must be set for the mongo backend")
		}
	case BackendMemory:
	default:
		return errors.Errorf("unknown store backend %q", c.StoreBackend)
	}

	if len(c.JWT.Keys) == 0 && c.JWT.Secret == "" {
		return errors.New("either JWT_SECRET or JWT_KEYS must be set")
	}
	if len(c.JWT.Keys) > 0 {
		if _, ok := c.JWT.Keys[c.JWT.ActiveKid]; !ok {
			return errors.Errorf("JWT_ACTIVE_KID %q is not among JWT_KEYS", c.JWT.ActiveKid)
		}
	}

	if (c.TLS.Cert == "") != (c.TLS.Key == "") {
		return errors.New("TLS_CERT and TLS_KEY must be set together")
	}
	if c.TLS.Require && c.TLS.Cert == "" {
		return errors.New("REQUIRE_TLS is true but TLS_CERT/TLS_KEY are not configured")
	}
	if c.RateLimitRPM <= 0 {
		return errors.New("rate limit must be positive")
	}
	if c.RateLimitBurst <= 0 {
		return errors.New("rate limit burst must be positive")
	}
	return nil
}
