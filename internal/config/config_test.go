package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "METRICS_ADDR", "LOG_LEVEL", "LOG_FILE", "STORE_BACKEND", "MONGODB_URI",
		"MONGODB_DATABASE", "JWT_SECRET", "JWT_KEYS", "JWT_ACTIVE_KID", "TLS_CERT",
		"TLS_KEY", "REQUIRE_TLS", "RATE_LIMIT_RPM", "RATE_LIMIT_BURST", "VALKEY_ADDR", "VALKEY_CHANNEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
port: "6000"
store_backend: memory
mongo:
  database: fromfile
jwt:
  secret: file-secret
  ttl: 2h
rate_limit_rpm: 30
rate_limit_burst: 4
`
	if err := os.WriteFile(path, []byte(yml), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("RATE_LIMIT_BURST", "25")
	t.Setenv("VALKEY_ADDR", "10.0.0.1:6379, 10.0.0.2:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7000" {
		t.Fatalf("env should override file port, got %s", cfg.Port)
	}
	if cfg.StoreBackend != BackendMemory || cfg.Mongo.Database != "fromfile" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.JWT.TTL != 2*time.Hour || cfg.RateLimitRPM != 30 {
		t.Fatalf("unexpected jwt ttl / rpm: %v %d", cfg.JWT.TTL, cfg.RateLimitRPM)
	}
	if cfg.RateLimitBurst != 25 {
		t.Fatalf("env should override file burst, got %d", cfg.RateLimitBurst)
	}
	if len(cfg.ValkeyAddrs) != 2 || cfg.ValkeyAddrs[1] != "10.0.0.2:6379" {
		t.Fatalf("unexpected valkey addrs: %v", cfg.ValkeyAddrs)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Fatalf("default metrics addr lost: %s", cfg.MetricsAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_RPM", "fast")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric RATE_LIMIT_RPM")
	}

	clearEnv(t)
	t.Setenv("RATE_LIMIT_BURST", "0")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for zero RATE_LIMIT_BURST")
	}

	clearEnv(t)
	t.Setenv("JWT_KEYS", "k1")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for malformed JWT_KEYS")
	}
}

func TestParseKeys(t *testing.T) {
	keys, err := ParseKeys("k1:one, k2:two:with-colon")
	if err != nil {
		t.Fatalf("ParseKeys failed: %v", err)
	}
	if keys["k1"] != "one" || keys["k2"] != "two:with-colon" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := Default()
		c.Mongo.URI = "mongodb://localhost:27017"
		c.JWT.Secret = "s"
		return c
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}

	cases := map[string]func(c *Config){
		"mongo without uri": func(c *Config) { c.Mongo.URI = "" },
		"unknown backend":   func(c *Config) { c.StoreBackend = "sqlite" },
		"no secrets":        func(c *Config) { c.JWT.Secret = "" },
		"inactive kid": func(c *Config) {
			c.JWT.Keys = map[string]string{"k1": "one"}
			c.JWT.ActiveKid = "k2"
		},
		"half tls":         func(c *Config) { c.TLS.Cert = "cert.pem" },
		"require tls only": func(c *Config) { c.TLS.Require = true },
		"zero burst":       func(c *Config) { c.RateLimitBurst = 0 },
	}
	for name, mutate := range cases {
		c := base()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	mem := base()
	mem.StoreBackend = BackendMemory
	mem.Mongo.URI = ""
	if err := mem.Validate(); err != nil {
		t.Fatalf("memory backend needs no uri: %v", err)
	}
}
