package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Export.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, want %d", cfg.Export.Concurrency, DefaultConcurrency)
	}
	if cfg.Export.Retries != DefaultRetries {
		t.Errorf("Retries = %d, want %d", cfg.Export.Retries, DefaultRetries)
	}
	if cfg.Server.Timeout.Duration != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Server.Timeout.Duration, DefaultTimeout)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, BackendFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
url = "https://nexus.example.com/"
username = "admin"
timeout = "30s"

[export]
output = "/srv/backup"
concurrency = 8
repositories = ["maven-releases", "npm-hosted"]

[cache]
backend = "redis"
ttl = "5m"

[cache.redis]
addr = "localhost:6379"

[status]
addr = ":8099"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.URL != "https://nexus.example.com/" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
	if cfg.BaseURL() != "https://nexus.example.com" {
		t.Errorf("BaseURL = %q, want trailing slash stripped", cfg.BaseURL())
	}
	if cfg.Server.Username != "admin" {
		t.Errorf("Username = %q", cfg.Server.Username)
	}
	if cfg.Server.Timeout.Duration != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Server.Timeout.Duration)
	}
	if cfg.Export.Output != "/srv/backup" {
		t.Errorf("Output = %q", cfg.Export.Output)
	}
	if cfg.Export.Concurrency != 8 {
		t.Errorf("Concurrency = %d", cfg.Export.Concurrency)
	}
	// Retries not set in file keeps the default
	if cfg.Export.Retries != DefaultRetries {
		t.Errorf("Retries = %d, want default %d", cfg.Export.Retries, DefaultRetries)
	}
	if len(cfg.Export.Repositories) != 2 || cfg.Export.Repositories[0] != "maven-releases" {
		t.Errorf("Repositories = %v", cfg.Export.Repositories)
	}
	if cfg.Cache.Backend != BackendRedis {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Duration != 5*time.Minute {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL.Duration)
	}
	if cfg.Cache.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Cache.Redis.Addr)
	}
	if cfg.Status.Addr != ":8099" {
		t.Errorf("Status.Addr = %q", cfg.Status.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load missing file should not error: %v", err)
	}
	if cfg.Export.Concurrency != DefaultConcurrency {
		t.Errorf("missing file should keep defaults, Concurrency = %d", cfg.Export.Concurrency)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nnot toml"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on invalid TOML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NEXPORT_URL", "https://env.example.com")
	t.Setenv("NEXPORT_USERNAME", "envuser")
	t.Setenv("NEXPORT_PASSWORD", "envpass")
	t.Setenv("NEXPORT_CONCURRENCY", "12")
	t.Setenv("NEXPORT_CACHE_BACKEND", "none")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.URL != "https://env.example.com" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
	if cfg.Server.Username != "envuser" {
		t.Errorf("Username = %q", cfg.Server.Username)
	}
	if cfg.Server.Password != "envpass" {
		t.Errorf("Password = %q", cfg.Server.Password)
	}
	if cfg.Export.Concurrency != 12 {
		t.Errorf("Concurrency = %d", cfg.Export.Concurrency)
	}
	if cfg.Cache.Backend != BackendNone {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:   "valid with url",
			mutate: func(c *Config) { c.Server.URL = "http://localhost:8081" },
		},
		{
			name:    "bad url scheme",
			mutate:  func(c *Config) { c.Server.URL = "ftp://nexus" },
			wantErr: true,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Export.Concurrency = 0 },
			wantErr: true,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Export.Retries = -1 },
			wantErr: true,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Server.Timeout = Duration{-time.Second} },
			wantErr: true,
		},
		{
			name:    "unknown cache backend",
			mutate:  func(c *Config) { c.Cache.Backend = "memcached" },
			wantErr: true,
		},
		{
			name:    "redis backend without addr",
			mutate:  func(c *Config) { c.Cache.Backend = BackendRedis },
			wantErr: true,
		},
		{
			name: "redis backend with addr",
			mutate: func(c *Config) {
				c.Cache.Backend = BackendRedis
				c.Cache.Redis.Addr = "localhost:6379"
			},
		},
		{
			name:    "invalid repository name",
			mutate:  func(c *Config) { c.Export.Repositories = []string{"bad/name"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", d.Duration)
	}
	if err := d.UnmarshalText([]byte("not a duration")); err == nil {
		t.Error("UnmarshalText should reject invalid input")
	}
}
