package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/depmerge/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, CacheFile)
	}
	if cfg.Cache.TTL.Duration != DefaultCacheTTL {
		t.Errorf("Cache.TTL = %v, want %v", cfg.Cache.TTL, DefaultCacheTTL)
	}
	if cfg.Toolchain.BundledDir != "klib" {
		t.Errorf("Toolchain.BundledDir = %q, want klib", cfg.Toolchain.BundledDir)
	}
	if cfg.Server.Addr != DefaultServerAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultServerAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[toolchain]
home = "/opt/tc"
version = "2.1.0"

[cache]
backend = "memory"
ttl = "90m"
max_entries = 16

[server]
addr = "127.0.0.1:9000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Toolchain.Home != "/opt/tc" || cfg.Toolchain.Version != "2.1.0" {
		t.Errorf("Toolchain = %+v", cfg.Toolchain)
	}
	if cfg.Cache.Backend != CacheMemory || cfg.Cache.MaxEntries != 16 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("Cache.TTL = %v, want 90m", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}

	tc := cfg.ToolchainSpec()
	if got := tc.EffectiveVersion("/opt/tc/klib/common/stdlib"); got != "2.1.0" {
		t.Errorf("EffectiveVersion = %q, want 2.1.0", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "[toolchain]\nversion = \"1.0\"\n")
	t.Setenv("DEPMERGE_TOOLCHAIN_VERSION", "2.0")
	t.Setenv("DEPMERGE_CACHE_BACKEND", "redis")
	t.Setenv("DEPMERGE_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("DEPMERGE_CACHE_TTL", "5m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Toolchain.Version != "2.0" {
		t.Errorf("Toolchain.Version = %q, want env value 2.0", cfg.Toolchain.Version)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
}

func TestLoadDefaultPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if _, err := Load(""); err != nil {
		t.Errorf("Load(\"\") with no config file = %v, want nil", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		env     map[string]string
		wantErr errors.Code
	}{
		{
			name:    "explicit path missing",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.toml") },
			wantErr: errors.ErrCodeFileNotFound,
		},
		{
			name:    "invalid toml",
			path:    func(t *testing.T) string { return writeConfig(t, "[cache\n") },
			wantErr: errors.ErrCodeInvalidConfig,
		},
		{
			name:    "unknown backend",
			path:    func(t *testing.T) string { return writeConfig(t, "[cache]\nbackend = \"s3\"\n") },
			wantErr: errors.ErrCodeInvalidConfig,
		},
		{
			name:    "redis without url",
			path:    func(t *testing.T) string { return writeConfig(t, "[cache]\nbackend = \"redis\"\n") },
			wantErr: errors.ErrCodeInvalidConfig,
		},
		{
			name:    "relative toolchain home",
			path:    func(t *testing.T) string { return writeConfig(t, "[toolchain]\nhome = \"tc\"\n") },
			wantErr: errors.ErrCodeInvalidConfig,
		},
		{
			name:    "toolchain version with brackets",
			path:    func(t *testing.T) string { return writeConfig(t, "[toolchain]\nversion = \"2.0]\"\n") },
			wantErr: errors.ErrCodeInvalidConfig,
		},
		{
			name:    "bad env duration",
			path:    func(t *testing.T) string { return writeConfig(t, "") },
			env:     map[string]string{"DEPMERGE_CACHE_TTL": "soon"},
			wantErr: errors.ErrCodeInvalidConfig,
		},
		{
			name:    "bad env max entries",
			path:    func(t *testing.T) string { return writeConfig(t, "") },
			env:     map[string]string{"DEPMERGE_CACHE_MAX_ENTRIES": "many"},
			wantErr: errors.ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.path(t))
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if got := errors.GetCode(err); got != tt.wantErr {
				t.Errorf("GetCode() = %v, want %v", got, tt.wantErr)
			}
		})
	}
}
