// Package config loads depmerge settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Config.WithDefaults])
//  2. a TOML file (default: ~/.config/depmerge/config.toml)
//  3. DEPMERGE_* environment variables
//
// Example file:
//
//	[toolchain]
//	home    = "/opt/toolchain"
//	version = "2.1.0"
//
//	[cache]
//	backend = "redis"
//	ttl     = "24h"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depmerge/pkg/errors"
	"github.com/matzehuels/depmerge/pkg/library"
)

const appName = "depmerge"

// Cache backends.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Defaults.
const (
	DefaultCacheBackend  = CacheFile
	DefaultCacheTTL      = 24 * time.Hour
	DefaultMemoryEntries = 1024
	DefaultServerAddr    = ":8080"
	DefaultMongoDatabase = "depmerge"
)

// Config holds every depmerge setting.
type Config struct {
	Toolchain ToolchainConfig `toml:"toolchain"`
	Cache     CacheConfig     `toml:"cache"`
	Store     StoreConfig     `toml:"store"`
	Server    ServerConfig    `toml:"server"`
}

// ToolchainConfig identifies the toolchain used to infer effective versions.
type ToolchainConfig struct {
	Home       string `toml:"home"`
	Version    string `toml:"version"`
	BundledDir string `toml:"bundled_dir"`
}

// CacheConfig selects and configures the merge result cache.
type CacheConfig struct {
	Backend    string   `toml:"backend"`
	Dir        string   `toml:"dir"`
	TTL        Duration `toml:"ttl"`
	RedisURL   string   `toml:"redis_url"`
	MaxEntries int      `toml:"max_entries"`
}

// StoreConfig configures merged graph persistence. An empty MongoURI selects
// the file store below Dir.
type StoreConfig struct {
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration decoded from strings like "90m".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied.
func Default() Config {
	return Config{}.WithDefaults()
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Toolchain.BundledDir == "" {
		c.Toolchain.BundledDir = library.DefaultBundledDir
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = userDir("XDG_CACHE_HOME", ".cache")
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = DefaultCacheTTL
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = DefaultMemoryEntries
	}
	if c.Store.Dir == "" {
		c.Store.Dir = filepath.Join(userDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "graphs")
	}
	if c.Store.Database == "" {
		c.Store.Database = DefaultMongoDatabase
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	return c
}

// ToolchainSpec returns the toolchain settings as a library.Toolchain.
func (c Config) ToolchainSpec() library.Toolchain {
	return library.Toolchain{
		Home:       c.Toolchain.Home,
		Version:    c.Toolchain.Version,
		BundledDir: c.Toolchain.BundledDir,
	}
}

// Validate checks settings that cannot be defaulted.
func (c Config) Validate() error {
	backends := []string{CacheFile, CacheMemory, CacheRedis, CacheNone}
	if !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis requires redis_url")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.Toolchain.Home != "" && !filepath.IsAbs(c.Toolchain.Home) {
		return errors.New(errors.ErrCodeInvalidConfig, "toolchain home %q must be absolute", c.Toolchain.Home)
	}
	if err := errors.ValidateVersion(c.Toolchain.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "toolchain version")
	}
	return nil
}

// DefaultPath returns ~/.config/depmerge/config.toml, honoring XDG_CONFIG_HOME.
func DefaultPath() string {
	return filepath.Join(userDir("XDG_CONFIG_HOME", ".config"), "config.toml")
}

// Load reads the TOML file at path, applies environment overrides and
// defaults, and validates the result. A missing file at the default path is
// not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if explicit {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg = cfg.WithDefaults()
	return cfg, cfg.Validate()
}

// applyEnv overrides fields from DEPMERGE_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DEPMERGE_TOOLCHAIN_HOME":    &c.Toolchain.Home,
		"DEPMERGE_TOOLCHAIN_VERSION": &c.Toolchain.Version,
		"DEPMERGE_BUNDLED_DIR":       &c.Toolchain.BundledDir,
		"DEPMERGE_CACHE_BACKEND":     &c.Cache.Backend,
		"DEPMERGE_CACHE_DIR":         &c.Cache.Dir,
		"DEPMERGE_REDIS_URL":         &c.Cache.RedisURL,
		"DEPMERGE_STORE_DIR":         &c.Store.Dir,
		"DEPMERGE_MONGO_URI":         &c.Store.MongoURI,
		"DEPMERGE_MONGO_DATABASE":    &c.Store.Database,
		"DEPMERGE_SERVER_ADDR":       &c.Server.Addr,
	}
	for name, field := range strs {
		if v, ok := lookup(name); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup("DEPMERGE_CACHE_TTL"); ok && v != "" {
		if err := c.Cache.TTL.UnmarshalText([]byte(v)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "DEPMERGE_CACHE_TTL")
		}
	}
	if v, ok := lookup("DEPMERGE_CACHE_MAX_ENTRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "DEPMERGE_CACHE_MAX_ENTRIES")
		}
		c.Cache.MaxEntries = n
	}
	return nil
}

// userDir returns $<env>/depmerge or ~/<fallback>/depmerge.
func userDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, fallback, appName)
}
