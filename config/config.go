package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/scipunch/mytv/assets"
	"github.com/scipunch/mytv/cache"
)

type Backend = string

const (
	SQLite Backend = "sqlite"
	Bolt   Backend = "bolt"
	Memory Backend = "memory"
)

const baseCfgPath = "mytv/config.toml"

type Config struct {
	CacheBackend Backend  `toml:"cache_backend"`
	CachePath    string   `toml:"cache_path"` // Defaults to $XDG_CACHE_HOME/mytv/cache.<backend>
	Timezone     string   `toml:"timezone"`   // IANA name, e.g. "Asia/Shanghai"; empty means local
	LogLevel     string   `toml:"log_level"`
	HTTPTimeout  Duration `toml:"http_timeout"`
	RateLimit    float64  `toml:"rate_limit"` // Requests per second per host, 0 = unlimited
	UserAgent    string   `toml:"user_agent"`

	Epg     EpgConfig     `toml:"epg"`
	Iptv    IptvConfig    `toml:"iptv"`
	Metrics MetricsConfig `toml:"metrics"`
}

type EpgConfig struct {
	URL         string   `toml:"url"`
	Channels    []string `toml:"channels"`     // Display names to keep, empty keeps all
	RefreshHour int      `toml:"refresh_hour"` // Local hour before which the guide is not loaded
}

type IptvConfig struct {
	URL             string   `toml:"url"`
	CacheTTL        Duration `toml:"cache_ttl"`
	Simplify        bool     `toml:"simplify"`
	ExcludePatterns []string `toml:"exclude_patterns"` // Regex patterns on channel names
}

type MetricsConfig struct {
	Listen string `toml:"listen"` // e.g. ":9090", empty disables
}

// Duration is a time.Duration written as "90m" in TOML
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q with %w", text, err)
	}
	d.Duration = v
	return nil
}

// Read decodes the config at path over the defaults. MYTV_* overrides are
// applied even when the file is missing, so the returned Config is usable
// alongside an os.ErrNotExist error; write Default() to persist a new file.
func Read(path string) (Config, error) {
	conf := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		applyEnvOverrides(&conf)
		return conf, err
	}
	_, err = toml.Decode(string(dat), &conf)
	if err != nil {
		return conf, fmt.Errorf("failed to decode config at %s with %w", path, err)
	}
	applyEnvOverrides(&conf)
	return conf, nil
}

func Write(cfgPath string, cfg Config) error {
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config with %w", err)
	}
	basePath := path.Dir(cfgPath)
	err = os.MkdirAll(basePath, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create base config directory at '%s' with %w", basePath, err)
	}
	err = os.WriteFile(cfgPath, blob, 0644)
	if err != nil {
		return fmt.Errorf("failed to write into config file at '%s' with %w", cfgPath, err)
	}
	slog.Info("config written", "at", cfgPath)
	return nil
}

func Default() Config {
	return Config{
		CacheBackend: SQLite,
		LogLevel:     "info",
		HTTPTimeout:  Duration{30 * time.Second},
		UserAgent:    "mytv/1.0",
		Epg: EpgConfig{
			Channels:    []string{},
			RefreshHour: 0,
		},
		Iptv: IptvConfig{
			URL:             assets.DefaultPlaylist,
			CacheTTL:        Duration{time.Hour},
			ExcludePatterns: []string{},
		},
	}
}

func DefaultPath() string {
	var xdgHome = os.Getenv("XDG_CONFIG_HOME")
	if xdgHome != "" {
		return path.Join(xdgHome, baseCfgPath)
	}

	var home = os.Getenv("HOME")
	if home != "" {
		return path.Join(home, ".config", baseCfgPath)
	}

	panic("unclear where to search for the config file")
}

// ResolvedCachePath returns CachePath or the backend's default location
func (c Config) ResolvedCachePath() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	if c.CacheBackend == Bolt {
		return cache.DefaultCachePath("cache.bolt")
	}
	return cache.DefaultCachePath("cache.db")
}

// Location loads Timezone; empty means time.Local
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q with %w", c.Timezone, err)
	}
	return loc, nil
}

// Level parses LogLevel
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// Validate reports every invalid field at once
func (c Config) Validate() error {
	var problems []string

	switch c.CacheBackend {
	case SQLite, Bolt, Memory:
	default:
		problems = append(problems, fmt.Sprintf("cache_backend %q is not one of sqlite, bolt, memory", c.CacheBackend))
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.Level(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.HTTPTimeout.Duration < 0 {
		problems = append(problems, "http_timeout must not be negative")
	}
	if c.RateLimit < 0 {
		problems = append(problems, "rate_limit must not be negative")
	}
	if c.Epg.RefreshHour < 0 || c.Epg.RefreshHour > 23 {
		problems = append(problems, fmt.Sprintf("epg.refresh_hour %d is outside 0-23", c.Epg.RefreshHour))
	}
	if c.Iptv.CacheTTL.Duration < 0 {
		problems = append(problems, "iptv.cache_ttl must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// applyEnvOverrides lets MYTV_* variables replace the source URLs and backend
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("MYTV_EPG_URL"); v != "" {
		c.Epg.URL = v
	}
	if v := os.Getenv("MYTV_IPTV_URL"); v != "" {
		c.Iptv.URL = v
	}
	if v := os.Getenv("MYTV_CACHE_BACKEND"); v != "" {
		c.CacheBackend = v
	}
}
