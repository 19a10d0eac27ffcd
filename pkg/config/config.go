// Package config loads cardgraph settings from a TOML file.
//
// A file only needs the keys it changes; everything else keeps the value
// from [Default]:
//
//	[layout]
//	algorithm = "layered"
//	direction = "LR"
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
// Unknown keys are rejected so that typos surface instead of being ignored.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cardgraph/pkg/cache"
	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
	"github.com/matzehuels/cardgraph/pkg/layout"
	"github.com/matzehuels/cardgraph/pkg/route"
)

// FileName is the config file looked up in the working directory.
const FileName = "cardgraph.toml"

// Environment overrides, applied after the file.
const (
	EnvRedisAddr     = "CARDGRAPH_REDIS_ADDR"
	EnvRedisPassword = "CARDGRAPH_REDIS_PASSWORD"
	EnvServerAddr    = "CARDGRAPH_ADDR"
)

// Config is the complete configuration.
type Config struct {
	Layout Layout        `toml:"layout"`
	Router route.Options `toml:"router"`
	Cache  Cache         `toml:"cache"`
	Server Server        `toml:"server"`
	Log    Log           `toml:"log"`
}

// Layout holds the default algorithm and its options.
type Layout struct {
	Algorithm   string  `toml:"algorithm"`
	Direction   string  `toml:"direction"`
	Align       string  `toml:"align"`
	NodeSpacing float64 `toml:"node_spacing"`
	RankSpacing float64 `toml:"rank_spacing"`
	Padding     float64 `toml:"padding"`
	Iterations  int     `toml:"iterations"`
}

// Options converts the table to layout options.
func (l Layout) Options() layout.Options {
	return layout.Options{
		Direction:   layout.Direction(l.Direction),
		Align:       layout.Align(l.Align),
		NodeSpacing: l.NodeSpacing,
		RankSpacing: l.RankSpacing,
		Padding:     l.Padding,
		Iterations:  l.Iterations,
	}.WithDefaults()
}

// Cache selects the layout cache backend.
type Cache struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	TTL     string `toml:"ttl"`
	Redis   Redis  `toml:"redis"`
}

// Redis holds the redis backend connection settings.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// TTLDuration parses TTL. An empty TTL means no expiry.
func (c Cache) TTLDuration() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	return time.ParseDuration(c.TTL)
}

// Options converts the table to cache.Open options.
func (c Cache) Options() cache.Options {
	return cache.Options{
		Backend: c.Backend,
		Dir:     c.Dir,
		Redis: cache.RedisOptions{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		},
	}
}

// Server configures the HTTP service.
type Server struct {
	Addr           string `toml:"addr"`
	RequestTimeout string `toml:"request_timeout"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// Timeout parses RequestTimeout.
func (s Server) Timeout() (time.Duration, error) {
	return time.ParseDuration(s.RequestTimeout)
}

// Log configures the logger.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	lo := layout.DefaultOptions()
	return Config{
		Layout: Layout{
			Algorithm:   layout.NameLayered,
			Direction:   string(lo.Direction),
			Align:       string(lo.Align),
			NodeSpacing: lo.NodeSpacing,
			RankSpacing: lo.RankSpacing,
			Padding:     lo.Padding,
			Iterations:  lo.Iterations,
		},
		Router: route.DefaultOptions(),
		Cache: Cache{
			Backend: cache.BackendFile,
			TTL:     "168h",
			Redis:   Redis{Addr: "localhost:6379"},
		},
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: "30s",
			MaxBodyBytes:   4 << 20,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "parse config")
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads path. An empty path searches for [FileName] in the working
// directory and then in the user config directory, falling back to
// defaults when neither exists. Environment overrides are applied last.
func Load(path string) (Config, error) {
	if path == "" {
		path = Search()
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = Parse(data); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	return cfg, cfg.Validate()
}

// Search returns the first config file that exists, or "".
func Search() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "cardgraph", "config.toml"))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvRedisAddr); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := getenv(EnvRedisPassword); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := getenv(EnvServerAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	switch c.Layout.Algorithm {
	case layout.NameLayered, layout.NameTree, layout.NameGrid:
	default:
		return cgerrors.New(cgerrors.ErrCodeUnknownAlgorithm, "layout.algorithm: unknown algorithm %q", c.Layout.Algorithm)
	}
	if err := c.Layout.Options().Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	r := c.Router
	if r.CellSize < 0 || r.Margin < 0 || r.NodeSpacing < 0 || r.CornerRadius < 0 || r.MaxExpansions < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidOption, "router: values must not be negative")
	}
	switch c.Cache.Backend {
	case "", cache.BackendNull, cache.BackendFile, cache.BackendRedis:
	default:
		return cgerrors.New(cgerrors.ErrCodeInvalidOption, "cache.backend: unknown backend %q (want null, file or redis)", c.Cache.Backend)
	}
	if _, err := c.Cache.TTLDuration(); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInvalidOption, err, "cache.ttl")
	}
	if _, err := c.Server.Timeout(); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInvalidOption, err, "server.request_timeout")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidOption, "server.max_body_bytes must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return cgerrors.New(cgerrors.ErrCodeInvalidOption, "log.level: unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "logfmt":
	default:
		return cgerrors.New(cgerrors.ErrCodeInvalidOption, "log.format: unknown format %q (want text, json or logfmt)", c.Log.Format)
	}
	return nil
}

// Encode writes cfg as TOML, for "cardgraph config".
func Encode(cfg Config) ([]byte, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	sort.Strings(names)
	return cgerrors.New(cgerrors.ErrCodeInvalidOption, "unknown config keys: %s", strings.Join(names, ", "))
}
