// Package config loads flowlayout's TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/flowlayout/config.toml (see [Path])
// and is optional: a missing file yields [Default]. Every section may be
// omitted, and zero values inside a section are replaced by defaults in
// [Config.ApplyDefaults]. Command-line flags override file values.
//
//	[layout]
//	direction = "LR"
//	node_spacing_x = 320
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[history]
//	backend = "sql"
//	driver = "postgres"
//	dsn = "postgres://localhost/flowlayout?sslmode=disable"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowlayout/pkg/layout"
)

// Backend names.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendSQL   = "sql"
	BackendMongo = "mongo"
)

// Config is the whole configuration file.
type Config struct {
	Layout  Layout              `toml:"layout"`
	Align   layout.AlignOptions `toml:"align"`
	Cache   Cache               `toml:"cache"`
	History History             `toml:"history"`
	Server  Server              `toml:"server"`
}

// Layout holds the default layout parameters.
type Layout struct {
	Direction    string  `toml:"direction"`
	NodeSpacingX float64 `toml:"node_spacing_x"`
	NodeSpacingY float64 `toml:"node_spacing_y"`
	LevelSpacing float64 `toml:"level_spacing"`
	CenterNodes  *bool   `toml:"center_nodes"`
	NodeWidth    float64 `toml:"node_width"`
	NodeHeight   float64 `toml:"node_height"`
	BreakCycles  bool    `toml:"break_cycles"`
	Grid         float64 `toml:"grid"`
}

// Options converts the section to layout options.
func (l Layout) Options() layout.Options {
	opts := layout.DefaultOptions()
	if dir, err := layout.ParseDirection(l.Direction); err == nil {
		opts.Direction = dir
	}
	opts.NodeSpacing = layout.Spacing{X: l.NodeSpacingX, Y: l.NodeSpacingY}
	opts.LevelSpacing = l.LevelSpacing
	opts.NodeWidth = l.NodeWidth
	opts.NodeHeight = l.NodeHeight
	opts.BreakCycles = l.BreakCycles
	if l.CenterNodes != nil {
		opts.CenterNodes = *l.CenterNodes
	}
	return opts
}

// Cache configures the layout result cache.
type Cache struct {
	// Backend is "file", "redis" or "none".
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// History configures the recent-documents store.
type History struct {
	// Backend is "file", "sql", "mongo" or "none".
	Backend    string `toml:"backend"`
	Path       string `toml:"path"`
	MaxEntries int    `toml:"max_entries"`

	// Driver is the database/sql driver for the sql backend: sqlite3,
	// mysql or postgres.
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	CacheLayouts bool     `toml:"cache_layouts"`
}

// Defaults.
const (
	DefaultCacheTTL       = 24 * time.Hour
	DefaultMaxEntries     = 10
	DefaultServerAddr     = ":8080"
	DefaultReadTimeout    = 15 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxBodyBytes   = 4 << 20
	DefaultRedisPrefix    = "flowlayout:"
	DefaultMongoDatabase  = "flowlayout"
	DefaultMongoColl      = "history"
	DefaultHistoryDriver  = "sqlite3"
	defaultDirectionValue = string(layout.TopBottom)
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{Align: layout.DefaultAlignOptions()}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field. Directory-valued fields get
// their XDG locations; if the home directory cannot be determined they
// stay empty and the file backends fall back to "none".
func (c *Config) ApplyDefaults() {
	l := &c.Layout
	if l.Direction == "" {
		l.Direction = defaultDirectionValue
	}
	if l.NodeSpacingX == 0 {
		l.NodeSpacingX = layout.DefaultSpacingX
	}
	if l.NodeSpacingY == 0 {
		l.NodeSpacingY = layout.DefaultSpacingY
	}
	if l.LevelSpacing == 0 {
		l.LevelSpacing = layout.DefaultLevelSpacing
	}
	if l.NodeWidth == 0 {
		l.NodeWidth = layout.DefaultNodeWidth
	}
	if l.NodeHeight == 0 {
		l.NodeHeight = layout.DefaultNodeHeight
	}

	a := &c.Align
	if a.GridSize == 0 {
		a.GridSize = layout.DefaultGridSize
	}
	if a.SnapDistance == 0 {
		a.SnapDistance = layout.DefaultSnapDistance
	}
	if a.NodeWidth == 0 {
		a.NodeWidth = l.NodeWidth
	}
	if a.NodeHeight == 0 {
		a.NodeHeight = l.NodeHeight
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = Duration(DefaultCacheTTL)
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir, _ = CacheDir()
	}
	if c.Cache.RedisPrefix == "" {
		c.Cache.RedisPrefix = DefaultRedisPrefix
	}

	h := &c.History
	if h.Backend == "" {
		h.Backend = BackendFile
	}
	if h.MaxEntries <= 0 {
		h.MaxEntries = DefaultMaxEntries
	}
	if h.Path == "" {
		h.Path, _ = HistoryPath()
	}
	if h.Driver == "" {
		h.Driver = DefaultHistoryDriver
	}
	if h.MongoDatabase == "" {
		h.MongoDatabase = DefaultMongoDatabase
	}
	if h.MongoCollection == "" {
		h.MongoCollection = DefaultMongoColl
	}

	s := &c.Server
	if s.Addr == "" {
		s.Addr = DefaultServerAddr
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Validate rejects unknown directions and backends.
func (c *Config) Validate() error {
	if _, err := layout.ParseDirection(c.Layout.Direction); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	switch c.History.Backend {
	case BackendFile, BackendSQL, BackendMongo, BackendNone:
	default:
		return fmt.Errorf("history.backend: unknown backend %q", c.History.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New("cache.redis_addr is required for the redis backend")
	}
	if c.History.Backend == BackendSQL && c.History.DSN == "" {
		return errors.New("history.dsn is required for the sql backend")
	}
	if c.History.Backend == BackendMongo && c.History.MongoURI == "" {
		return errors.New("history.mongo_uri is required for the mongo backend")
	}
	return nil
}

// Load reads the file at path. A missing file is not an error and yields
// [Default]. Keys the file does not recognize are reported as an error so
// that typos do not go unnoticed.
func Load(path string) (*Config, error) {
	cfg := &Config{Align: layout.DefaultAlignOptions()}

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads the file at [Path].
func LoadDefault() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return Load(path)
}

// Write encodes cfg as TOML to path, creating parent directories.
func Write(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Duration is a time.Duration written as a string ("90s", "24h") in TOML.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
