package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so configuration files can use human readable
// strings such as "150ms". Numeric values are read as nanoseconds.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null values decode
// to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.UnmarshalText([]byte(s))
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration: expected scalar at line %d", node.Line)
	}
	if node.Tag == "!!int" {
		var n int64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		*d = Duration(time.Duration(n))
		return nil
	}
	return d.UnmarshalText([]byte(node.Value))
}

func (d *Duration) UnmarshalTOML(v interface{}) error {
	switch value := v.(type) {
	case string:
		return d.UnmarshalText([]byte(value))
	case int64:
		*d = Duration(time.Duration(value))
		return nil
	default:
		return fmt.Errorf("duration: unsupported toml value %T", v)
	}
}

// Config captures the tunable parameters of a world server.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server" toml:"server"`
	Terrain TerrainConfig `json:"terrain" yaml:"terrain" toml:"terrain"`
	Physics PhysicsConfig `json:"physics" yaml:"physics" toml:"physics"`
	Network NetworkConfig `json:"network" yaml:"network" toml:"network"`
	World   WorldConfig   `json:"world" yaml:"world" toml:"world"`
}

type ServerConfig struct {
	ID                 string   `json:"id" yaml:"id" toml:"id"`
	Description        string   `json:"description" yaml:"description" toml:"description"`
	TickRate           Duration `json:"tickRate" yaml:"tickRate" toml:"tickRate"`                               // physics step, e.g. "33ms"
	SnapshotRate       Duration `json:"snapshotRate" yaml:"snapshotRate" toml:"snapshotRate"`                   // state snapshot broadcast period
	MaxConcurrentLoads int      `json:"maxConcurrentLoads" yaml:"maxConcurrentLoads" toml:"maxConcurrentLoads"` // 0 = unbounded
	RequestTimeout     Duration `json:"requestTimeout" yaml:"requestTimeout" toml:"requestTimeout"`             // how long a chunk request waits
}

type TerrainConfig struct {
	Seed           int64 `json:"seed" yaml:"seed" toml:"seed"`
	Workers        int   `json:"workers" yaml:"workers" toml:"workers"`                      // 0 = GOMAXPROCS
	PrefetchRadius int   `json:"prefetchRadius" yaml:"prefetchRadius" toml:"prefetchRadius"` // chunks around each joining player
}

type PhysicsConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled" toml:"enabled"`
	DrainBatch int  `json:"drainBatch" yaml:"drainBatch" toml:"drainBatch"` // commands per step, 0 = all
}

type NetworkConfig struct {
	ListenUDP            string `json:"listenUdp" yaml:"listenUdp" toml:"listenUdp"`                                  // ":19000"
	ListenHTTP           string `json:"listenHttp" yaml:"listenHttp" toml:"listenHttp"`                               // empty disables websocket snapshots
	MaxDatagramSizeBytes int    `json:"maxDatagramSizeBytes" yaml:"maxDatagramSizeBytes" toml:"maxDatagramSizeBytes"` // default to 64 KiB - UDP practical limit
}

type WorldConfig struct {
	PreviewDir string `json:"previewDir" yaml:"previewDir" toml:"previewDir"` // empty disables PNG previews
}

// Load reads configuration from a file, choosing the decoder by extension
// (.json, .yaml/.yml, .toml). An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ID:                 "world-server-0",
			Description:        "local development world server",
			TickRate:           Duration(33 * time.Millisecond),
			SnapshotRate:       Duration(100 * time.Millisecond),
			MaxConcurrentLoads: 4,
			RequestTimeout:     Duration(5 * time.Second),
		},
		Terrain: TerrainConfig{
			Seed:           1337,
			Workers:        0,
			PrefetchRadius: 1,
		},
		Physics: PhysicsConfig{
			Enabled:    true,
			DrainBatch: 0,
		},
		Network: NetworkConfig{
			ListenUDP:            ":19000",
			ListenHTTP:           "",
			MaxDatagramSizeBytes: 1 << 16,
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.ID == "" {
		return errors.New("server.id must be set")
	}
	if c.Server.TickRate <= 0 {
		return errors.New("server.tickRate must be positive")
	}
	if c.Server.SnapshotRate <= 0 {
		return errors.New("server.snapshotRate must be positive")
	}
	if c.Server.MaxConcurrentLoads < 0 {
		return errors.New("server.maxConcurrentLoads cannot be negative")
	}
	if c.Terrain.Workers < 0 {
		return errors.New("terrain.workers cannot be negative")
	}
	if c.Terrain.PrefetchRadius < 0 {
		return errors.New("terrain.prefetchRadius cannot be negative")
	}
	if c.Physics.DrainBatch < 0 {
		return errors.New("physics.drainBatch cannot be negative")
	}
	if c.Network.ListenUDP == "" {
		return errors.New("network.listenUdp must be set")
	}
	if c.Network.MaxDatagramSizeBytes <= 0 {
		return errors.New("network.maxDatagramSizeBytes must be positive")
	}
	return nil
}
