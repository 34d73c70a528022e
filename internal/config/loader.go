package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"astrod/internal/common/fsutil"
)

// EnvPath names the environment variable holding the default config path.
const EnvPath = "ASTROD_CONFIG"

const (
	DefaultAddr      = "127.0.0.1:8765"
	DefaultStopGrace = 2 * time.Second
	DefaultLogLevel  = "info"
	appName          = "astro"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr            string   `json:"addr" yaml:"addr" toml:"addr"`
	DataDir         string   `json:"data_dir" yaml:"data_dir" toml:"data_dir"`
	ModelsDir       string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	EngineBin       string   `json:"engine_bin" yaml:"engine_bin" toml:"engine_bin"`
	EngineStopGrace Duration `json:"engine_stop_grace" yaml:"engine_stop_grace" toml:"engine_stop_grace"`
	PinMemory       *bool    `json:"pin_memory" yaml:"pin_memory" toml:"pin_memory"`
	LogLevel        string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSEnabled     bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins     []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Duration is a time.Duration that reads from strings like "1500ms" in every
// supported file format.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) set(s string) error {
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText serves JSON strings and TOML.
func (d *Duration) UnmarshalText(b []byte) error { return d.set(string(b)) }

func (d *Duration) UnmarshalYAML(n *yaml.Node) error { return d.set(n.Value) }

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// WithDefaults fills every unspecified field.
func (c Config) WithDefaults() (Config, error) {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.DataDir == "" {
		dir, err := fsutil.AppDataDir(appName)
		if err != nil {
			return c, err
		}
		c.DataDir = dir
	}
	var err error
	if c.DataDir, err = fsutil.ExpandHome(c.DataDir); err != nil {
		return c, err
	}
	if c.ModelsDir == "" {
		c.ModelsDir = filepath.Join(c.DataDir, "models")
	}
	if c.ModelsDir, err = fsutil.ExpandHome(c.ModelsDir); err != nil {
		return c, err
	}
	if c.EngineBin, err = fsutil.ExpandHome(c.EngineBin); err != nil {
		return c, err
	}
	if c.EngineStopGrace == 0 {
		c.EngineStopGrace = Duration(DefaultStopGrace)
	}
	if c.PinMemory == nil {
		pin := true
		c.PinMemory = &pin
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	return c, nil
}

// Merge overlays every specified field of o onto c.
func (c Config) Merge(o Config) Config {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.ModelsDir != "" {
		c.ModelsDir = o.ModelsDir
	}
	if o.EngineBin != "" {
		c.EngineBin = o.EngineBin
	}
	if o.EngineStopGrace != 0 {
		c.EngineStopGrace = o.EngineStopGrace
	}
	if o.PinMemory != nil {
		c.PinMemory = o.PinMemory
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.CORSEnabled {
		c.CORSEnabled = true
	}
	if len(o.CORSOrigins) > 0 {
		c.CORSOrigins = o.CORSOrigins
	}
	return c
}

// Validate rejects settings the daemon cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.EngineStopGrace < 0 {
		errs = append(errs, fmt.Errorf("engine_stop_grace must not be negative (got %s)", c.EngineStopGrace))
	}
	return errors.Join(errs...)
}
