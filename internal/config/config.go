// Package config loads dlc.toml, the optional per-directory compiler
// configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up next to sources.
const FileName = "dlc.toml"

// Engines accepted by [oracle].engine.
const (
	EngineNative = "native"
	EngineDVM    = "dvm"
)

var knownPasses = []string{"fold", "cse", "prune", "inline"}

type Config struct {
	Compile  CompileConfig  `toml:"compile"`
	Optimize OptimizeConfig `toml:"optimize"`
	Oracle   OracleConfig   `toml:"oracle"`

	// Path is the file the configuration was read from; empty for defaults.
	Path string `toml:"-"`
}

type CompileConfig struct {
	Entry     string `toml:"entry"`
	Extension string `toml:"extension"`
}

type OptimizeConfig struct {
	Passes          []string `toml:"passes"`
	InlineThreshold int      `toml:"inline_threshold"`
	MaxRounds       int      `toml:"max_rounds"`
}

type OracleConfig struct {
	Engine   string   `toml:"engine"`
	Path     string   `toml:"path"`
	Timeout  Duration `toml:"timeout"`
	Cache    bool     `toml:"cache"`
	CacheDir string   `toml:"cache_dir"`
	MaxSteps int      `toml:"max_steps"`
}

// Duration decodes TOML strings such as "10s".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Compile: CompileConfig{Entry: "main", Extension: ".dis"},
		Optimize: OptimizeConfig{
			Passes:          slices.Clone(knownPasses),
			InlineThreshold: 2,
			MaxRounds:       64,
		},
		Oracle: OracleConfig{
			Engine:   EngineNative,
			Path:     "dvm",
			Timeout:  Duration{10 * time.Second},
			MaxSteps: 1_000_000,
		},
	}
}

// Find walks up from startDir looking for dlc.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the dlc.toml governing startDir, or defaults when none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads path over the defaults and validates the result. Keys not
// present in the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("compile", "entry") && strings.TrimSpace(cfg.Compile.Entry) == "" {
		return Config{}, fmt.Errorf("%s: [compile].entry must not be empty", path)
	}
	if meta.IsDefined("optimize", "passes") && cfg.Optimize.Passes == nil {
		cfg.Optimize.Passes = []string{}
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges; it is also run after CLI overrides.
func (c *Config) Validate() error {
	var errs []error
	if c.Compile.Extension == "" || !strings.HasPrefix(c.Compile.Extension, ".") {
		errs = append(errs, fmt.Errorf("[compile].extension must start with '.', got %q", c.Compile.Extension))
	}
	for _, p := range c.Optimize.Passes {
		if !slices.Contains(knownPasses, strings.ToLower(strings.TrimSpace(p))) {
			errs = append(errs, fmt.Errorf("[optimize].passes: unknown pass %q", p))
		}
	}
	if c.Optimize.InlineThreshold < 0 {
		errs = append(errs, fmt.Errorf("[optimize].inline_threshold must be >= 0"))
	}
	if c.Optimize.MaxRounds <= 0 {
		errs = append(errs, fmt.Errorf("[optimize].max_rounds must be > 0"))
	}
	switch c.Oracle.Engine {
	case EngineNative, EngineDVM:
	default:
		errs = append(errs, fmt.Errorf("[oracle].engine must be %q or %q, got %q", EngineNative, EngineDVM, c.Oracle.Engine))
	}
	if c.Oracle.Engine == EngineDVM && strings.TrimSpace(c.Oracle.Path) == "" {
		errs = append(errs, fmt.Errorf("[oracle].path is required for the dvm engine"))
	}
	if c.Oracle.Timeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("[oracle].timeout must be positive"))
	}
	if c.Oracle.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("[oracle].max_steps must be >= 0"))
	}
	return errors.Join(errs...)
}
