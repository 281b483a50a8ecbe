package driver

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"dlc/internal/config"
	"dlc/internal/oracle"
	"dlc/internal/opt"
)

// NewOracle returns the external engine described by cfg, wrapped with the
// on-disk result cache when cfg.Cache is set.
func NewOracle(cfg config.OracleConfig) (oracle.Oracle, error) {
	proc := oracle.NewProcess(cfg.Path)
	if cfg.Timeout.Duration > 0 {
		proc.Timeout = cfg.Timeout.Duration
	}
	if !cfg.Cache {
		return proc, nil
	}
	cache, err := oracle.OpenDiskCache(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("oracle cache: %w", err)
	}
	engine := cfg.Path
	if resolved, err := exec.LookPath(cfg.Path); err == nil {
		if abs, err := filepath.Abs(resolved); err == nil {
			engine = abs
		}
	}
	return oracle.WithCache(proc, cache, engine), nil
}

// evaluator picks the constant folding engine. override, when set, is used
// for the dvm engine instead of spawning cfg.Path.
func evaluator(cfg config.OracleConfig, override oracle.Oracle) (opt.Evaluator, error) {
	switch cfg.Engine {
	case config.EngineNative, "":
		return opt.NativeEvaluator{MaxSteps: cfg.MaxSteps}, nil
	case config.EngineDVM:
		o := override
		if o == nil {
			var err error
			if o, err = NewOracle(cfg); err != nil {
				return nil, err
			}
		}
		return opt.OracleEvaluator{Oracle: o}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}
