package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
)

const toolConfigName = "vigil.toml"

// toolConfig is vigil's own optional settings file, found by walking up from
// the working directory. It only tunes presentation and caching; the checks
// themselves are not configurable.
type toolConfig struct {
	Doctor doctorConfig `toml:"doctor"`
}

type doctorConfig struct {
	UI          string `toml:"ui"`
	DelayMS     int64  `toml:"delay_ms"`
	SchemaCache bool   `toml:"schema_cache"`
}

func findToolConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, toolConfigName)
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

func loadToolConfig(startDir string) (*toolConfig, bool, error) {
	path, ok, err := findToolConfig(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg toolConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, true, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if _, err := cfg.delay(); err != nil {
		return nil, true, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, true, nil
}

// delay validates delay_ms and converts it to a duration. Negative or absurd
// values are rejected rather than clamped.
func (c *toolConfig) delay() (time.Duration, error) {
	ms, err := safecast.Conv[uint32](c.Doctor.DelayMS)
	if err != nil {
		return 0, fmt.Errorf("invalid [doctor].delay_ms %d: %w", c.Doctor.DelayMS, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
