// Package config loads the optional YAML run configuration shared by
// the solver subcommands. Flags override anything set here.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with YAML support for values like
// "30s" or "4000s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds the run parameters of the solver subcommands.
type Config struct {
	// Solutions is the number of distinct solutions to enumerate.
	Solutions int `yaml:"solutions"`
	// Timeout bounds the enumeration wall-clock time.
	Timeout Duration `yaml:"timeout"`
	// Encoding selects the WSP encoding: "matrix" or "int".
	Encoding string `yaml:"encoding"`
	// DefaultCapacity is the step capacity of users without an
	// explicit User-Capacity fact.
	DefaultCapacity int `yaml:"default-capacity"`
	// MaxRepairRounds caps the timetabling repair loop.
	MaxRepairRounds int `yaml:"max-repair-rounds"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Solutions:       1,
		Timeout:         Duration(4000 * time.Second),
		Encoding:        "int",
		DefaultCapacity: 20,
		MaxRepairRounds: 16,
	}
}

// Load reads a YAML configuration file over the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file (%s): %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file (%s): %w", path, err)
	}
	return cfg, nil
}
