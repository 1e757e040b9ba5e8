// Package config loads the optional annotate configuration file and merges it
// with command line options.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v2"

	"github.com/tanema/annotate/lib/envfile"
	"github.com/tanema/annotate/lib/timefmt"
)

// EnvVar names the environment variable consulted when no --config is given
const EnvVar = "ANNOTATE_CONFIG"

type (
	// ColorMode controls tag coloring
	ColorMode string
	// Config is the merged result of defaults, the config file and flags
	Config struct {
		Filepath string            `yaml:"-"`
		Format   string            `yaml:"format,omitempty"`
		Color    ColorMode         `yaml:"color,omitempty"`
		LogFile  string            `yaml:"log_file,omitempty"`
		LogLevel string            `yaml:"log_level,omitempty"`
		Envfiles []string          `yaml:"envs,omitempty"`
		Env      map[string]string `yaml:"env,omitempty"`
	}
)

const (
	// ColorAuto colors tags only when stdout is a terminal
	ColorAuto ColorMode = "auto"
	// ColorAlways forces colored tags
	ColorAlways ColorMode = "always"
	// ColorNever disables colored tags
	ColorNever ColorMode = "never"
)

// Default returns the configuration used when nothing else is specified
func Default() *Config {
	return &Config{
		Format:   timefmt.DefaultPattern,
		Color:    ColorAuto,
		LogLevel: "info",
	}
}

// Load reads path on top of the defaults. An empty path falls back to
// $ANNOTATE_CONFIG, and to the defaults alone when that is unset too.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return cfg, nil
	}
	byteData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalStrict(byteData, cfg); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", path, err)
	}
	cfg.Filepath = path
	// env files in the config are relative to the config itself
	for i, file := range cfg.Envfiles {
		if !filepath.IsAbs(file) {
			cfg.Envfiles[i] = filepath.Join(filepath.Dir(path), file)
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that cannot be checked by yaml decoding
func (cfg *Config) Validate() error {
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q, expected auto, always or never", cfg.Color)
	}
	return nil
}

// UseColor resolves the color mode. isTerminal is consulted for ColorAuto.
func (cfg *Config) UseColor(isTerminal bool) bool {
	switch cfg.Color {
	case ColorAlways:
		return true
	case ColorAuto:
		return isTerminal
	default:
		return false
	}
}

// Environ builds the child environment: the inherited environment, then the
// env files, then the inline env map. It returns nil when the config adds
// nothing so the child simply inherits.
func (cfg *Config) Environ() ([]string, error) {
	if len(cfg.Envfiles) == 0 && len(cfg.Env) == 0 {
		return nil, nil
	}
	env := append([]string{}, os.Environ()...)

	fileEnv, err := envfile.Parse(cfg.Envfiles...)
	if err != nil {
		return nil, err
	}
	env = append(env, fileEnv.ToArray()...)

	keys := maps.Keys(cfg.Env)
	slices.Sort(keys)
	for _, key := range keys {
		env = append(env, fmt.Sprintf("%v=%v", key, cfg.Env[key]))
	}
	return env, nil
}
