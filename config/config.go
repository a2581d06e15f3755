// Package config loads interpreter configuration from YAML, following
// the load-pattern used throughout the example pack's config loaders:
// os.ReadFile followed by yaml.Unmarshal into a struct pre-filled by
// Default(). The zero Config is not a usable default: its MaxDepth of 0
// stops every database call.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UnknownProcedurePolicy controls what happens when a query calls a
// predicate that is neither a built-in nor defined in the database.
type UnknownProcedurePolicy string

const (
	// PolicyFail fails the call, the classic Prolog behavior. The resolver
	// still logs the unknown-procedure warning, as under PolicyWarning.
	PolicyFail UnknownProcedurePolicy = "fail"
	// PolicyWarning fails the call but logs a warning.
	PolicyWarning UnknownProcedurePolicy = "warning"
	// PolicyError turns the call into a host-visible error.
	PolicyError UnknownProcedurePolicy = "error"
)

// Config is the interpreter's tunable behavior, loaded from a YAML file
// or left at its defaults.
type Config struct {
	// MaxDepth guards against runaway recursion (spec.md §5).
	MaxDepth int `yaml:"max_depth"`
	// UnknownProcedure selects the policy above. Empty means PolicyWarning.
	UnknownProcedure UnknownProcedurePolicy `yaml:"unknown_procedure"`
	// ClauseCacheSize bounds the first-argument-index lookup cache.
	ClauseCacheSize int `yaml:"clause_cache_size"`
	// Trace turns on CALL/EXIT/FAIL debug logging.
	Trace bool `yaml:"trace"`
	// Prompt is the REPL's prompt string.
	Prompt string `yaml:"prompt"`
}

// Default returns the interpreter's default configuration.
func Default() Config {
	return Config{
		MaxDepth:        1000,
		UnknownProcedure: PolicyWarning,
		ClauseCacheSize: 256,
		Trace:           false,
		Prompt:          "?- ",
	}
}

// Load reads and parses a YAML configuration file at path, starting from
// Default() so a partial file only overrides what it mentions.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
