package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// ValidCoachNames lists known coach backend names. Used by [Validate] to
// warn about unrecognised names; unknown names still fail later at registry
// lookup, but the warning points at the config file.
var ValidCoachNames = []string{"gemini", "openai", "anyllm"}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default creates a config with every default applied, for running without
// a config file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their documented defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Session.Duration <= 0 {
		cfg.Session.Duration = 15 * time.Second
	}
	if cfg.Session.TickInterval <= 0 {
		cfg.Session.TickInterval = 100 * time.Millisecond
	}
	if cfg.Session.Prompt == "" {
		cfg.Session.Prompt = "Tell me about your day"
	}
	if cfg.Capture.Audio.SampleRate <= 0 {
		cfg.Capture.Audio.SampleRate = 16000
	}
	if cfg.Coach.Timeout <= 0 {
		cfg.Coach.Timeout = 15 * time.Second
	}
	if cfg.Coach.MaxFailures <= 0 {
		cfg.Coach.MaxFailures = 3
	}
	if cfg.Coach.ResetTimeout <= 0 {
		cfg.Coach.ResetTimeout = 60 * time.Second
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Session.Duration < time.Second {
		errs = append(errs, fmt.Errorf("session.duration %s is too short; minimum 1s", cfg.Session.Duration))
	}
	if cfg.Session.TickInterval >= cfg.Session.Duration {
		errs = append(errs, fmt.Errorf("session.tick_interval %s must be shorter than session.duration %s",
			cfg.Session.TickInterval, cfg.Session.Duration))
	}

	validateCoachName("coach", cfg.Coach.CoachEntry)
	for i, fb := range cfg.Coach.Fallbacks {
		if fb.Name == "" {
			errs = append(errs, fmt.Errorf("coach.fallbacks[%d].name is required", i))
			continue
		}
		validateCoachName(fmt.Sprintf("coach.fallbacks[%d]", i), fb)
	}
	if cfg.Coach.Name == "" && len(cfg.Coach.Fallbacks) > 0 {
		errs = append(errs, errors.New("coach.fallbacks set without a primary coach.name"))
	}
	if cfg.Coach.Name == "" {
		slog.Info("no coach backend configured; feedback will use the local heuristic")
	}

	return errors.Join(errs...)
}

func validateCoachName(field string, entry CoachEntry) {
	if entry.Name == "" {
		return
	}
	if !slices.Contains(ValidCoachNames, entry.Name) {
		slog.Warn("unrecognised coach backend name",
			"field", field,
			"name", entry.Name,
			"known", ValidCoachNames)
	}
	if entry.APIKey == "" {
		slog.Warn("coach backend configured without an api_key; the backend may reject requests",
			"field", field,
			"name", entry.Name)
	}
}
