// Package config provides the configuration schema, loader, and coach
// backend registry for the Persona coaching tool.
package config

import "time"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Capture CaptureConfig `yaml:"capture"`
	Coach   CoachConfig   `yaml:"coach"`

	// StateFile, when set, is where the session bundle (history + progress)
	// is saved on shutdown and restored from on startup.
	StateFile string `yaml:"state_file"`
}

// ServerConfig holds network and logging settings for the metrics/health
// endpoint.
type ServerConfig struct {
	// ListenAddr is the TCP address the HTTP server listens on
	// (e.g., ":8080"). Empty disables the server.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// SessionConfig holds recording session defaults. Flags on the command line
// override these per run.
type SessionConfig struct {
	// Duration is the recording length. Default: 15s.
	Duration time.Duration `yaml:"duration"`

	// TickInterval is the pause between capture loop iterations.
	// Default: 100ms.
	TickInterval time.Duration `yaml:"tick_interval"`

	// Prompt is the default text the user responds to.
	Prompt string `yaml:"prompt"`
}

// CaptureConfig holds device capture settings.
type CaptureConfig struct {
	Audio AudioCaptureConfig `yaml:"audio"`
}

// AudioCaptureConfig configures the optional microphone capture.
type AudioCaptureConfig struct {
	// Enabled turns on voice capture and scoring.
	Enabled bool `yaml:"enabled"`

	// SampleRate is the capture sample rate in Hz. Default: 16000.
	SampleRate int `yaml:"sample_rate"`
}

// CoachConfig selects the remote feedback backend. An empty Name means no
// remote coach: every report comes from the local heuristic.
type CoachConfig struct {
	CoachEntry `yaml:",inline"`

	// Timeout bounds each remote request. Default: 15s.
	Timeout time.Duration `yaml:"timeout"`

	// MaxFailures is the circuit breaker failure threshold per backend.
	// Default: 3.
	MaxFailures int `yaml:"max_failures"`

	// ResetTimeout is how long an open breaker waits before probing.
	// Default: 60s.
	ResetTimeout time.Duration `yaml:"reset_timeout"`

	// Fallbacks lists additional backends tried in order when the primary
	// fails.
	Fallbacks []CoachEntry `yaml:"fallbacks"`
}

// CoachEntry is the configuration block shared by all coach backends. The
// Name field selects the registered factory in the [Registry].
type CoachEntry struct {
	// Name selects the backend implementation (e.g., "gemini", "openai",
	// "anyllm").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the backend's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the backend's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the backend
	// (e.g., "gemini-pro", "gpt-4o", "ollama/llama3").
	Model string `yaml:"model"`
}
