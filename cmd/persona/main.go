// Command persona runs a self-coaching practice session: it captures video
// (and optionally audio), scores facial and voice metrics, generates a
// feedback report through a remote coach backend or the local heuristic, and
// tracks streaks and badges across sessions.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yashas004/persona/internal/config"
	"github.com/yashas004/persona/internal/feedback"
	"github.com/yashas004/persona/internal/health"
	"github.com/yashas004/persona/internal/observe"
	"github.com/yashas004/persona/internal/progress"
	"github.com/yashas004/persona/internal/resilience"
	"github.com/yashas004/persona/internal/session"
	capturesynth "github.com/yashas004/persona/pkg/capture/synthetic"
	landmarksynth "github.com/yashas004/persona/pkg/landmark/synthetic"
	"github.com/yashas004/persona/pkg/provider/coach"
	"github.com/yashas004/persona/pkg/provider/coach/anyllm"
	"github.com/yashas004/persona/pkg/provider/coach/gemini"
	"github.com/yashas004/persona/pkg/provider/coach/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	duration := flag.Duration("duration", 0, "recording length (overrides config)")
	prompt := flag.String("prompt", "", "prompt to respond to (overrides config)")
	withAudio := flag.Bool("audio", false, "capture and score voice metrics (overrides config)")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "persona: %v\n", err)
		return 1
	}
	if *duration > 0 {
		cfg.Session.Duration = *duration
	}
	if *prompt != "" {
		cfg.Session.Prompt = *prompt
	}
	if *withAudio {
		cfg.Capture.Audio.Enabled = true
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "persona: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("persona starting",
		"config", *configPath,
		"duration", cfg.Session.Duration,
		"audio", cfg.Capture.Audio.Enabled,
		"coach", cfg.Coach.Name,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "persona"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Coach backend ─────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinCoaches(reg)

	coachClient, err := buildCoach(cfg, reg)
	if err != nil {
		slog.Error("failed to build coach backend", "err", err)
		return 1
	}
	engine := feedback.NewEngine(coachClient)

	// ── Progress & history ────────────────────────────────────────────────────
	tracker := loadTracker(cfg.StateFile)
	history := session.NewHistory()

	// ── Session recorder ──────────────────────────────────────────────────────
	// Synthetic devices pace themselves like real hardware; real webcam and
	// microphone integrations plug in through the same interfaces.
	frameSource := &capturesynth.FrameSource{}
	defer frameSource.Close()

	recorderCfg := session.RecorderConfig{
		Source:       frameSource,
		Detector:     &landmarksynth.Detector{},
		Engine:       engine,
		Tracker:      tracker,
		History:      history,
		TickInterval: cfg.Session.TickInterval,
	}
	if cfg.Capture.Audio.Enabled {
		recorderCfg.Audio = &capturesynth.Recorder{SampleRate: cfg.Capture.Audio.SampleRate}
	}
	recorder, err := session.NewRecorder(recorderCfg)
	if err != nil {
		slog.Error("failed to create session recorder", "err", err)
		return 1
	}

	// ── HTTP server (health + metrics) ────────────────────────────────────────
	if cfg.Server.ListenAddr != "" {
		srv := newHTTPServer(cfg.Server.ListenAddr, recorder)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server error", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		slog.Info("serving health and metrics", "addr", cfg.Server.ListenAddr)
	}

	// ── Run one session ───────────────────────────────────────────────────────
	fmt.Printf("Prompt: %s\n", cfg.Session.Prompt)
	fmt.Printf("Recording for %s — press Ctrl+C to stop early.\n\n", cfg.Session.Duration)

	rec, err := recorder.Run(ctx, cfg.Session.Duration, cfg.Session.Prompt)
	if err != nil {
		slog.Error("session failed", "err", err)
		return 1
	}

	printReport(rec)
	printProgress(tracker.Snapshot())

	if cfg.StateFile != "" {
		if err := session.SaveBundle(cfg.StateFile, history, tracker); err != nil {
			slog.Warn("failed to save state", "path", cfg.StateFile, "err", err)
		} else {
			slog.Info("state saved", "path", cfg.StateFile)
		}
	}
	return 0
}

// loadConfig reads the config file, falling back to built-in defaults when
// the default path does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no config file found, using defaults", "path", path)
		return config.Default(), nil
	}
	return cfg, err
}

// ── Coach wiring ──────────────────────────────────────────────────────────────

// registerBuiltinCoaches wires all built-in coach backend factories into reg.
func registerBuiltinCoaches(reg *config.Registry) {
	reg.RegisterCoach("gemini", func(entry config.CoachEntry, cfg config.CoachConfig) (coach.Client, error) {
		opts := []gemini.Option{gemini.WithTimeout(cfg.Timeout)}
		if entry.Model != "" {
			opts = append(opts, gemini.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(entry.BaseURL))
		}
		return gemini.New(entry.APIKey, opts...)
	})

	reg.RegisterCoach("openai", func(entry config.CoachEntry, cfg config.CoachConfig) (coach.Client, error) {
		opts := []openai.Option{openai.WithTimeout(cfg.Timeout)}
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		return openai.New(entry.APIKey, entry.Model, opts...)
	})

	// anyllm reaches any provider the any-llm library supports; the model is
	// written as "provider/model", e.g. "ollama/llama3" or "anthropic/claude-3-5-sonnet".
	reg.RegisterCoach("anyllm", func(entry config.CoachEntry, cfg config.CoachConfig) (coach.Client, error) {
		providerName, model, ok := strings.Cut(entry.Model, "/")
		if !ok {
			return nil, fmt.Errorf(`anyllm model must be "provider/model", got %q`, entry.Model)
		}
		var opts []anyllmlib.Option
		if entry.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New(providerName, model, opts...)
	})
}

// buildCoach creates the configured backend chain: the primary coach wrapped
// in a circuit-breaking failover group with any configured fallbacks. A nil
// return (with nil error) means no remote coach is configured.
func buildCoach(cfg *config.Config, reg *config.Registry) (coach.Client, error) {
	if cfg.Coach.Name == "" {
		return nil, nil
	}

	primary, err := reg.CreateCoach(cfg.Coach.CoachEntry, cfg.Coach)
	if err != nil {
		return nil, err
	}

	cbCfg := resilience.CircuitBreakerConfig{
		MaxFailures:  cfg.Coach.MaxFailures,
		ResetTimeout: cfg.Coach.ResetTimeout,
	}
	chain := resilience.NewCoachFallback(primary, cfg.Coach.Name, cbCfg)
	for _, fb := range cfg.Coach.Fallbacks {
		client, err := reg.CreateCoach(fb, cfg.Coach)
		if err != nil {
			return nil, err
		}
		chain.AddFallback(fb.Name, client)
		slog.Info("coach fallback registered", "name", fb.Name)
	}
	return chain, nil
}

// ── State persistence ─────────────────────────────────────────────────────────

// loadTracker restores progress from the state file when one is configured
// and present; otherwise it starts fresh.
func loadTracker(path string) *progress.Tracker {
	if path == "" {
		return progress.NewTracker()
	}
	bundle, err := session.LoadBundle(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("could not restore state, starting fresh", "path", path, "err", err)
		}
		return progress.NewTracker()
	}
	slog.Info("progress restored",
		"path", path,
		"sessions", bundle.Progress.SessionsCompleted,
		"streak", bundle.Progress.CurrentStreak)
	return progress.NewTrackerFromState(bundle.Progress)
}

// ── HTTP server ───────────────────────────────────────────────────────────────

func newHTTPServer(addr string, recorder *session.Recorder) *http.Server {
	healthHandler := health.New(
		health.Checker{Name: "session", Check: func(context.Context) error {
			if recorder.Active() {
				return errors.New("session in progress")
			}
			return nil
		}},
	)

	mux := http.NewServeMux()
	healthHandler.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           observe.Middleware(observe.DefaultMetrics())(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// ── Output ────────────────────────────────────────────────────────────────────

func printReport(rec *session.Record) {
	report := rec.Report

	fmt.Println("── Session report ──────────────────────")
	fmt.Printf("Overall score:    %.1f\n", report.OverallScore)
	fmt.Printf("Expression score: %.1f\n", report.ExpressionScore)
	if report.VoiceScore != nil {
		fmt.Printf("Voice score:      %.1f\n", *report.VoiceScore)
	}
	fmt.Println("\nStrengths:")
	for _, s := range report.Strengths {
		fmt.Printf("  + %s\n", s)
	}
	fmt.Println("Areas to improve:")
	for _, a := range report.AreasToImprove {
		fmt.Printf("  - %s\n", a)
	}
	fmt.Println("Tips:")
	for _, tip := range report.Tips {
		fmt.Printf("  * %s\n", tip)
	}
	if len(rec.NewBadges) > 0 {
		fmt.Println("\nNew badges:")
		for _, b := range rec.NewBadges {
			fmt.Printf("  ★ %s\n", b)
		}
	}
}

func printProgress(state progress.State) {
	fmt.Println("\n── Progress ────────────────────────────")
	fmt.Printf("Sessions completed: %d\n", state.SessionsCompleted)
	fmt.Printf("Current streak:     %d day(s)\n", state.CurrentStreak)
	if len(state.Unlocked) > 0 {
		fmt.Printf("Badges:             %d unlocked\n", len(state.Unlocked))
	}
}

// ── Logger ────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
