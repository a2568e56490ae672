// Package session orchestrates one recording session end to end: the frame
// capture loop, concurrent audio capture, metric extraction and aggregation,
// feedback generation, progress tracking, and history bookkeeping.
//
// Only one session runs at a time (enforced by mutex). History and the
// progress tracker are mutated exclusively by the running session pipeline.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yashas004/persona/internal/feedback"
	"github.com/yashas004/persona/internal/metrics"
	"github.com/yashas004/persona/internal/observe"
	"github.com/yashas004/persona/internal/progress"
	"github.com/yashas004/persona/pkg/capture"
	"github.com/yashas004/persona/pkg/landmark"
)

// ErrSessionActive is returned by [Recorder.Run] when a session pipeline is
// already executing.
var ErrSessionActive = errors.New("session: a session is already active")

// ErrNoFramesCaptured is returned when a session ends before a single frame
// was captured. No session record is produced in that case.
var ErrNoFramesCaptured = errors.New("session: no frames captured")

// defaultTickInterval is the pause between capture loop iterations.
const defaultTickInterval = 100 * time.Millisecond

// RecorderConfig holds all dependencies for a [Recorder].
type RecorderConfig struct {
	// Source supplies video frames. Required.
	Source capture.FrameSource

	// Detector locates face landmarks in a frame. Required.
	Detector landmark.Detector

	// Audio records a voice clip alongside the video loop. Optional;
	// when nil, sessions are scored on facial metrics only.
	Audio capture.AudioRecorder

	// AudioExtractor analyses recorded clips. Defaults to
	// [metrics.NewAudioExtractor] when Audio is set.
	AudioExtractor *metrics.AudioExtractor

	// Engine generates the feedback report. Required.
	Engine *feedback.Engine

	// Tracker owns progress state. Required.
	Tracker *progress.Tracker

	// History receives the completed session record. Required.
	History *History

	// Observer records telemetry. Defaults to [observe.DefaultMetrics].
	Observer *observe.Metrics

	// TickInterval is the pause between capture iterations. Default: 100ms.
	TickInterval time.Duration

	// OnMetrics, when set, is called with each frame's facial metrics as
	// they are extracted. Used for live display; must not block.
	OnMetrics func(metrics.FacialMetrics)
}

// Recorder drives recording sessions. All exported methods are safe for
// concurrent use; Run rejects overlapping sessions.
type Recorder struct {
	source       capture.FrameSource
	detector     landmark.Detector
	audio        capture.AudioRecorder
	audioExtract *metrics.AudioExtractor
	engine       *feedback.Engine
	tracker      *progress.Tracker
	history      *History
	obs          *observe.Metrics
	tick         time.Duration
	onMetrics    func(metrics.FacialMetrics)

	mu     sync.Mutex
	active bool
}

// NewRecorder creates a [Recorder], validating required dependencies.
func NewRecorder(cfg RecorderConfig) (*Recorder, error) {
	var errs []error
	if cfg.Source == nil {
		errs = append(errs, errors.New("session: Source is required"))
	}
	if cfg.Detector == nil {
		errs = append(errs, errors.New("session: Detector is required"))
	}
	if cfg.Engine == nil {
		errs = append(errs, errors.New("session: Engine is required"))
	}
	if cfg.Tracker == nil {
		errs = append(errs, errors.New("session: Tracker is required"))
	}
	if cfg.History == nil {
		errs = append(errs, errors.New("session: History is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if cfg.Audio != nil && cfg.AudioExtractor == nil {
		cfg.AudioExtractor = metrics.NewAudioExtractor()
	}
	if cfg.Observer == nil {
		cfg.Observer = observe.DefaultMetrics()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}

	r := &Recorder{
		source:       cfg.Source,
		detector:     cfg.Detector,
		audio:        cfg.Audio,
		audioExtract: cfg.AudioExtractor,
		engine:       cfg.Engine,
		tracker:      cfg.Tracker,
		history:      cfg.History,
		obs:          cfg.Observer,
		tick:         cfg.TickInterval,
		onMetrics:    cfg.OnMetrics,
	}
	return r, nil
}

// Run executes one full session: capture for up to duration (or until ctx is
// cancelled), aggregate, generate feedback, update progress, and append the
// record to history.
//
// Cancellation mid-capture is not an error: the pipeline continues with the
// frames collected so far, as long as at least one frame was captured.
func (r *Recorder) Run(ctx context.Context, duration time.Duration, prompt string) (*Record, error) {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return nil, ErrSessionActive
	}
	r.active = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
	}()

	ctx, span := observe.StartSpan(ctx, "session.run")
	defer span.End()

	r.obs.ActiveSessions.Add(ctx, 1)
	defer r.obs.ActiveSessions.Add(ctx, -1)

	log := observe.Logger(ctx)
	log.Info("session started", "duration", duration, "audio", r.audio != nil)

	var (
		clip     capture.Clip
		audioErr error
	)
	var g errgroup.Group
	if r.audio != nil {
		g.Go(func() error {
			var err error
			clip, err = r.audio.Record(ctx, duration)
			return err
		})
	}

	start := time.Now()
	frames, captureErr := r.captureLoop(ctx, start.Add(duration))

	// The audio task is bounded by the same duration; join it before any
	// aggregation so a partially written clip is never analysed.
	audioErr = g.Wait()

	if captureErr != nil {
		return nil, captureErr
	}
	if len(frames) == 0 {
		return nil, ErrNoFramesCaptured
	}
	elapsed := time.Since(start)

	facial, err := metrics.Aggregate(frames)
	if err != nil {
		return nil, fmt.Errorf("session: aggregate metrics: %w", err)
	}

	var audio *metrics.AudioMetrics
	if r.audio != nil {
		switch {
		case audioErr != nil:
			log.Warn("audio capture failed, scoring facial metrics only", "error", audioErr)
		default:
			am, err := r.audioExtract.Extract(clip)
			if err != nil {
				log.Warn("audio analysis failed, scoring facial metrics only", "error", err)
			} else {
				audio = &am
			}
		}
	}

	report := r.engine.Generate(ctx, prompt, facial, audio)
	badges := r.tracker.Record(report, time.Now())

	rec := Record{
		Timestamp:       time.Now(),
		DurationSeconds: elapsed.Seconds(),
		Prompt:          prompt,
		Facial:          facial,
		Audio:           audio,
		Report:          report,
		NewBadges:       badges,
	}
	r.history.Append(rec)

	r.obs.SessionDuration.Record(ctx, elapsed.Seconds())
	r.obs.SessionsCompleted.Add(ctx, 1)
	for _, b := range badges {
		r.obs.RecordBadgeUnlocked(ctx, string(b))
	}

	log.Info("session completed",
		"frames", len(frames),
		"overall_score", report.OverallScore,
		"new_badges", len(badges))

	return &rec, nil
}

// captureLoop pulls frames until the deadline passes or ctx is cancelled.
// A frame source momentarily reporting no frame is skipped; any other read
// error aborts the session.
func (r *Recorder) captureLoop(ctx context.Context, deadline time.Time) ([]metrics.FacialMetrics, error) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	var frames []metrics.FacialMetrics
	for {
		if ctx.Err() != nil {
			return frames, nil
		}
		frame, err := r.source.Next(ctx)
		switch {
		case errors.Is(err, capture.ErrNoFrame):
			// Device hiccup, try again next tick.
		case err != nil:
			// A source blocked in Next surfaces cancellation as an error
			// per the FrameSource contract. That ends capture with the
			// frames collected so far; it is not a device failure.
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return frames, nil
			}
			return nil, fmt.Errorf("session: read frame: %w", err)
		default:
			set, ok := r.detector.Detect(frame)
			fm := metrics.ExtractFacial(set, ok)
			frames = append(frames, fm)
			r.obs.FramesCaptured.Add(ctx, 1)
			if r.onMetrics != nil {
				r.onMetrics(fm)
			}
		}

		if !time.Now().Before(deadline) {
			return frames, nil
		}
		select {
		case <-ctx.Done():
			return frames, nil
		case <-ticker.C:
		}
	}
}

// Active reports whether a session pipeline is currently running.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}
