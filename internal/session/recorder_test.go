package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yashas004/persona/internal/feedback"
	"github.com/yashas004/persona/internal/metrics"
	"github.com/yashas004/persona/internal/progress"
	"github.com/yashas004/persona/pkg/capture"
	capmock "github.com/yashas004/persona/pkg/capture/mock"
	lmmock "github.com/yashas004/persona/pkg/landmark/mock"
)

func newTestRecorder(t *testing.T, cfg RecorderConfig) (*Recorder, *History) {
	t.Helper()

	if cfg.Source == nil {
		cfg.Source = &capmock.FrameSource{
			Frames: []capture.Frame{{Width: 640, Height: 480}},
			Repeat: true,
		}
	}
	if cfg.Detector == nil {
		cfg.Detector = &lmmock.Detector{}
	}
	if cfg.Engine == nil {
		cfg.Engine = feedback.NewEngine(nil)
	}
	if cfg.Tracker == nil {
		cfg.Tracker = progress.NewTracker()
	}
	if cfg.History == nil {
		cfg.History = NewHistory()
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Millisecond
	}

	r, err := NewRecorder(cfg)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	return r, cfg.History
}

func TestNewRecorder_ValidatesDependencies(t *testing.T) {
	_, err := NewRecorder(RecorderConfig{})
	if err == nil {
		t.Fatal("expected error for empty config")
	}
}

func TestRun_FacialOnlySession(t *testing.T) {
	r, history := newTestRecorder(t, RecorderConfig{})

	rec, err := r.Run(context.Background(), 20*time.Millisecond, "Tell me about your day")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// No face detected on any frame: aggregated metrics stay at defaults.
	if rec.Facial.ExpressionDiversity != 2.0 {
		t.Errorf("ExpressionDiversity = %v, want 2.0", rec.Facial.ExpressionDiversity)
	}
	if rec.Audio != nil {
		t.Errorf("Audio = %+v, want nil without a recorder", rec.Audio)
	}
	if rec.Report == nil {
		t.Fatal("Report is nil")
	}
	if len(rec.Report.Strengths) == 0 || len(rec.Report.AreasToImprove) == 0 {
		t.Errorf("report lists empty: %+v", rec.Report)
	}
	if rec.Prompt != "Tell me about your day" {
		t.Errorf("Prompt = %q", rec.Prompt)
	}
	if history.Len() != 1 {
		t.Errorf("history length = %d, want 1", history.Len())
	}
}

func TestRun_WithAudio(t *testing.T) {
	samples := make([]float64, 16000)
	for i := range samples {
		samples[i] = 0.2
	}
	rec := &capmock.Recorder{Clip: capture.Clip{Samples: samples, SampleRate: 16000}}
	r, _ := newTestRecorder(t, RecorderConfig{Audio: rec})

	record, err := r.Run(context.Background(), 20*time.Millisecond, "x")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if record.Audio == nil {
		t.Fatal("Audio metrics nil despite a working recorder")
	}
	if record.Report.VoiceScore == nil {
		t.Error("VoiceScore nil despite audio metrics")
	}
	if rec.RecordCallCount() != 1 {
		t.Errorf("audio recorder called %d times, want 1", rec.RecordCallCount())
	}
}

func TestRun_AudioFailureDegradesToFacialOnly(t *testing.T) {
	rec := &capmock.Recorder{RecordErr: errors.New("mic unavailable")}
	r, history := newTestRecorder(t, RecorderConfig{Audio: rec})

	record, err := r.Run(context.Background(), 20*time.Millisecond, "x")
	if err != nil {
		t.Fatalf("Run: %v (audio failure must not abort the session)", err)
	}
	if record.Audio != nil {
		t.Errorf("Audio = %+v, want nil after capture failure", record.Audio)
	}
	if record.Report.VoiceScore != nil {
		t.Error("VoiceScore set despite degraded session")
	}
	if history.Len() != 1 {
		t.Errorf("history length = %d, want 1", history.Len())
	}
}

func TestRun_UnreadableClipDegradesToFacialOnly(t *testing.T) {
	// Empty clip: recording "succeeds" but analysis must fail.
	rec := &capmock.Recorder{Clip: capture.Clip{SampleRate: 16000}}
	r, _ := newTestRecorder(t, RecorderConfig{Audio: rec})

	record, err := r.Run(context.Background(), 20*time.Millisecond, "x")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if record.Audio != nil {
		t.Errorf("Audio = %+v, want nil for an unreadable clip", record.Audio)
	}
}

func TestRun_FrameReadErrorIsFatal(t *testing.T) {
	readErr := errors.New("camera disconnected")
	src := &capmock.FrameSource{NextErr: readErr}
	r, history := newTestRecorder(t, RecorderConfig{Source: src})

	_, err := r.Run(context.Background(), 20*time.Millisecond, "x")
	if !errors.Is(err, readErr) {
		t.Fatalf("err = %v, want wrapped camera error", err)
	}
	if history.Len() != 0 {
		t.Errorf("history length = %d, want 0 for a failed session", history.Len())
	}
}

func TestRun_NoFramesCaptured(t *testing.T) {
	// Zero-value source reports ErrNoFrame on every call.
	src := &capmock.FrameSource{}
	r, history := newTestRecorder(t, RecorderConfig{Source: src})

	_, err := r.Run(context.Background(), 10*time.Millisecond, "x")
	if !errors.Is(err, ErrNoFramesCaptured) {
		t.Fatalf("err = %v, want ErrNoFramesCaptured", err)
	}
	if history.Len() != 0 {
		t.Errorf("history length = %d, want 0", history.Len())
	}
}

func TestRun_CancellationKeepsPartialFrames(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	r, history := newTestRecorder(t, RecorderConfig{})

	start := time.Now()
	rec, err := r.Run(ctx, 10*time.Second, "x")
	if err != nil {
		t.Fatalf("Run: %v (cancellation must not fail a session with frames)", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Run took %v, cancellation ignored", elapsed)
	}
	if rec == nil || history.Len() != 1 {
		t.Fatal("expected a session record from the partial capture")
	}
}

// blockingSource serves a fixed number of frames immediately, then blocks in
// Next until the context is cancelled, like a camera waiting on the next
// hardware frame. Next is only ever called from the capture loop goroutine.
type blockingSource struct {
	remaining int
}

func (s *blockingSource) Next(ctx context.Context) (capture.Frame, error) {
	if s.remaining > 0 {
		s.remaining--
		return capture.Frame{Width: 640, Height: 480}, nil
	}
	<-ctx.Done()
	return capture.Frame{}, ctx.Err()
}

func (s *blockingSource) Close() error { return nil }

func TestRun_CancellationDuringBlockedReadKeepsFrames(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	src := &blockingSource{remaining: 3}
	r, history := newTestRecorder(t, RecorderConfig{Source: src})

	start := time.Now()
	rec, err := r.Run(ctx, 10*time.Second, "x")
	if err != nil {
		t.Fatalf("Run: %v (cancellation inside a blocked read must not fail the session)", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Run took %v, cancellation ignored", elapsed)
	}
	if rec == nil || history.Len() != 1 {
		t.Fatal("expected a session record from the frames served before the block")
	}
}

func TestRun_RejectsConcurrentSessions(t *testing.T) {
	audio := &capmock.Recorder{Delay: 300 * time.Millisecond}
	r, _ := newTestRecorder(t, RecorderConfig{Audio: audio})

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), 200*time.Millisecond, "first")
		done <- err
	}()

	// Wait for the first session to take the slot.
	deadline := time.Now().Add(time.Second)
	for !r.Active() {
		if time.Now().After(deadline) {
			t.Fatal("first session never became active")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := r.Run(context.Background(), 10*time.Millisecond, "second"); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("err = %v, want ErrSessionActive", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("first session failed: %v", err)
	}
}

func TestRun_OnMetricsCallback(t *testing.T) {
	var calls atomic.Int64
	r, _ := newTestRecorder(t, RecorderConfig{
		OnMetrics: func(metrics.FacialMetrics) { calls.Add(1) },
	})

	if _, err := r.Run(context.Background(), 20*time.Millisecond, "x"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls.Load() == 0 {
		t.Error("OnMetrics never called")
	}
}

func TestRun_UpdatesProgress(t *testing.T) {
	tracker := progress.NewTracker()
	r, _ := newTestRecorder(t, RecorderConfig{Tracker: tracker})

	if _, err := r.Run(context.Background(), 20*time.Millisecond, "x"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := tracker.Snapshot().SessionsCompleted; got != 1 {
		t.Errorf("SessionsCompleted = %d, want 1", got)
	}
}
