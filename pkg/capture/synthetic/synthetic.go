// Package synthetic provides generated frame and audio sources. They stand
// in for real webcam and microphone devices so the full session pipeline can
// run on machines without capture hardware, and they pace themselves like
// real devices (frames arrive over time, recording blocks for its duration).
package synthetic

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/yashas004/persona/pkg/capture"
)

// FrameSource generates blank frames of a fixed size, timestamped from the
// first Next call.
type FrameSource struct {
	// Width and Height are the frame dimensions. Defaults: 640x480.
	Width, Height int

	mu     sync.Mutex
	start  time.Time
	closed bool
}

// Next returns the next generated frame. It never blocks and never runs out.
func (s *FrameSource) Next(ctx context.Context) (capture.Frame, error) {
	if err := ctx.Err(); err != nil {
		return capture.Frame{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return capture.Frame{}, capture.ErrNoFrame
	}
	if s.start.IsZero() {
		s.start = time.Now()
	}
	w, h := s.Width, s.Height
	if w <= 0 {
		w = 640
	}
	if h <= 0 {
		h = 480
	}
	return capture.Frame{
		Data:      make([]byte, w*h*3),
		Width:     w,
		Height:    h,
		Timestamp: time.Since(s.start),
	}, nil
}

// Close stops the source; subsequent Next calls report no frame.
func (s *FrameSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ capture.FrameSource = (*FrameSource)(nil)

// Recorder generates a spoken-voice-like waveform: a low fundamental with
// slow amplitude and pitch modulation. Record blocks for the requested
// duration to mimic a real microphone.
type Recorder struct {
	// SampleRate is the generated clip's sample rate. Default: 16000.
	SampleRate int
}

// Record waits out the duration (or until ctx is cancelled) and returns the
// generated clip covering the elapsed time.
func (r *Recorder) Record(ctx context.Context, duration time.Duration) (capture.Clip, error) {
	start := time.Now()
	select {
	case <-time.After(duration):
	case <-ctx.Done():
	}
	elapsed := time.Since(start)
	if elapsed > duration {
		elapsed = duration
	}

	rate := r.SampleRate
	if rate <= 0 {
		rate = 16000
	}
	n := int(elapsed.Seconds() * float64(rate))
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(rate)
		freq := 140 + 30*math.Sin(2*math.Pi*0.5*t)
		amp := 0.15 + 0.1*math.Sin(2*math.Pi*0.3*t)
		samples[i] = amp * math.Sin(2*math.Pi*freq*t)
	}
	return capture.Clip{Samples: samples, SampleRate: rate}, nil
}

var _ capture.AudioRecorder = (*Recorder)(nil)
