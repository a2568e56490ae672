// Package capture defines the device capabilities the session recorder
// consumes: a pull-based video frame source and a push-based audio recorder.
//
// Both are interfaces so that the core pipeline never touches device I/O
// directly. Real implementations wrap a webcam / microphone backend; test
// code uses the doubles in the mock subpackage.
package capture

import (
	"context"
	"errors"
	"time"
)

// ErrNoFrame is returned by FrameSource.Next when the device temporarily has
// no frame available. Callers may retry on the next tick; it is not fatal.
var ErrNoFrame = errors.New("capture: no frame available")

// Frame is a single video frame pulled from a FrameSource.
type Frame struct {
	// Data is the raw pixel payload. The pipeline treats it as opaque; only
	// the landmark detector interprets it.
	Data []byte

	// Width and Height are the frame dimensions in pixels.
	Width  int
	Height int

	// Timestamp marks when this frame was captured, relative to session start.
	Timestamp time.Duration
}

// Clip is a complete mono audio recording produced by an AudioRecorder once
// capture finishes.
type Clip struct {
	// Samples is the waveform as normalised float64 samples in [-1, 1].
	Samples []float64

	// SampleRate in Hz (e.g., 16000 or 44100).
	SampleRate int
}

// FrameSource is a pull-based video frame supplier.
//
// Next blocks until a frame is ready, ctx is cancelled, or the device fails.
// Blocking on device I/O is acceptable; the capture loop paces itself.
// A device read failure is fatal to the session attempt and must be returned
// as an error other than [ErrNoFrame].
type FrameSource interface {
	// Next returns the next available frame. Returns [ErrNoFrame] when the
	// device momentarily has nothing to deliver, ctx.Err() on cancellation,
	// and any other error on device failure.
	Next(ctx context.Context) (Frame, error)

	// Close releases the device. Calling Close more than once is safe.
	Close() error
}

// AudioRecorder captures a bounded-duration audio clip.
//
// Record runs for at most the given duration (or until ctx is cancelled) and
// returns the finished clip. Implementations must not return until the clip
// is fully written; the recorder joins this call before aggregation so the
// pipeline never reads a partial recording.
type AudioRecorder interface {
	Record(ctx context.Context, duration time.Duration) (Clip, error)
}
