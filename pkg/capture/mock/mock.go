// Package mock provides test doubles for the capture package interfaces.
//
// FrameSource serves a scripted sequence of frames and then either repeats
// the last frame or reports an error. Recorder returns a canned clip after
// an optional simulated capture delay.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/yashas004/persona/pkg/capture"
)

// FrameSource is a mock implementation of capture.FrameSource.
type FrameSource struct {
	mu sync.Mutex

	// Frames is the scripted frame sequence. Next serves them in order.
	Frames []capture.Frame

	// Repeat, when true, keeps serving the last frame after the script is
	// exhausted. When false, Next returns ExhaustedErr (or capture.ErrNoFrame
	// if ExhaustedErr is nil) once the script runs out.
	Repeat bool

	// NextErr, if non-nil, is returned by every Next call.
	NextErr error

	// ExhaustedErr is returned once Frames runs out and Repeat is false.
	ExhaustedErr error

	// NextCallCount is the number of times Next was called.
	NextCallCount int

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int

	pos int
}

// Next serves the next scripted frame.
func (s *FrameSource) Next(ctx context.Context) (capture.Frame, error) {
	if err := ctx.Err(); err != nil {
		return capture.Frame{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.NextCallCount++

	if s.NextErr != nil {
		return capture.Frame{}, s.NextErr
	}
	if len(s.Frames) == 0 {
		return capture.Frame{}, s.exhausted()
	}
	if s.pos >= len(s.Frames) {
		if s.Repeat {
			return s.Frames[len(s.Frames)-1], nil
		}
		return capture.Frame{}, s.exhausted()
	}
	f := s.Frames[s.pos]
	s.pos++
	return f, nil
}

func (s *FrameSource) exhausted() error {
	if s.ExhaustedErr != nil {
		return s.ExhaustedErr
	}
	return capture.ErrNoFrame
}

// Close records the call and returns nil.
func (s *FrameSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseCallCount++
	return nil
}

var _ capture.FrameSource = (*FrameSource)(nil)

// RecordCall records a single invocation of Recorder.Record.
type RecordCall struct {
	// Duration is the bound passed to Record.
	Duration time.Duration
}

// Recorder is a mock implementation of capture.AudioRecorder.
type Recorder struct {
	mu sync.Mutex

	// Clip is returned by Record when RecordErr is nil.
	Clip capture.Clip

	// RecordErr, if non-nil, is returned by every Record call.
	RecordErr error

	// Delay simulates capture time; Record sleeps this long (or until ctx is
	// cancelled) before returning.
	Delay time.Duration

	// RecordCalls records every call to Record in order.
	RecordCalls []RecordCall
}

// Record waits Delay, then returns Clip, RecordErr.
func (r *Recorder) Record(ctx context.Context, duration time.Duration) (capture.Clip, error) {
	r.mu.Lock()
	r.RecordCalls = append(r.RecordCalls, RecordCall{Duration: duration})
	delay := r.Delay
	r.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return capture.Clip{}, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.RecordErr != nil {
		return capture.Clip{}, r.RecordErr
	}
	return r.Clip, nil
}

// RecordCallCount returns the number of Record calls. Thread-safe.
func (r *Recorder) RecordCallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.RecordCalls)
}

var _ capture.AudioRecorder = (*Recorder)(nil)
