// Package mock provides a test double for the landmark.Detector interface.
package mock

import (
	"sync"

	"github.com/yashas004/persona/pkg/capture"
	"github.com/yashas004/persona/pkg/landmark"
)

// Detection is one scripted Detect result.
type Detection struct {
	Set landmark.Set
	OK  bool
}

// Detector is a mock implementation of landmark.Detector. It serves the
// scripted Detections in order; once exhausted it repeats the last one.
// A zero-value Detector reports no face for every frame.
type Detector struct {
	mu sync.Mutex

	// Detections is the scripted result sequence.
	Detections []Detection

	// DetectCallCount is the number of times Detect was called.
	DetectCallCount int

	pos int
}

// Detect serves the next scripted detection.
func (d *Detector) Detect(_ capture.Frame) (landmark.Set, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.DetectCallCount++

	if len(d.Detections) == 0 {
		return nil, false
	}
	if d.pos >= len(d.Detections) {
		last := d.Detections[len(d.Detections)-1]
		return last.Set, last.OK
	}
	det := d.Detections[d.pos]
	d.pos++
	return det.Set, det.OK
}

var _ landmark.Detector = (*Detector)(nil)

// FaceAt builds a full-size landmark set with every point at p, then applies
// the given overrides by mesh index. Convenient for constructing faces with
// known metric outcomes.
func FaceAt(p landmark.Point, overrides map[int]landmark.Point) landmark.Set {
	set := make(landmark.Set, landmark.MeshSize)
	for i := range set {
		set[i] = p
	}
	for idx, pt := range overrides {
		set[idx] = pt
	}
	return set
}
