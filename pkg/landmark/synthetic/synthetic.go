// Package synthetic provides a generated face-landmark detector. It stands
// in for a real landmark model so the session pipeline can run without one:
// each Detect call returns a full mesh whose eye, mouth, and nose points
// drift smoothly over time, producing plausible facial metrics.
package synthetic

import (
	"math"
	"sync"

	"github.com/yashas004/persona/pkg/capture"
	"github.com/yashas004/persona/pkg/landmark"
)

// Detector generates a slowly animating face.
type Detector struct {
	mu    sync.Mutex
	calls int
}

// Detect returns the next animation step of the generated face. A face is
// always found.
func (d *Detector) Detect(_ capture.Frame) (landmark.Set, bool) {
	d.mu.Lock()
	t := float64(d.calls) * 0.1
	d.calls++
	d.mu.Unlock()

	set := make(landmark.Set, landmark.MeshSize)
	base := landmark.Point{X: 0.5, Y: 0.5, Z: 0}
	for i := range set {
		set[i] = base
	}

	// Eye corners drift apart and together, mouth corners bob vertically,
	// the nose wanders in depth.
	spread := 0.30 + 0.05*math.Sin(t)
	set[landmark.IndexLeftEye] = landmark.Point{X: 0.5 - spread/2, Y: 0.42}
	set[landmark.IndexRightEye] = landmark.Point{X: 0.5 + spread/2, Y: 0.42}
	set[landmark.IndexMouthLeft] = landmark.Point{X: 0.42, Y: 0.65 + 0.04*math.Sin(3*t)}
	set[landmark.IndexMouthRight] = landmark.Point{X: 0.58, Y: 0.65 - 0.04*math.Sin(3*t)}
	set[landmark.IndexNose] = landmark.Point{X: 0.5, Y: 0.55, Z: 0.05 * math.Sin(0.7*t)}

	return set, true
}

var _ landmark.Detector = (*Detector)(nil)
