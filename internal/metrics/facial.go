// Package metrics implements the per-frame facial feature extraction, the
// whole-clip audio feature extraction, and the session-level aggregation
// that feeds the feedback engine.
//
// All metric values are non-negative reals nominally on a 0–100 scale. They
// are floor-clamped rather than zeroed so that downstream averages and
// ratio-based badge thresholds never collapse on a momentary signal dropout.
package metrics

import (
	"math"

	"github.com/yashas004/persona/pkg/landmark"
)

// Floor values applied to facial metrics. Per-frame values are clamped to
// frameFloor at extraction time and again (at aggregateFloor) before
// averaging; the final mean is clamped back to frameFloor.
const (
	frameFloor     = 1.0
	aggregateFloor = 0.1
)

// diversityBaseline is the constant placeholder for expression diversity.
// It is deliberately not derived from a real expression-variety signal.
const diversityBaseline = 2.0

// FacialMetrics holds the facial feature readings for one video frame (or,
// after aggregation, the whole session).
type FacialMetrics struct {
	ExpressionDiversity float64 `json:"expression_diversity"`
	EyeMovement         float64 `json:"eye_movement"`
	MouthMovement       float64 `json:"mouth_movement"`
	HeadPosition        float64 `json:"head_position"`
}

// noFaceMetrics is the fixed "no signal" reading emitted when a frame has no
// detectable face. Non-zero on purpose: a brief face dropout must not drag
// the session average towards zero.
var noFaceMetrics = FacialMetrics{
	ExpressionDiversity: diversityBaseline,
	EyeMovement:         frameFloor,
	MouthMovement:       frameFloor,
	HeadPosition:        frameFloor,
}

// ExtractFacial derives FacialMetrics from one frame's landmark detection
// result. ok reports whether the detector found a face; when false the fixed
// no-face defaults are returned. The result is always well formed — absence
// of a face is a handled case, not an error.
func ExtractFacial(set landmark.Set, ok bool) FacialMetrics {
	if !ok || len(set) <= landmark.IndexRightEye {
		return noFaceMetrics
	}

	leftEye := set[landmark.IndexLeftEye]
	rightEye := set[landmark.IndexRightEye]
	mouthL := set[landmark.IndexMouthLeft]
	mouthR := set[landmark.IndexMouthRight]
	nose := set[landmark.IndexNose]

	eyeSpan := math.Hypot(leftEye.X-rightEye.X, leftEye.Y-rightEye.Y)
	mouthOpen := math.Abs(mouthL.Y - mouthR.Y)

	return FacialMetrics{
		ExpressionDiversity: diversityBaseline,
		EyeMovement:         math.Max(frameFloor, eyeSpan*100),
		MouthMovement:       math.Max(frameFloor, mouthOpen*100),
		HeadPosition:        math.Max(frameFloor, (nose.Z+0.5)*100),
	}
}
