package metrics

import (
	"errors"
	"math"
)

// ErrNoFrames is returned by Aggregate when called with an empty frame
// sequence. This is a contract violation on the caller's side: the capture
// loop must collect at least one frame before allowing aggregation.
var ErrNoFrames = errors.New("metrics: no frames to aggregate")

// Aggregate reduces a non-empty per-frame sequence to one FacialMetrics
// whose every field is the arithmetic mean across the sequence.
//
// Each per-frame value is floor-clamped to 0.1 before averaging and the
// final mean is floor-clamped to 1.0, so a momentary zero reading from a
// dropped frame can never zero out the session average and every downstream
// score stays strictly positive.
func Aggregate(frames []FacialMetrics) (FacialMetrics, error) {
	if len(frames) == 0 {
		return FacialMetrics{}, ErrNoFrames
	}

	var sum FacialMetrics
	for _, f := range frames {
		sum.ExpressionDiversity += math.Max(aggregateFloor, f.ExpressionDiversity)
		sum.EyeMovement += math.Max(aggregateFloor, f.EyeMovement)
		sum.MouthMovement += math.Max(aggregateFloor, f.MouthMovement)
		sum.HeadPosition += math.Max(aggregateFloor, f.HeadPosition)
	}

	n := float64(len(frames))
	return FacialMetrics{
		ExpressionDiversity: math.Max(frameFloor, sum.ExpressionDiversity/n),
		EyeMovement:         math.Max(frameFloor, sum.EyeMovement/n),
		MouthMovement:       math.Max(frameFloor, sum.MouthMovement/n),
		HeadPosition:        math.Max(frameFloor, sum.HeadPosition/n),
	}, nil
}
