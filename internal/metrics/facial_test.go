package metrics

import (
	"math"
	"testing"

	"github.com/yashas004/persona/pkg/landmark"
	landmarkmock "github.com/yashas004/persona/pkg/landmark/mock"
)

func TestExtractFacial_NoFaceReturnsDefaults(t *testing.T) {
	got := ExtractFacial(nil, false)

	want := FacialMetrics{
		ExpressionDiversity: 2.0,
		EyeMovement:         1.0,
		MouthMovement:       1.0,
		HeadPosition:        1.0,
	}
	if got != want {
		t.Fatalf("no-face metrics = %+v, want %+v", got, want)
	}
}

func TestExtractFacial_TruncatedSetTreatedAsNoFace(t *testing.T) {
	// A set too short to index the right eye must not panic.
	short := make(landmark.Set, 10)
	got := ExtractFacial(short, true)
	if got.EyeMovement != 1.0 || got.ExpressionDiversity != 2.0 {
		t.Fatalf("truncated set metrics = %+v, want no-face defaults", got)
	}
}

func TestExtractFacial_FaceMetrics(t *testing.T) {
	set := landmarkmock.FaceAt(landmark.Point{X: 0.5, Y: 0.5}, map[int]landmark.Point{
		landmark.IndexLeftEye:    {X: 0.30, Y: 0.40},
		landmark.IndexRightEye:   {X: 0.70, Y: 0.40},
		landmark.IndexMouthLeft:  {X: 0.40, Y: 0.72},
		landmark.IndexMouthRight: {X: 0.60, Y: 0.60},
		landmark.IndexNose:       {X: 0.50, Y: 0.50, Z: 0.05},
	})

	got := ExtractFacial(set, true)

	// Eye span: hypot(0.4, 0) * 100 = 40.
	if !closeTo(got.EyeMovement, 40.0) {
		t.Errorf("EyeMovement = %v, want 40", got.EyeMovement)
	}
	// Mouth: |0.72 - 0.60| * 100 = 12.
	if !closeTo(got.MouthMovement, 12.0) {
		t.Errorf("MouthMovement = %v, want 12", got.MouthMovement)
	}
	// Head: (0.05 + 0.5) * 100 = 55.
	if !closeTo(got.HeadPosition, 55.0) {
		t.Errorf("HeadPosition = %v, want 55", got.HeadPosition)
	}
	if got.ExpressionDiversity != 2.0 {
		t.Errorf("ExpressionDiversity = %v, want constant 2.0", got.ExpressionDiversity)
	}
}

func TestExtractFacial_FloorsAtOne(t *testing.T) {
	// All interesting points coincident: raw eye span and mouth delta are 0,
	// raw head position is (−0.5 + 0.5)·100 = 0. Everything floors to 1.
	set := landmarkmock.FaceAt(landmark.Point{X: 0.5, Y: 0.5, Z: -0.5}, nil)

	got := ExtractFacial(set, true)
	if got.EyeMovement != 1.0 {
		t.Errorf("EyeMovement = %v, want floor 1.0", got.EyeMovement)
	}
	if got.MouthMovement != 1.0 {
		t.Errorf("MouthMovement = %v, want floor 1.0", got.MouthMovement)
	}
	if got.HeadPosition != 1.0 {
		t.Errorf("HeadPosition = %v, want floor 1.0", got.HeadPosition)
	}
}

func closeTo(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}
