// Package landmark defines the face landmark detection capability consumed
// by the facial metric extractor.
//
// A detector wraps a face-tracking model (e.g., a MediaPipe-style face mesh)
// and, for each frame, yields zero or one sets of named 3-D points with
// stable semantic indices. Detection is synchronous and always terminates;
// the absence of a face is a valid result, not an error.
package landmark

import "github.com/yashas004/persona/pkg/capture"

// Mesh point indices with stable semantics, following the 468-point face
// mesh layout. Only the points the extractor reads are named.
const (
	// IndexNose is the nose tip / reference point; its depth coordinate
	// tracks head position.
	IndexNose = 0

	// IndexLeftEye and IndexRightEye are points on the lower eyelids used
	// for the eye-span measurement.
	IndexLeftEye  = 145
	IndexRightEye = 374

	// IndexMouthLeft and IndexMouthRight are the mouth corners.
	IndexMouthLeft  = 61
	IndexMouthRight = 291
)

// MeshSize is the number of points in a full face mesh landmark set.
const MeshSize = 468

// Point is a single landmark in normalised image coordinates. X and Y are in
// [0, 1] relative to frame width/height; Z is depth relative to the face
// centroid (negative = towards the camera).
type Point struct {
	X, Y, Z float64
}

// Set is one detected face's ordered landmark collection. Index with the
// semantic constants above.
type Set []Point

// Detector produces at most one landmark set per frame.
//
// Implementations must be safe for concurrent use and must always terminate:
// a frame with no detectable face returns ok=false, never an error.
type Detector interface {
	// Detect analyses one frame. ok reports whether a face was found; when
	// ok is false the returned Set must be ignored.
	Detect(frame capture.Frame) (set Set, ok bool)
}
