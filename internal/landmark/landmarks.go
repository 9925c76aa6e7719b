// Package landmark provides face landmark types, the landmark-index registry
// and detector implementations that produce them.
package landmark

import "fmt"

// Face mesh landmark indices following the MediaPipe convention
// (468 mesh points plus 10 refined iris points).
// Right and Left refer to the subject's anatomical side: for an unmirrored
// camera the subject's right side appears on the left of the image.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	PhiltrumBottom = 0
	NoseTip        = 1
	PhiltrumTop    = 2
	NoseBridge     = 168

	RightEyeOuter = 33
	RightEyeInner = 133
	RightEyeUpper = 159
	RightEyeLower = 145
	LeftEyeOuter  = 263
	LeftEyeInner  = 362
	LeftEyeUpper  = 386
	LeftEyeLower  = 374

	RightBrow = 105
	LeftBrow  = 334

	RightNoseWing = 49
	LeftNoseWing  = 279

	RightCheek = 93
	LeftCheek  = 323

	RightMouth = 61
	LeftMouth  = 291

	RightIrisCenter = 468
	LeftIrisCenter  = 473

	NumLandmarks = 478
)

// RightIrisRing and LeftIrisRing are the four border points of each iris.
var (
	RightIrisRing = [4]int{469, 470, 471, 472}
	LeftIrisRing  = [4]int{474, 475, 476, 477}
)

// Point3D represents a landmark in normalized image coordinates.
// X and Y are in [0,1] relative to the image width and height.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Frame is the set of landmarks detected for one face in one video frame,
// together with the dimensions of the image it was detected in.
type Frame struct {
	Points [NumLandmarks]Point3D `json:"points"`
	Width  int                   `json:"width"`
	Height int                   `json:"height"`
}

// Side selects the subject's left or right half of the face.
type Side string

const (
	SideRight Side = "right"
	SideLeft  Side = "left"
)

// Valid reports whether s names a face side.
func (s Side) Valid() bool {
	return s == SideRight || s == SideLeft
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideRight {
		return SideLeft
	}
	return SideRight
}

// Clone returns a deep copy of the frame.
// Returns nil for a nil frame.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

// Check verifies that the frame carries usable image dimensions.
func (f *Frame) Check() error {
	if f == nil {
		return fmt.Errorf("nil frame")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", f.Width, f.Height)
	}
	return nil
}
