// Package geometry converts normalized landmarks into pixel space and provides
// the face-aligned measurements every gesture evaluator is built on.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"github.com/ayusman/yanagihara/internal/landmark"
)

// Point is a location in pixel space.
type Point = r2.Point

const (
	// IrisDiameterMM is the physical iris diameter used for calibration.
	IrisDiameterMM = 11.7

	// MinIrisRadiusPx is the smallest average iris radius accepted for calibration.
	MinIrisRadiusPx = 0.5

	// MinDenominator is the magnitude every divisor is clamped to.
	MinDenominator = 1e-6

	// ClosedEpsilon is the gap in millimetres below which an eye counts as closed.
	ClosedEpsilon = 1e-3
)

var (
	// ErrIndexOutOfRange is returned for a landmark index outside the frame.
	ErrIndexOutOfRange = errors.New("landmark index out of range")

	// ErrCalibration is returned when the iris geometry is too small to calibrate from.
	ErrCalibration = errors.New("calibration failed: iris not measurable")
)

// ToPixel scales landmark index of f into pixel space.
func ToPixel(f *landmark.Frame, index int) (Point, error) {
	if f == nil {
		return Point{}, fmt.Errorf("to pixel: nil frame")
	}
	if index < 0 || index >= len(f.Points) {
		return Point{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	p := f.Points[index]
	return Point{X: p.X * float64(f.Width), Y: p.Y * float64(f.Height)}, nil
}

// IrisRadius returns half the bounding-box width of an iris border ring, in pixels.
func IrisRadius(f *landmark.Frame, ring [4]int) (float64, error) {
	pts := make([]Point, 0, len(ring))
	for _, idx := range ring {
		p, err := ToPixel(f, idx)
		if err != nil {
			return 0, err
		}
		pts = append(pts, p)
	}
	return r2.RectFromPoints(pts...).Size().X / 2, nil
}

// Calibrate returns the millimetres-per-pixel factor of f, derived from the
// average apparent radius of both irises and the physical iris diameter.
func Calibrate(f *landmark.Frame, rightRing, leftRing [4]int, irisDiameterMM float64) (float64, error) {
	right, err := IrisRadius(f, rightRing)
	if err != nil {
		return 0, err
	}
	left, err := IrisRadius(f, leftRing)
	if err != nil {
		return 0, err
	}

	avg := (right + left) / 2
	if avg < MinIrisRadiusPx {
		return 0, fmt.Errorf("%w: average radius %.3fpx", ErrCalibration, avg)
	}
	return irisDiameterMM / (2 * avg), nil
}

// RotatePoint rotates p about origin by rad radians.
func RotatePoint(p, origin Point, rad float64) Point {
	s, c := math.Sincos(rad)
	d := p.Sub(origin)
	return Point{
		X: origin.X + d.X*c - d.Y*s,
		Y: origin.Y + d.X*s + d.Y*c,
	}
}

// NormalizeAxis folds an axis angle into [-π/2, π/2]. An axis has no
// direction, so θ and θ±π describe the same line.
func NormalizeAxis(rad float64) float64 {
	for rad > math.Pi/2 {
		rad -= math.Pi
	}
	for rad < -math.Pi/2 {
		rad += math.Pi
	}
	return rad
}

// EyeAxisAngle returns the angle of the line through both eye points.
// Swapping inner and outer yields the same angle.
func EyeAxisAngle(inner, outer Point) float64 {
	d := outer.Sub(inner)
	return NormalizeAxis(math.Atan2(d.Y, d.X))
}

// Rotation describes how far a face is rolled in the image.
type Rotation struct {
	Origin Point
	Angle  float64
}

// FaceRotation derives the face roll from the two iris centres of f.
func FaceRotation(f *landmark.Frame, rightIris, leftIris int) (Rotation, error) {
	r, err := ToPixel(f, rightIris)
	if err != nil {
		return Rotation{}, err
	}
	l, err := ToPixel(f, leftIris)
	if err != nil {
		return Rotation{}, err
	}
	return Rotation{
		Origin: r.Add(l).Mul(0.5),
		Angle:  EyeAxisAngle(r, l),
	}, nil
}

// Align maps p into the face-aligned frame, where the iris axis is horizontal.
func (r Rotation) Align(p Point) Point {
	return RotatePoint(p, r.Origin, -r.Angle)
}

// Unalign is the inverse of Align.
func (r Rotation) Unalign(p Point) Point {
	return RotatePoint(p, r.Origin, r.Angle)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return a.Sub(b).Norm()
}

// SafeDiv divides num by den with |den| clamped to at least MinDenominator.
func SafeDiv(num, den float64) float64 {
	if math.Abs(den) < MinDenominator {
		den = math.Copysign(MinDenominator, den)
	}
	return num / den
}

// RatioPercent returns num/den as a percentage.
func RatioPercent(num, den float64) float64 {
	return SafeDiv(num, den) * 100
}

// SymmetryPercent returns min/max of two magnitudes as a percentage.
// Two values that are both effectively zero give 0.
func SymmetryPercent(a, b float64) float64 {
	hi := math.Max(a, b)
	lo := math.Min(a, b)
	if hi <= MinDenominator {
		return 0
	}
	return clamp(lo/hi, 0, 1) * 100
}

// ClosurePercent returns how much of the open gap was closed, in [0, 100].
// An eye measured closed in both frames counts as fully closed; an eye that
// was never open but is open in the closed frame counts as not closed.
func ClosurePercent(hOpen, hClosed float64) float64 {
	if hOpen <= ClosedEpsilon {
		if hClosed <= ClosedEpsilon {
			return 100
		}
		return 0
	}
	return clamp(1-hClosed/hOpen, 0, 1) * 100
}

// GainPercent returns delta relative to base as a percentage, or 0 when base
// is effectively zero.
func GainPercent(delta, base float64) float64 {
	if base <= MinDenominator {
		return 0
	}
	return delta / base * 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
