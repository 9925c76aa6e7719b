package landmark

import (
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	faces []Frame
	queue [][]Frame
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFaces sets the faces that will be returned by every Detect call.
func (m *MockDetector) SetFaces(faces []Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces = faces
}

// Enqueue adds per-call results that are consumed in order before
// falling back to the faces set by SetFaces.
func (m *MockDetector) Enqueue(results ...[]Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, results...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured faces or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.faces, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Fixture image size and iris radius. The iris ring spans 2*FixtureIrisRadiusPx
// horizontally, so with the 11.7 mm iris constant one pixel is one millimetre.
const (
	FixtureWidth        = 640
	FixtureHeight       = 480
	FixtureIrisRadiusPx = 5.85
)

// NeutralFace returns a symmetric, upright face at rest.
// Points that scoring never reads are parked at the image centre.
func NeutralFace() Frame {
	f := Frame{Width: FixtureWidth, Height: FixtureHeight}
	for i := range f.Points {
		f.Points[i] = Point3D{X: 0.5, Y: 0.5}
	}

	set := func(idx int, x, y float64) {
		f.Points[idx] = Point3D{X: x, Y: y}
	}

	// Eyes
	set(RightEyeOuter, 0.38, 0.40)
	set(RightEyeInner, 0.46, 0.40)
	set(RightEyeUpper, 0.42, 0.39)
	set(RightEyeLower, 0.42, 0.41)
	set(LeftEyeInner, 0.54, 0.40)
	set(LeftEyeOuter, 0.62, 0.40)
	set(LeftEyeUpper, 0.58, 0.39)
	set(LeftEyeLower, 0.58, 0.41)

	// Irises
	setIris(&f, RightIrisCenter, RightIrisRing, 0.42, 0.40, FixtureIrisRadiusPx)
	setIris(&f, LeftIrisCenter, LeftIrisRing, 0.58, 0.40, FixtureIrisRadiusPx)

	// Brows
	set(RightBrow, 0.42, 0.35)
	set(LeftBrow, 0.58, 0.35)

	// Nose
	set(NoseBridge, 0.50, 0.40)
	set(NoseTip, 0.50, 0.52)
	set(RightNoseWing, 0.47, 0.53)
	set(LeftNoseWing, 0.53, 0.53)

	// Philtrum and mouth
	set(PhiltrumTop, 0.50, 0.55)
	set(PhiltrumBottom, 0.50, 0.58)
	set(RightMouth, 0.45, 0.62)
	set(LeftMouth, 0.55, 0.62)

	// Cheeks
	set(RightCheek, 0.36, 0.60)
	set(LeftCheek, 0.64, 0.60)

	return f
}

// SetIrisRadius resizes both iris rings of f to radiusPx pixels.
func SetIrisRadius(f *Frame, radiusPx float64) {
	rc := f.Points[RightIrisCenter]
	lc := f.Points[LeftIrisCenter]
	setIris(f, RightIrisCenter, RightIrisRing, rc.X, rc.Y, radiusPx)
	setIris(f, LeftIrisCenter, LeftIrisRing, lc.X, lc.Y, radiusPx)
}

func setIris(f *Frame, center int, ring [4]int, cx, cy, radiusPx float64) {
	rx := radiusPx / float64(f.Width)
	ry := radiusPx / float64(f.Height)
	f.Points[center] = Point3D{X: cx, Y: cy}
	f.Points[ring[0]] = Point3D{X: cx + rx, Y: cy}
	f.Points[ring[1]] = Point3D{X: cx, Y: cy - ry}
	f.Points[ring[2]] = Point3D{X: cx - rx, Y: cy}
	f.Points[ring[3]] = Point3D{X: cx, Y: cy + ry}
}

// Tilt returns a copy of f with every landmark rotated by deg degrees about
// the image centre, in pixel space.
func Tilt(f Frame, deg float64) Frame {
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	w, h := float64(f.Width), float64(f.Height)
	cx, cy := w/2, h/2

	out := f
	for i, p := range f.Points {
		x := p.X*w - cx
		y := p.Y*h - cy
		out.Points[i] = Point3D{
			X: (x*c-y*s + cx) / w,
			Y: (x*s+y*c + cy) / h,
			Z: p.Z,
		}
	}
	return out
}

// Shift moves a single landmark of f by (dxPx, dyPx) pixels.
func Shift(f *Frame, idx int, dxPx, dyPx float64) {
	f.Points[idx].X += dxPx / float64(f.Width)
	f.Points[idx].Y += dyPx / float64(f.Height)
}
