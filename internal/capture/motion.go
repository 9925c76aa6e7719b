package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	blurKernel    = 21
	pixelDiffGate = 25

	// DefaultStillLimit is the share of changed pixels, in percent, below
	// which the subject counts as holding still.
	DefaultStillLimit = 1.0
)

// StillnessMeter tells whether the subject holds still between consecutive
// preview frames. Gestures are best started from a steady face, so the
// preview reports it to the operator.
//
// Frames are compared as blurred grayscale images; a pixel counts as changed
// when its intensity moved by more than pixelDiffGate.
type StillnessMeter struct {
	mu     sync.Mutex
	limit  float64
	prev   gocv.Mat
	primed bool
}

// NewStillnessMeter creates a meter with the given limit in percent of
// changed pixels. Non-positive limits use DefaultStillLimit.
func NewStillnessMeter(limit float64) *StillnessMeter {
	if limit <= 0 {
		limit = DefaultStillLimit
	}
	return &StillnessMeter{limit: limit, prev: gocv.NewMat()}
}

// Measure compares frame with the previous one and returns whether the
// image is still together with the changed share in percent. The first
// frame after a reset only primes the meter and is never still.
func (m *StillnessMeter) Measure(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(blurKernel, blurKernel), 0, 0, gocv.BorderDefault)

	if !m.primed || m.prev.Rows() != blurred.Rows() || m.prev.Cols() != blurred.Cols() {
		blurred.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)
	gocv.Threshold(diff, &diff, pixelDiffGate, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	blurred.CopyTo(&m.prev)

	return changed < m.limit, changed
}

// Reset forgets the previous frame.
func (m *StillnessMeter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
}

// Close releases the stored frame. The meter may be used again afterwards.
func (m *StillnessMeter) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
}

func (m *StillnessMeter) clear() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.primed = false
}

// SetLimit changes the stillness limit. Values <= 0 are ignored.
func (m *StillnessMeter) SetLimit(limit float64) {
	if limit <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = limit
}
