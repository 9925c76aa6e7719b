package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrStillClosed is returned when a closed Still is used.
var ErrStillClosed = errors.New("still image is closed")

// Still is a copy of the video frame taken at a selected instant.
// It satisfies selector.Snapshot.
type Still struct {
	mu     sync.Mutex
	mat    gocv.Mat
	closed bool
}

// NewStill copies img into a new Still.
func NewStill(img gocv.Mat) *Still {
	return &Still{mat: img.Clone()}
}

// Mat returns a clone of the image. The caller owns it.
func (s *Still) Mat() (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return gocv.NewMat(), ErrStillClosed
	}
	return s.mat.Clone(), nil
}

// JPEG encodes the image.
func (s *Still) JPEG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStillClosed
	}
	return EncodeJPEG(s.mat)
}

// Close releases the image. Closing twice is a no-op.
func (s *Still) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.mat.Close()
}

// EncodeJPEG encodes img as JPEG and returns a Go-owned copy of the bytes.
func EncodeJPEG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
