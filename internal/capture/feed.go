package capture

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/yanagihara/internal/landmark"
)

// Observation is one sampled instant of a feed.
type Observation struct {
	// At is the time since the feed was reset.
	At time.Duration
	// Face is nil when no face was detected.
	Face *landmark.Frame
	// Image is the video frame, or nil for feeds without video.
	// The receiver owns it and must call Close.
	Image *gocv.Mat
}

// Close releases the observation's image.
func (o *Observation) Close() {
	if o.Image != nil {
		o.Image.Close()
		o.Image = nil
	}
}

// Feed is a source of observations. Reset starts a new capture clock; Read
// blocks until the next sample is due. A finite feed returns io.EOF when it
// runs out.
type Feed interface {
	Reset() error
	Read(ctx context.Context) (Observation, error)
}

// LiveFeed samples a camera at a fixed cadence and runs every image
// through a face detector.
type LiveFeed struct {
	camera   Camera
	detector landmark.Detector
	interval time.Duration
	log      logrus.FieldLogger

	mu    sync.Mutex
	start time.Time
	next  time.Time
}

// NewLiveFeed creates a LiveFeed sampling at fps frames per second.
// Non-positive fps use DefaultFPS.
func NewLiveFeed(camera Camera, detector landmark.Detector, fps int, log logrus.FieldLogger) *LiveFeed {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &LiveFeed{
		camera:   camera,
		detector: detector,
		interval: time.Second / time.Duration(fps),
		log:      log.WithField("component", "feed"),
	}
}

// Interval returns the sampling period.
func (f *LiveFeed) Interval() time.Duration {
	return f.interval
}

// Reset opens the camera if needed and restarts the capture clock.
func (f *LiveFeed) Reset() error {
	if !f.camera.IsOpen() {
		if err := f.camera.Open(); err != nil {
			return fmt.Errorf("open camera: %w", err)
		}
	}
	f.mu.Lock()
	f.start = time.Now()
	f.next = f.start
	f.mu.Unlock()
	return nil
}

// Read waits for the next sampling instant, grabs a frame and detects the
// face in it. Extra faces are ignored. A failing detector does not end the
// capture; the sample is reported without a face.
func (f *LiveFeed) Read(ctx context.Context) (Observation, error) {
	f.mu.Lock()
	due := f.next
	start := f.start
	f.mu.Unlock()

	if wait := time.Until(due); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Observation{}, ctx.Err()
		case <-timer.C:
		}
	}

	img, err := f.camera.ReadFrame()
	if err != nil {
		return Observation{}, err
	}

	now := time.Now()
	f.mu.Lock()
	f.next = due.Add(f.interval)
	if f.next.Before(now) {
		// The detector fell behind; skip the missed slots instead of bursting.
		f.next = now.Add(f.interval)
	}
	f.mu.Unlock()

	obs := Observation{At: now.Sub(start), Image: img}

	faces, err := f.detector.Detect(img)
	if err != nil {
		f.log.WithError(err).Warn("face detection failed")
		return obs, nil
	}
	if len(faces) > 1 {
		f.log.WithField("faces", len(faces)).Debug("multiple faces, using the first")
	}
	if len(faces) > 0 {
		face := faces[0]
		obs.Face = &face
	}
	return obs, nil
}

// ReplayFeed plays back a landmark recording. It has no video, so captures
// from a replay carry no snapshots.
type ReplayFeed struct {
	rec      landmark.Recording
	realtime bool

	mu    sync.Mutex
	index int
	start time.Time
}

// NewReplayFeed creates a ReplayFeed. With realtime set, Read waits until
// each observation's offset has elapsed; otherwise observations are
// returned as fast as they are read.
func NewReplayFeed(rec landmark.Recording, realtime bool) *ReplayFeed {
	return &ReplayFeed{rec: rec, realtime: realtime}
}

// Reset rewinds the recording.
func (f *ReplayFeed) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index = 0
	f.start = time.Now()
	return nil
}

// Read returns the next recorded observation, or io.EOF after the last one.
func (f *ReplayFeed) Read(ctx context.Context) (Observation, error) {
	if err := ctx.Err(); err != nil {
		return Observation{}, err
	}

	f.mu.Lock()
	if f.index >= len(f.rec.Observations) {
		f.mu.Unlock()
		return Observation{}, io.EOF
	}
	ro := f.rec.Observations[f.index]
	f.index++
	start := f.start
	f.mu.Unlock()

	at := time.Duration(ro.OffsetMs) * time.Millisecond
	if f.realtime {
		if wait := time.Until(start.Add(at)); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return Observation{}, ctx.Err()
			case <-timer.C:
			}
		}
	}

	face, err := ro.Frame()
	if err != nil {
		return Observation{}, err
	}
	return Observation{At: at, Face: face}, nil
}
