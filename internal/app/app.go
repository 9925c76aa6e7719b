// Package app wires the camera, face detector and scoring engine together
// and runs captures, single evaluations and full grading sessions.
package app

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/yanagihara/internal/annotate"
	"github.com/ayusman/yanagihara/internal/capture"
	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/scoring"
)

var (
	// ErrBusy is returned when a capture is requested while another runs.
	ErrBusy = errors.New("a capture is already running")

	// ErrNoSession is returned for an unknown session id.
	ErrNoSession = errors.New("no such session")

	// ErrNoPendingResult is returned when advancing a step that has no result yet.
	ErrNoPendingResult = errors.New("no pending result for the current step")

	// ErrSessionFinished is returned when capturing in a session that has ended.
	ErrSessionFinished = errors.New("session is finished")

	// ErrNoCapture is returned for an unknown capture id.
	ErrNoCapture = errors.New("no such capture")

	// ErrSideRequired is returned when a wink is requested without a side.
	ErrSideRequired = errors.New("wink needs a side")

	// ErrNoFeed is returned when a capture is requested without a source.
	ErrNoFeed = errors.New("no capture source configured")
)

// Defaults.
const (
	DefaultPreviewFPS = 10
	// KeptCaptures is how many captures stay available for snapshot download.
	KeptCaptures = 32
	// KeptSessions is how many sessions are remembered. Finished sessions
	// are forgotten first.
	KeptSessions = 16
)

// Config holds configuration options for the application.
type Config struct {
	Engine scoring.Config
	// FPS is the sampling rate during a capture.
	FPS int
	// PreviewFPS is the rate of the live preview between captures.
	PreviewFPS int
	// StillLimit is the changed-pixel share, in percent, under which the
	// preview reports the subject as still.
	StillLimit float64
	// TraceDir, when set, receives a CBOR recording of every live capture.
	TraceDir string
}

// App orchestrates captures. Only one capture runs at a time; the preview
// loop pauses while it does.
type App struct {
	cfg      Config
	log      logrus.FieldLogger
	engine   *scoring.Engine
	renderer *annotate.Renderer

	camera   capture.Camera
	detector landmark.Detector
	still    *capture.StillnessMeter

	busy atomic.Bool

	mu       sync.RWMutex
	feed     capture.Feed
	stopCh   chan struct{}
	preview  Preview
	frame    []byte
	watchers map[chan Preview]struct{}

	capMu    sync.Mutex
	captures map[string]*Capture
	order    []string

	sessMu    sync.Mutex
	sessions  map[string]*session
	sessOrder []string
}

// New creates an App. camera and detector may be nil when captures only
// come from a feed set with SetFeed.
func New(cfg Config, camera capture.Camera, detector landmark.Detector, log logrus.FieldLogger) *App {
	if cfg.FPS <= 0 {
		cfg.FPS = capture.DefaultFPS
	}
	if cfg.PreviewFPS <= 0 {
		cfg.PreviewFPS = DefaultPreviewFPS
	}

	a := &App{
		cfg:      cfg,
		log:      log.WithField("component", "app"),
		engine:   scoring.NewEngine(cfg.Engine, log),
		renderer: annotate.New(cfg.Engine.Registry, annotate.DefaultStyle()),
		camera:   camera,
		detector: detector,
		still:    capture.NewStillnessMeter(cfg.StillLimit),
		watchers: make(map[chan Preview]struct{}),
		captures: make(map[string]*Capture),
		sessions: make(map[string]*session),
	}
	if camera != nil && detector != nil {
		a.feed = capture.NewLiveFeed(camera, detector, cfg.FPS, log)
	}
	return a
}

// SetFeed replaces the capture source, e.g. with a replay of a recording.
func (a *App) SetFeed(feed capture.Feed) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.feed = feed
}

// Engine returns the scoring engine.
func (a *App) Engine() *scoring.Engine {
	return a.engine
}

// Camera returns the camera, or nil.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Busy reports whether a capture is running.
func (a *App) Busy() bool {
	return a.busy.Load()
}

// Start opens the camera and begins the preview loop. It does nothing
// without a camera or when already running.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil || a.camera == nil {
		return nil
	}
	if err := a.camera.Open(); err != nil {
		return err
	}

	a.stopCh = make(chan struct{})
	go a.runPreview(a.stopCh, time.Second/time.Duration(a.cfg.PreviewFPS))

	a.log.WithField("fps", a.cfg.PreviewFPS).Info("preview started")
	return nil
}

// Stop halts the preview and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}
	for ch := range a.watchers {
		close(ch)
		delete(a.watchers, ch)
	}

	if a.camera != nil {
		if err := a.camera.Close(); err != nil {
			a.log.WithError(err).Warn("closing camera")
		}
	}
	a.still.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.log.WithError(err).Warn("closing detector")
		}
	}

	a.log.Info("stopped")
}
