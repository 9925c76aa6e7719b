package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/yanagihara/internal/capture"
	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/scoring"
	"github.com/ayusman/yanagihara/internal/selector"
)

// Capture is one evaluated gesture capture.
type Capture struct {
	ID         string                `json:"id"`
	Gesture    scoring.ID            `json:"gesture"`
	Side       landmark.Side         `json:"side,omitempty"`
	Result     scoring.GestureResult `json:"result"`
	Grade      int                   `json:"grade"`
	CapturedAt time.Time             `json:"captured_at"`
	// Snapshots lists the available snapshot names.
	Snapshots []string `json:"snapshots,omitempty"`
	TracePath string   `json:"trace_path,omitempty"`

	Baseline *landmark.Frame `json:"-"`
	Action   *landmark.Frame `json:"-"`
	images   map[string][]byte
}

// Snapshot names.
const (
	SnapshotBaseline  = "baseline"
	SnapshotAction    = "action"
	SnapshotAnnotated = "annotated"
)

// Evaluate runs one capture of gesture id and scores it. side is required
// for wink and ignored otherwise. Returns ErrBusy if a capture is already
// running.
func (a *App) Evaluate(ctx context.Context, id scoring.ID, side landmark.Side) (*Capture, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("unknown gesture %q", id)
	}
	if id == scoring.Wink && !side.Valid() {
		return nil, ErrSideRequired
	}
	plan, err := a.engine.Plan(id, side)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	feed := a.feed
	a.mu.RUnlock()
	if feed == nil {
		return nil, ErrNoFeed
	}

	if !a.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer a.busy.Store(false)

	capID := uuid.NewString()
	log := a.log.WithFields(logrus.Fields{"capture": capID, "gesture": id, "side": side})
	log.Info("capture started")

	rec := capture.NewRecorder(feed, a.log)
	var (
		sel       *selector.Selection
		tracePath string
	)
	if a.cfg.TraceDir != "" {
		var trace landmark.Recording
		sel, trace, err = rec.Record(ctx, plan, fmt.Sprintf("%s/%s", id, side))
		if path, werr := a.writeTrace(capID, id, trace); werr != nil {
			log.WithError(werr).Warn("trace not written")
		} else {
			tracePath = path
		}
	} else {
		sel, err = rec.Capture(ctx, plan)
	}
	if err != nil {
		log.WithError(err).Warn("capture failed")
		return nil, err
	}
	defer sel.Close()

	c, err := a.score(capID, id, side, sel)
	if err != nil {
		log.WithError(err).Warn("evaluation failed")
		return nil, err
	}
	c.TracePath = tracePath

	log.WithFields(logrus.Fields{"total": c.Result.Total, "grade": c.Grade}).Info("capture scored")
	a.keep(c)
	return c, nil
}

// Replay scores a recorded capture without touching the camera.
func (a *App) Replay(ctx context.Context, id scoring.ID, side landmark.Side, rec landmark.Recording) (*Capture, error) {
	if id == scoring.Wink && !side.Valid() {
		return nil, ErrSideRequired
	}
	plan, err := a.engine.Plan(id, side)
	if err != nil {
		return nil, err
	}
	sel, err := capture.NewRecorder(capture.NewReplayFeed(rec, false), a.log).Capture(ctx, plan)
	if err != nil {
		return nil, err
	}
	defer sel.Close()

	c, err := a.score(uuid.NewString(), id, side, sel)
	if err != nil {
		return nil, err
	}
	a.keep(c)
	return c, nil
}

func (a *App) score(capID string, id scoring.ID, side landmark.Side, sel *selector.Selection) (*Capture, error) {
	res, err := a.engine.Evaluate(id, sel, side)
	if err != nil {
		return nil, err
	}

	c := &Capture{
		ID:         capID,
		Gesture:    id,
		Side:       side,
		Result:     res,
		Grade:      res.Grade(),
		CapturedAt: time.Now(),
		Baseline:   sel.Frame(scoring.WindowBaseline),
		Action:     sel.Frame(scoring.WindowAction),
		images:     make(map[string][]byte),
	}
	if c.Action == nil {
		c.Action = c.Baseline
	}

	a.snapshots(c, sel)
	return c, nil
}

// snapshots encodes the window stills of sel into c, plus an annotated
// copy of the action still (the baseline still for single-frame gestures).
func (a *App) snapshots(c *Capture, sel *selector.Selection) {
	var last *capture.Still
	for _, name := range []string{scoring.WindowBaseline, scoring.WindowAction} {
		still, ok := sel.Snapshot(name).(*capture.Still)
		if !ok {
			continue
		}
		jpeg, err := still.JPEG()
		if err != nil {
			a.log.WithError(err).WithField("window", name).Warn("snapshot not encoded")
			continue
		}
		c.images[name] = jpeg
		c.Snapshots = append(c.Snapshots, name)
		last = still
	}
	if last == nil {
		return
	}

	mat, err := last.Mat()
	if err != nil {
		return
	}
	defer mat.Close()
	annotated, err := a.renderer.Render(mat, c.Gesture, c.Side, c.Baseline, c.Action, &c.Result)
	if err != nil {
		a.log.WithError(err).Warn("annotation failed")
		return
	}
	c.images[SnapshotAnnotated] = annotated
	c.Snapshots = append(c.Snapshots, SnapshotAnnotated)
}

func (a *App) writeTrace(capID string, id scoring.ID, rec landmark.Recording) (string, error) {
	if err := os.MkdirAll(a.cfg.TraceDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(a.cfg.TraceDir, fmt.Sprintf("%s-%s.cbor", id, capID))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := landmark.WriteRecording(f, rec); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// keep stores c for snapshot download, evicting the oldest capture.
func (a *App) keep(c *Capture) {
	a.capMu.Lock()
	defer a.capMu.Unlock()

	a.captures[c.ID] = c
	a.order = append(a.order, c.ID)
	for len(a.order) > KeptCaptures {
		delete(a.captures, a.order[0])
		a.order = a.order[1:]
	}
}

// Capture returns a kept capture.
func (a *App) Capture(id string) (*Capture, error) {
	a.capMu.Lock()
	defer a.capMu.Unlock()
	c, ok := a.captures[id]
	if !ok {
		return nil, ErrNoCapture
	}
	return c, nil
}

// Snapshot returns a JPEG snapshot of a kept capture.
func (a *App) Snapshot(captureID, name string) ([]byte, error) {
	c, err := a.Capture(captureID)
	if err != nil {
		return nil, err
	}
	img, ok := c.images[name]
	if !ok {
		return nil, fmt.Errorf("capture %s has no %q snapshot: %w", captureID, name, ErrNoCapture)
	}
	return img, nil
}
