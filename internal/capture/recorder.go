package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/selector"
)

// Recorder runs a capture: it reads a feed for the duration of a plan and
// hands every observation to a frame selector in order.
type Recorder struct {
	feed Feed
	log  logrus.FieldLogger
}

// NewRecorder creates a Recorder over feed.
func NewRecorder(feed Feed, log logrus.FieldLogger) *Recorder {
	return &Recorder{feed: feed, log: log.WithField("component", "recorder")}
}

// Capture samples the feed until the plan's duration has elapsed and returns
// the selected frames. Cancelling ctx aborts the capture and releases every
// snapshot taken so far.
func (r *Recorder) Capture(ctx context.Context, plan selector.Plan) (*selector.Selection, error) {
	return r.run(ctx, plan, nil)
}

// Record is Capture that also returns every observation as a recording,
// so the capture can be replayed and re-scored later.
func (r *Recorder) Record(ctx context.Context, plan selector.Plan, label string) (*selector.Selection, landmark.Recording, error) {
	trace := &landmark.Recording{Label: label}
	sel, err := r.run(ctx, plan, trace)
	return sel, *trace, err
}

func (r *Recorder) run(ctx context.Context, plan selector.Plan, trace *landmark.Recording) (*selector.Selection, error) {
	sel, err := selector.New(plan)
	if err != nil {
		return nil, err
	}
	if err := r.feed.Reset(); err != nil {
		sel.Discard()
		return nil, err
	}

	var (
		samples int
		faces   int
		began   = time.Now()
	)
	for {
		if err := ctx.Err(); err != nil {
			sel.Discard()
			return nil, err
		}

		obs, err := r.feed.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			sel.Discard()
			return nil, fmt.Errorf("read feed: %w", err)
		}
		if obs.At > plan.Duration {
			obs.Close()
			break
		}

		samples++
		if obs.Face != nil {
			faces++
		}
		if trace != nil {
			w, h := 0, 0
			if obs.Image != nil {
				w, h = obs.Image.Cols(), obs.Image.Rows()
			}
			trace.Observations = append(trace.Observations,
				landmark.ObservationOf(obs.At.Milliseconds(), obs.Face, w, h))
		}

		err = sel.Observe(selector.Sample{
			Offset: obs.At,
			Face:   obs.Face,
			Grab:   grabber(obs.Image),
		})
		obs.Close()
		if err != nil {
			sel.Discard()
			return nil, err
		}
	}

	r.log.WithFields(logrus.Fields{
		"samples": samples,
		"faces":   faces,
		"elapsed": time.Since(began).Round(time.Millisecond),
	}).Debug("capture finished")

	return sel.Result()
}

// grabber returns the snapshot function for an observation image.
// Feeds without video yield no snapshots.
func grabber(img *gocv.Mat) func() selector.Snapshot {
	if img == nil {
		return nil
	}
	return func() selector.Snapshot { return NewStill(*img) }
}
