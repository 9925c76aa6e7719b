package app

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ayusman/yanagihara/internal/capture"
	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/scoring"
	"github.com/ayusman/yanagihara/internal/selector"
)

// recordingOf samples face every 100 ms over a 3 s capture. face may
// return nil for a sample without a face.
func recordingOf(face func(ms int64) *landmark.Frame) landmark.Recording {
	var rec landmark.Recording
	for ms := int64(0); ms <= 3000; ms += 100 {
		rec.Observations = append(rec.Observations,
			landmark.ObservationOf(ms, face(ms), landmark.FixtureWidth, landmark.FixtureHeight))
	}
	return rec
}

func neutral(int64) *landmark.Frame {
	f := landmark.NeutralFace()
	return &f
}

// smile pulls both mouth corners outward by 8 px after the baseline window.
func smile(ms int64) *landmark.Frame {
	f := landmark.NeutralFace()
	if ms > 300 {
		landmark.Shift(&f, landmark.RightMouth, -8, 0)
		landmark.Shift(&f, landmark.LeftMouth, 8, 0)
	}
	return &f
}

// winkOf closes one eye completely after the baseline window.
func winkOf(side landmark.Side) func(int64) *landmark.Frame {
	return func(ms int64) *landmark.Frame {
		f := landmark.NeutralFace()
		if ms > 300 && ms < 2000 {
			eye := landmark.DefaultRegistry().Eye(side)
			gap := (f.Points[eye.Lower].Y - f.Points[eye.Upper].Y) * float64(f.Height)
			landmark.Shift(&f, eye.Upper, 0, gap)
		}
		return &f
	}
}

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	log, _ := test.NewNullLogger()
	if cfg.Engine.Thresholds == (scoring.Thresholds{}) {
		cfg.Engine = scoring.DefaultConfig()
	}
	return New(cfg, nil, nil, log)
}

func TestApp_Evaluate(t *testing.T) {
	a := newTestApp(t, Config{})
	a.SetFeed(capture.NewReplayFeed(recordingOf(smile), false))

	c, err := a.Evaluate(context.Background(), scoring.Eee, "")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if c.Grade != 4 {
		t.Errorf("Grade = %d, want 4 for a symmetric smile; result %+v", c.Grade, c.Result)
	}
	if c.Baseline == nil || c.Action == nil || c.Baseline == c.Action {
		t.Error("capture should keep distinct baseline and action frames")
	}
	if a.Busy() {
		t.Error("App should not be busy after the capture")
	}

	kept, err := a.Capture(c.ID)
	if err != nil || kept != c {
		t.Errorf("Capture(%s) = %v, %v", c.ID, kept, err)
	}
	if _, err := a.Snapshot(c.ID, SnapshotAction); !errors.Is(err, ErrNoCapture) {
		t.Errorf("replay capture has no snapshots, Snapshot() error = %v", err)
	}
}

func TestApp_EvaluateErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no feed", func(t *testing.T) {
		a := newTestApp(t, Config{})
		if _, err := a.Evaluate(ctx, scoring.Rest, ""); !errors.Is(err, ErrNoFeed) {
			t.Errorf("Evaluate() error = %v, want ErrNoFeed", err)
		}
	})

	t.Run("busy", func(t *testing.T) {
		a := newTestApp(t, Config{})
		a.SetFeed(capture.NewReplayFeed(recordingOf(neutral), false))
		a.busy.Store(true)
		if _, err := a.Evaluate(ctx, scoring.Rest, ""); !errors.Is(err, ErrBusy) {
			t.Errorf("Evaluate() error = %v, want ErrBusy", err)
		}
	})

	t.Run("unknown gesture", func(t *testing.T) {
		a := newTestApp(t, Config{})
		a.SetFeed(capture.NewReplayFeed(recordingOf(neutral), false))
		if _, err := a.Evaluate(ctx, "shrug", ""); err == nil {
			t.Error("Evaluate() of an unknown gesture should fail")
		}
	})

	t.Run("wink without side", func(t *testing.T) {
		a := newTestApp(t, Config{})
		a.SetFeed(capture.NewReplayFeed(recordingOf(neutral), false))
		if _, err := a.Evaluate(ctx, scoring.Wink, ""); err == nil {
			t.Error("Evaluate(wink) without a side should fail")
		}
	})

	t.Run("no face", func(t *testing.T) {
		a := newTestApp(t, Config{})
		a.SetFeed(capture.NewReplayFeed(recordingOf(func(int64) *landmark.Frame { return nil }), false))
		_, err := a.Evaluate(ctx, scoring.Eee, "")
		if !errors.Is(err, selector.ErrFaceNotFound) {
			t.Errorf("Evaluate() error = %v, want ErrFaceNotFound", err)
		}
		if a.Busy() {
			t.Error("a failed capture must release the busy flag")
		}
	})
}

func TestApp_Trace(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, Config{TraceDir: dir})
	a.SetFeed(capture.NewReplayFeed(recordingOf(smile), false))

	c, err := a.Evaluate(context.Background(), scoring.Eee, "")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if c.TracePath == "" {
		t.Fatal("TracePath is empty")
	}

	f, err := os.Open(c.TracePath)
	if err != nil {
		t.Fatalf("open trace: %v", err)
	}
	defer f.Close()
	rec, err := landmark.ReadRecording(f)
	if err != nil {
		t.Fatalf("ReadRecording() error = %v", err)
	}
	if len(rec.Observations) != 31 {
		t.Errorf("trace has %d observations, want 31", len(rec.Observations))
	}

	again, err := a.Replay(context.Background(), scoring.Eee, "", rec)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if again.Result.Total != c.Result.Total {
		t.Errorf("replayed total = %d, want %d", again.Result.Total, c.Result.Total)
	}
}

func TestApp_KeepsBoundedCaptures(t *testing.T) {
	a := newTestApp(t, Config{})
	first := &Capture{ID: "first"}
	a.keep(first)
	for i := 0; i < KeptCaptures; i++ {
		a.keep(&Capture{ID: string(rune('a' + i))})
	}
	if _, err := a.Capture("first"); !errors.Is(err, ErrNoCapture) {
		t.Errorf("oldest capture should be evicted, got %v", err)
	}
	if len(a.captures) != KeptCaptures {
		t.Errorf("kept %d captures, want %d", len(a.captures), KeptCaptures)
	}
}

func TestApp_Watch(t *testing.T) {
	a := newTestApp(t, Config{})
	ch, cancel := a.Watch()

	a.publish(Preview{Faces: 1, Still: true}, []byte{0xFF, 0xD8})
	p := <-ch
	if p.Faces != 1 || !p.Still {
		t.Errorf("preview = %+v", p)
	}
	if got := a.LatestPreview(); got.Faces != 1 {
		t.Errorf("LatestPreview() = %+v", got)
	}
	if len(a.LatestFrame()) != 2 {
		t.Error("LatestFrame() should hold the published image")
	}

	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
	cancel()

	// Publishing without watchers must not block.
	a.publish(Preview{}, nil)
}
