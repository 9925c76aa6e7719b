package e2e

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ayusman/yanagihara/internal/app"
	"github.com/ayusman/yanagihara/internal/capture"
	"github.com/ayusman/yanagihara/internal/config"
	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/scoring"
	"github.com/ayusman/yanagihara/internal/server"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

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

func smile(ms int64) *landmark.Frame {
	f := landmark.NeutralFace()
	if ms > 300 {
		landmark.Shift(&f, landmark.RightMouth, -8, 0)
		landmark.Shift(&f, landmark.LeftMouth, 8, 0)
	}
	return &f
}

type harness struct {
	t      *testing.T
	app    *app.App
	ts     *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, traceDir string) *harness {
	t.Helper()
	log, _ := test.NewNullLogger()

	table := config.DefaultTable()
	engine, err := table.Engine()
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}

	a := app.New(app.Config{Engine: engine, TraceDir: traceDir}, nil, nil, log)
	ts := httptest.NewServer(server.New(server.Config{
		Grader:     a,
		Thresholds: engine.Thresholds,
		Log:        log,
	}))
	t.Cleanup(ts.Close)

	return &harness{t: t, app: a, ts: ts, client: ts.Client()}
}

func (h *harness) post(path, body string, want int, out any) {
	h.t.Helper()
	resp, err := h.client.Post(h.ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		h.t.Fatalf("POST %s error = %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		h.t.Fatalf("POST %s status = %d, want %d", path, resp.StatusCode, want)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			h.t.Fatalf("POST %s decode: %v", path, err)
		}
	}
}

func TestE2E_FullProtocol(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	h := newHarness(t, "")

	var v app.SessionView
	h.post("/api/sessions", "", http.StatusCreated, &v)
	base := "/api/sessions/" + v.ID

	for i := 0; i < len(v.Steps); i++ {
		step := v.Steps[i].ID
		if step == scoring.Wink {
			for _, side := range []landmark.Side{landmark.SideRight, landmark.SideLeft} {
				h.app.SetFeed(capture.NewReplayFeed(recordingOf(winkOf(side)), false))
				h.post(base+"/capture", `{"side":"`+string(side)+`"}`, http.StatusOK, nil)
			}
		} else {
			h.app.SetFeed(capture.NewReplayFeed(recordingOf(neutral), false))
			h.post(base+"/capture", "", http.StatusOK, nil)
		}
		h.post(base+"/next", "", http.StatusOK, nil)
	}

	resp, err := h.client.Get(h.ts.URL + base)
	if err != nil {
		t.Fatalf("GET session error = %v", err)
	}
	defer resp.Body.Close()

	var done app.SessionView
	if err := json.NewDecoder(resp.Body).Decode(&done); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if done.Active || !done.Report.Complete {
		t.Fatalf("session should be complete, got %+v", done)
	}
	if len(done.Report.Rows) != 10 || done.Report.MaxScore != 40 {
		t.Errorf("report = %+v", done.Report)
	}
	if done.Report.Rows[4].Score != 4 {
		t.Errorf("wink row = %+v, want 4", done.Report.Rows[4])
	}

	h.post(base+"/capture", "", http.StatusConflict, nil)
}

func TestE2E_TraceReplay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	h := newHarness(t, t.TempDir())
	h.app.SetFeed(capture.NewReplayFeed(recordingOf(smile), false))

	var live app.Capture
	h.post("/api/evaluate", `{"gesture":"eee"}`, http.StatusOK, &live)
	if live.TracePath == "" {
		t.Fatal("capture should have written a trace")
	}

	trace, err := os.ReadFile(live.TracePath)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	resp, err := h.client.Post(h.ts.URL+"/api/replay?gesture=eee", "application/cbor", bytes.NewReader(trace))
	if err != nil {
		t.Fatalf("POST replay error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replay status = %d", resp.StatusCode)
	}

	var replayed app.Capture
	if err := json.NewDecoder(resp.Body).Decode(&replayed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if replayed.Grade != live.Grade || replayed.ID == live.ID {
		t.Errorf("replay grade %d (id %s), live grade %d (id %s)", replayed.Grade, replayed.ID, live.Grade, live.ID)
	}
	if len(replayed.Result.Details) != len(live.Result.Details) {
		t.Errorf("replay has %d metrics, live %d", len(replayed.Result.Details), len(live.Result.Details))
	}
}
