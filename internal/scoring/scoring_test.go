package scoring

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ayusman/yanagihara/internal/geometry"
	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/selector"
)

const epsilon = 1e-6

// The neutral fixture calibrates to exactly one millimetre per pixel.
const mmPerPx = 1.0

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return NewEngine(DefaultConfig(), log)
}

// setPx places landmark idx of f at pixel position (x, y).
func setPx(f *landmark.Frame, idx int, x, y float64) {
	f.Points[idx].X = x / float64(f.Width)
	f.Points[idx].Y = y / float64(f.Height)
}

func evaluate(t *testing.T, ev Evaluator, baseline, action landmark.Frame, side landmark.Side) GestureResult {
	t.Helper()
	res, err := ev.ComputeMetrics(Input{Baseline: &baseline, Action: &action, MMPerPx: mmPerPx, Side: side})
	if err != nil {
		t.Fatalf("ComputeMetrics() error = %v", err)
	}
	return res
}

func mustMetric(t *testing.T, res GestureResult, name string) MetricResult {
	t.Helper()
	m, ok := res.Metric(name)
	if !ok {
		t.Fatalf("metric %q missing from %v", name, res.Details)
	}
	return m
}

func TestThreshold_Score(t *testing.T) {
	tests := []struct {
		name  string
		t     Threshold
		value float64
		want  int
	}{
		{"higher at t4", higher(95, 60), 95, 4},
		{"higher between", higher(95, 60), 80, 2},
		{"higher at t2", higher(95, 60), 60, 2},
		{"higher below", higher(95, 60), 59.9, 0},
		{"lower below t4", lower(2, 5), 1.9, 4},
		{"lower at t4", lower(2, 5), 2, 2},
		{"lower at t2", lower(2, 5), 5, 0},
		{"inverted table below t2", lower(50, 30), 20, 4},
		{"inverted table between", lower(50, 30), 40, 4},
		{"inverted table at t4", lower(50, 30), 50, 0},
		{"NaN", higher(1, 0), math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.t.Score(tt.value); got != tt.want {
				t.Errorf("Score(%f) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestThreshold_Unreachable(t *testing.T) {
	if higher(95, 60).Unreachable() {
		t.Error("ordered higher table reported unreachable")
	}
	if lower(2, 5).Unreachable() {
		t.Error("ordered lower table reported unreachable")
	}
	if !lower(50, 30).Unreachable() {
		t.Error("whistle table should leave the 2-point tier unreachable")
	}
}

func TestGestureResult_Grade(t *testing.T) {
	tests := []struct {
		total, count int
		want         int
	}{
		{12, 3, 4},
		{8, 2, 4},
		{6, 2, 4},
		{4, 2, 2},
		{2, 2, 2},
		{2, 4, 0},
		{0, 2, 0},
		{0, 0, 0},
	}

	for _, tt := range tests {
		r := GestureResult{Total: tt.total, Count: tt.count}
		if got := r.Grade(); got != tt.want {
			t.Errorf("Grade(%d/%d) = %d, want %d", tt.total, tt.count, got, tt.want)
		}
	}
}

func TestRest(t *testing.T) {
	e := newTestEngine(t)
	ev, _ := e.Evaluator(Rest)

	t.Run("neutral face is symmetric", func(t *testing.T) {
		f := landmark.NeutralFace()
		res := evaluate(t, ev, f, f, "")
		if res.Total != 12 || res.Count != 3 {
			t.Errorf("total/count = %d/%d, want 12/3", res.Total, res.Count)
		}
	})

	t.Run("head roll is corrected", func(t *testing.T) {
		f := landmark.Tilt(landmark.NeutralFace(), 15)
		res := evaluate(t, ev, f, f, "")
		for _, m := range res.Details {
			if m.Value > 1e-6 {
				t.Errorf("%s = %f on a tilted symmetric face, want 0", m.Name, m.Value)
			}
		}
		if res.Total != 12 {
			t.Errorf("total = %d, want 12", res.Total)
		}
	})

	t.Run("drooping mouth corner", func(t *testing.T) {
		f := landmark.NeutralFace()
		landmark.Shift(&f, landmark.LeftMouth, 0, 4)
		res := evaluate(t, ev, f, f, "")

		m := mustMetric(t, res, "mouth_height_diff")
		if math.Abs(m.Value-4) > epsilon || m.Score != 2 {
			t.Errorf("mouth diff = %f (%d), want 4mm scoring 2", m.Value, m.Score)
		}
	})

	t.Run("tilted philtrum", func(t *testing.T) {
		f := landmark.NeutralFace()
		top, _ := geometry.ToPixel(&f, landmark.PhiltrumTop)
		// 14.4px below the top, shifted sideways for a 30 degree tilt.
		setPx(&f, landmark.PhiltrumBottom, top.X+14.4*math.Tan(math.Pi/6), top.Y+14.4)
		res := evaluate(t, ev, f, f, "")

		m := mustMetric(t, res, "philtrum_tilt")
		if math.Abs(m.Value-30) > 1e-6 || m.Score != 0 {
			t.Errorf("philtrum tilt = %f (%d), want 30 scoring 0", m.Value, m.Score)
		}
	})
}

func TestWhistle_RatioBoundary(t *testing.T) {
	e := newTestEngine(t)
	ev, _ := e.Evaluator(Whistle)

	rest := landmark.NeutralFace()
	setPx(&rest, landmark.RightMouth, 320-25, 300)
	setPx(&rest, landmark.LeftMouth, 320+25, 300)

	act := rest
	setPx(&act, landmark.RightMouth, 320-16.5, 300)
	setPx(&act, landmark.LeftMouth, 320+16.5, 300)

	res := evaluate(t, ev, rest, act, "")

	if w := mustMetric(t, res, "rest_width"); math.Abs(w.Value-50) > epsilon {
		t.Errorf("rest width = %f, want 50", w.Value)
	}
	if w := mustMetric(t, res, "action_width"); math.Abs(w.Value-33) > epsilon {
		t.Errorf("action width = %f, want 33", w.Value)
	}

	ratio := mustMetric(t, res, "width_ratio")
	if math.Abs(ratio.Value-66) > epsilon {
		t.Errorf("ratio = %f, want 66", ratio.Value)
	}
	if ratio.Score != 0 {
		t.Errorf("ratio score = %d, want 0", ratio.Score)
	}
	if res.Count != 1 || res.Total != 0 {
		t.Errorf("total/count = %d/%d, want 0/1", res.Total, res.Count)
	}

	travel := mustMetric(t, res, "right_corner_travel")
	if math.Abs(travel.Value-8.5) > epsilon || travel.Scored {
		t.Errorf("right travel = %f scored=%v, want 8.5 unscored", travel.Value, travel.Scored)
	}
}

// Under the standard [50, 30] table any ratio below 50% earns 4, so a
// moderate purse at 40% scores the same as a strong one.
func TestWhistle_RatioBetweenTiers(t *testing.T) {
	e := newTestEngine(t)
	ev, _ := e.Evaluator(Whistle)

	rest := landmark.NeutralFace()
	setPx(&rest, landmark.RightMouth, 320-25, 300)
	setPx(&rest, landmark.LeftMouth, 320+25, 300)

	tests := []struct {
		name      string
		halfWidth float64
		ratio     float64
		want      int
	}{
		{"moderate purse", 10, 40, 4},
		{"strong purse", 5, 20, 4},
		{"no purse", 25, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := rest
			setPx(&act, landmark.RightMouth, 320-tt.halfWidth, 300)
			setPx(&act, landmark.LeftMouth, 320+tt.halfWidth, 300)

			ratio := mustMetric(t, evaluate(t, ev, rest, act, ""), "width_ratio")
			if math.Abs(ratio.Value-tt.ratio) > epsilon || ratio.Score != tt.want {
				t.Errorf("ratio = %f (%d), want %f scoring %d", ratio.Value, ratio.Score, tt.ratio, tt.want)
			}
		})
	}
}

func TestCheek_BestOfCandidates(t *testing.T) {
	const (
		altRight = 234
		altLeft  = 454
	)
	candidates := []CheekCandidate{
		{Right: landmark.RightCheek, Left: landmark.LeftCheek},
		{Right: altRight, Left: altLeft},
	}

	rest := landmark.NeutralFace()
	setPx(&rest, landmark.NoseBridge, 320, 192)
	for _, c := range candidates {
		setPx(&rest, c.Right, 320-200, 290)
		setPx(&rest, c.Left, 320+200, 290)
	}

	act := rest
	setPx(&act, landmark.RightCheek, 320-203, 290)
	setPx(&act, landmark.LeftCheek, 320+203, 290)
	setPx(&act, altRight, 320-208, 290)
	setPx(&act, altLeft, 320+208, 290)

	tests := []struct {
		name      string
		policy    CandidatePolicy
		wantPuff  float64
		wantScore int
	}{
		{name: "best of candidates", policy: BestOfCandidates{}, wantPuff: 4.0, wantScore: 4},
		{name: "primary candidate", policy: PrimaryCandidate{}, wantPuff: 1.5, wantScore: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &cheekEvaluator{reg: landmark.DefaultRegistry(), th: DefaultThresholds(), policy: tt.policy}
			res, err := ev.ComputeMetrics(Input{
				Baseline:   &rest,
				Action:     &act,
				MMPerPx:    mmPerPx,
				Candidates: candidates,
			})
			if err != nil {
				t.Fatalf("ComputeMetrics() error = %v", err)
			}

			for _, name := range []string{"right_puff", "left_puff"} {
				m := mustMetric(t, res, name)
				if math.Abs(m.Value-tt.wantPuff) > epsilon || m.Score != tt.wantScore {
					t.Errorf("%s = %f (%d), want %f (%d)", name, m.Value, m.Score, tt.wantPuff, tt.wantScore)
				}
			}
			if sym := mustMetric(t, res, "symmetry"); sym.Score != 4 {
				t.Errorf("symmetry score = %d, want 4", sym.Score)
			}
			if res.Count != 3 {
				t.Errorf("count = %d, want 3", res.Count)
			}
			if _, ok := res.Metric("candidate_1_right"); !ok {
				t.Error("comparison row for the second candidate is missing")
			}
		})
	}
}

func TestPolicyByName(t *testing.T) {
	for name, want := range map[string]string{"": "best", "best": "best", "primary": "primary"} {
		p, err := PolicyByName(name)
		if err != nil || p.Name() != want {
			t.Errorf("PolicyByName(%q) = %v, %v", name, p, err)
		}
	}
	if _, err := PolicyByName("median"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestScanCheekCandidates(t *testing.T) {
	reg := landmark.DefaultRegistry()
	f := landmark.NeutralFace()

	// Two points per side inside the band around the mouth line, ranked by
	// distance from the midline, plus one far point outside the band.
	setPx(&f, 132, 0.30*640, 300)
	setPx(&f, 58, 0.33*640, 295)
	setPx(&f, 361, 0.71*640, 300)
	setPx(&f, 288, 0.66*640, 295)
	setPx(&f, 127, 0.10*640, 200)

	got, err := ScanCheekCandidates(&f, reg, 0.25, 3)
	if err != nil {
		t.Fatalf("ScanCheekCandidates() error = %v", err)
	}

	want := []CheekCandidate{
		{Right: landmark.RightCheek, Left: landmark.LeftCheek},
		{Right: 132, Left: 361},
		{Right: 58, Left: 288},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %v, want %v", i, got[i], want[i])
		}
	}

	t.Run("single candidate skips the scan", func(t *testing.T) {
		got, err := ScanCheekCandidates(&f, reg, 0.25, 1)
		if err != nil || len(got) != 1 {
			t.Errorf("got %v, %v; want only the default pair", got, err)
		}
	})
}

func eyeClosedBy(f *landmark.Frame, upper, lower int, remainingPx float64) {
	u, _ := geometry.ToPixel(f, upper)
	l, _ := geometry.ToPixel(f, lower)
	mid := (u.Y + l.Y) / 2
	setPx(f, upper, u.X, mid-remainingPx/2)
	setPx(f, lower, l.X, mid+remainingPx/2)
}

func TestClosure(t *testing.T) {
	e := newTestEngine(t)
	open := landmark.NeutralFace() // 9.6px gap per eye

	closed := open
	eyeClosedBy(&closed, landmark.RightEyeUpper, landmark.RightEyeLower, 0)
	eyeClosedBy(&closed, landmark.LeftEyeUpper, landmark.LeftEyeLower, 2.4)

	for _, id := range []ID{LightClose, HeavyClose} {
		t.Run(string(id), func(t *testing.T) {
			ev, _ := e.Evaluator(id)
			res := evaluate(t, ev, open, closed, "")

			right := mustMetric(t, res, "right_closure")
			left := mustMetric(t, res, "left_closure")
			if math.Abs(right.Value-100) > epsilon || right.Score != 4 {
				t.Errorf("right closure = %f (%d), want 100 (4)", right.Value, right.Score)
			}
			if math.Abs(left.Value-75) > epsilon || left.Score != 2 {
				t.Errorf("left closure = %f (%d), want 75 (2)", left.Value, left.Score)
			}
			if gap := mustMetric(t, res, "left_gap"); math.Abs(gap.Value-2.4) > epsilon || gap.Scored {
				t.Errorf("left gap = %f scored=%v, want 2.4 unscored", gap.Value, gap.Scored)
			}
			if travel := mustMetric(t, res, "right_upper_lid_travel"); math.Abs(travel.Value-4.8) > epsilon {
				t.Errorf("right upper lid travel = %f, want 4.8", travel.Value)
			}
			if res.Total != 6 || res.Count != 2 {
				t.Errorf("total/count = %d/%d, want 6/2", res.Total, res.Count)
			}
		})
	}

	t.Run("tilted eyes measure the same", func(t *testing.T) {
		ev, _ := e.Evaluator(LightClose)
		res := evaluate(t, ev, landmark.Tilt(open, -20), landmark.Tilt(closed, -20), "")
		if left := mustMetric(t, res, "left_closure"); math.Abs(left.Value-75) > 1e-6 {
			t.Errorf("left closure = %f, want 75", left.Value)
		}
	})
}

func TestWink(t *testing.T) {
	e := newTestEngine(t)
	ev, _ := e.Evaluator(Wink)
	open := landmark.NeutralFace()

	closed := open
	eyeClosedBy(&closed, landmark.LeftEyeUpper, landmark.LeftEyeLower, 0)

	left := evaluate(t, ev, open, closed, landmark.SideLeft)
	right := evaluate(t, ev, open, open, landmark.SideRight)

	if m := mustMetric(t, left, "left_closure"); m.Score != 4 {
		t.Errorf("left wink score = %d, want 4", m.Score)
	}
	if _, ok := left.Metric("right_closure"); ok {
		t.Error("left wink must only measure the left eye")
	}
	if right.Total != 0 || right.Count != 1 {
		t.Errorf("open right eye total/count = %d/%d, want 0/1", right.Total, right.Count)
	}

	both := Combine(Wink, right, left)
	if both.Total != 4 || both.Count != 2 || len(both.Details) != 4 {
		t.Errorf("combined = %d/%d with %d rows, want 4/2 with 4", both.Total, both.Count, len(both.Details))
	}
	if both.Grade() != 2 {
		t.Errorf("combined grade = %d, want 2", both.Grade())
	}

	for _, side := range []landmark.Side{"", "up"} {
		in := Input{Baseline: &open, Action: &closed, MMPerPx: mmPerPx, Side: side}
		if _, err := ev.ComputeMetrics(in); err == nil {
			t.Errorf("ComputeMetrics() with side %q should fail", side)
		}
		if _, err := e.Score(Wink, &open, &closed, side); err == nil {
			t.Errorf("Score() with side %q should fail", side)
		}
	}
}

func TestEee(t *testing.T) {
	e := newTestEngine(t)
	ev, _ := e.Evaluator(Eee)
	rest := landmark.NeutralFace()

	tests := []struct {
		name         string
		right, left  float64
		wantSymmetry float64
		wantScore    int
	}{
		{"even grin", 8, 8, 100, 4},
		{"one side weak", 8, 4, 50, 2},
		{"one side still", 8, 0, 0, 0},
		{"corner moves inward", 8, -3, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := rest
			landmark.Shift(&act, landmark.RightMouth, -tt.right, 0)
			landmark.Shift(&act, landmark.LeftMouth, tt.left, 0)

			res := evaluate(t, ev, rest, act, "")
			m := mustMetric(t, res, "symmetry")
			if math.Abs(m.Value-tt.wantSymmetry) > epsilon || m.Score != tt.wantScore {
				t.Errorf("symmetry = %f (%d), want %f (%d)", m.Value, m.Score, tt.wantSymmetry, tt.wantScore)
			}
		})
	}
}

func TestNose(t *testing.T) {
	e := newTestEngine(t)
	ev, _ := e.Evaluator(Nose)
	rest := landmark.NeutralFace()

	act := rest
	landmark.Shift(&act, landmark.RightNoseWing, -2, 0)
	landmark.Shift(&act, landmark.LeftNoseWing, 0.2, 0)

	res := evaluate(t, ev, rest, act, "")
	if m := mustMetric(t, res, "right_nose_wing"); m.Score != 4 {
		t.Errorf("right wing = %f (%d), want score 4", m.Value, m.Score)
	}
	if m := mustMetric(t, res, "left_nose_wing"); m.Score != 2 {
		t.Errorf("left wing = %f (%d), want score 2", m.Value, m.Score)
	}
}

func TestHenoji(t *testing.T) {
	e := newTestEngine(t)
	ev, _ := e.Evaluator(Henoji)
	rest := landmark.NeutralFace()

	act := rest
	landmark.Shift(&act, landmark.RightMouth, 0, 3.5)
	landmark.Shift(&act, landmark.LeftMouth, 0, 1.5)

	res := evaluate(t, ev, rest, act, "")
	right := mustMetric(t, res, "right_mouth_drop")
	left := mustMetric(t, res, "left_mouth_drop")
	if math.Abs(right.Value-3.5) > epsilon || right.Score != 4 {
		t.Errorf("right drop = %f (%d), want 3.5 (4)", right.Value, right.Score)
	}
	if math.Abs(left.Value-1.5) > epsilon || left.Score != 2 {
		t.Errorf("left drop = %f (%d), want 1.5 (2)", left.Value, left.Score)
	}
}

func TestWrinkle(t *testing.T) {
	e := newTestEngine(t)
	ev, _ := e.Evaluator(Wrinkle)
	rest := landmark.NeutralFace()

	t.Run("both brows rise", func(t *testing.T) {
		act := rest
		landmark.Shift(&act, landmark.RightBrow, 0, -7)
		landmark.Shift(&act, landmark.LeftBrow, 0, -7)

		res := evaluate(t, ev, rest, act, "")
		if res.Total != 12 {
			t.Errorf("total = %d, want 12: %v", res.Total, res.Details)
		}
	})

	t.Run("one brow paralysed", func(t *testing.T) {
		act := rest
		landmark.Shift(&act, landmark.RightBrow, 0, -7)

		res := evaluate(t, ev, rest, act, "")
		if m := mustMetric(t, res, "left_brow_lift"); m.Value != 0 || m.Score != 0 {
			t.Errorf("left lift = %f (%d), want 0 (0)", m.Value, m.Score)
		}
		if m := mustMetric(t, res, "brow_symmetry"); m.Score != 0 {
			t.Errorf("symmetry score = %d, want 0", m.Score)
		}
	})
}

func TestEvaluators_DoNotMutateInput(t *testing.T) {
	e := newTestEngine(t)
	rest := landmark.Tilt(landmark.NeutralFace(), 7)
	act := rest
	landmark.Shift(&act, landmark.RightMouth, -5, 2)

	restCopy, actCopy := rest, act
	for _, id := range IDs() {
		ev, err := e.Evaluator(id)
		if err != nil {
			t.Fatalf("Evaluator(%s) error = %v", id, err)
		}
		if _, err := ev.ComputeMetrics(Input{Baseline: &rest, Action: &act, MMPerPx: 0.3, Side: landmark.SideLeft}); err != nil {
			t.Fatalf("%s: ComputeMetrics() error = %v", id, err)
		}
		if rest != restCopy || act != actCopy {
			t.Fatalf("%s modified its input frames", id)
		}
	}
}

func TestEvaluators_ScoresAreTiers(t *testing.T) {
	e := newTestEngine(t)
	rng := rand.New(rand.NewSource(42))

	jitter := func(f landmark.Frame, px float64) landmark.Frame {
		for i := range f.Points {
			f.Points[i].X += (rng.Float64()*2 - 1) * px / float64(f.Width)
			f.Points[i].Y += (rng.Float64()*2 - 1) * px / float64(f.Height)
		}
		return f
	}

	for round := 0; round < 50; round++ {
		base := landmark.Tilt(landmark.NeutralFace(), rng.Float64()*40-20)
		rest, act := jitter(base, 1), jitter(base, 6)

		for _, id := range IDs() {
			res, err := e.Score(id, &rest, &act, landmark.SideRight)
			if err != nil {
				t.Fatalf("%s: Score() error = %v", id, err)
			}
			sum, count := 0, 0
			for _, m := range res.Details {
				if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
					t.Errorf("%s/%s value is not finite", id, m.Name)
				}
				if !m.Scored {
					if m.Score != 0 {
						t.Errorf("%s/%s informational row carries score %d", id, m.Name, m.Score)
					}
					continue
				}
				if m.Score != 0 && m.Score != 2 && m.Score != 4 {
					t.Errorf("%s/%s score = %d", id, m.Name, m.Score)
				}
				sum += m.Score
				count++
			}
			if sum != res.Total || count != res.Count {
				t.Errorf("%s total/count %d/%d, rows add up to %d/%d", id, res.Total, res.Count, sum, count)
			}
		}
	}
}

func TestEngine_Evaluate(t *testing.T) {
	e := newTestEngine(t)

	t.Run("scores a selection", func(t *testing.T) {
		f := landmark.NeutralFace()
		sel := selector.NewSelection(selector.Pick{Window: WindowBaseline, Frame: &f})

		res, err := e.Evaluate(Rest, sel, "")
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if res.Gesture != Rest || res.Total != 12 {
			t.Errorf("got %s with total %d, want rest with 12", res.Gesture, res.Total)
		}
	})

	t.Run("calibration failure fails the capture", func(t *testing.T) {
		f := landmark.NeutralFace()
		landmark.SetIrisRadius(&f, 0)
		sel := selector.NewSelection(
			selector.Pick{Window: WindowBaseline, Frame: &f},
			selector.Pick{Window: WindowAction, Frame: &f},
		)

		if _, err := e.Evaluate(Eee, sel, ""); !errors.Is(err, geometry.ErrCalibration) {
			t.Errorf("Evaluate() error = %v, want ErrCalibration", err)
		}
	})

	t.Run("missing baseline", func(t *testing.T) {
		if _, err := e.Evaluate(Rest, selector.NewSelection(), ""); !errors.Is(err, selector.ErrFaceNotFound) {
			t.Errorf("Evaluate() error = %v, want ErrFaceNotFound", err)
		}
	})

	t.Run("unknown gesture", func(t *testing.T) {
		f := landmark.NeutralFace()
		if _, err := e.Score("smile", &f, &f, ""); err == nil {
			t.Error("expected error for unknown gesture")
		}
	})
}

func TestPlanFor(t *testing.T) {
	reg := landmark.DefaultRegistry()

	for _, id := range IDs() {
		t.Run(string(id), func(t *testing.T) {
			plan, err := PlanFor(id, landmark.SideRight, reg)
			if err != nil {
				t.Fatalf("PlanFor() error = %v", err)
			}
			if err := plan.Validate(); err != nil {
				t.Fatalf("plan does not validate: %v", err)
			}
			if plan.Duration != CaptureDuration {
				t.Errorf("duration = %s, want %s", plan.Duration, CaptureDuration)
			}
			if plan.Windows[0].Name != WindowBaseline || plan.Windows[0].End != BaselineEnd {
				t.Errorf("first window = %+v, want baseline ending at %s", plan.Windows[0], BaselineEnd)
			}
			if id == Rest && len(plan.Windows) != 1 {
				t.Errorf("rest has %d windows, want 1", len(plan.Windows))
			}
			if id != Rest && len(plan.Windows) != 2 {
				t.Errorf("%s has %d windows, want 2", id, len(plan.Windows))
			}
		})
	}

	t.Run("wink needs a side", func(t *testing.T) {
		if _, err := PlanFor(Wink, "", reg); err == nil {
			t.Error("expected error for wink without side")
		}
	})

	t.Run("closure windows end at two seconds", func(t *testing.T) {
		plan, _ := PlanFor(LightClose, "", reg)
		if plan.Windows[1].End != ClosedEnd || plan.Windows[1].Direction != selector.Minimize {
			t.Errorf("closed window = %+v", plan.Windows[1])
		}
	})
}

func TestIDs(t *testing.T) {
	ids := IDs()
	if len(ids) != 10 {
		t.Fatalf("got %d gestures, want 10", len(ids))
	}
	for _, id := range ids {
		if !id.Valid() || id.Name() == string(id) {
			t.Errorf("gesture %q has no display name", id)
		}
	}
	if ID("smile").Valid() {
		t.Error("unexpected valid gesture")
	}
	if !Wink.Sided() || Rest.Sided() {
		t.Error("only wink is captured per side")
	}
}
