package scoring

import (
	"fmt"
	"math"

	"github.com/ayusman/yanagihara/internal/geometry"
	"github.com/ayusman/yanagihara/internal/landmark"
)

// lid is one eye opening measured in the eye's own frame, where the line
// through both eye corners is horizontal.
type lid struct {
	up  float64 // upper lid height above the corner line, px
	low float64 // lower lid depth below the corner line, px
	gap float64 // lower minus upper lid, px, never negative
}

func measureLid(p *points, eye landmark.Eye) lid {
	inner, outer := p.at(eye.Inner), p.at(eye.Outer)
	rot := geometry.Rotation{
		Origin: inner.Add(outer).Mul(0.5),
		Angle:  geometry.EyeAxisAngle(inner, outer),
	}
	in, out := rot.Align(inner), rot.Align(outer)
	up, low := rot.Align(p.at(eye.Upper)), rot.Align(p.at(eye.Lower))

	base := (in.Y + out.Y) / 2
	return lid{
		up:  math.Abs(base - up.Y),
		low: math.Abs(low.Y - base),
		gap: math.Max(0, low.Y-up.Y),
	}
}

// EyeGap returns the eyelid gap of one eye in pixels. It is the metric the
// closure captures rank frames by.
func EyeGap(f *landmark.Frame, eye landmark.Eye) float64 {
	return measureLid(&points{f: f}, eye).gap
}

// closureEvaluator scores how completely both eyes close.
// Light and tight closure share the measurement and differ in thresholds.
type closureEvaluator struct {
	id  ID
	reg landmark.Registry
	t   Threshold
}

func (e *closureEvaluator) Gesture() ID { return e.id }

func (e *closureEvaluator) ComputeMetrics(in Input) (GestureResult, error) {
	if err := in.check(); err != nil {
		return GestureResult{}, err
	}
	open, closed := &points{f: in.Baseline}, &points{f: in.Action}

	b := newBuilder(e.id)
	for _, s := range sides {
		eye := e.reg.Eye(s)
		o, c := measureLid(open, eye), measureLid(closed, eye)
		if err := firstErr(open, closed); err != nil {
			return GestureResult{}, err
		}

		prefix, label := string(s)+"_", sideLabel(s)+" eye "
		openMM, closedMM := o.gap*in.MMPerPx, c.gap*in.MMPerPx
		b.info(prefix+"upper_lid_travel", label+"upper lid travel", math.Max(0, o.up-c.up)*in.MMPerPx, UnitMM)
		b.info(prefix+"lower_lid_travel", label+"lower lid travel", math.Max(0, o.low-c.low)*in.MMPerPx, UnitMM)
		b.score(prefix+"closure", label+"closure", geometry.ClosurePercent(openMM, closedMM), UnitPercent, e.t)
		b.info(prefix+"gap", label+"remaining gap", closedMM, UnitMM)
	}
	return b.result(), nil
}

// winkEvaluator scores the closure of the targeted eye only. A complete wink
// result combines one capture per side.
type winkEvaluator struct {
	reg landmark.Registry
	th  Thresholds
}

func (e *winkEvaluator) Gesture() ID { return Wink }

func (e *winkEvaluator) ComputeMetrics(in Input) (GestureResult, error) {
	if err := in.check(); err != nil {
		return GestureResult{}, err
	}
	side := in.Side
	if !side.Valid() {
		return GestureResult{}, fmt.Errorf("wink needs a side, got %q", side)
	}
	open, closed := &points{f: in.Baseline}, &points{f: in.Action}

	eye := e.reg.Eye(side)
	o, c := measureLid(open, eye), measureLid(closed, eye)
	if err := firstErr(open, closed); err != nil {
		return GestureResult{}, err
	}

	prefix, label := string(side)+"_", sideLabel(side)+" wink "
	openMM, closedMM := o.gap*in.MMPerPx, c.gap*in.MMPerPx

	b := newBuilder(Wink)
	b.score(prefix+"closure", label+"closure", geometry.ClosurePercent(openMM, closedMM), UnitPercent, e.th.Wink)
	b.info(prefix+"gap", label+"remaining gap", closedMM, UnitMM)
	return b.result(), nil
}
