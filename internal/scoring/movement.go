package scoring

import (
	"math"

	"github.com/ayusman/yanagihara/internal/geometry"
	"github.com/ayusman/yanagihara/internal/landmark"
)

// Movement gestures compare a rest frame against the peak of the action.
// Points from both frames are mapped into the face frame of the action
// frame before vertical or horizontal travel is measured.

func actionRotation(reg landmark.Registry, in Input) (geometry.Rotation, error) {
	return geometry.FaceRotation(in.Action, reg.RightIrisCenter, reg.LeftIrisCenter)
}

var sides = [2]landmark.Side{landmark.SideRight, landmark.SideLeft}

// wrinkleEvaluator measures how far each brow rises above its upper eyelid.
type wrinkleEvaluator struct {
	reg landmark.Registry
	th  Thresholds
}

func (e *wrinkleEvaluator) Gesture() ID { return Wrinkle }

func (e *wrinkleEvaluator) ComputeMetrics(in Input) (GestureResult, error) {
	if err := in.check(); err != nil {
		return GestureResult{}, err
	}
	rot, err := actionRotation(e.reg, in)
	if err != nil {
		return GestureResult{}, err
	}
	rest, act := &points{f: in.Baseline}, &points{f: in.Action}

	var lift [2]float64
	for i, s := range sides {
		brow, lid := e.reg.Brow(s), e.reg.Eye(s).Upper
		restGap := rest.aligned(rot, lid).Y - rest.aligned(rot, brow).Y
		actGap := act.aligned(rot, lid).Y - act.aligned(rot, brow).Y
		lift[i] = math.Max(0, actGap-restGap) * in.MMPerPx
	}
	if err := firstErr(rest, act); err != nil {
		return GestureResult{}, err
	}

	b := newBuilder(Wrinkle)
	b.score("right_brow_lift", "Right brow lift", lift[0], UnitMM, e.th.WrinkleLift)
	b.score("left_brow_lift", "Left brow lift", lift[1], UnitMM, e.th.WrinkleLift)
	b.score("brow_symmetry", "Brow lift symmetry", geometry.SymmetryPercent(lift[0], lift[1]), UnitPercent, e.th.WrinkleSymmetry)
	return b.result(), nil
}

// noseEvaluator measures how far each nose wing moves away from the tip.
type noseEvaluator struct {
	reg landmark.Registry
	th  Thresholds
}

func (e *noseEvaluator) Gesture() ID { return Nose }

func (e *noseEvaluator) ComputeMetrics(in Input) (GestureResult, error) {
	if err := in.check(); err != nil {
		return GestureResult{}, err
	}
	rest, act := &points{f: in.Baseline}, &points{f: in.Action}

	var flare [2]float64
	for i, s := range sides {
		wing := e.reg.NoseWing(s)
		restD := geometry.Distance(rest.at(e.reg.NoseTip), rest.at(wing))
		actD := geometry.Distance(act.at(e.reg.NoseTip), act.at(wing))
		flare[i] = math.Max(0, actD-restD) * in.MMPerPx
	}
	if err := firstErr(rest, act); err != nil {
		return GestureResult{}, err
	}

	b := newBuilder(Nose)
	b.score("right_nose_wing", "Right nose wing", flare[0], UnitMM, e.th.NoseFlare)
	b.score("left_nose_wing", "Left nose wing", flare[1], UnitMM, e.th.NoseFlare)
	return b.result(), nil
}

// henojiEvaluator measures how far each mouth corner drops away from the
// inner corner of the eye above it.
type henojiEvaluator struct {
	reg landmark.Registry
	th  Thresholds
}

func (e *henojiEvaluator) Gesture() ID { return Henoji }

func (e *henojiEvaluator) ComputeMetrics(in Input) (GestureResult, error) {
	if err := in.check(); err != nil {
		return GestureResult{}, err
	}
	rot, err := actionRotation(e.reg, in)
	if err != nil {
		return GestureResult{}, err
	}
	rest, act := &points{f: in.Baseline}, &points{f: in.Action}

	var drop [2]float64
	for i, s := range sides {
		eye, mouth := e.reg.Eye(s).Inner, e.reg.Mouth(s)
		restD := rest.aligned(rot, mouth).Y - rest.aligned(rot, eye).Y
		actD := act.aligned(rot, mouth).Y - act.aligned(rot, eye).Y
		drop[i] = math.Max(0, actD-restD) * in.MMPerPx
	}
	if err := firstErr(rest, act); err != nil {
		return GestureResult{}, err
	}

	b := newBuilder(Henoji)
	b.score("right_mouth_drop", "Right mouth corner", drop[0], UnitMM, e.th.HenojiDrop)
	b.score("left_mouth_drop", "Left mouth corner", drop[1], UnitMM, e.th.HenojiDrop)
	return b.result(), nil
}

// eeeEvaluator measures the outward travel of both mouth corners and scores
// how evenly they moved.
type eeeEvaluator struct {
	reg landmark.Registry
	th  Thresholds
}

func (e *eeeEvaluator) Gesture() ID { return Eee }

func (e *eeeEvaluator) ComputeMetrics(in Input) (GestureResult, error) {
	if err := in.check(); err != nil {
		return GestureResult{}, err
	}
	rot, err := actionRotation(e.reg, in)
	if err != nil {
		return GestureResult{}, err
	}
	rest, act := &points{f: in.Baseline}, &points{f: in.Action}

	// The subject's right corner sits at the smaller x.
	right := math.Max(0, rest.aligned(rot, e.reg.RightMouth).X-act.aligned(rot, e.reg.RightMouth).X) * in.MMPerPx
	left := math.Max(0, act.aligned(rot, e.reg.LeftMouth).X-rest.aligned(rot, e.reg.LeftMouth).X) * in.MMPerPx
	if err := firstErr(rest, act); err != nil {
		return GestureResult{}, err
	}

	b := newBuilder(Eee)
	b.info("right_corner_travel", "Right corner travel", right, UnitMM)
	b.info("left_corner_travel", "Left corner travel", left, UnitMM)
	b.score("symmetry", "Symmetry", geometry.SymmetryPercent(right, left), UnitPercent, e.th.EeeSymmetry)
	return b.result(), nil
}

// whistleEvaluator compares the pursed mouth width against the rest width.
type whistleEvaluator struct {
	reg landmark.Registry
	th  Thresholds
}

func (e *whistleEvaluator) Gesture() ID { return Whistle }

func (e *whistleEvaluator) ComputeMetrics(in Input) (GestureResult, error) {
	if err := in.check(); err != nil {
		return GestureResult{}, err
	}
	rot, err := actionRotation(e.reg, in)
	if err != nil {
		return GestureResult{}, err
	}
	rest, act := &points{f: in.Baseline}, &points{f: in.Action}

	restWidth := geometry.Distance(rest.at(e.reg.RightMouth), rest.at(e.reg.LeftMouth)) * in.MMPerPx
	actWidth := geometry.Distance(act.at(e.reg.RightMouth), act.at(e.reg.LeftMouth)) * in.MMPerPx

	right := math.Max(0, act.aligned(rot, e.reg.RightMouth).X-rest.aligned(rot, e.reg.RightMouth).X) * in.MMPerPx
	left := math.Max(0, rest.aligned(rot, e.reg.LeftMouth).X-act.aligned(rot, e.reg.LeftMouth).X) * in.MMPerPx
	if err := firstErr(rest, act); err != nil {
		return GestureResult{}, err
	}

	b := newBuilder(Whistle)
	b.info("rest_width", "Mouth width at rest", restWidth, UnitMM)
	b.info("action_width", "Mouth width pursed", actWidth, UnitMM)
	b.info("right_corner_travel", "Right corner travel", right, UnitMM)
	b.info("left_corner_travel", "Left corner travel", left, UnitMM)
	b.score("width_ratio", "Pursed to rest width", geometry.RatioPercent(actWidth, restWidth), UnitPercent, e.th.WhistleRatio)
	return b.result(), nil
}

func firstErr(ps ...*points) error {
	for _, p := range ps {
		if p.err != nil {
			return p.err
		}
	}
	return nil
}
