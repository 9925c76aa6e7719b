package scoring

import (
	"math"

	"github.com/ayusman/yanagihara/internal/geometry"
	"github.com/ayusman/yanagihara/internal/landmark"
)

// restEvaluator grades facial symmetry from a single neutral frame.
type restEvaluator struct {
	reg landmark.Registry
	th  Thresholds
}

func (e *restEvaluator) Gesture() ID { return Rest }

func (e *restEvaluator) ComputeMetrics(in Input) (GestureResult, error) {
	if err := in.check(); err != nil {
		return GestureResult{}, err
	}

	rot, err := geometry.FaceRotation(in.Baseline, e.reg.RightIrisCenter, e.reg.LeftIrisCenter)
	if err != nil {
		return GestureResult{}, err
	}
	p := &points{f: in.Baseline}

	eyeDiff := math.Abs(p.aligned(rot, e.reg.RightEyeOuter).Y-p.aligned(rot, e.reg.LeftEyeOuter).Y) * in.MMPerPx
	mouthDiff := math.Abs(p.aligned(rot, e.reg.RightMouth).Y-p.aligned(rot, e.reg.LeftMouth).Y) * in.MMPerPx

	// Philtrum direction in the face frame, measured from the face's
	// downward vertical axis.
	d := p.aligned(rot, e.reg.PhiltrumBottom).Sub(p.aligned(rot, e.reg.PhiltrumTop))
	tilt := math.Abs(math.Atan2(d.X, d.Y)) * 180 / math.Pi

	if p.err != nil {
		return GestureResult{}, p.err
	}

	b := newBuilder(Rest)
	b.score("eye_height_diff", "Eye corner height difference", eyeDiff, UnitMM, e.th.RestEye)
	b.score("mouth_height_diff", "Mouth corner height difference", mouthDiff, UnitMM, e.th.RestMouth)
	b.score("philtrum_tilt", "Philtrum tilt", tilt, UnitDegree, e.th.RestPhiltrum)
	return b.result(), nil
}
