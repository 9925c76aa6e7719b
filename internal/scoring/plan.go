package scoring

import (
	"fmt"
	"time"

	"github.com/ayusman/yanagihara/internal/geometry"
	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/selector"
)

// Window names shared by every capture plan.
const (
	WindowBaseline = "baseline"
	WindowAction   = "action"
)

// Capture timing.
const (
	CaptureDuration = 3000 * time.Millisecond
	BaselineEnd     = 300 * time.Millisecond
	ClosedEnd       = 2000 * time.Millisecond
)

// PlanFor returns the capture plan of a gesture. side is only used by wink.
// Both windows keep a snapshot so results can be rendered.
func PlanFor(id ID, side landmark.Side, reg landmark.Registry) (selector.Plan, error) {
	baseline := selector.Window{
		Name:      WindowBaseline,
		Start:     0,
		End:       BaselineEnd,
		Direction: selector.First,
		Snapshot:  true,
	}
	action := func(dir selector.Direction, end time.Duration, metric selector.Metric) selector.Window {
		return selector.Window{
			Name:      WindowAction,
			Start:     BaselineEnd,
			End:       end,
			Metric:    metric,
			Direction: dir,
			Snapshot:  true,
		}
	}
	plan := func(ws ...selector.Window) selector.Plan {
		return selector.Plan{Duration: CaptureDuration, Windows: ws}
	}

	switch id {
	case Rest:
		return plan(baseline), nil

	case Wrinkle:
		return plan(baseline, action(selector.Maximize, CaptureDuration, func(f *landmark.Frame) float64 {
			return browHeight(reg, f)
		})), nil

	case Nose:
		return plan(baseline, action(selector.Maximize, CaptureDuration, func(f *landmark.Frame) float64 {
			p := &points{f: f}
			tip := p.at(reg.NoseTip)
			return geometry.Distance(tip, p.at(reg.RightNoseWing)) + geometry.Distance(tip, p.at(reg.LeftNoseWing))
		})), nil

	case Henoji:
		return plan(baseline, action(selector.Maximize, CaptureDuration, func(f *landmark.Frame) float64 {
			return mouthDrop(reg, f)
		})), nil

	case Eee:
		return plan(baseline, action(selector.Maximize, CaptureDuration, func(f *landmark.Frame) float64 {
			return mouthWidth(reg, f)
		})), nil

	case Whistle:
		return plan(baseline, action(selector.Minimize, CaptureDuration, func(f *landmark.Frame) float64 {
			return mouthWidth(reg, f)
		})), nil

	case Cheek:
		spread := func(f *landmark.Frame) float64 { return CheekSpread(reg, f) }
		rest := baseline
		rest.Direction = selector.Minimize
		rest.Metric = spread
		return plan(rest, action(selector.Maximize, CaptureDuration, spread)), nil

	case LightClose, HeavyClose:
		gap := func(f *landmark.Frame) float64 {
			return EyeGap(f, reg.Eye(landmark.SideRight)) + EyeGap(f, reg.Eye(landmark.SideLeft))
		}
		open := baseline
		open.Direction = selector.Maximize
		open.Metric = gap
		return plan(open, action(selector.Minimize, ClosedEnd, gap)), nil

	case Wink:
		if !side.Valid() {
			return selector.Plan{}, fmt.Errorf("wink needs a side, got %q", side)
		}
		eye := reg.Eye(side)
		gap := func(f *landmark.Frame) float64 { return EyeGap(f, eye) }
		open := baseline
		open.Direction = selector.Maximize
		open.Metric = gap
		return plan(open, action(selector.Minimize, ClosedEnd, gap)), nil
	}

	return selector.Plan{}, fmt.Errorf("unknown gesture %q", id)
}

func mouthWidth(reg landmark.Registry, f *landmark.Frame) float64 {
	p := &points{f: f}
	return geometry.Distance(p.at(reg.RightMouth), p.at(reg.LeftMouth))
}

// browHeight sums the brow-to-upper-lid distance of both eyes in the face frame.
func browHeight(reg landmark.Registry, f *landmark.Frame) float64 {
	rot, err := geometry.FaceRotation(f, reg.RightIrisCenter, reg.LeftIrisCenter)
	if err != nil {
		return 0
	}
	p := &points{f: f}
	var sum float64
	for _, s := range sides {
		sum += p.aligned(rot, reg.Eye(s).Upper).Y - p.aligned(rot, reg.Brow(s)).Y
	}
	return sum
}

// mouthDrop sums the eye-to-mouth-corner distance of both sides in the face frame.
func mouthDrop(reg landmark.Registry, f *landmark.Frame) float64 {
	rot, err := geometry.FaceRotation(f, reg.RightIrisCenter, reg.LeftIrisCenter)
	if err != nil {
		return 0
	}
	p := &points{f: f}
	var sum float64
	for _, s := range sides {
		sum += p.aligned(rot, reg.Mouth(s)).Y - p.aligned(rot, reg.Eye(s).Inner).Y
	}
	return sum
}
