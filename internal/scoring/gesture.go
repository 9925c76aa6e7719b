// Package scoring holds the per-gesture evaluators of the Yanagihara grading
// protocol, the clinical threshold table they score against, and the engine
// that turns a frame selection into a GestureResult.
package scoring

import (
	"fmt"

	"github.com/ayusman/yanagihara/internal/geometry"
	"github.com/ayusman/yanagihara/internal/landmark"
)

// ID identifies a gesture.
type ID string

const (
	Rest       ID = "rest"
	Wrinkle    ID = "wrinkle"
	LightClose ID = "light_close"
	HeavyClose ID = "heavy_close"
	Wink       ID = "wink"
	Nose       ID = "nose"
	Cheek      ID = "cheek"
	Whistle    ID = "whistle"
	Eee        ID = "eee"
	Henoji     ID = "henoji"
)

var names = map[ID]string{
	Rest:       "Symmetry at rest",
	Wrinkle:    "Wrinkle forehead",
	LightClose: "Light eye closure",
	HeavyClose: "Tight eye closure",
	Wink:       "Wink",
	Nose:       "Wrinkle nose",
	Cheek:      "Puff cheeks",
	Whistle:    "Whistle",
	Eee:        "Grin showing teeth",
	Henoji:     "Depress lower lip",
}

// IDs returns every gesture in protocol order.
func IDs() []ID {
	return []ID{Rest, Wrinkle, LightClose, HeavyClose, Wink, Nose, Cheek, Whistle, Eee, Henoji}
}

// Valid reports whether id names a known gesture.
func (id ID) Valid() bool {
	_, ok := names[id]
	return ok
}

// Name returns the display name of the gesture.
func (id ID) Name() string {
	if n, ok := names[id]; ok {
		return n
	}
	return string(id)
}

// Sided reports whether the gesture is captured one side at a time.
func (id ID) Sided() bool {
	return id == Wink
}

// Input is everything an evaluator needs for one gesture.
// Baseline is the rest or open frame, Action the peak or closed frame. For
// single-frame gestures both point at the same frame.
type Input struct {
	Baseline *landmark.Frame
	Action   *landmark.Frame
	MMPerPx  float64
	Side     landmark.Side

	// Candidates overrides the cheek measurement points.
	Candidates []CheekCandidate
}

func (in Input) check() error {
	if err := in.Baseline.Check(); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	if err := in.Action.Check(); err != nil {
		return fmt.Errorf("action: %w", err)
	}
	if in.MMPerPx <= 0 {
		return fmt.Errorf("invalid calibration %f mm/px", in.MMPerPx)
	}
	return nil
}

// Evaluator computes the metrics of one gesture. Implementations are pure:
// identical inputs give identical results and frames are never modified.
type Evaluator interface {
	Gesture() ID
	ComputeMetrics(in Input) (GestureResult, error)
}

// points reads pixel positions from a frame and remembers the first failure,
// so measurement code can read a handful of points before checking once.
type points struct {
	f   *landmark.Frame
	err error
}

func (p *points) at(idx int) geometry.Point {
	pt, err := geometry.ToPixel(p.f, idx)
	if err != nil && p.err == nil {
		p.err = err
	}
	return pt
}

// aligned reads a point and maps it into the face frame of rot.
func (p *points) aligned(rot geometry.Rotation, idx int) geometry.Point {
	return rot.Align(p.at(idx))
}

func sideLabel(s landmark.Side) string {
	if s == landmark.SideLeft {
		return "Left"
	}
	return "Right"
}
