// Package annotate draws the landmarks a gesture was measured on over the
// snapshot of the selected action frame.
package annotate

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/ayusman/yanagihara/internal/capture"
	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/scoring"
)

var (
	// ErrEmptyImage is returned when there is nothing to draw on.
	ErrEmptyImage = errors.New("annotate: empty image")

	// ErrNoFrame is returned when the action frame is missing.
	ErrNoFrame = errors.New("annotate: no action frame")
)

// Style controls colours and sizes. Colours are plain RGBA values; gocv
// reorders them for OpenCV when drawing.
type Style struct {
	Point     color.RGBA
	Baseline  color.RGBA
	Iris      color.RGBA
	Axis      color.RGBA
	Arrow     color.RGBA
	Text      color.RGBA
	Radius    int
	Thickness int
	FontScale float64
}

// DefaultStyle is green points, grey baseline points with yellow arrows
// toward the action, cyan irises and a magenta face axis.
func DefaultStyle() Style {
	return Style{
		Point:     color.RGBA{R: 0, G: 255, B: 0, A: 255},
		Baseline:  color.RGBA{R: 160, G: 160, B: 160, A: 255},
		Iris:      color.RGBA{R: 0, G: 255, B: 255, A: 255},
		Axis:      color.RGBA{R: 255, G: 0, B: 255, A: 255},
		Arrow:     color.RGBA{R: 255, G: 255, B: 0, A: 255},
		Text:      color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Radius:    3,
		Thickness: 1,
		FontScale: 0.6,
	}
}

// Renderer annotates snapshots for one landmark registry.
type Renderer struct {
	reg   landmark.Registry
	style Style
}

// New creates a Renderer.
func New(reg landmark.Registry, style Style) *Renderer {
	if style.Radius <= 0 {
		style.Radius = 1
	}
	if style.Thickness <= 0 {
		style.Thickness = 1
	}
	if style.FontScale <= 0 {
		style.FontScale = DefaultStyle().FontScale
	}
	return &Renderer{reg: reg, style: style}
}

// Points returns the landmarks a gesture is measured on. side only matters
// for wink.
func (r *Renderer) Points(id scoring.ID, side landmark.Side) []int {
	reg := r.reg
	eye := func(s landmark.Side) []int {
		e := reg.Eye(s)
		return []int{e.Upper, e.Lower}
	}

	switch id {
	case scoring.Rest:
		return []int{reg.RightEyeOuter, reg.LeftEyeOuter, reg.RightMouth, reg.LeftMouth, reg.PhiltrumTop, reg.PhiltrumBottom}
	case scoring.Wrinkle:
		return []int{reg.RightBrow, reg.LeftBrow, reg.RightEyeUpper, reg.LeftEyeUpper}
	case scoring.LightClose, scoring.HeavyClose:
		return append(eye(landmark.SideRight), eye(landmark.SideLeft)...)
	case scoring.Wink:
		if !side.Valid() {
			side = landmark.SideRight
		}
		return eye(side)
	case scoring.Nose:
		return []int{reg.NoseTip, reg.RightNoseWing, reg.LeftNoseWing}
	case scoring.Cheek:
		return []int{reg.NoseBridge, reg.RightCheek, reg.LeftCheek}
	case scoring.Whistle, scoring.Eee:
		return []int{reg.RightMouth, reg.LeftMouth}
	case scoring.Henoji:
		return []int{reg.RightEyeInner, reg.LeftEyeInner, reg.RightMouth, reg.LeftMouth}
	}
	return nil
}

// Draw annotates img in place. baseline may be nil or equal to action, in
// which case no movement arrows are drawn. Landmarks are placed by their
// normalized coordinates, so img may be of any size.
func (r *Renderer) Draw(img *gocv.Mat, id scoring.ID, side landmark.Side, baseline, action *landmark.Frame, res *scoring.GestureResult) error {
	if img == nil || img.Empty() {
		return ErrEmptyImage
	}
	if action == nil {
		return ErrNoFrame
	}
	w, h := img.Cols(), img.Rows()
	at := func(f *landmark.Frame, idx int) image.Point {
		p := f.Points[idx]
		return image.Pt(int(p.X*float64(w)+0.5), int(p.Y*float64(h)+0.5))
	}
	s := r.style

	// Face axis through both iris centres, and the iris outlines.
	rc, lc := at(action, r.reg.RightIrisCenter), at(action, r.reg.LeftIrisCenter)
	gocv.Line(img, rc, lc, s.Axis, s.Thickness)
	for _, iris := range []struct {
		center int
		ring   [4]int
	}{
		{r.reg.RightIrisCenter, r.reg.RightIrisRing},
		{r.reg.LeftIrisCenter, r.reg.LeftIrisRing},
	} {
		c := at(action, iris.center)
		e := at(action, iris.ring[0])
		radius := int(distance(c, e) + 0.5)
		if radius < 1 {
			radius = 1
		}
		gocv.Circle(img, c, radius, s.Iris, s.Thickness)
	}

	moved := baseline != nil && baseline != action
	for _, idx := range r.Points(id, side) {
		to := at(action, idx)
		if moved {
			from := at(baseline, idx)
			if from != to {
				gocv.Circle(img, from, s.Radius, s.Baseline, -1)
				gocv.ArrowedLine(img, from, to, s.Arrow, s.Thickness)
			}
		}
		gocv.Circle(img, to, s.Radius, s.Point, -1)
	}

	if res != nil {
		label := fmt.Sprintf("%s  %d/4", id.Name(), res.Grade())
		gocv.PutText(img, label, image.Pt(10, 24), gocv.FontHersheySimplex, s.FontScale, s.Text, s.Thickness)
	}
	return nil
}

// Render copies img, annotates the copy and returns it as JPEG.
func (r *Renderer) Render(img gocv.Mat, id scoring.ID, side landmark.Side, baseline, action *landmark.Frame, res *scoring.GestureResult) ([]byte, error) {
	out := img.Clone()
	defer out.Close()

	if err := r.Draw(&out, id, side, baseline, action, res); err != nil {
		return nil, err
	}
	b, err := capture.EncodeJPEG(out)
	if err != nil {
		return nil, fmt.Errorf("annotate: encode: %w", err)
	}
	return b, nil
}

func distance(a, b image.Point) float64 {
	d := a.Sub(b)
	return math.Hypot(float64(d.X), float64(d.Y))
}
