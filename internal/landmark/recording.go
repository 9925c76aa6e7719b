package landmark

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/fxamacker/cbor/v2"
)

// Observation is one sampled frame of a recorded capture.
// Points is empty when no face was detected in that frame.
type Observation struct {
	OffsetMs int64        `cbor:"t"`
	Width    int          `cbor:"w"`
	Height   int          `cbor:"h"`
	Points   [][3]float64 `cbor:"p,omitempty"`
}

// Recording is an ordered stream of observations that can be replayed
// through the capture pipeline in place of a camera and detector.
type Recording struct {
	Label        string        `cbor:"label,omitempty"`
	Observations []Observation `cbor:"obs"`
}

// ObservationOf builds an observation from a detected frame.
// A nil frame records a sample without a face.
func ObservationOf(offsetMs int64, f *Frame, width, height int) Observation {
	obs := Observation{OffsetMs: offsetMs, Width: width, Height: height}
	if f == nil {
		return obs
	}
	obs.Width, obs.Height = f.Width, f.Height
	obs.Points = make([][3]float64, NumLandmarks)
	for i, p := range f.Points {
		obs.Points[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return obs
}

// Frame converts the observation back into a landmark frame.
// Returns nil without error when the observation holds no face.
func (o Observation) Frame() (*Frame, error) {
	if len(o.Points) == 0 {
		return nil, nil
	}
	if len(o.Points) != NumLandmarks {
		return nil, fmt.Errorf("observation at %dms has %d landmarks, expected %d", o.OffsetMs, len(o.Points), NumLandmarks)
	}
	f := &Frame{Width: o.Width, Height: o.Height}
	for i, p := range o.Points {
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("observation at %dms: landmark %d is not finite", o.OffsetMs, i)
			}
		}
		f.Points[i] = Point3D{X: p[0], Y: p[1], Z: p[2]}
	}
	if err := f.Check(); err != nil {
		return nil, fmt.Errorf("observation at %dms: %w", o.OffsetMs, err)
	}
	return f, nil
}

// WriteRecording encodes rec as CBOR.
func WriteRecording(w io.Writer, rec Recording) error {
	if err := cbor.NewEncoder(w).Encode(rec); err != nil {
		return fmt.Errorf("encode recording: %w", err)
	}
	return nil
}

// ReadRecording decodes a CBOR recording and checks that every observation
// converts to a valid frame and that offsets never go backwards.
func ReadRecording(r io.Reader) (Recording, error) {
	var rec Recording
	if err := cbor.NewDecoder(r).Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return rec, fmt.Errorf("decode recording: empty input")
		}
		return rec, fmt.Errorf("decode recording: %w", err)
	}
	for _, o := range rec.Observations {
		if _, err := o.Frame(); err != nil {
			return rec, err
		}
	}
	for i := 1; i < len(rec.Observations); i++ {
		if rec.Observations[i].OffsetMs < rec.Observations[i-1].OffsetMs {
			return rec, fmt.Errorf("observation %d goes back in time (%dms < %dms)",
				i, rec.Observations[i].OffsetMs, rec.Observations[i-1].OffsetMs)
		}
	}
	return rec, nil
}
