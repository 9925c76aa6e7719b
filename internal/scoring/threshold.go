package scoring

import (
	"fmt"
	"math"
)

// Polarity tells whether larger or smaller metric values are better.
type Polarity string

const (
	Higher Polarity = "higher"
	Lower  Polarity = "lower"
)

// Threshold is a two-tier clinical cut-off. With Higher polarity a value
// of at least T4 scores 4 and at least T2 scores 2. With Lower polarity a
// value below T4 scores 4 and below T2 scores 2. Anything else scores 0.
type Threshold struct {
	T4       float64  `json:"t4"`
	T2       float64  `json:"t2"`
	Polarity Polarity `json:"polarity" validate:"oneof=higher lower"`
}

// Score maps v onto 0, 2 or 4.
func (t Threshold) Score(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	if t.Polarity == Lower {
		switch {
		case v < t.T4:
			return 4
		case v < t.T2:
			return 2
		}
		return 0
	}
	switch {
	case v >= t.T4:
		return 4
	case v >= t.T2:
		return 2
	}
	return 0
}

// Unreachable reports whether the 2-point tier can never be awarded
// because the 4-point tier already covers it.
func (t Threshold) Unreachable() bool {
	if t.Polarity == Lower {
		return t.T2 <= t.T4
	}
	return t.T2 >= t.T4
}

func (t Threshold) String() string {
	return fmt.Sprintf("[%g, %g] %s", t.T4, t.T2, t.Polarity)
}

func higher(t4, t2 float64) Threshold { return Threshold{T4: t4, T2: t2, Polarity: Higher} }
func lower(t4, t2 float64) Threshold  { return Threshold{T4: t4, T2: t2, Polarity: Lower} }

// Thresholds is the clinical table for every scored metric.
type Thresholds struct {
	RestEye      Threshold `json:"rest_eye"`
	RestMouth    Threshold `json:"rest_mouth"`
	RestPhiltrum Threshold `json:"rest_philtrum"`

	WrinkleLift     Threshold `json:"wrinkle_lift"`
	WrinkleSymmetry Threshold `json:"wrinkle_symmetry"`

	LightClose Threshold `json:"light_close"`
	HeavyClose Threshold `json:"heavy_close"`
	Wink       Threshold `json:"wink"`

	NoseFlare Threshold `json:"nose_flare"`

	CheekPuff     Threshold `json:"cheek_puff"`
	CheekSymmetry Threshold `json:"cheek_symmetry"`

	WhistleRatio Threshold `json:"whistle_ratio"`

	EeeSymmetry Threshold `json:"eee_symmetry"`

	HenojiDrop Threshold `json:"henoji_drop"`
}

// DefaultThresholds returns the standard clinical table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RestEye:      lower(2, 5),
		RestMouth:    lower(3, 6),
		RestPhiltrum: lower(10, 20),

		WrinkleLift:     higher(6, 3),
		WrinkleSymmetry: higher(70, 30),

		LightClose: higher(95, 60),
		HeavyClose: higher(95, 60),
		Wink:       higher(95, 60),

		NoseFlare: higher(0.5, 0.1),

		CheekPuff:     higher(2, 1),
		CheekSymmetry: higher(25, 15),

		// Smaller mouth width ratio means stronger pursing.
		WhistleRatio: lower(50, 30),

		EeeSymmetry: higher(70, 30),

		HenojiDrop: higher(3, 1),
	}
}

// Named returns every threshold keyed by its table name.
func (t Thresholds) Named() map[string]Threshold {
	return map[string]Threshold{
		"rest_eye":         t.RestEye,
		"rest_mouth":       t.RestMouth,
		"rest_philtrum":    t.RestPhiltrum,
		"wrinkle_lift":     t.WrinkleLift,
		"wrinkle_symmetry": t.WrinkleSymmetry,
		"light_close":      t.LightClose,
		"heavy_close":      t.HeavyClose,
		"wink":             t.Wink,
		"nose_flare":       t.NoseFlare,
		"cheek_puff":       t.CheekPuff,
		"cheek_symmetry":   t.CheekSymmetry,
		"whistle_ratio":    t.WhistleRatio,
		"eee_symmetry":     t.EeeSymmetry,
		"henoji_drop":      t.HenojiDrop,
	}
}
