package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/ayusman/yanagihara/internal/geometry"
	"github.com/ayusman/yanagihara/internal/landmark"
)

// CheekCandidate is one pair of landmarks that may track the cheek bulge.
type CheekCandidate struct {
	Right int `json:"right" validate:"gte=0,lt=468"`
	Left  int `json:"left" validate:"gte=0,lt=468"`
}

// CheekMeasure is the puff measured with one candidate pair.
type CheekMeasure struct {
	Candidate    CheekCandidate
	RightMM      float64
	LeftMM       float64
	RightPercent float64
	LeftPercent  float64
	Symmetry     float64
}

// CheekChoice holds, for every scored cheek metric, the index of the
// candidate measure it is reported from.
type CheekChoice struct {
	Right    int
	Left     int
	Symmetry int
}

// CandidatePolicy decides which candidate each cheek metric is scored on.
type CandidatePolicy interface {
	Name() string
	Choose(measures []CheekMeasure) CheekChoice
}

// BestOfCandidates scores every metric on whichever candidate gives the
// highest value for it. Different metrics may come from different pairs.
// Ties keep the earlier candidate.
type BestOfCandidates struct{}

func (BestOfCandidates) Name() string { return "best" }

func (BestOfCandidates) Choose(ms []CheekMeasure) CheekChoice {
	pick := func(value func(CheekMeasure) float64) int {
		best := 0
		for i := 1; i < len(ms); i++ {
			if value(ms[i]) > value(ms[best]) {
				best = i
			}
		}
		return best
	}
	return CheekChoice{
		Right:    pick(func(m CheekMeasure) float64 { return m.RightPercent }),
		Left:     pick(func(m CheekMeasure) float64 { return m.LeftPercent }),
		Symmetry: pick(func(m CheekMeasure) float64 { return m.Symmetry }),
	}
}

// PrimaryCandidate always scores on the first candidate.
type PrimaryCandidate struct{}

func (PrimaryCandidate) Name() string { return "primary" }

func (PrimaryCandidate) Choose([]CheekMeasure) CheekChoice { return CheekChoice{} }

// PolicyByName returns the candidate policy registered under name.
func PolicyByName(name string) (CandidatePolicy, error) {
	switch name {
	case "", "best":
		return BestOfCandidates{}, nil
	case "primary":
		return PrimaryCandidate{}, nil
	default:
		return nil, fmt.Errorf("unknown cheek candidate policy %q", name)
	}
}

// cheekEvaluator scores how far each cheek bulges away from the face midline.
type cheekEvaluator struct {
	reg    landmark.Registry
	th     Thresholds
	policy CandidatePolicy
}

func (e *cheekEvaluator) Gesture() ID { return Cheek }

func (e *cheekEvaluator) ComputeMetrics(in Input) (GestureResult, error) {
	if err := in.check(); err != nil {
		return GestureResult{}, err
	}
	rot, err := actionRotation(e.reg, in)
	if err != nil {
		return GestureResult{}, err
	}

	candidates := in.Candidates
	if len(candidates) == 0 {
		candidates = []CheekCandidate{{Right: e.reg.Cheek(landmark.SideRight), Left: e.reg.Cheek(landmark.SideLeft)}}
	}

	measures := make([]CheekMeasure, 0, len(candidates))
	for _, c := range candidates {
		m, err := e.measure(in, rot, c)
		if err != nil {
			return GestureResult{}, err
		}
		measures = append(measures, m)
	}

	choice := e.policy.Choose(measures)
	right, left, sym := measures[choice.Right], measures[choice.Left], measures[choice.Symmetry]

	b := newBuilder(Cheek)
	b.score("right_puff", "Right cheek puff", right.RightPercent, UnitPercent, e.th.CheekPuff)
	b.info("right_puff_mm", "Right cheek puff", right.RightMM, UnitMM)
	b.score("left_puff", "Left cheek puff", left.LeftPercent, UnitPercent, e.th.CheekPuff)
	b.info("left_puff_mm", "Left cheek puff", left.LeftMM, UnitMM)
	b.score("symmetry", "Puff symmetry", sym.Symmetry, UnitPercent, e.th.CheekSymmetry)

	for i, m := range measures[1:] {
		prefix := fmt.Sprintf("candidate_%d_", i+1)
		label := fmt.Sprintf("Candidate %d (%d/%d) ", i+1, m.Candidate.Right, m.Candidate.Left)
		b.info(prefix+"right", label+"right puff", m.RightPercent, UnitPercent)
		b.info(prefix+"left", label+"left puff", m.LeftPercent, UnitPercent)
		b.info(prefix+"symmetry", label+"symmetry", m.Symmetry, UnitPercent)
	}
	return b.result(), nil
}

func (e *cheekEvaluator) measure(in Input, rot geometry.Rotation, c CheekCandidate) (CheekMeasure, error) {
	rest, act := &points{f: in.Baseline}, &points{f: in.Action}

	spread := func(p *points, idx int) float64 {
		return math.Abs(p.aligned(rot, idx).X-p.aligned(rot, e.reg.NoseBridge).X) * in.MMPerPx
	}
	restR, restL := spread(rest, c.Right), spread(rest, c.Left)
	actR, actL := spread(act, c.Right), spread(act, c.Left)
	if err := firstErr(rest, act); err != nil {
		return CheekMeasure{}, fmt.Errorf("cheek candidate %d/%d: %w", c.Right, c.Left, err)
	}

	m := CheekMeasure{
		Candidate: c,
		RightMM:   math.Max(0, actR-restR),
		LeftMM:    math.Max(0, actL-restL),
	}
	m.RightPercent = math.Max(0, geometry.GainPercent(m.RightMM, restR))
	m.LeftPercent = math.Max(0, geometry.GainPercent(m.LeftMM, restL))

	// Two still cheeks are perfectly symmetric.
	hi := math.Max(m.RightPercent, m.LeftPercent)
	if hi <= geometry.MinDenominator {
		m.Symmetry = 100
	} else {
		m.Symmetry = math.Min(m.RightPercent, m.LeftPercent) / hi * 100
	}
	return m, nil
}

// CheekSpread is the summed horizontal distance of both default cheek points
// from the nose bridge, in pixels. Cheek captures rank frames by it.
func CheekSpread(reg landmark.Registry, f *landmark.Frame) float64 {
	p := &points{f: f}
	bridge := p.at(reg.NoseBridge).X
	return math.Abs(p.at(reg.Cheek(landmark.SideRight)).X-bridge) + math.Abs(p.at(reg.Cheek(landmark.SideLeft)).X-bridge)
}

// ScanCheekCandidates picks up to n cheek point pairs from a rest frame.
// Only mesh points lying in a vertical band around the mouth-corner line are
// considered; band is the half-height of that band as a fraction of the
// eye-to-mouth distance. On each side the points farthest from the nose
// bridge are ranked first, and the i-th right point is paired with the i-th
// left point. The registry's default pair always comes first.
func ScanCheekCandidates(rest *landmark.Frame, reg landmark.Registry, band float64, n int) ([]CheekCandidate, error) {
	primary := CheekCandidate{Right: reg.Cheek(landmark.SideRight), Left: reg.Cheek(landmark.SideLeft)}
	if n <= 1 {
		return []CheekCandidate{primary}, nil
	}

	rot, err := geometry.FaceRotation(rest, reg.RightIrisCenter, reg.LeftIrisCenter)
	if err != nil {
		return nil, err
	}
	p := &points{f: rest}
	mouthY := (p.aligned(rot, reg.RightMouth).Y + p.aligned(rot, reg.LeftMouth).Y) / 2
	eyeY := (p.aligned(rot, reg.RightEyeInner).Y + p.aligned(rot, reg.LeftEyeInner).Y) / 2
	bridgeX := p.aligned(rot, reg.NoseBridge).X
	rightCorner := p.aligned(rot, reg.RightMouth).X
	leftCorner := p.aligned(rot, reg.LeftMouth).X
	if p.err != nil {
		return nil, p.err
	}
	half := math.Abs(mouthY-eyeY) * band

	type ranked struct {
		idx  int
		dist float64
	}
	var right, left []ranked
	for idx := 0; idx < landmark.RightIrisCenter; idx++ {
		if idx == primary.Right || idx == primary.Left {
			continue
		}
		pt := p.aligned(rot, idx)
		if math.Abs(pt.Y-mouthY) > half {
			continue
		}
		switch {
		case pt.X < rightCorner:
			right = append(right, ranked{idx, bridgeX - pt.X})
		case pt.X > leftCorner:
			left = append(left, ranked{idx, pt.X - bridgeX})
		}
	}

	byDist := func(rs []ranked) {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].dist > rs[j].dist })
	}
	byDist(right)
	byDist(left)

	out := []CheekCandidate{primary}
	for i := 0; i < len(right) && i < len(left) && len(out) < n; i++ {
		out = append(out, CheekCandidate{Right: right[i].idx, Left: left[i].idx})
	}
	return out, nil
}
