package scoring

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/yanagihara/internal/geometry"
	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/selector"
)

// Config holds everything the engine needs besides frames.
type Config struct {
	Registry       landmark.Registry
	Thresholds     Thresholds
	IrisDiameterMM float64
	Policy         CandidatePolicy

	// CheekCandidates is how many cheek point pairs to scan for. One or
	// less scores on the registry's default pair only.
	CheekCandidates int
	// CheekBand is the half-height of the scan band around the mouth line,
	// relative to the eye-to-mouth distance.
	CheekBand float64
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		Registry:        landmark.DefaultRegistry(),
		Thresholds:      DefaultThresholds(),
		IrisDiameterMM:  geometry.IrisDiameterMM,
		Policy:          BestOfCandidates{},
		CheekCandidates: 3,
		CheekBand:       0.25,
	}
}

// Engine calibrates selected frames and dispatches them to the evaluator of
// the requested gesture. It holds no per-capture state.
type Engine struct {
	cfg        Config
	evaluators map[ID]Evaluator
	log        logrus.FieldLogger
}

// NewEngine creates an Engine with one evaluator per gesture.
func NewEngine(cfg Config, log logrus.FieldLogger) *Engine {
	if cfg.IrisDiameterMM <= 0 {
		cfg.IrisDiameterMM = geometry.IrisDiameterMM
	}
	if cfg.Policy == nil {
		cfg.Policy = BestOfCandidates{}
	}

	reg, th := cfg.Registry, cfg.Thresholds
	evaluators := []Evaluator{
		&restEvaluator{reg: reg, th: th},
		&wrinkleEvaluator{reg: reg, th: th},
		&closureEvaluator{id: LightClose, reg: reg, t: th.LightClose},
		&closureEvaluator{id: HeavyClose, reg: reg, t: th.HeavyClose},
		&winkEvaluator{reg: reg, th: th},
		&noseEvaluator{reg: reg, th: th},
		&cheekEvaluator{reg: reg, th: th, policy: cfg.Policy},
		&whistleEvaluator{reg: reg, th: th},
		&eeeEvaluator{reg: reg, th: th},
		&henojiEvaluator{reg: reg, th: th},
	}

	e := &Engine{
		cfg:        cfg,
		evaluators: make(map[ID]Evaluator, len(evaluators)),
		log:        log.WithField("component", "scoring"),
	}
	for _, ev := range evaluators {
		e.evaluators[ev.Gesture()] = ev
	}
	return e
}

// Registry returns the landmark registry the engine measures with.
func (e *Engine) Registry() landmark.Registry {
	return e.cfg.Registry
}

// Evaluator returns the evaluator of a gesture.
func (e *Engine) Evaluator(id ID) (Evaluator, error) {
	ev, ok := e.evaluators[id]
	if !ok {
		return nil, fmt.Errorf("unknown gesture %q", id)
	}
	return ev, nil
}

// Plan returns the capture plan of a gesture.
func (e *Engine) Plan(id ID, side landmark.Side) (selector.Plan, error) {
	return PlanFor(id, side, e.cfg.Registry)
}

// Calibrate returns the mm/px factor of f.
func (e *Engine) Calibrate(f *landmark.Frame) (float64, error) {
	return geometry.Calibrate(f, e.cfg.Registry.RightIrisRing, e.cfg.Registry.LeftIrisRing, e.cfg.IrisDiameterMM)
}

// Evaluate scores a completed capture. The calibration is taken from the
// baseline frame; a failed calibration fails the whole capture.
func (e *Engine) Evaluate(id ID, sel *selector.Selection, side landmark.Side) (GestureResult, error) {
	baseline := sel.Frame(WindowBaseline)
	if baseline == nil {
		return GestureResult{}, fmt.Errorf("%s: %w in window %q", id, selector.ErrFaceNotFound, WindowBaseline)
	}
	action := sel.Frame(WindowAction)
	if action == nil {
		action = baseline
	}
	return e.Score(id, baseline, action, side)
}

// Score calibrates and evaluates a gesture from explicit frames.
func (e *Engine) Score(id ID, baseline, action *landmark.Frame, side landmark.Side) (GestureResult, error) {
	ev, err := e.Evaluator(id)
	if err != nil {
		return GestureResult{}, err
	}

	mmPerPx, err := e.Calibrate(baseline)
	if err != nil {
		return GestureResult{}, fmt.Errorf("%s: %w", id, err)
	}

	in := Input{
		Baseline: baseline,
		Action:   action,
		MMPerPx:  mmPerPx,
		Side:     side,
	}
	if id == Cheek && e.cfg.CheekCandidates > 1 {
		in.Candidates, err = ScanCheekCandidates(baseline, e.cfg.Registry, e.cfg.CheekBand, e.cfg.CheekCandidates)
		if err != nil {
			return GestureResult{}, fmt.Errorf("%s: scan candidates: %w", id, err)
		}
	}

	res, err := ev.ComputeMetrics(in)
	if err != nil {
		return GestureResult{}, fmt.Errorf("%s: %w", id, err)
	}

	e.log.WithFields(logrus.Fields{
		"gesture":   id,
		"side":      side,
		"mm_per_px": mmPerPx,
		"total":     res.Total,
		"count":     res.Count,
	}).Debug("gesture evaluated")

	return res, nil
}
