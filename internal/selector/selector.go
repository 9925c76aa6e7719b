// Package selector reduces a fixed-duration stream of landmark frames to the
// few representative frames a gesture is scored on.
//
// A Plan divides the capture into named windows. For every window the
// selector keeps the single frame whose metric is most extreme among the
// frames sampled inside it, and optionally a snapshot of the video frame taken
// at that instant. Frames without a face are skipped; a window that never sees
// a face fails the whole capture.
package selector

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/yanagihara/internal/landmark"
)

var (
	// ErrFaceNotFound is returned when a window ends without a single detected face.
	ErrFaceNotFound = errors.New("face not found")

	// ErrOutOfOrder is returned when samples are observed with decreasing offsets.
	ErrOutOfOrder = errors.New("sample observed out of order")

	// ErrFinished is returned when the selector is used after Result or Discard.
	ErrFinished = errors.New("selector already finished")
)

// Direction tells a window which frame to keep.
type Direction int

const (
	// First keeps the first frame with a face.
	First Direction = iota
	// Maximize keeps the frame with the largest metric value.
	Maximize
	// Minimize keeps the frame with the smallest metric value.
	Minimize
)

func (d Direction) String() string {
	switch d {
	case First:
		return "first"
	case Maximize:
		return "maximize"
	case Minimize:
		return "minimize"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Metric reduces a frame to the scalar a window is ranked by.
// Metrics must be total and free of side effects.
type Metric func(f *landmark.Frame) float64

// Window is a named sub-interval of a capture. Both bounds are inclusive.
type Window struct {
	Name      string
	Start     time.Duration
	End       time.Duration
	Metric    Metric
	Direction Direction
	Snapshot  bool
}

func (w Window) contains(offset time.Duration) bool {
	return offset >= w.Start && offset <= w.End
}

// Plan is the full description of one capture.
type Plan struct {
	Duration time.Duration
	Windows  []Window
}

// Validate checks that the plan is usable.
func (p Plan) Validate() error {
	if p.Duration <= 0 {
		return fmt.Errorf("plan duration must be positive, got %s", p.Duration)
	}
	if len(p.Windows) == 0 {
		return errors.New("plan has no windows")
	}

	seen := make(map[string]bool, len(p.Windows))
	for _, w := range p.Windows {
		if w.Name == "" {
			return errors.New("window name is required")
		}
		if seen[w.Name] {
			return fmt.Errorf("duplicate window %q", w.Name)
		}
		seen[w.Name] = true

		if w.Start < 0 || w.End > p.Duration || w.Start > w.End {
			return fmt.Errorf("window %q [%s, %s] is outside [0, %s]", w.Name, w.Start, w.End, p.Duration)
		}
		if w.Direction != First && w.Metric == nil {
			return fmt.Errorf("window %q needs a metric to %s", w.Name, w.Direction)
		}
	}
	return nil
}

// Snapshot is an image captured alongside a selected frame.
type Snapshot interface {
	Close() error
}

// Sample is one sampled instant of the capture.
// Face is nil when no face was detected. Grab is called lazily, only when
// the sample becomes the new best frame of a window that wants a snapshot;
// every call must return an independent snapshot.
type Sample struct {
	Offset time.Duration
	Face   *landmark.Frame
	Grab   func() Snapshot
}

// Pick is the frame a window settled on.
type Pick struct {
	Window   string
	Frame    *landmark.Frame
	Value    float64
	Offset   time.Duration
	Snapshot Snapshot
}

type slot struct {
	pick  Pick
	found bool
}

// Selector tracks the best frame of every window of a plan.
// It is not safe for concurrent use: samples must be observed in order from
// a single goroutine.
type Selector struct {
	plan     Plan
	slots    []slot
	last     time.Duration
	observed int
	done     bool
}

// New creates a Selector for plan.
func New(plan Plan) (*Selector, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &Selector{
		plan:  plan,
		slots: make([]slot, len(plan.Windows)),
	}, nil
}

// Duration returns the capture length of the plan.
func (s *Selector) Duration() time.Duration {
	return s.plan.Duration
}

// Observe feeds the next sample into every window it falls in.
func (s *Selector) Observe(sample Sample) error {
	if s.done {
		return ErrFinished
	}
	if s.observed > 0 && sample.Offset < s.last {
		return fmt.Errorf("%w: %s after %s", ErrOutOfOrder, sample.Offset, s.last)
	}
	s.last = sample.Offset
	s.observed++

	if sample.Face == nil {
		return nil
	}

	for i, w := range s.plan.Windows {
		if !w.contains(sample.Offset) {
			continue
		}

		var value float64
		if w.Metric != nil {
			value = w.Metric(sample.Face)
		}

		sl := &s.slots[i]
		if sl.found && !improves(w.Direction, value, sl.pick.Value) {
			continue
		}

		if sl.pick.Snapshot != nil {
			sl.pick.Snapshot.Close()
		}
		sl.pick = Pick{
			Window: w.Name,
			Frame:  sample.Face.Clone(),
			Value:  value,
			Offset: sample.Offset,
		}
		if w.Snapshot && sample.Grab != nil {
			sl.pick.Snapshot = sample.Grab()
		}
		sl.found = true
	}
	return nil
}

func improves(dir Direction, candidate, best float64) bool {
	switch dir {
	case Maximize:
		return candidate > best
	case Minimize:
		return candidate < best
	default:
		return false
	}
}

// Result ends the capture and returns the selected frames. If any window
// never saw a face, every snapshot is released and ErrFaceNotFound is
// returned naming that window.
func (s *Selector) Result() (*Selection, error) {
	if s.done {
		return nil, ErrFinished
	}
	s.done = true

	for i, w := range s.plan.Windows {
		if !s.slots[i].found {
			s.release()
			return nil, fmt.Errorf("%w in window %q", ErrFaceNotFound, w.Name)
		}
	}

	sel := &Selection{picks: make(map[string]Pick, len(s.slots))}
	for _, sl := range s.slots {
		sel.picks[sl.pick.Window] = sl.pick
	}
	s.slots = nil
	return sel, nil
}

// Discard abandons the capture and releases every snapshot taken so far.
func (s *Selector) Discard() {
	if s.done {
		return
	}
	s.done = true
	s.release()
}

func (s *Selector) release() {
	for i := range s.slots {
		if snap := s.slots[i].pick.Snapshot; snap != nil {
			snap.Close()
		}
	}
	s.slots = nil
}

// Selection holds the frames picked for each window of a completed capture.
type Selection struct {
	picks map[string]Pick
}

// NewSelection builds a selection directly from picks, for callers that
// already hold the frames they want to score.
func NewSelection(picks ...Pick) *Selection {
	sel := &Selection{picks: make(map[string]Pick, len(picks))}
	for _, p := range picks {
		sel.picks[p.Window] = p
	}
	return sel
}

// Pick returns the pick of the named window.
func (sel *Selection) Pick(name string) (Pick, bool) {
	p, ok := sel.picks[name]
	return p, ok
}

// Frame returns the frame picked for the named window, or nil.
func (sel *Selection) Frame(name string) *landmark.Frame {
	return sel.picks[name].Frame
}

// Snapshot returns the snapshot kept for the named window, or nil.
func (sel *Selection) Snapshot(name string) Snapshot {
	return sel.picks[name].Snapshot
}

// Windows returns the number of picks in the selection.
func (sel *Selection) Windows() int {
	return len(sel.picks)
}

// Close releases every snapshot held by the selection.
func (sel *Selection) Close() error {
	var errs []error
	for name, p := range sel.picks {
		if p.Snapshot == nil {
			continue
		}
		if err := p.Snapshot.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close snapshot %q: %w", name, err))
		}
		p.Snapshot = nil
		sel.picks[name] = p
	}
	return errors.Join(errs...)
}
