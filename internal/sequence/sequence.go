// Package sequence runs the ordered multi-gesture grading protocol and
// totals the grade recorded for each step.
package sequence

import "github.com/ayusman/yanagihara/internal/scoring"

// Step describes one gesture of a protocol.
type Step struct {
	ID   scoring.ID `json:"id"`
	Name string     `json:"name"`
}

// Record is the grade stored for a completed step.
type Record struct {
	ID    scoring.ID `json:"id"`
	Name  string     `json:"name"`
	Score int        `json:"score"`
}

// Protocol returns the ten steps of the Yanagihara grading protocol.
func Protocol() []Step {
	ids := scoring.IDs()
	steps := make([]Step, 0, len(ids))
	for _, id := range ids {
		steps = append(steps, Step{ID: id, Name: id.Name()})
	}
	return steps
}

// Manager is a state machine over an ordered list of steps. It starts
// idle, runs after Start and returns to idle when cancelled or when Next
// moves past the last step.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	steps   []Step
	current int
	results []*Record
	active  bool
}

// New creates an idle Manager over steps.
func New(steps []Step) *Manager {
	s := make([]Step, len(steps))
	copy(s, steps)
	return &Manager{steps: s}
}

// Start begins a new run from the first step, discarding earlier results.
// Returns nil if there are no steps.
func (m *Manager) Start() *Step {
	m.current = 0
	m.results = make([]*Record, len(m.steps))
	m.active = true
	return m.CurrentStep()
}

// CurrentStep returns the step being performed, or nil.
func (m *Manager) CurrentStep() *Step {
	if m.current < 0 || m.current >= len(m.steps) {
		return nil
	}
	step := m.steps[m.current]
	return &step
}

// Index returns the position of the current step.
func (m *Manager) Index() int {
	return m.current
}

// Record stores score for the current step, replacing any earlier record.
// It does nothing when the run is not active.
func (m *Manager) Record(score int) {
	if !m.active {
		return
	}
	step := m.CurrentStep()
	if step == nil {
		return
	}
	m.results[m.current] = &Record{ID: step.ID, Name: step.Name, Score: score}
}

// Next advances to the following step and returns it. After the last step
// the run ends and Next returns nil.
func (m *Manager) Next() *Step {
	if m.current >= len(m.steps)-1 {
		m.active = false
		return nil
	}
	m.current++
	return m.CurrentStep()
}

// Retry returns the current step again so it can be re-captured.
// The step's previous record, if any, is kept until a new one is recorded.
func (m *Manager) Retry() *Step {
	return m.CurrentStep()
}

// Cancel abandons the run and clears every result.
func (m *Manager) Cancel() {
	m.active = false
	m.current = 0
	m.results = nil
}

// Active reports whether a run is in progress.
func (m *Manager) Active() bool {
	return m.active
}

// Steps returns the protocol steps.
func (m *Manager) Steps() []Step {
	s := make([]Step, len(m.steps))
	copy(s, m.steps)
	return s
}

// Results returns the recorded steps in protocol order. Steps without a
// record are left out.
func (m *Manager) Results() []Record {
	out := make([]Record, 0, len(m.results))
	for _, r := range m.results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// TotalScore returns the sum of all recorded scores.
func (m *Manager) TotalScore() int {
	total := 0
	for _, r := range m.results {
		if r != nil {
			total += r.Score
		}
	}
	return total
}

// MaxScore returns the best total the protocol allows.
func (m *Manager) MaxScore() int {
	return 4 * len(m.steps)
}

// Report is a summary of a run.
type Report struct {
	Total    int      `json:"total"`
	MaxScore int      `json:"max_score"`
	Complete bool     `json:"complete"`
	Rows     []Record `json:"rows"`
}

// Report summarises the recorded results.
func (m *Manager) Report() Report {
	rows := m.Results()
	return Report{
		Total:    m.TotalScore(),
		MaxScore: m.MaxScore(),
		Complete: len(m.steps) > 0 && len(rows) == len(m.steps),
		Rows:     rows,
	}
}
