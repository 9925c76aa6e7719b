package scoring

import "fmt"

// Units attached to metric values.
const (
	UnitMM      = "mm"
	UnitPercent = "%"
	UnitDegree  = "deg"
)

// MetricResult is one measurement of a gesture. Informational rows carry a
// value but no score and do not count towards the gesture total.
type MetricResult struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Score  int     `json:"score"`
	Scored bool    `json:"scored"`
}

func (m MetricResult) String() string {
	if !m.Scored {
		return fmt.Sprintf("%s: %.1f%s", m.Label, m.Value, m.Unit)
	}
	return fmt.Sprintf("%s: %.1f%s (%d)", m.Label, m.Value, m.Unit, m.Score)
}

// GestureResult is the outcome of evaluating one gesture.
// Total is the sum of the scored rows and Count how many rows were scored.
type GestureResult struct {
	Gesture ID             `json:"gesture"`
	Total   int            `json:"total"`
	Count   int            `json:"count"`
	Details []MetricResult `json:"details"`
}

// Grade reduces the result to the single 0, 2 or 4 point grade recorded for
// the gesture in the full protocol: the mean of the scored rows rounded to
// the nearest grade, ties going up.
func (r GestureResult) Grade() int {
	if r.Count == 0 {
		return 0
	}
	mean := float64(r.Total) / float64(r.Count)
	switch {
	case mean >= 3:
		return 4
	case mean >= 1:
		return 2
	default:
		return 0
	}
}

// Metric returns the row with the given name.
func (r GestureResult) Metric(name string) (MetricResult, bool) {
	for _, m := range r.Details {
		if m.Name == name {
			return m, true
		}
	}
	return MetricResult{}, false
}

// builder accumulates rows into a GestureResult.
type builder struct {
	res GestureResult
}

func newBuilder(id ID) *builder {
	return &builder{res: GestureResult{Gesture: id, Details: []MetricResult{}}}
}

func (b *builder) score(name, label string, value float64, unit string, t Threshold) int {
	s := t.Score(value)
	b.res.Details = append(b.res.Details, MetricResult{
		Name:   name,
		Label:  label,
		Value:  value,
		Unit:   unit,
		Score:  s,
		Scored: true,
	})
	b.res.Total += s
	b.res.Count++
	return s
}

func (b *builder) info(name, label string, value float64, unit string) {
	b.res.Details = append(b.res.Details, MetricResult{
		Name:  name,
		Label: label,
		Value: value,
		Unit:  unit,
	})
}

func (b *builder) result() GestureResult {
	return b.res
}

// Combine merges partial results of the same gesture, such as the two sides
// of a wink, into one.
func Combine(id ID, parts ...GestureResult) GestureResult {
	b := newBuilder(id)
	for _, p := range parts {
		b.res.Details = append(b.res.Details, p.Details...)
		b.res.Total += p.Total
		b.res.Count += p.Count
	}
	return b.result()
}
