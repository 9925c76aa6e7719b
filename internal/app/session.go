package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/scoring"
	"github.com/ayusman/yanagihara/internal/sequence"
)

// session is one run of the grading protocol. The pending capture holds
// the latest result of the current step until the operator accepts it with
// Next or discards it with Retry.
type session struct {
	mu      sync.Mutex
	id      string
	created time.Time
	manager *sequence.Manager
	pending *Capture
	// wink captures are taken one eye at a time.
	halves map[landmark.Side]*Capture
}

// SessionView is the externally visible state of a session.
type SessionView struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Active    bool            `json:"active"`
	Index     int             `json:"index"`
	Step      *sequence.Step  `json:"step,omitempty"`
	Steps     []sequence.Step `json:"steps"`
	Pending   *Capture        `json:"pending,omitempty"`
	// WinkSides lists the eyes already captured for a wink step.
	WinkSides []landmark.Side `json:"wink_sides,omitempty"`
	Report    sequence.Report `json:"report"`
}

func (s *session) view() SessionView {
	v := SessionView{
		ID:        s.id,
		CreatedAt: s.created,
		Active:    s.manager.Active(),
		Index:     s.manager.Index(),
		Steps:     s.manager.Steps(),
		Pending:   s.pending,
		Report:    s.manager.Report(),
	}
	if v.Active {
		v.Step = s.manager.CurrentStep()
	}
	for _, side := range []landmark.Side{landmark.SideRight, landmark.SideLeft} {
		if s.halves[side] != nil {
			v.WinkSides = append(v.WinkSides, side)
		}
	}
	return v
}

func (s *session) clearPending() {
	s.pending = nil
	s.halves = make(map[landmark.Side]*Capture)
}

// StartSession begins a new protocol run.
func (a *App) StartSession() SessionView {
	s := &session{
		id:      uuid.NewString(),
		created: time.Now(),
		manager: sequence.New(sequence.Protocol()),
		halves:  make(map[landmark.Side]*Capture),
	}
	s.manager.Start()

	a.sessMu.Lock()
	a.sessions[s.id] = s
	a.sessOrder = append(a.sessOrder, s.id)
	evicted := a.pruneSessions()
	a.sessMu.Unlock()

	for _, id := range evicted {
		a.log.WithField("session", id).Debug("session forgotten")
	}
	a.log.WithField("session", s.id).Info("session started")
	return s.view()
}

// pruneSessions forgets sessions beyond KeptSessions, oldest finished
// sessions first, then the oldest unfinished ones. sessMu must be held.
func (a *App) pruneSessions() []string {
	var evicted []string
	for len(a.sessions) > KeptSessions {
		victim := 0
		for i, id := range a.sessOrder {
			s := a.sessions[id]
			s.mu.Lock()
			done := !s.manager.Active()
			s.mu.Unlock()
			if done {
				victim = i
				break
			}
		}
		id := a.sessOrder[victim]
		delete(a.sessions, id)
		a.sessOrder = append(a.sessOrder[:victim], a.sessOrder[victim+1:]...)
		evicted = append(evicted, id)
	}
	return evicted
}

func (a *App) session(id string) (*session, error) {
	a.sessMu.Lock()
	defer a.sessMu.Unlock()
	s, ok := a.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Session returns the state of a session.
func (a *App) Session(id string) (SessionView, error) {
	s, err := a.session(id)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// CaptureStep captures the current step of a session and keeps the result
// pending. For wink, each call captures the given eye; the step's result is
// pending once both eyes have been captured.
func (a *App) CaptureStep(ctx context.Context, id string, side landmark.Side) (SessionView, *Capture, error) {
	s, err := a.session(id)
	if err != nil {
		return SessionView{}, nil, err
	}

	s.mu.Lock()
	step := s.manager.CurrentStep()
	active := s.manager.Active()
	s.mu.Unlock()
	if !active || step == nil {
		return SessionView{}, nil, ErrSessionFinished
	}
	if step.ID == scoring.Wink && !side.Valid() {
		return SessionView{}, nil, fmt.Errorf("%w: use %q or %q", ErrSideRequired, landmark.SideRight, landmark.SideLeft)
	}
	if step.ID != scoring.Wink {
		side = ""
	}

	c, err := a.Evaluate(ctx, step.ID, side)
	if err != nil {
		return SessionView{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The operator may have moved on while the capture ran.
	if cur := s.manager.CurrentStep(); !s.manager.Active() || cur == nil || cur.ID != step.ID {
		return s.view(), c, nil
	}

	if step.ID == scoring.Wink {
		s.halves[side] = c
		right, left := s.halves[landmark.SideRight], s.halves[landmark.SideLeft]
		if right != nil && left != nil {
			s.pending = combineWink(right, left)
		}
	} else {
		s.pending = c
	}

	a.log.WithFields(logrus.Fields{"session": s.id, "gesture": step.ID, "grade": c.Grade}).Debug("step captured")
	return s.view(), c, nil
}

// combineWink merges both one-eye captures into the step's result.
func combineWink(right, left *Capture) *Capture {
	res := scoring.Combine(scoring.Wink, right.Result, left.Result)
	return &Capture{
		ID:         right.ID + "+" + left.ID,
		Gesture:    scoring.Wink,
		Result:     res,
		Grade:      res.Grade(),
		CapturedAt: left.CapturedAt,
	}
}

// NextStep records the pending grade and advances the session.
func (a *App) NextStep(id string) (SessionView, error) {
	s, err := a.session(id)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.manager.Active() {
		return s.view(), ErrSessionFinished
	}
	if s.pending == nil {
		return s.view(), ErrNoPendingResult
	}

	s.manager.Record(s.pending.Grade)
	s.clearPending()
	if s.manager.Next() == nil {
		a.log.WithFields(logrus.Fields{"session": s.id, "total": s.manager.TotalScore()}).Info("session complete")
	}
	return s.view(), nil
}

// RetryStep discards the pending result so the step can be captured again.
func (a *App) RetryStep(id string) (SessionView, error) {
	s, err := a.session(id)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.manager.Active() {
		return s.view(), ErrSessionFinished
	}
	s.clearPending()
	s.manager.Retry()
	return s.view(), nil
}

// CancelSession abandons a session and forgets it.
func (a *App) CancelSession(id string) error {
	a.sessMu.Lock()
	s, ok := a.sessions[id]
	delete(a.sessions, id)
	for i, kept := range a.sessOrder {
		if kept == id {
			a.sessOrder = append(a.sessOrder[:i], a.sessOrder[i+1:]...)
			break
		}
	}
	a.sessMu.Unlock()
	if !ok {
		return ErrNoSession
	}

	s.mu.Lock()
	s.manager.Cancel()
	s.clearPending()
	s.mu.Unlock()

	a.log.WithField("session", id).Info("session cancelled")
	return nil
}
