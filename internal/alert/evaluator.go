package alert

import (
	"sync"
	"time"

	"github.com/hostwatch/internal/models"
)

// State tracks whether a metric is currently in breach.
type State struct {
	Alerting    bool
	Since       time.Time
	LastAlert   time.Time
	Consecutive int
}

// Evaluator decides whether a reading raises an alert and keeps per-metric
// state. Every breach raises an alert; the state is recorded but never used to
// suppress one.
type Evaluator struct {
	mutex  sync.RWMutex
	states map[models.Metric]*State
	now    func() time.Time
}

func NewEvaluator() *Evaluator {
	return &Evaluator{
		states: make(map[models.Metric]*State),
		now:    time.Now,
	}
}

// Evaluate records r and reports whether an alert must be sent for it, which is
// the case when the reading is at or above its threshold.
func (e *Evaluator) Evaluate(r models.Reading) bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	state, ok := e.states[r.Metric]
	if !ok {
		state = &State{}
		e.states[r.Metric] = state
	}

	if !r.Breached() {
		*state = State{LastAlert: state.LastAlert}
		return false
	}

	now := e.now()
	if !state.Alerting {
		state.Alerting = true
		state.Since = now
	}
	state.Consecutive++
	state.LastAlert = now
	return true
}

// State returns a copy of the state of metric m.
func (e *Evaluator) State(m models.Metric) State {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	if state, ok := e.states[m]; ok {
		return *state
	}
	return State{}
}
