package alert

import (
	"testing"
	"time"

	"github.com/hostwatch/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateIsBoundaryInclusive(t *testing.T) {
	tests := []struct {
		current, threshold float64
		want               bool
	}{
		{current: 79.99, threshold: 80, want: false},
		{current: 80, threshold: 80, want: true},
		{current: 80.01, threshold: 80, want: true},
		{current: 0, threshold: 0, want: true},
		{current: 100, threshold: 100, want: true},
		{current: 85, threshold: 90, want: false},
	}
	for _, tt := range tests {
		e := NewEvaluator()
		got := e.Evaluate(models.Reading{Metric: models.MetricCPU, Current: tt.current, Threshold: tt.threshold})
		assert.Equal(t, tt.want, got, "current=%v threshold=%v", tt.current, tt.threshold)
	}
}

func TestEvaluateTracksStateWithoutSuppressing(t *testing.T) {
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	tick := base
	e := NewEvaluator()
	e.now = func() time.Time { return tick }

	high := models.Reading{Metric: models.MetricRAM, Current: 95, Threshold: 90}
	low := models.Reading{Metric: models.MetricRAM, Current: 50, Threshold: 90}

	assert.True(t, e.Evaluate(high))
	tick = base.Add(time.Minute)
	assert.True(t, e.Evaluate(high))

	state := e.State(models.MetricRAM)
	assert.True(t, state.Alerting)
	assert.Equal(t, base, state.Since)
	assert.Equal(t, base.Add(time.Minute), state.LastAlert)
	assert.Equal(t, 2, state.Consecutive)

	assert.False(t, e.Evaluate(low))
	state = e.State(models.MetricRAM)
	assert.False(t, state.Alerting)
	assert.Zero(t, state.Consecutive)
	assert.True(t, state.Since.IsZero())
	assert.Equal(t, base.Add(time.Minute), state.LastAlert)

	assert.Equal(t, State{}, e.State(models.MetricDisk))
}
