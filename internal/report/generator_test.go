package report

import (
	"testing"
	"time"

	"github.com/hostwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeGroupsByMetric(t *testing.T) {
	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	alerts := []models.Alert{
		{Metric: models.MetricCPU, Host: "web-01", CurrentValue: 91, Threshold: 80, Status: models.AlertStatusSent, SentAt: base},
		{Metric: models.MetricCPU, Host: "web-01", CurrentValue: 97.25, Threshold: 80, Status: models.AlertStatusFailed, SentAt: base.Add(time.Minute)},
		{Metric: models.MetricDisk, Host: "web-01", CurrentValue: 92, Threshold: 90, Status: models.AlertStatusSent, SentAt: base.Add(2 * time.Minute)},
	}

	g, err := NewGenerator()
	require.NoError(t, err)
	data := g.Summarize(alerts, base, base.Add(time.Hour))

	assert.Equal(t, 3, data.TotalAlerts)
	assert.Equal(t, 2, data.SentAlerts)
	assert.Equal(t, 1, data.FailedAlerts)
	require.Len(t, data.Metrics, 2)

	cpu := data.Metrics[0]
	assert.Equal(t, models.MetricCPU, cpu.Metric)
	assert.Equal(t, 2, cpu.AlertCount)
	assert.Equal(t, 1, cpu.FailedCount)
	assert.Equal(t, 97.25, cpu.Peak)
	assert.Equal(t, base.Add(time.Minute), cpu.LastAlert)
	assert.Equal(t, []string{"web-01"}, cpu.Hosts)
}

func TestRender(t *testing.T) {
	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	g, err := NewGenerator()
	require.NoError(t, err)

	text, err := g.Render(g.Summarize([]models.Alert{
		{Metric: models.MetricRAM, Host: "db-02", CurrentValue: 88.5, Threshold: 85, Status: models.AlertStatusSent, SentAt: base},
	}, base, base.Add(24*time.Hour)))
	require.NoError(t, err)

	assert.Contains(t, text, "Alert report 2026-10-18 08:00 - 2026-10-19 08:00")
	assert.Contains(t, text, "Total alerts: 1 (1 sent, 0 failed)")
	assert.Contains(t, text, "RAM: 1 alert(s), 0 failed")
	assert.Contains(t, text, "peak 88.50% (threshold 85.00%)")
	assert.Contains(t, text, "hosts: db-02")
}

func TestRenderEmpty(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	text, err := g.Render(g.Summarize(nil, time.Now().Add(-time.Hour), time.Now()))
	require.NoError(t, err)
	assert.Contains(t, text, "No alerts in this period.")
}
