package alert

import (
	"testing"

	"github.com/hostwatch/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRulesFormatCPUReading(t *testing.T) {
	r := models.Reading{Metric: models.MetricCPU, Current: 95.5, Threshold: 80, Host: "web-01"}

	assert.Equal(t, "Current CPU Usage: 95.50%", LogLine(r))

	msg := NewMessage(r, "ops@example.com", "monitor@example.com")
	assert.Equal(t, "ALERT: High CPU Usage on web-01", msg.Subject)
	assert.Equal(t, "CPU usage on server 'web-01' is at 95.50%, which exceeds the threshold of 80.00%.", msg.Body)
	assert.Equal(t, "ops@example.com", msg.Recipient)
	assert.Equal(t, "monitor@example.com", msg.Sender)
}

func TestRulesFormatRAMReading(t *testing.T) {
	r := models.Reading{Metric: models.MetricRAM, Current: 81.234, Threshold: 75, Host: "db-02"}

	assert.Equal(t, "Current RAM Usage: 81.23%", LogLine(r))
	assert.Equal(t, "ALERT: High RAM Usage on db-02", Subject(r))
	assert.Contains(t, Body(r), "RAM usage on server 'db-02' is at 81.23%")
}

func TestRulesFormatDiskReading(t *testing.T) {
	r := models.Reading{Metric: models.MetricDisk, Current: 92, Threshold: 90, Host: "web-01", MountPoint: "/"}

	assert.Equal(t, "Current Disk Usage for '/': 92.00%", LogLine(r))
	assert.Equal(t, "ALERT: High Disk Usage on web-01 (/)", Subject(r))
	assert.Equal(t, "Disk usage for '/' on server 'web-01' is at 92.00%, which exceeds the threshold of 90.00%.", Body(r))
}

func TestSubjectsAreDistinctPerMetric(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range models.Metrics {
		seen[Subject(models.Reading{Metric: m, Host: "h", MountPoint: "/"})] = true
	}
	assert.Len(t, seen, len(models.Metrics))
}
