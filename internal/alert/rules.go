package alert

import (
	"fmt"

	"github.com/hostwatch/internal/models"
)

// LogLine returns the event log line recorded for every reading.
func LogLine(r models.Reading) string {
	if r.Metric == models.MetricDisk {
		return fmt.Sprintf("Current Disk Usage for '%s': %.2f%%", r.MountPoint, r.Current)
	}
	return fmt.Sprintf("Current %s Usage: %.2f%%", r.Metric.Label(), r.Current)
}

// Subject returns the alert email subject for a breached reading.
func Subject(r models.Reading) string {
	if r.Metric == models.MetricDisk {
		return fmt.Sprintf("ALERT: High Disk Usage on %s (%s)", r.Host, r.MountPoint)
	}
	return fmt.Sprintf("ALERT: High %s Usage on %s", r.Metric.Label(), r.Host)
}

// Body returns the plain-text alert email body.
func Body(r models.Reading) string {
	if r.Metric == models.MetricDisk {
		return fmt.Sprintf("Disk usage for '%s' on server '%s' is at %.2f%%, which exceeds the threshold of %.2f%%.",
			r.MountPoint, r.Host, r.Current, r.Threshold)
	}
	return fmt.Sprintf("%s usage on server '%s' is at %.2f%%, which exceeds the threshold of %.2f%%.",
		r.Metric.Label(), r.Host, r.Current, r.Threshold)
}

// NewMessage builds the email sent from sender to recipient for r.
func NewMessage(r models.Reading, recipient, sender string) models.AlertMessage {
	return models.AlertMessage{
		Subject:   Subject(r),
		Body:      Body(r),
		Recipient: recipient,
		Sender:    sender,
	}
}
