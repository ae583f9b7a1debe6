// Package report summarizes the alert history over a time range.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/hostwatch/internal/models"
)

const summaryTemplate = `Alert report {{.StartTime.Format "2006-01-02 15:04"}} - {{.EndTime.Format "2006-01-02 15:04"}}
Total alerts: {{.TotalAlerts}} ({{.SentAlerts}} sent, {{.FailedAlerts}} failed)
{{range .Metrics}}
{{.Label}}: {{.AlertCount}} alert(s), {{.FailedCount}} failed
  peak {{printf "%.2f" .Peak}}% (threshold {{printf "%.2f" .Threshold}}%)
  last at {{.LastAlert.Format "2006-01-02 15:04:05"}}
  hosts: {{join .Hosts ", "}}
{{else}}
No alerts in this period.
{{end}}`

// maxHosts caps the hosts listed per metric.
const maxHosts = 5

type ReportData struct {
	StartTime    time.Time
	EndTime      time.Time
	TotalAlerts  int
	SentAlerts   int
	FailedAlerts int
	Metrics      []MetricSummary
}

type MetricSummary struct {
	Metric      models.Metric
	Label       string
	AlertCount  int
	FailedCount int
	Peak        float64
	Threshold   float64
	LastAlert   time.Time
	Hosts       []string
}

type Generator struct {
	template *template.Template
}

func NewGenerator() (*Generator, error) {
	tmpl, err := template.New("summary").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(summaryTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &Generator{template: tmpl}, nil
}

// Summarize aggregates alerts per metric, busiest metric first.
func (g *Generator) Summarize(alerts []models.Alert, startTime, endTime time.Time) *ReportData {
	data := &ReportData{
		StartTime: startTime,
		EndTime:   endTime,
	}
	metrics := make(map[models.Metric]*MetricSummary)

	for _, a := range alerts {
		data.TotalAlerts++
		if a.Status == models.AlertStatusFailed {
			data.FailedAlerts++
		} else {
			data.SentAlerts++
		}

		ms, ok := metrics[a.Metric]
		if !ok {
			ms = &MetricSummary{Metric: a.Metric, Label: a.Metric.Label()}
			metrics[a.Metric] = ms
		}
		ms.AlertCount++
		if a.Status == models.AlertStatusFailed {
			ms.FailedCount++
		}
		if a.CurrentValue >= ms.Peak {
			ms.Peak = a.CurrentValue
			ms.Threshold = a.Threshold
		}
		if a.SentAt.After(ms.LastAlert) {
			ms.LastAlert = a.SentAt
		}
		if !contains(ms.Hosts, a.Host) && len(ms.Hosts) < maxHosts {
			ms.Hosts = append(ms.Hosts, a.Host)
		}
	}

	for _, ms := range metrics {
		data.Metrics = append(data.Metrics, *ms)
	}
	sort.Slice(data.Metrics, func(i, j int) bool {
		if data.Metrics[i].AlertCount != data.Metrics[j].AlertCount {
			return data.Metrics[i].AlertCount > data.Metrics[j].AlertCount
		}
		return data.Metrics[i].Metric < data.Metrics[j].Metric
	})

	return data
}

// Render formats data as plain text.
func (g *Generator) Render(data *ReportData) (string, error) {
	var buf bytes.Buffer
	if err := g.template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
