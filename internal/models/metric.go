package models

import "time"

// Metric identifies one of the sampled host resources.
type Metric string

const (
	MetricCPU  Metric = "cpu"
	MetricRAM  Metric = "ram"
	MetricDisk Metric = "disk"
)

// Metrics lists the sampled resources in the order a cycle visits them.
var Metrics = []Metric{MetricCPU, MetricRAM, MetricDisk}

// Label returns the upper-case name used in log lines and alert subjects.
func (m Metric) Label() string {
	switch m {
	case MetricCPU:
		return "CPU"
	case MetricRAM:
		return "RAM"
	case MetricDisk:
		return "Disk"
	default:
		return string(m)
	}
}

// Reading is a single sample of one metric, compared against its threshold.
type Reading struct {
	Metric     Metric    `json:"metric"`
	Current    float64   `json:"current"`
	Threshold  float64   `json:"threshold"`
	Host       string    `json:"host"`
	MountPoint string    `json:"mount_point,omitempty"` // Disk only
	Timestamp  time.Time `json:"timestamp"`
}

// Breached reports whether the reading is at or above its threshold.
func (r Reading) Breached() bool {
	return r.Current >= r.Threshold
}

// AlertMessage is the email built for a breached reading.
type AlertMessage struct {
	Subject   string
	Body      string
	Recipient string
	Sender    string
}
