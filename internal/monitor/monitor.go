package monitor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hostwatch/internal/alert"
	"github.com/hostwatch/internal/config"
	"github.com/hostwatch/internal/models"
	"go.uber.org/zap"
)

// Closing lines of the event log.
const (
	StoppedMessage  = "System Monitor stopped by user."
	ShutdownMessage = "System Monitor shutting down."
)

// Dispatcher sends one alert and reports whether it was delivered.
type Dispatcher interface {
	Dispatch(ctx context.Context, r models.Reading, msg models.AlertMessage) error
}

// EventLogger records one line of the audit trail.
type EventLogger interface {
	Log(message string) error
}

// Monitor runs the polling loop on a single goroutine.
type Monitor struct {
	cfg        *config.Config
	sampler    Sampler
	dispatcher Dispatcher
	events     EventLogger
	evaluator  *alert.Evaluator
	host       string
	logger     *zap.SugaredLogger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

func New(cfg *config.Config, sampler Sampler, dispatcher Dispatcher, events EventLogger, host string, logger *zap.SugaredLogger) *Monitor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Monitor{
		cfg:        cfg,
		sampler:    sampler,
		dispatcher: dispatcher,
		events:     events,
		evaluator:  alert.NewEvaluator(),
		host:       host,
		logger:     logger,
		now:        time.Now,
		after:      time.After,
	}
}

// Evaluator exposes the per-metric alert state.
func (m *Monitor) Evaluator() *alert.Evaluator {
	return m.evaluator
}

// Run logs the startup banner and then checks every metric once per poll
// interval until ctx is cancelled or a metric cannot be read. Cancellation is
// a normal stop and returns nil.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.log(ShutdownMessage)

	m.logStartup()
	for cycle := 1; ; cycle++ {
		if err := m.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				m.log(StoppedMessage)
				return nil
			}
			m.logf("An unexpected error occurred: %v", err)
			return err
		}
		m.logger.Debugw("cycle complete", "cycle", cycle)

		m.logf("Waiting for %d seconds before next check...", m.cfg.IntervalSeconds())
		select {
		case <-ctx.Done():
			m.log(StoppedMessage)
			return nil
		case <-m.after(m.cfg.PollInterval):
		}
	}
}

// RunCycle samples CPU, RAM and Disk in that order, logs each reading and
// dispatches an alert for every breach. A failed dispatch is logged and the
// cycle continues. A failed sample ends the cycle with an error unless the
// skip policy is configured.
func (m *Monitor) RunCycle(ctx context.Context) error {
	for _, metric := range models.Metrics {
		if err := ctx.Err(); err != nil {
			return err
		}

		value, err := Sample(ctx, m.sampler, metric, m.cfg.MountPoint)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if m.cfg.OnSampleError == config.SampleErrorSkip {
				m.logf("Skipping %s check: %v", metric.Label(), err)
				continue
			}
			return err
		}

		reading := models.Reading{
			Metric:    metric,
			Current:   value,
			Threshold: m.cfg.Thresholds.For(metric),
			Host:      m.host,
			Timestamp: m.now(),
		}
		if metric == models.MetricDisk {
			reading.MountPoint = m.cfg.MountPoint
		}

		m.log(alert.LogLine(reading))
		if !m.evaluator.Evaluate(reading) {
			continue
		}
		m.dispatch(ctx, reading)
	}
	return nil
}

func (m *Monitor) dispatch(ctx context.Context, r models.Reading) {
	msg := alert.NewMessage(r, m.cfg.AlertRecipient, m.cfg.SMTPUsername)
	if err := m.dispatcher.Dispatch(ctx, r, msg); err != nil {
		m.logf("Failed to send alert email: %v", err)
		return
	}
	m.logf("Alert email sent: To=%s, Subject=%s", msg.Recipient, msg.Subject)
}

func (m *Monitor) logStartup() {
	t := m.cfg.Thresholds
	m.log("System Monitor Started.")
	m.logf("Monitoring: CPU > %s%%, RAM > %s%%, Disk ('%s') > %s%%",
		formatThreshold(t.CPU), formatThreshold(t.RAM), m.cfg.MountPoint, formatThreshold(t.Disk))
	m.logf("Alerts will be sent to: %s via %s", m.cfg.AlertRecipient, m.cfg.SMTPUsername)
	m.logf("Check interval: %d seconds.", m.cfg.IntervalSeconds())
	m.logf("Log file: %s", m.cfg.LogFile)
}

// log ignores write failures; the event logger has already reported them.
func (m *Monitor) log(message string) {
	if err := m.events.Log(message); err != nil {
		m.logger.Debugw("event not persisted", "err", err)
	}
}

func (m *Monitor) logf(format string, args ...interface{}) {
	m.log(fmt.Sprintf(format, args...))
}

// formatThreshold prints whole numbers with one decimal (80.0) and keeps every
// other value as entered (85.55).
func formatThreshold(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
