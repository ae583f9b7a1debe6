package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hostwatch/internal/models"
)

var (
	ErrNotANumber  = errors.New("not a number")
	ErrOutOfRange  = errors.New("out of range")
	ErrNotPositive = errors.New("not positive")
)

// ValidationError describes a rejected configuration value. Its message is the
// one shown to the operator when re-prompting.
type ValidationError struct {
	Field Field
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNotANumber):
		return "Invalid input. Please enter a number."
	case errors.Is(e.Err, ErrOutOfRange):
		return fmt.Sprintf("%s threshold must be between 0 and 100.", e.Field.Label())
	case errors.Is(e.Err, ErrNotPositive):
		return "Interval must be a positive number."
	default:
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseThreshold parses a percentage threshold for metric. Accepted values lie
// in [0, 100].
func ParseThreshold(metric models.Metric, raw string) (float64, error) {
	field := thresholdField(metric)
	s := strings.TrimSpace(raw)
	if isHex(s) {
		return 0, &ValidationError{Field: field, Value: raw, Err: ErrNotANumber}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ValidationError{Field: field, Value: raw, Err: ErrNotANumber}
	}
	// NaN fails both comparisons.
	if !(v >= 0 && v <= 100) {
		return 0, &ValidationError{Field: field, Value: raw, Err: ErrOutOfRange}
	}
	return v, nil
}

// ParseInterval parses a poll interval given in whole seconds.
func ParseInterval(raw string) (time.Duration, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ValidationError{Field: FieldPollInterval, Value: raw, Err: ErrNotANumber}
	}
	if n <= 0 {
		return 0, &ValidationError{Field: FieldPollInterval, Value: raw, Err: ErrNotPositive}
	}
	return time.Duration(n) * time.Second, nil
}

// Validate checks a fully populated configuration.
func (c *Config) Validate() error {
	for _, m := range models.Metrics {
		v := c.Thresholds.For(m)
		if !(v >= 0 && v <= 100) {
			return &ValidationError{Field: thresholdField(m), Value: strconv.FormatFloat(v, 'f', -1, 64), Err: ErrOutOfRange}
		}
	}
	if c.PollInterval <= 0 || c.PollInterval%time.Second != 0 {
		return &ValidationError{Field: FieldPollInterval, Value: c.PollInterval.String(), Err: ErrNotPositive}
	}
	if c.Relay.Host == "" {
		return fmt.Errorf("relay host must not be empty")
	}
	if c.Relay.Port <= 0 || c.Relay.Port > 65535 {
		return fmt.Errorf("relay port %d out of range", c.Relay.Port)
	}
	if c.LogFile == "" {
		return fmt.Errorf("log file path must not be empty")
	}
	if c.MountPoint == "" {
		return fmt.Errorf("mount point must not be empty")
	}
	switch c.OnSampleError {
	case SampleErrorAbort, SampleErrorSkip:
	default:
		return fmt.Errorf("unknown sample error policy %q", c.OnSampleError)
	}
	return nil
}

// isHex reports a hexadecimal literal such as 0x1p6, which ParseFloat accepts
// but is not a decimal percentage.
func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func thresholdField(m models.Metric) Field {
	switch m {
	case models.MetricRAM:
		return FieldRAMThreshold
	case models.MetricDisk:
		return FieldDiskThreshold
	default:
		return FieldCPUThreshold
	}
}
