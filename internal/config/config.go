package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hostwatch/internal/models"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultRelayHost     = "smtp.gmail.com"
	DefaultRelayPort     = 587
	DefaultLogFile       = "/tmp/system_monitor.log"
	DefaultMountPoint    = "/"
	DefaultDatabasePath  = "" // history disabled
	DefaultLogLevel      = "info"
	DefaultSampleOnError = SampleErrorAbort

	envPrefix = "HOSTWATCH"
)

// SampleErrorPolicy decides what a cycle does when a metric cannot be read.
type SampleErrorPolicy string

const (
	// SampleErrorAbort ends the cycle and stops the monitor.
	SampleErrorAbort SampleErrorPolicy = "abort"
	// SampleErrorSkip logs the failure and moves on to the next metric.
	SampleErrorSkip SampleErrorPolicy = "skip"
)

// Field names a value collected by the configuration intake. The string form is
// the viper key.
type Field string

const (
	FieldCPUThreshold  Field = "thresholds.cpu"
	FieldRAMThreshold  Field = "thresholds.ram"
	FieldDiskThreshold Field = "thresholds.disk"
	FieldRecipient     Field = "alert.recipient"
	FieldSMTPUsername  Field = "smtp.username"
	FieldSMTPPassword  Field = "smtp.password"
	FieldPollInterval  Field = "interval"
)

// IntakeFields is the order in which missing values are prompted for.
var IntakeFields = []Field{
	FieldCPUThreshold,
	FieldRAMThreshold,
	FieldDiskThreshold,
	FieldRecipient,
	FieldSMTPUsername,
	FieldSMTPPassword,
	FieldPollInterval,
}

// Label returns the short operator-facing name of the field.
func (f Field) Label() string {
	switch f {
	case FieldCPUThreshold:
		return "CPU"
	case FieldRAMThreshold:
		return "RAM"
	case FieldDiskThreshold:
		return "Disk"
	case FieldRecipient:
		return "Alert recipient"
	case FieldSMTPUsername:
		return "SMTP username"
	case FieldSMTPPassword:
		return "SMTP password"
	case FieldPollInterval:
		return "Interval"
	default:
		return string(f)
	}
}

type Thresholds struct {
	CPU  float64
	RAM  float64
	Disk float64
}

// For returns the threshold configured for metric.
func (t Thresholds) For(m models.Metric) float64 {
	switch m {
	case models.MetricCPU:
		return t.CPU
	case models.MetricRAM:
		return t.RAM
	case models.MetricDisk:
		return t.Disk
	default:
		return 0
	}
}

// Set stores v as the threshold for metric.
func (t *Thresholds) Set(m models.Metric, v float64) {
	switch m {
	case models.MetricCPU:
		t.CPU = v
	case models.MetricRAM:
		t.RAM = v
	case models.MetricDisk:
		t.Disk = v
	}
}

// Config is built once at startup and not modified while the monitor runs.
type Config struct {
	Thresholds     Thresholds
	AlertRecipient string
	SMTPUsername   string
	SMTPPassword   string
	PollInterval   time.Duration

	Relay struct {
		Host string
		Port int
	}
	LogFile       string
	MountPoint    string
	OnSampleError SampleErrorPolicy
	LogLevel      string

	Database struct {
		Path string // empty disables alert history
	}
	Slack struct {
		Token   string
		Channel string
	}
}

// IntervalSeconds returns the poll interval in whole seconds.
func (c *Config) IntervalSeconds() int {
	return int(c.PollInterval / time.Second)
}

// SlackEnabled reports whether alerts are mirrored to Slack.
func (c *Config) SlackEnabled() bool {
	return c.Slack.Token != "" && c.Slack.Channel != ""
}

// flagKeys maps command-line flags to viper keys. The SMTP password has no
// flag; it comes from the environment or the prompt.
var flagKeys = map[string]string{
	"cpu-threshold":   string(FieldCPUThreshold),
	"ram-threshold":   string(FieldRAMThreshold),
	"disk-threshold":  string(FieldDiskThreshold),
	"recipient":       string(FieldRecipient),
	"smtp-username":   string(FieldSMTPUsername),
	"interval":        string(FieldPollInterval),
	"relay-host":      "relay.host",
	"relay-port":      "relay.port",
	"log-file":        "log.file",
	"mount-point":     "mount_point",
	"on-sample-error": "on_sample_error",
	"log-level":       "log.level",
	"database":        "database.path",
	"slack-channel":   "slack.channel",
}

// RegisterFlags defines the monitor flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("cpu-threshold", "", "CPU usage threshold in percent (0-100)")
	fs.String("ram-threshold", "", "RAM usage threshold in percent (0-100)")
	fs.String("disk-threshold", "", "Disk usage threshold in percent (0-100)")
	fs.String("recipient", "", "Email address that receives alerts")
	fs.String("smtp-username", "", "SMTP account used to send alerts")
	fs.String("interval", "", "Check interval in seconds")
	fs.String("relay-host", DefaultRelayHost, "SMTP relay host")
	fs.Int("relay-port", DefaultRelayPort, "SMTP relay port (STARTTLS)")
	fs.String("log-file", DefaultLogFile, "Event log file")
	fs.String("mount-point", DefaultMountPoint, "Filesystem whose usage is monitored")
	fs.String("on-sample-error", string(DefaultSampleOnError), "What to do when a metric cannot be read (abort|skip)")
	fs.String("log-level", DefaultLogLevel, "Diagnostic log level")
	fs.String("database", DefaultDatabasePath, "SQLite alert history path (disabled when empty)")
	fs.String("slack-channel", "", "Slack channel that mirrors alerts")
}

func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("relay.host", DefaultRelayHost)
	v.SetDefault("relay.port", DefaultRelayPort)
	v.SetDefault("log.file", DefaultLogFile)
	v.SetDefault("mount_point", DefaultMountPoint)
	v.SetDefault("on_sample_error", string(DefaultSampleOnError))
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("database.path", DefaultDatabasePath)
	// Bound to HOSTWATCH_SLACK_TOKEN only.
	v.SetDefault("slack.token", "")

	if fs == nil {
		return v, nil
	}
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %v", name, err)
		}
	}
	return v, nil
}

// Load builds a configuration from defaults, HOSTWATCH_* environment variables
// and the flags in fs. Provided values are validated and rejected on error;
// intake values that were not provided are returned as missing so the caller
// can prompt for them.
func Load(fs *pflag.FlagSet) (*Config, []Field, error) {
	v, err := newViper(fs)
	if err != nil {
		return nil, nil, err
	}

	cfg := &Config{
		LogFile:       v.GetString("log.file"),
		MountPoint:    v.GetString("mount_point"),
		OnSampleError: SampleErrorPolicy(strings.ToLower(v.GetString("on_sample_error"))),
		LogLevel:      v.GetString("log.level"),
	}
	cfg.Relay.Host = v.GetString("relay.host")
	cfg.Relay.Port = v.GetInt("relay.port")
	cfg.Database.Path = v.GetString("database.path")
	cfg.Slack.Token = v.GetString("slack.token")
	cfg.Slack.Channel = v.GetString("slack.channel")

	var missing []Field
	for _, f := range IntakeFields {
		if !v.IsSet(string(f)) || v.GetString(string(f)) == "" {
			missing = append(missing, f)
			continue
		}
		if err := cfg.Apply(f, v.GetString(string(f))); err != nil {
			return nil, nil, fmt.Errorf("invalid %s: %w", f, err)
		}
	}
	return cfg, missing, nil
}

// DatabasePath returns the alert history path from the environment and fs
// without loading or validating the rest of the configuration.
func DatabasePath(fs *pflag.FlagSet) (string, error) {
	v, err := newViper(fs)
	if err != nil {
		return "", err
	}
	return v.GetString("database.path"), nil
}

// Apply parses raw and stores it in the field. Thresholds and the interval are
// validated; the other fields are taken as given.
func (c *Config) Apply(f Field, raw string) error {
	switch f {
	case FieldCPUThreshold, FieldRAMThreshold, FieldDiskThreshold:
		m := FieldMetric(f)
		v, err := ParseThreshold(m, raw)
		if err != nil {
			return err
		}
		c.Thresholds.Set(m, v)
	case FieldPollInterval:
		d, err := ParseInterval(raw)
		if err != nil {
			return err
		}
		c.PollInterval = d
	case FieldRecipient:
		c.AlertRecipient = raw
	case FieldSMTPUsername:
		c.SMTPUsername = raw
	case FieldSMTPPassword:
		c.SMTPPassword = raw
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// FieldMetric returns the metric a threshold field belongs to.
func FieldMetric(f Field) models.Metric {
	switch f {
	case FieldRAMThreshold:
		return models.MetricRAM
	case FieldDiskThreshold:
		return models.MetricDisk
	default:
		return models.MetricCPU
	}
}
