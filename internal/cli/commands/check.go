package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/hostwatch/internal/alert"
	"github.com/hostwatch/internal/config"
	"github.com/hostwatch/internal/intake"
	"github.com/hostwatch/internal/logger"
	"github.com/hostwatch/internal/models"
	"github.com/hostwatch/internal/monitor"
	"github.com/spf13/cobra"
)

// unsetThreshold only breaches at full saturation.
const unsetThreshold = "100"

func NewCheckCommand() *cobra.Command {
	var send bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Sample every metric once and compare it to its threshold",
		Long: `Check samples CPU, RAM and disk once and prints each reading next to its
threshold. Thresholds that are not given default to 100. Alerts are only
emailed with --send, in which case missing mail settings are asked for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, missing, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			var prompt []config.Field
			for _, f := range missing {
				switch f {
				case config.FieldCPUThreshold, config.FieldRAMThreshold, config.FieldDiskThreshold:
					if err := cfg.Apply(f, unsetThreshold); err != nil {
						return err
					}
				case config.FieldPollInterval:
				default:
					if send {
						prompt = append(prompt, f)
					}
				}
			}
			if err := intake.New(cmd.InOrStdin(), cmd.OutOrStdout()).Fill(cmd.Context(), cfg, prompt); err != nil {
				return err
			}

			zl := logger.New(cfg.LogLevel)
			defer zl.Sync()

			var dispatcher monitor.Dispatcher
			if send {
				manager, closeHistory := newManager(cfg, cmd.OutOrStdout(), zl.Sugar())
				defer closeHistory()
				dispatcher = manager
			}

			ctx := cmd.Context()
			collector := monitor.NewCollector()
			return runCheck(ctx, cmd.OutOrStdout(), cfg, collector, collector.Hostname(ctx), dispatcher)
		},
	}

	cmd.Flags().BoolVar(&send, "send", false, "Email an alert for every breached threshold")
	return cmd
}

// runCheck prints one row per metric. A nil dispatcher reports breaches
// without sending them.
func runCheck(ctx context.Context, out io.Writer, cfg *config.Config, sampler monitor.Sampler, host string, dispatcher monitor.Dispatcher) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METRIC\tCURRENT\tTHRESHOLD\tSTATUS")

	failed := 0
	for _, metric := range models.Metrics {
		label := metric.Label()
		if metric == models.MetricDisk {
			label = fmt.Sprintf("Disk (%s)", cfg.MountPoint)
		}

		value, err := monitor.Sample(ctx, sampler, metric, cfg.MountPoint)
		if err != nil {
			failed++
			fmt.Fprintf(w, "%s\t-\t%.2f%%\tERROR: %v\n", label, cfg.Thresholds.For(metric), err)
			continue
		}

		reading := models.Reading{
			Metric:    metric,
			Current:   value,
			Threshold: cfg.Thresholds.For(metric),
			Host:      host,
			Timestamp: time.Now(),
		}
		if metric == models.MetricDisk {
			reading.MountPoint = cfg.MountPoint
		}

		status := "OK"
		if reading.Breached() {
			status = "BREACH"
			if dispatcher != nil {
				msg := alert.NewMessage(reading, cfg.AlertRecipient, cfg.SMTPUsername)
				if err := dispatcher.Dispatch(ctx, reading, msg); err != nil {
					status = fmt.Sprintf("BREACH, alert failed: %v", err)
				} else {
					status = "BREACH, alert sent"
				}
			}
		}
		fmt.Fprintf(w, "%s\t%.2f%%\t%.2f%%\t%s\n", label, reading.Current, reading.Threshold, status)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return errors.New("one or more metrics could not be read")
	}
	return nil
}
