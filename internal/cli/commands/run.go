package commands

import (
	"fmt"

	"github.com/hostwatch/internal/config"
	"github.com/hostwatch/internal/eventlog"
	"github.com/hostwatch/internal/intake"
	"github.com/hostwatch/internal/logger"
	"github.com/hostwatch/internal/monitor"
	"github.com/spf13/cobra"
)

func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Monitor the host until interrupted (default)",
		Args:  cobra.NoArgs,
		RunE:  runMonitor,
	}
}

// runMonitor reports loop failures in the event log only; once monitoring has
// started the command always exits successfully.
func runMonitor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, missing, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	zl := logger.New(cfg.LogLevel)
	defer zl.Sync()
	log := zl.Sugar()

	out := cmd.OutOrStdout()
	events := eventlog.New(cfg.LogFile, out, log.Named(logger.ComponentEventLog))

	if err := intake.New(cmd.InOrStdin(), out).Fill(ctx, cfg, missing); err != nil {
		if ctx.Err() != nil {
			events.Log(monitor.StoppedMessage)
			events.Log(monitor.ShutdownMessage)
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	manager, closeHistory := newManager(cfg, out, log)
	defer closeHistory()

	collector := monitor.NewCollector()
	mon := monitor.New(cfg, collector, manager, events, collector.Hostname(ctx), log.Named(logger.ComponentMonitor))

	if err := mon.Run(ctx); err != nil {
		log.Named(logger.ComponentMonitor).Debugw("monitor stopped", "err", err)
	}
	return nil
}
