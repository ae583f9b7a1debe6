package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hostwatch/internal/alert"
	"github.com/hostwatch/internal/config"
	"github.com/hostwatch/internal/database"
	"github.com/hostwatch/internal/models"
	"github.com/hostwatch/internal/report"
	"github.com/spf13/cobra"
)

func NewAlertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "alert",
		Short:   "Alert history commands",
		Aliases: []string{"alerts", "a"},
	}

	cmd.AddCommand(newAlertListCommand())
	cmd.AddCommand(newAlertReportCommand())

	return cmd
}

func newAlertListCommand() *cobra.Command {
	var (
		metric string
		limit  int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List sent and failed alerts",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseMetric(metric)
			if err != nil {
				return err
			}

			history, closeHistory, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer closeHistory()

			alerts, err := history.List(filter, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tMETRIC\tHOST\tVALUE\tTHRESHOLD\tSTATUS\tTIME")

			for _, a := range alerts {
				fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t%s\t%s\n",
					a.ID,
					a.Metric.Label(),
					a.Host,
					a.CurrentValue,
					a.Threshold,
					a.Status,
					a.SentAt.Format(time.RFC3339),
				)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&metric, "metric", "", "Filter by metric (cpu/ram/disk)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of alerts to show (0 for all)")

	return cmd
}

func parseMetric(raw string) (models.Metric, error) {
	if raw == "" {
		return "", nil
	}
	m := models.Metric(strings.ToLower(raw))
	for _, known := range models.Metrics {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q (expected cpu, ram or disk)", raw)
}

func newAlertReportCommand() *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize alerts per metric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if since <= 0 {
				return errors.New("--since must be positive")
			}

			history, closeHistory, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer closeHistory()

			endTime := time.Now()
			startTime := endTime.Add(-since)
			alerts, err := history.Between(startTime, endTime)
			if err != nil {
				return err
			}

			g, err := report.NewGenerator()
			if err != nil {
				return err
			}
			text, err := g.Render(g.Summarize(alerts, startTime, endTime))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "Length of the reporting period")
	return cmd
}

func openHistory(cmd *cobra.Command) (*alert.History, func(), error) {
	path, err := config.DatabasePath(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	if path == "" {
		return nil, nil, errors.New("alert history is disabled; set --database")
	}

	db, err := database.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return alert.NewHistory(db), func() { database.Close(db) }, nil
}
