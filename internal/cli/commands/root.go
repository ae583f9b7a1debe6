package commands

import (
	"io"

	"github.com/hostwatch/internal/alert"
	"github.com/hostwatch/internal/config"
	"github.com/hostwatch/internal/database"
	"github.com/hostwatch/internal/logger"
	"github.com/hostwatch/internal/notify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hostwatch",
		Short: "hostwatch - CPU, RAM and disk threshold monitor",
		Long: `hostwatch samples CPU, RAM and disk usage on this host at a fixed interval
and emails an alert whenever a reading reaches its threshold. Every reading and
alert is appended to a log file.

Values that are not given as flags or HOSTWATCH_* environment variables are
asked for on startup.`,
		SilenceUsage: true,
		RunE:         runMonitor,
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewAlertCommand())

	return cmd
}

// newManager wires the alert channels enabled in cfg. Send progress is printed
// on out. The returned function closes the history database.
func newManager(cfg *config.Config, out io.Writer, log *zap.SugaredLogger) (*alert.Manager, func()) {
	email := notify.NewEmail(cfg.Relay.Host, cfg.Relay.Port, cfg.SMTPUsername, cfg.SMTPPassword, out)

	var slack alert.SlackPoster
	if cfg.SlackEnabled() {
		slack = notify.NewSlack(cfg.Slack.Token, cfg.Slack.Channel)
	}

	var history *alert.History
	closeHistory := func() {}
	if cfg.Database.Path != "" {
		db, err := database.Open(cfg.Database.Path)
		if err != nil {
			log.Named(logger.ComponentDatabase).Warnw("alert history disabled", "path", cfg.Database.Path, "err", err)
		} else {
			history = alert.NewHistory(db)
			closeHistory = func() { database.Close(db) }
		}
	}

	return alert.NewManager(email, slack, history, log.Named(logger.ComponentAlert)), closeHistory
}
