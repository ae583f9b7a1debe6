package alert

import (
	"context"
	"time"

	"github.com/hostwatch/internal/models"
	"go.uber.org/zap"
)

// EmailSender submits one alert email.
type EmailSender interface {
	Send(ctx context.Context, msg models.AlertMessage) error
}

// SlackPoster mirrors an alert to a chat channel.
type SlackPoster interface {
	PostAlert(ctx context.Context, r models.Reading, msg models.AlertMessage) error
}

// Manager sends alerts through the configured channels. Email is the primary
// channel; history and Slack are optional and their failures are only logged.
type Manager struct {
	email   EmailSender
	slack   SlackPoster
	history *History
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewManager returns a Manager sending through email. slack and history may be
// nil to disable them.
func NewManager(email EmailSender, slack SlackPoster, history *History, logger *zap.SugaredLogger) *Manager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{
		email:   email,
		slack:   slack,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// Dispatch sends msg once and returns the email outcome. Nothing is retried.
func (am *Manager) Dispatch(ctx context.Context, r models.Reading, msg models.AlertMessage) error {
	err := am.email.Send(ctx, msg)

	if am.history != nil {
		record := &models.Alert{
			Metric:       r.Metric,
			Host:         r.Host,
			CurrentValue: r.Current,
			Threshold:    r.Threshold,
			Subject:      msg.Subject,
			Recipient:    msg.Recipient,
			Status:       models.AlertStatusSent,
			SentAt:       am.now(),
		}
		if err != nil {
			record.Status = models.AlertStatusFailed
			record.Error = err.Error()
		}
		if herr := am.history.Record(record); herr != nil {
			am.logger.Warnw("alert history unavailable", "metric", r.Metric, "err", herr)
		}
	}

	if am.slack != nil {
		if serr := am.slack.PostAlert(ctx, r, msg); serr != nil {
			am.logger.Warnw("slack mirror failed", "metric", r.Metric, "err", serr)
		}
	}

	return err
}
