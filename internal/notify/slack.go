package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hostwatch/internal/models"
	"github.com/slack-go/slack"
)

const alertColor = "#ff0000"

// Slack posts a copy of each alert to a channel.
type Slack struct {
	client  *slack.Client
	channel string
}

func NewSlack(token, channel string, options ...slack.Option) *Slack {
	return &Slack{
		client:  slack.New(token, options...),
		channel: channel,
	}
}

func (s *Slack) PostAlert(ctx context.Context, r models.Reading, msg models.AlertMessage) error {
	fields := []slack.AttachmentField{
		{
			Title: "Host",
			Value: r.Host,
			Short: true,
		},
		{
			Title: "Metric",
			Value: r.Metric.Label(),
			Short: true,
		},
		{
			Title: "Current Value",
			Value: fmt.Sprintf("%.2f%%", r.Current),
			Short: true,
		},
		{
			Title: "Threshold",
			Value: fmt.Sprintf("%.2f%%", r.Threshold),
			Short: true,
		},
	}
	if r.MountPoint != "" {
		fields = append(fields, slack.AttachmentField{Title: "Mount Point", Value: r.MountPoint, Short: true})
	}

	attachment := slack.Attachment{
		Color:  alertColor,
		Title:  msg.Subject,
		Text:   msg.Body,
		Fields: fields,
		Footer: "hostwatch",
		Ts:     json.Number(strconv.FormatInt(r.Timestamp.Unix(), 10)),
	}

	_, _, err := s.client.PostMessageContext(ctx, s.channel, slack.MsgOptionAttachments(attachment))
	if err != nil {
		return fmt.Errorf("failed to post slack alert: %w", err)
	}
	return nil
}
