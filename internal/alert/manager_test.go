package alert

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hostwatch/internal/database"
	"github.com/hostwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmail struct {
	sent []models.AlertMessage
	err  error
}

func (f *fakeEmail) Send(ctx context.Context, msg models.AlertMessage) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeSlack struct {
	posted []string
	err    error
}

func (f *fakeSlack) PostAlert(ctx context.Context, r models.Reading, msg models.AlertMessage) error {
	f.posted = append(f.posted, msg.Subject)
	return f.err
}

func newHistory(t *testing.T) *History {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "alerts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return NewHistory(db)
}

func cpuReading() (models.Reading, models.AlertMessage) {
	r := models.Reading{Metric: models.MetricCPU, Current: 95.5, Threshold: 80, Host: "web-01"}
	return r, NewMessage(r, "ops@example.com", "monitor@example.com")
}

func TestDispatchSendsEmailOnly(t *testing.T) {
	email := &fakeEmail{}
	m := NewManager(email, nil, nil, nil)
	r, msg := cpuReading()

	require.NoError(t, m.Dispatch(context.Background(), r, msg))
	require.Len(t, email.sent, 1)
	assert.Equal(t, msg, email.sent[0])
}

func TestDispatchRecordsSentAndFailedAttempts(t *testing.T) {
	email := &fakeEmail{}
	history := newHistory(t)
	m := NewManager(email, nil, history, nil)
	r, msg := cpuReading()

	require.NoError(t, m.Dispatch(context.Background(), r, msg))

	email.err = errors.New("535 authentication failed")
	err := m.Dispatch(context.Background(), r, msg)
	assert.EqualError(t, err, "535 authentication failed")

	alerts, err := history.List("", 0)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, models.AlertStatusFailed, alerts[0].Status)
	assert.Equal(t, "535 authentication failed", alerts[0].Error)
	assert.Equal(t, models.AlertStatusSent, alerts[1].Status)
	assert.Equal(t, "ALERT: High CPU Usage on web-01", alerts[1].Subject)
	assert.Equal(t, 95.5, alerts[1].CurrentValue)
}

func TestDispatchMirrorsToSlack(t *testing.T) {
	email := &fakeEmail{err: errors.New("relay down")}
	slack := &fakeSlack{err: errors.New("channel_not_found")}
	m := NewManager(email, slack, nil, nil)
	r, msg := cpuReading()

	err := m.Dispatch(context.Background(), r, msg)
	assert.EqualError(t, err, "relay down")
	assert.Equal(t, []string{"ALERT: High CPU Usage on web-01"}, slack.posted)
}

func TestHistoryListFiltersAndLimits(t *testing.T) {
	history := newHistory(t)
	m := NewManager(&fakeEmail{}, nil, history, nil)

	for _, metric := range []models.Metric{models.MetricCPU, models.MetricDisk, models.MetricCPU} {
		r := models.Reading{Metric: metric, Current: 99, Threshold: 90, Host: "h", MountPoint: "/"}
		require.NoError(t, m.Dispatch(context.Background(), r, NewMessage(r, "a", "b")))
	}

	cpu, err := history.List(models.MetricCPU, 0)
	require.NoError(t, err)
	assert.Len(t, cpu, 2)

	latest, err := history.List("", 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, models.MetricCPU, latest[0].Metric)
	assert.Equal(t, uint(3), latest[0].ID)
}
