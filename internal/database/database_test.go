package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hostwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesDirectoryAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hostwatch.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer Close(db)

	_, err = os.Stat(path)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&models.Alert{}))

	alert := models.Alert{
		Metric:       models.MetricCPU,
		Host:         "web-01",
		CurrentValue: 95.5,
		Threshold:    80,
		Status:       models.AlertStatusSent,
		SentAt:       time.Now(),
	}
	require.NoError(t, db.Create(&alert).Error)
	assert.NotZero(t, alert.ID)
}

func TestCloseNil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
