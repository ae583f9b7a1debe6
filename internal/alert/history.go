package alert

import (
	"fmt"
	"time"

	"github.com/hostwatch/internal/models"
	"gorm.io/gorm"
)

// History stores dispatch attempts in the database.
type History struct {
	db *gorm.DB
}

func NewHistory(db *gorm.DB) *History {
	return &History{db: db}
}

// Record saves a dispatch attempt.
func (h *History) Record(alert *models.Alert) error {
	if err := h.db.Create(alert).Error; err != nil {
		return fmt.Errorf("failed to record alert: %w", err)
	}
	return nil
}

// List returns the most recent attempts, newest first. An empty metric matches
// every metric and a limit <= 0 returns all rows.
func (h *History) List(metric models.Metric, limit int) ([]models.Alert, error) {
	var alerts []models.Alert
	query := h.db.Order("sent_at DESC").Order("id DESC")
	if metric != "" {
		query = query.Where("metric = ?", metric)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// Between returns the attempts sent in [start, end], oldest first.
func (h *History) Between(start, end time.Time) ([]models.Alert, error) {
	var alerts []models.Alert
	if err := h.db.Where("sent_at BETWEEN ? AND ?", start, end).
		Order("sent_at ASC").
		Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}
	return alerts, nil
}
