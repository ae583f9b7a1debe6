package models

import (
	"time"

	"gorm.io/gorm"
)

type AlertStatus string

const (
	AlertStatusSent   AlertStatus = "SENT"
	AlertStatusFailed AlertStatus = "FAILED"
)

// Alert is the stored record of one dispatch attempt.
type Alert struct {
	gorm.Model
	Metric       Metric      `json:"metric" gorm:"index;not null"`
	Host         string      `json:"host"`
	CurrentValue float64     `json:"current_value"`
	Threshold    float64     `json:"threshold"`
	Subject      string      `json:"subject"`
	Recipient    string      `json:"recipient"`
	Status       AlertStatus `json:"status" gorm:"not null"`
	Error        string      `json:"error,omitempty"`
	SentAt       time.Time   `json:"sent_at" gorm:"index"`
}
