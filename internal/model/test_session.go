package model

import (
	"time"

	"gorm.io/gorm"
)

// TestSession groups attempts administered together (e.g. one recruitment batch).
type TestSession struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UUID      string         `json:"uuid" gorm:"size:36;uniqueIndex;not null"`
	Name      string         `json:"name" gorm:"not null"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
