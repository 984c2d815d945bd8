package model

import (
	"time"

	"gorm.io/gorm"
)

type Question struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	TestID      uint           `json:"test_id" gorm:"not null;index"`
	Text        string         `json:"text" gorm:"type:text;not null"`
	Type        string         `json:"type" gorm:"not null"` // used to tag per-answer breakdown entries
	Category    string         `json:"category,omitempty"`
	OrderInTest int            `json:"order_in_test" gorm:"not null"`
	MaxScore    float64        `json:"max_score,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
