package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Module types recognised by the trait catalog registry.
const (
	ModuleTypePersonality  = "personality"
	ModuleTypeIntelligence = "intelligence"
	ModuleTypeAptitude     = "aptitude"
)

type Test struct {
	ID               uint             `gorm:"primarykey" json:"id"`
	UUID             string           `json:"uuid" gorm:"size:36;uniqueIndex;not null"`
	Title            string           `json:"title" gorm:"not null;uniqueIndex"`
	Description      string           `json:"description,omitempty"`
	ModuleType       string           `json:"module_type" gorm:"not null;index"` // "personality", "intelligence", "aptitude"
	Category         string           `json:"category" gorm:"index"`             // "mbti", "big_five", "wais", ...
	TotalQuestions   int              `json:"total_questions" gorm:"not null;default:0"`
	TimeLimitMinutes int              `json:"time_limit_minutes" gorm:"not null;default:0"` // 0 means untimed
	PassingScore     *decimal.Decimal `json:"passing_score,omitempty" gorm:"type:numeric(5,2)"`
	Questions        []Question       `json:"questions,omitempty" gorm:"foreignKey:TestID"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}

// DefaultPassingScore applies when a test defines no threshold of its own.
var DefaultPassingScore = decimal.NewFromInt(60)

// PassingThreshold returns the test's passing score, falling back to the default.
func (t *Test) PassingThreshold() decimal.Decimal {
	if t.PassingScore != nil {
		return *t.PassingScore
	}
	return DefaultPassingScore
}
