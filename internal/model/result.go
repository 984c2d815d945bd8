package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Grades assigned by the scoring engine.
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
	GradeE = "E"
)

// Result is the derived scoring artifact for exactly one completed attempt.
// Score columns are numeric, never floats, so recalculation round-trips
// without binary rounding drift. At most one row exists per attempt, enforced
// by the unique index on attempt_id plus upsert semantics in the repository.
type Result struct {
	ID                   uint              `gorm:"primarykey" json:"id"`
	UUID                 string            `json:"uuid" gorm:"size:36;uniqueIndex;not null"`
	AttemptID            uint              `json:"attempt_id" gorm:"not null;uniqueIndex"`
	Attempt              Attempt           `json:"attempt,omitempty" gorm:"foreignKey:AttemptID"`
	UserID               uint              `json:"user_id" gorm:"not null;index"`
	User                 User              `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TestID               uint              `json:"test_id" gorm:"not null;index"`
	RawScore             decimal.Decimal   `json:"raw_score" gorm:"type:numeric(8,2);not null"`
	ScaledScore          decimal.Decimal   `json:"scaled_score" gorm:"type:numeric(8,2);not null"`
	Percentile           decimal.Decimal   `json:"percentile" gorm:"type:numeric(8,2);not null"`
	CompletionPercentage decimal.Decimal   `json:"completion_percentage" gorm:"type:numeric(8,2);not null"`
	Grade                string            `json:"grade" gorm:"size:1;not null"`
	IsPassed             bool              `json:"is_passed" gorm:"not null"`
	Traits               TraitMeasurements `json:"traits,omitempty" gorm:"type:jsonb"`
	Description          string            `json:"description,omitempty" gorm:"type:text"`
	Recommendations      string            `json:"recommendations,omitempty" gorm:"type:text"`
	DetailedAnalysis     *DetailedAnalysis `json:"detailed_analysis,omitempty" gorm:"type:jsonb"`
	CalculatedAt         time.Time         `json:"calculated_at" gorm:"not null"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
	DeletedAt            gorm.DeletedAt    `gorm:"index" json:"-"`
}

// ScoringBreakdownEntry is the per-answer record inside DetailedAnalysis.
type ScoringBreakdownEntry struct {
	Trait       string          `json:"trait"`
	RawScore    decimal.Decimal `json:"raw_score"`
	ScaledScore decimal.Decimal `json:"scaled_score"`
	Percentile  decimal.Decimal `json:"percentile"`
}

// DetailedAnalysis carries the calculation audit trail for a Result.
type DetailedAnalysis struct {
	CalculationMethod string                  `json:"calculation_method"`
	TotalQuestions    int                     `json:"total_questions"`
	AnsweredQuestions int                     `json:"answered_questions"`
	CorrectAnswers    int                     `json:"correct_answers"`
	AccuracyRate      decimal.Decimal         `json:"accuracy_rate"`
	TimeEfficiency    decimal.Decimal         `json:"time_efficiency"`
	ScoringBreakdown  []ScoringBreakdownEntry `json:"scoring_breakdown"`
}

func (d *DetailedAnalysis) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal detailed analysis: %w", err)
	}
	return string(b), nil
}

func (d *DetailedAnalysis) Scan(value any) error {
	if value == nil {
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported detailed analysis column type %T", value)
	}
	return json.Unmarshal(raw, d)
}
