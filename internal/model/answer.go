package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Answer is one participant response within an attempt. Correctness and the
// partial score are assigned upstream by the answer-submission collaborator;
// the scoring engine only aggregates them.
type Answer struct {
	ID               uint             `gorm:"primarykey" json:"id"`
	AttemptID        uint             `json:"attempt_id" gorm:"not null;index"`
	QuestionID       uint             `json:"question_id" gorm:"not null;index"`
	Question         Question         `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	AnswerValue      string           `json:"answer_value" gorm:"type:text"`
	AnswerPayload    datatypes.JSON   `json:"answer_payload,omitempty" gorm:"type:jsonb"`
	IsCorrect        *bool            `json:"is_correct,omitempty"`
	Score            *decimal.Decimal `json:"score,omitempty" gorm:"type:numeric(8,2)"`
	TimeTakenSeconds int              `json:"time_taken_seconds" gorm:"not null;default:0"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}
