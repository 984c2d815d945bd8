package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// StartAttemptRequest begins a participant's run of a test. EndTime, when
// set, is an explicit deadline that overrides the test's time limit.
type StartAttemptRequest struct {
	UserID    uint       `json:"user_id" binding:"required"`
	TestID    uint       `json:"-"`
	SessionID *uint      `json:"session_id"`
	EndTime   *time.Time `json:"end_time"`
}

// SubmitAnswerRequest records one response. Correctness and partial score
// are graded upstream by the answer-submission collaborator.
type SubmitAnswerRequest struct {
	QuestionID       uint             `json:"question_id" binding:"required"`
	AnswerValue      string           `json:"answer_value"`
	AnswerPayload    datatypes.JSON   `json:"answer_payload"`
	IsCorrect        *bool            `json:"is_correct"`
	Score            *decimal.Decimal `json:"score"`
	TimeTakenSeconds int              `json:"time_taken_seconds" binding:"omitempty,min=0"`
}

// FinishAttemptRequest closes an attempt. Status defaults to "completed".
type FinishAttemptRequest struct {
	Status string `json:"status" binding:"omitempty,oneof=completed abandoned"`
}

// CalculationOptions toggles the optional scoring sections.
type CalculationOptions struct {
	IncludePersonality     bool `json:"include_personality"`
	IncludeIntelligence    bool `json:"include_intelligence"`
	IncludeRecommendations bool `json:"include_recommendations"`
}

// RecalculateRequest accepts either an attempt identity or an existing
// result identity. Options default to everything enabled when omitted.
type RecalculateRequest struct {
	AttemptID        *uint               `json:"attempt_id"`
	ResultID         *uint               `json:"result_id"`
	ForceRecalculate bool                `json:"force_recalculate"`
	Options          *CalculationOptions `json:"calculation_options"`
}

type CreateQuestionRequest struct {
	Text        string  `json:"text" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Category    string  `json:"category"`
	OrderInTest int     `json:"order_in_test" binding:"required,min=1"`
	MaxScore    float64 `json:"max_score"`
}

type CreateTestRequest struct {
	Title            string                  `json:"title" binding:"required"`
	Description      string                  `json:"description"`
	ModuleType       string                  `json:"module_type" binding:"required,oneof=personality intelligence aptitude"`
	Category         string                  `json:"category"`
	TimeLimitMinutes int                     `json:"time_limit_minutes" binding:"omitempty,min=0"`
	PassingScore     *decimal.Decimal        `json:"passing_score"`
	Questions        []CreateQuestionRequest `json:"questions" binding:"omitempty,dive"`
}
