package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// AttemptResponse is the live lifecycle view of an attempt: stored fields
// plus the time math computed against the current clock.
type AttemptResponse struct {
	ID                   uint       `json:"id"`
	UUID                 string     `json:"uuid"`
	UserID               uint       `json:"user_id"`
	TestID               uint       `json:"test_id"`
	TestTitle            string     `json:"test_title,omitempty"`
	SessionID            *uint      `json:"session_id,omitempty"`
	AttemptNumber        int        `json:"attempt_number"`
	StartTime            time.Time  `json:"start_time"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	ActualEndTime        *time.Time `json:"actual_end_time,omitempty"`
	Status               string     `json:"status"`
	TimeSpentSeconds     int        `json:"time_spent_seconds"`
	QuestionsAnswered    int        `json:"questions_answered"`
	TotalQuestions       int        `json:"total_questions"`
	ProgressPercentage   int        `json:"progress_percentage"`
	TimeRemainingSeconds int64      `json:"time_remaining_seconds"`
	CanContinue          bool       `json:"can_continue"`
	IsNearlyExpired      bool       `json:"is_nearly_expired"`
	EstimatedMinutesLeft *int       `json:"estimated_minutes_left,omitempty"`
}

type AttemptSummaryResponse struct {
	ID                 uint       `json:"id"`
	UUID               string     `json:"uuid"`
	TestID             uint       `json:"test_id"`
	AttemptNumber      int        `json:"attempt_number"`
	StartTime          time.Time  `json:"start_time"`
	ActualEndTime      *time.Time `json:"actual_end_time,omitempty"`
	Status             string     `json:"status"`
	QuestionsAnswered  int        `json:"questions_answered"`
	TotalQuestions     int        `json:"total_questions"`
	ProgressPercentage int        `json:"progress_percentage"`
	IsExpired          bool       `json:"is_expired"`
}

type TraitResponse struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
}

type ScoringBreakdownResponse struct {
	Trait       string          `json:"trait"`
	RawScore    decimal.Decimal `json:"raw_score"`
	ScaledScore decimal.Decimal `json:"scaled_score"`
	Percentile  decimal.Decimal `json:"percentile"`
}

type DetailedAnalysisResponse struct {
	CalculationMethod string                     `json:"calculation_method"`
	TotalQuestions    int                        `json:"total_questions"`
	AnsweredQuestions int                        `json:"answered_questions"`
	CorrectAnswers    int                        `json:"correct_answers"`
	AccuracyRate      decimal.Decimal            `json:"accuracy_rate"`
	TimeEfficiency    decimal.Decimal            `json:"time_efficiency"`
	ScoringBreakdown  []ScoringBreakdownResponse `json:"scoring_breakdown"`
}

// ResultResponse serialises decimal scores as strings, so values round-trip
// without binary rounding drift.
type ResultResponse struct {
	ID                   uint                      `json:"id"`
	UUID                 string                    `json:"uuid"`
	AttemptID            uint                      `json:"attempt_id"`
	UserID               uint                      `json:"user_id"`
	TestID               uint                      `json:"test_id"`
	RawScore             decimal.Decimal           `json:"raw_score"`
	ScaledScore          decimal.Decimal           `json:"scaled_score"`
	Percentile           decimal.Decimal           `json:"percentile"`
	CompletionPercentage decimal.Decimal           `json:"completion_percentage"`
	Grade                string                    `json:"grade"`
	IsPassed             bool                      `json:"is_passed"`
	Traits               []TraitResponse           `json:"traits,omitempty"`
	Description          string                    `json:"description,omitempty"`
	Recommendations      string                    `json:"recommendations,omitempty"`
	DetailedAnalysis     *DetailedAnalysisResponse `json:"detailed_analysis,omitempty"`
	CalculatedAt         time.Time                 `json:"calculated_at"`
}

type RecalculateResponse struct {
	Result           ResultResponse `json:"result"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	Recalculated     bool           `json:"recalculated"`
}

type QuestionResponse struct {
	ID          uint    `json:"id"`
	TestID      uint    `json:"test_id"`
	Text        string  `json:"text"`
	Type        string  `json:"type"`
	Category    string  `json:"category,omitempty"`
	OrderInTest int     `json:"order_in_test"`
	MaxScore    float64 `json:"max_score,omitempty"`
}

type TestResponse struct {
	ID               uint               `json:"id"`
	UUID             string             `json:"uuid"`
	Title            string             `json:"title"`
	Description      string             `json:"description,omitempty"`
	ModuleType       string             `json:"module_type"`
	Category         string             `json:"category,omitempty"`
	TotalQuestions   int                `json:"total_questions"`
	TimeLimitMinutes int                `json:"time_limit_minutes"`
	PassingScore     *decimal.Decimal   `json:"passing_score,omitempty"`
	Questions        []QuestionResponse `json:"questions,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

type TestSummaryResponse struct {
	ID             uint      `json:"id"`
	UUID           string    `json:"uuid"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	ModuleType     string    `json:"module_type"`
	Category       string    `json:"category,omitempty"`
	QuestionCount  int       `json:"question_count"`
	TotalQuestions int       `json:"total_questions"`
	CreatedAt      time.Time `json:"created_at"`
}
