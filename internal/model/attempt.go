package model

import (
	"time"

	"gorm.io/gorm"
)

// Attempt statuses. started and in_progress are live; the rest are terminal.
const (
	AttemptStatusStarted    = "started"
	AttemptStatusInProgress = "in_progress"
	AttemptStatusCompleted  = "completed"
	AttemptStatusAbandoned  = "abandoned"
	AttemptStatusExpired    = "expired"
)

type Attempt struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	UUID              string         `json:"uuid" gorm:"size:36;uniqueIndex;not null"`
	UserID            uint           `json:"user_id" gorm:"not null;index;uniqueIndex:idx_attempts_user_test_number"`
	User              User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TestID            uint           `json:"test_id" gorm:"not null;index;uniqueIndex:idx_attempts_user_test_number"`
	Test              Test           `json:"test,omitempty" gorm:"foreignKey:TestID"`
	SessionID         *uint          `json:"session_id,omitempty" gorm:"index"`
	AttemptNumber     int            `json:"attempt_number" gorm:"not null;uniqueIndex:idx_attempts_user_test_number"`
	StartTime         time.Time      `json:"start_time" gorm:"not null"`
	EndTime           *time.Time     `json:"end_time,omitempty"`        // explicit deadline, overrides the time limit
	ActualEndTime     *time.Time     `json:"actual_end_time,omitempty"` // set when the attempt goes terminal
	Status            string         `json:"status" gorm:"not null;default:'started';index"`
	TimeSpentSeconds  int            `json:"time_spent_seconds" gorm:"not null;default:0"`
	QuestionsAnswered int            `json:"questions_answered" gorm:"not null;default:0"`
	TotalQuestions    int            `json:"total_questions" gorm:"not null;default:0"` // snapshot from the test at start
	Answers           []Answer       `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsTerminal reports whether the attempt reached a status no transition leaves.
func (a *Attempt) IsTerminal() bool {
	switch a.Status {
	case AttemptStatusCompleted, AttemptStatusAbandoned, AttemptStatusExpired:
		return true
	}
	return false
}
