package repository

import (
	"time"

	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultRepository interface {
	FindByID(id uint) (*model.Result, error)
	FindByAttemptID(attemptID uint) (*model.Result, error)
	Upsert(result *model.Result) error
	FindWithTraitsInWindow(from, to time.Time, testID *uint, limit int) ([]model.Result, error)
}

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) FindByID(id uint) (*model.Result, error) {
	var result model.Result
	err := r.db.Preload("User").First(&result, id).Error
	return &result, err
}

func (r *resultRepository) FindByAttemptID(attemptID uint) (*model.Result, error) {
	var result model.Result
	err := r.db.Where("attempt_id = ?", attemptID).First(&result).Error
	return &result, err
}

// Upsert inserts the result or, when a row for the attempt already exists,
// overwrites its derived fields in place. The unique index on attempt_id plus
// ON CONFLICT closes the check-then-act race between concurrent scoring
// requests: exactly one row per attempt, never duplicates.
func (r *resultRepository) Upsert(result *model.Result) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"raw_score",
			"scaled_score",
			"percentile",
			"completion_percentage",
			"grade",
			"is_passed",
			"traits",
			"description",
			"recommendations",
			"detailed_analysis",
			"calculated_at",
			"updated_at",
		}),
	}).Create(result).Error
}

// FindWithTraitsInWindow returns the most recent results carrying traits in
// [from, to), newest first, preloading user demographics for the analytics
// engine. limit caps the fetch so analytics stays a bounded single pass.
func (r *resultRepository) FindWithTraitsInWindow(from, to time.Time, testID *uint, limit int) ([]model.Result, error) {
	var results []model.Result
	query := r.db.
		Preload("User").
		Where("calculated_at >= ? AND calculated_at < ?", from, to).
		Where("traits IS NOT NULL")
	if testID != nil {
		query = query.Where("test_id = ?", *testID)
	}
	err := query.Order("calculated_at DESC").Limit(limit).Find(&results).Error
	return results, err
}
