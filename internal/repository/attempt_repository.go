package repository

import (
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(attempt *model.Attempt) error
	Update(attempt *model.Attempt) error
	FindByID(id uint) (*model.Attempt, error)
	FindByIDWithTest(id uint) (*model.Attempt, error)
	FindByIDWithDetails(id uint) (*model.Attempt, error)
	FindAllByTestAndUser(testID uint, userID uint) ([]model.Attempt, error)
	MaxAttemptNumber(userID, testID uint) (int, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

// Create inserts the attempt; a (user_id, test_id, attempt_number) unique
// violation surfaces as gorm.ErrDuplicatedKey for the caller's retry loop.
func (r *attemptRepository) Create(attempt *model.Attempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) Update(attempt *model.Attempt) error {
	return r.db.Save(attempt).Error
}

func (r *attemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.First(&attempt, id).Error
	return &attempt, err
}

func (r *attemptRepository) FindByIDWithTest(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.Preload("Test").First(&attempt, id).Error
	return &attempt, err
}

func (r *attemptRepository) FindByIDWithDetails(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Preload("Test").
		Preload("User").
		Preload("Answers.Question").
		First(&attempt, id).Error
	return &attempt, err
}

func (r *attemptRepository) FindAllByTestAndUser(testID uint, userID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.
		Where("test_id = ? AND user_id = ?", testID, userID).
		Order("attempt_number DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) MaxAttemptNumber(userID, testID uint) (int, error) {
	var max int
	err := r.db.Model(&model.Attempt{}).
		Unscoped().
		Where("user_id = ? AND test_id = ?", userID, testID).
		Select("COALESCE(MAX(attempt_number), 0)").
		Scan(&max).Error
	return max, err
}
