package repository

import (
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"gorm.io/gorm"
)

type TestRepository interface {
	Create(test *model.Test) error
	FindByID(id uint) (*model.Test, error)
	FindByIDWithQuestions(id uint) (*model.Test, error)
	FindAllWithQuestionCount() ([]TestWithQuestionCount, error)
}

type TestWithQuestionCount struct {
	model.Test
	QuestionCount int
}

type testRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Create(test *model.Test) error {
	// GORM creates associated questions when test.Questions is populated.
	return r.db.Create(test).Error
}

func (r *testRepository) FindByID(id uint) (*model.Test, error) {
	var test model.Test
	err := r.db.First(&test, id).Error
	return &test, err
}

func (r *testRepository) FindByIDWithQuestions(id uint) (*model.Test, error) {
	var test model.Test
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.order_in_test ASC")
	}).First(&test, id).Error
	return &test, err
}

func (r *testRepository) FindAllWithQuestionCount() ([]TestWithQuestionCount, error) {
	var results []TestWithQuestionCount
	err := r.db.Model(&model.Test{}).
		Select("tests.*, (SELECT COUNT(*) FROM questions WHERE questions.test_id = tests.id AND questions.deleted_at IS NULL) as question_count").
		Where("tests.deleted_at IS NULL").
		Order("tests.created_at DESC").
		Scan(&results).Error
	return results, err
}
