package repository

import (
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *model.Question) error
	FindByID(id uint) (*model.Question, error)
	FindByTestID(testID uint) ([]model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByTestID(testID uint) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Where("test_id = ?", testID).Order("order_in_test ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}
