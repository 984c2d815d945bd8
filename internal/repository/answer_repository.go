package repository

import (
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	Create(answer *model.Answer) error
	FindByAttemptID(attemptID uint) ([]model.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(answer *model.Answer) error {
	return r.db.Create(answer).Error
}

func (r *answerRepository) FindByAttemptID(attemptID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.
		Preload("Question").
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&answers).Error
	return answers, err
}
