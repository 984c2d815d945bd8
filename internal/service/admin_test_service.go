package service

import (
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/panjiggm/syntegra-app-sub003/internal/apperr"
	"github.com/panjiggm/syntegra-app-sub003/internal/dto"
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"github.com/panjiggm/syntegra-app-sub003/internal/repository"
	"github.com/rs/zerolog/log"
)

type AdminTestService interface {
	CreateTest(req dto.CreateTestRequest) (*dto.TestResponse, error)
	GetAllTests() ([]dto.TestSummaryResponse, error)
	GetTestWithQuestions(testID uint) (*dto.TestResponse, error)
}

type adminTestService struct {
	testRepo repository.TestRepository
}

func NewAdminTestService(testRepo repository.TestRepository) AdminTestService {
	return &adminTestService{testRepo: testRepo}
}

func (s *adminTestService) CreateTest(req dto.CreateTestRequest) (*dto.TestResponse, error) {
	orders := make(map[int]bool)
	for _, q := range req.Questions {
		if orders[q.OrderInTest] {
			return nil, apperr.New(apperr.Validation, "duplicate order_in_test %d", q.OrderInTest)
		}
		orders[q.OrderInTest] = true
	}

	test := model.Test{
		UUID:             uuid.NewString(),
		Title:            req.Title,
		Description:      req.Description,
		ModuleType:       req.ModuleType,
		Category:         req.Category,
		TimeLimitMinutes: req.TimeLimitMinutes,
		PassingScore:     req.PassingScore,
		TotalQuestions:   len(req.Questions),
	}
	for _, q := range req.Questions {
		test.Questions = append(test.Questions, model.Question{
			Text:        q.Text,
			Type:        q.Type,
			Category:    q.Category,
			OrderInTest: q.OrderInTest,
			MaxScore:    q.MaxScore,
		})
	}

	if err := s.testRepo.Create(&test); err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Failed to create test")
		return nil, err
	}

	var resp dto.TestResponse
	if err := copier.Copy(&resp, &test); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *adminTestService) GetAllTests() ([]dto.TestSummaryResponse, error) {
	testsWithCount, err := s.testRepo.FindAllWithQuestionCount()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tests")
		return nil, err
	}

	summaries := make([]dto.TestSummaryResponse, 0, len(testsWithCount))
	for _, twc := range testsWithCount {
		summaries = append(summaries, dto.TestSummaryResponse{
			ID:             twc.Test.ID,
			UUID:           twc.Test.UUID,
			Title:          twc.Test.Title,
			Description:    twc.Test.Description,
			ModuleType:     twc.Test.ModuleType,
			Category:       twc.Test.Category,
			QuestionCount:  twc.QuestionCount,
			TotalQuestions: twc.Test.TotalQuestions,
			CreatedAt:      twc.Test.CreatedAt,
		})
	}
	return summaries, nil
}

func (s *adminTestService) GetTestWithQuestions(testID uint) (*dto.TestResponse, error) {
	test, err := s.testRepo.FindByIDWithQuestions(testID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, err, "test %d not found", testID)
	}
	var resp dto.TestResponse
	if err := copier.Copy(&resp, test); err != nil {
		return nil, err
	}
	return &resp, nil
}
