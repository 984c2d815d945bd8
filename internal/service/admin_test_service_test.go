package service

import (
	"testing"

	"github.com/panjiggm/syntegra-app-sub003/internal/apperr"
	"github.com/panjiggm/syntegra-app-sub003/internal/dto"
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTest(t *testing.T) {
	store := newMemStore()
	svc := NewAdminTestService(&fakeTestRepo{store: store})

	passing := decimal.NewFromInt(70)
	resp, err := svc.CreateTest(dto.CreateTestRequest{
		Title:            "Big Five Inventory",
		ModuleType:       model.ModuleTypePersonality,
		Category:         "big_five",
		TimeLimitMinutes: 45,
		PassingScore:     &passing,
		Questions: []dto.CreateQuestionRequest{
			{Text: "I see myself as someone who is talkative", Type: "likert", OrderInTest: 1, MaxScore: 5},
			{Text: "I see myself as someone who is reserved", Type: "likert", OrderInTest: 2, MaxScore: 5},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.UUID)
	assert.Equal(t, 2, resp.TotalQuestions)
	require.Len(t, resp.Questions, 2)
	assert.Equal(t, 1, resp.Questions[0].OrderInTest)

	stored := store.tests[resp.ID]
	assert.Equal(t, "Big Five Inventory", stored.Title)
	assert.Len(t, stored.Questions, 2)
}

func TestCreateTest_RejectsDuplicateQuestionOrder(t *testing.T) {
	store := newMemStore()
	svc := NewAdminTestService(&fakeTestRepo{store: store})

	_, err := svc.CreateTest(dto.CreateTestRequest{
		Title:      "Broken Ordering",
		ModuleType: model.ModuleTypeAptitude,
		Questions: []dto.CreateQuestionRequest{
			{Text: "first", Type: "choice", OrderInTest: 1},
			{Text: "second", Type: "choice", OrderInTest: 1},
		},
	})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Empty(t, store.tests)
}

func TestGetAllTests(t *testing.T) {
	store := newMemStore()
	svc := NewAdminTestService(&fakeTestRepo{store: store})

	store.addTest(model.Test{
		UUID: "t-1", Title: "WAIS", ModuleType: model.ModuleTypeIntelligence, Category: "wais",
		TotalQuestions: 3,
		Questions: []model.Question{
			{Text: "a", Type: "choice", OrderInTest: 1},
			{Text: "b", Type: "choice", OrderInTest: 2},
			{Text: "c", Type: "choice", OrderInTest: 3},
		},
	})

	summaries, err := svc.GetAllTests()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "WAIS", summaries[0].Title)
	assert.Equal(t, 3, summaries[0].QuestionCount)
	assert.Equal(t, 3, summaries[0].TotalQuestions)
}

func TestGetTestWithQuestions(t *testing.T) {
	store := newMemStore()
	svc := NewAdminTestService(&fakeTestRepo{store: store})

	test := store.addTest(model.Test{
		UUID: "t-1", Title: "WAIS", ModuleType: model.ModuleTypeIntelligence,
		Questions: []model.Question{{Text: "a", Type: "choice", OrderInTest: 1}},
	})

	resp, err := svc.GetTestWithQuestions(test.ID)
	require.NoError(t, err)
	assert.Equal(t, "WAIS", resp.Title)
	require.Len(t, resp.Questions, 1)

	_, err = svc.GetTestWithQuestions(999)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
