package service

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/panjiggm/syntegra-app-sub003/internal/apperr"
	"github.com/panjiggm/syntegra-app-sub003/internal/dto"
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"github.com/panjiggm/syntegra-app-sub003/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const calculationMethodStandard = "standard_v1"

var (
	decimalHundred = decimal.NewFromInt(100)
	gradeAFloor    = decimal.NewFromInt(90)
	gradeBFloor    = decimal.NewFromInt(80)
	gradeCFloor    = decimal.NewFromInt(70)
)

// ScoringService turns a completed attempt and its answers into a persisted
// Result. Recalculation with force overwrites the existing row in place; the
// attempt_id unique index plus upsert keeps it at one row per attempt even
// under concurrent requests.
type ScoringService interface {
	CalculateForAttempt(attemptID uint, opts dto.CalculationOptions, force bool) (*dto.RecalculateResponse, error)
	CalculateForResult(resultID uint, opts dto.CalculationOptions, force bool) (*dto.RecalculateResponse, error)
	GetResult(resultID uint) (*dto.ResultResponse, error)
}

type scoringService struct {
	attemptRepo repository.AttemptRepository
	resultRepo  repository.ResultRepository
	catalogs    *TraitCatalogRegistry
	clock       Clock
}

func NewScoringService(
	attemptRepo repository.AttemptRepository,
	resultRepo repository.ResultRepository,
	catalogs *TraitCatalogRegistry,
	clock Clock,
) ScoringService {
	return &scoringService{
		attemptRepo: attemptRepo,
		resultRepo:  resultRepo,
		catalogs:    catalogs,
		clock:       clock,
	}
}

func (s *scoringService) CalculateForAttempt(attemptID uint, opts dto.CalculationOptions, force bool) (*dto.RecalculateResponse, error) {
	started := s.clock.Now()

	attempt, err := s.attemptRepo.FindByIDWithDetails(attemptID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, err, "attempt %d not found", attemptID)
	}
	if attempt.Status != model.AttemptStatusCompleted {
		return nil, apperr.New(apperr.PreconditionFailed, "attempt %d is %s, only completed attempts can be scored", attemptID, attempt.Status)
	}
	if attempt.Test.ID == 0 {
		return nil, apperr.New(apperr.DataIntegrity, "attempt %d references a missing test", attemptID)
	}
	if attempt.User.ID == 0 {
		return nil, apperr.New(apperr.DataIntegrity, "attempt %d references a missing user", attemptID)
	}

	existing, err := s.resultRepo.FindByAttemptID(attemptID)
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if exists && !force {
		return nil, apperr.New(apperr.Conflict, "result already exists for attempt %d, pass force_recalculate to overwrite", attemptID)
	}

	result := s.compute(attempt, opts)
	if exists {
		// Same identity, new values: forced recalculation never duplicates.
		result.ID = existing.ID
		result.UUID = existing.UUID
	} else {
		result.UUID = uuid.NewString()
	}

	if err := s.resultRepo.Upsert(result); err != nil {
		return nil, err
	}

	processingMs := s.clock.Now().Sub(started).Milliseconds()
	log.Info().
		Uint("attemptID", attemptID).
		Str("grade", result.Grade).
		Bool("recalculated", exists).
		Int64("processingMs", processingMs).
		Msg("Result calculated")

	resp, err := toResultResponse(result)
	if err != nil {
		return nil, err
	}
	return &dto.RecalculateResponse{
		Result:           *resp,
		ProcessingTimeMs: processingMs,
		Recalculated:     exists,
	}, nil
}

func (s *scoringService) CalculateForResult(resultID uint, opts dto.CalculationOptions, force bool) (*dto.RecalculateResponse, error) {
	result, err := s.resultRepo.FindByID(resultID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, err, "result %d not found", resultID)
	}
	return s.CalculateForAttempt(result.AttemptID, opts, force)
}

func (s *scoringService) GetResult(resultID uint) (*dto.ResultResponse, error) {
	result, err := s.resultRepo.FindByID(resultID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, err, "result %d not found", resultID)
	}
	return toResultResponse(result)
}

// compute runs the scoring algorithm over the attempt's answers. All persisted
// score fields stay decimal end to end so a forced recalculation with the same
// answers reproduces the stored values exactly.
func (s *scoringService) compute(attempt *model.Attempt, opts dto.CalculationOptions) *model.Result {
	test := &attempt.Test
	total := attempt.TotalQuestions
	answered := attempt.QuestionsAnswered

	completion := decimal.Zero
	if total > 0 {
		completion = decimal.NewFromInt(int64(answered)).
			Div(decimal.NewFromInt(int64(total))).
			Mul(decimalHundred).
			Round(2)
	}

	answers := make([]model.Answer, len(attempt.Answers))
	copy(answers, attempt.Answers)
	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].Question.OrderInTest < answers[j].Question.OrderInTest
	})

	rawScore := decimal.Zero
	correct := 0
	breakdown := make([]model.ScoringBreakdownEntry, 0, len(answers))
	for i := range answers {
		a := &answers[i]
		contribution := decimal.Zero
		if a.IsCorrect != nil && *a.IsCorrect {
			contribution = decimal.NewFromInt(1)
			correct++
		} else if a.Score != nil {
			contribution = *a.Score
		}
		rawScore = rawScore.Add(contribution)

		trait := a.Question.Type
		if trait == "" {
			trait = a.Question.Category
		}
		breakdown = append(breakdown, model.ScoringBreakdownEntry{
			Trait:       trait,
			RawScore:    contribution.Round(2),
			ScaledScore: contribution.Mul(decimal.NewFromInt(10)).Round(2),
			Percentile:  decimal.Min(decimalHundred, contribution.Mul(decimal.NewFromInt(20))).Round(2),
		})
	}
	rawScore = rawScore.Round(2)

	scaled := decimal.Zero
	if total > 0 {
		scaled = rawScore.
			Div(decimal.NewFromInt(int64(total))).
			Mul(decimalHundred).
			Round(2)
	}

	// Placeholder pending a norm-referenced table: percentile is a clamp of
	// the scaled score, not a population-relative rank.
	percentile := decimal.Min(decimalHundred, scaled)

	passing := test.PassingThreshold()
	grade := gradeFor(scaled, passing)
	isPassed := scaled.Cmp(passing) >= 0

	var traits model.TraitMeasurements
	if s.traitsEnabled(test.ModuleType, opts) {
		if catalog, ok := s.catalogs.Lookup(test.ModuleType, test.Category); ok {
			traits = catalog
		}
	}

	accuracy := decimal.Zero
	if answered > 0 {
		accuracy = decimal.NewFromInt(int64(correct)).
			Div(decimal.NewFromInt(int64(answered))).
			Mul(decimalHundred).
			Round(2)
	}
	analysis := &model.DetailedAnalysis{
		CalculationMethod: calculationMethodStandard,
		TotalQuestions:    total,
		AnsweredQuestions: answered,
		CorrectAnswers:    correct,
		AccuracyRate:      accuracy,
		TimeEfficiency:    timeEfficiency(attempt.TimeSpentSeconds, test.TimeLimitMinutes),
		ScoringBreakdown:  breakdown,
	}

	recommendations := ""
	if opts.IncludeRecommendations {
		recommendations = BuildRecommendations(grade, isPassed, traits)
	}

	return &model.Result{
		AttemptID:            attempt.ID,
		UserID:               attempt.UserID,
		TestID:               attempt.TestID,
		RawScore:             rawScore,
		ScaledScore:          scaled,
		Percentile:           percentile,
		CompletionPercentage: completion,
		Grade:                grade,
		IsPassed:             isPassed,
		Traits:               traits,
		Description:          BuildDescription(scaled, grade, isPassed),
		Recommendations:      recommendations,
		DetailedAnalysis:     analysis,
		CalculatedAt:         s.clock.Now(),
	}
}

func (s *scoringService) traitsEnabled(moduleType string, opts dto.CalculationOptions) bool {
	switch moduleType {
	case model.ModuleTypePersonality:
		return opts.IncludePersonality
	case model.ModuleTypeIntelligence:
		return opts.IncludeIntelligence
	default:
		return true
	}
}

func gradeFor(scaled, passing decimal.Decimal) string {
	switch {
	case scaled.Cmp(gradeAFloor) >= 0:
		return model.GradeA
	case scaled.Cmp(gradeBFloor) >= 0:
		return model.GradeB
	case scaled.Cmp(gradeCFloor) >= 0:
		return model.GradeC
	case scaled.Cmp(passing) >= 0:
		return model.GradeD
	default:
		return model.GradeE
	}
}

// timeEfficiency is 100 - timeSpent/limit*100, floored at 0. Untimed tests
// report full efficiency.
func timeEfficiency(timeSpentSeconds, timeLimitMinutes int) decimal.Decimal {
	if timeLimitMinutes <= 0 {
		return decimalHundred
	}
	used := decimal.NewFromInt(int64(timeSpentSeconds)).
		Div(decimal.NewFromInt(int64(timeLimitMinutes) * 60)).
		Mul(decimalHundred)
	efficiency := decimalHundred.Sub(used).Round(2)
	if efficiency.IsNegative() {
		return decimal.Zero
	}
	return efficiency
}

func toResultResponse(result *model.Result) (*dto.ResultResponse, error) {
	var resp dto.ResultResponse
	if err := copier.Copy(&resp, result); err != nil {
		log.Error().Err(err).Uint("resultID", result.ID).Msg("Failed to copy result to response")
		return nil, err
	}
	return &resp, nil
}
