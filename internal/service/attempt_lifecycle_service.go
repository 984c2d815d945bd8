package service

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/panjiggm/syntegra-app-sub003/internal/apperr"
	"github.com/panjiggm/syntegra-app-sub003/internal/dto"
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"github.com/panjiggm/syntegra-app-sub003/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// nearlyExpiredWindowSeconds is the warning window reported to participants.
const nearlyExpiredWindowSeconds = 300

// startAttemptRetries bounds the retry loop on attempt-number collisions.
const startAttemptRetries = 3

// --- Pure lifecycle math ---------------------------------------------------
//
// These helpers take "now" explicitly so the state machine is a pure function
// of (attempt, test, now). The service methods feed them from the injected
// Clock; tests feed them fixed instants.

// TimeRemaining returns the seconds left on the attempt, floored at 0. An
// explicit end time overrides the test's time limit. A test with no time
// limit and no explicit end time reports 0 but never expires.
func TimeRemaining(a *model.Attempt, t *model.Test, now time.Time) int64 {
	var remaining int64
	switch {
	case a.EndTime != nil:
		remaining = int64(a.EndTime.Sub(now).Seconds())
	case t.TimeLimitMinutes > 0:
		elapsed := int64(now.Sub(a.StartTime).Seconds())
		remaining = int64(t.TimeLimitMinutes)*60 - elapsed
	default:
		return 0
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanContinue reports whether the participant may keep answering.
func CanContinue(a *model.Attempt, t *model.Test, now time.Time) bool {
	if a.Status == model.AttemptStatusCompleted || a.Status == model.AttemptStatusExpired {
		return false
	}
	switch {
	case a.EndTime != nil:
		return !now.After(*a.EndTime)
	case t.TimeLimitMinutes > 0:
		return now.Sub(a.StartTime) < time.Duration(t.TimeLimitMinutes)*time.Minute
	default:
		return true
	}
}

// IsExpired reports whether the attempt ran out of time. Expiry is observed
// lazily on read; nothing finalizes the row until a caller notices.
func IsExpired(a *model.Attempt, t *model.Test, now time.Time) bool {
	if a.Status == model.AttemptStatusExpired {
		return true
	}
	switch {
	case a.EndTime != nil:
		return now.After(*a.EndTime)
	case t.TimeLimitMinutes > 0:
		return now.Sub(a.StartTime) >= time.Duration(t.TimeLimitMinutes)*time.Minute
	default:
		return false
	}
}

// IsNearlyExpired is true iff 0 < remaining <= 300 seconds.
func IsNearlyExpired(a *model.Attempt, t *model.Test, now time.Time) bool {
	remaining := TimeRemaining(a, t, now)
	return remaining > 0 && remaining <= nearlyExpiredWindowSeconds
}

// ProgressPercentage returns answered/total rounded to 0..100, 0 when the
// total is unset.
func ProgressPercentage(a *model.Attempt) int {
	if a.TotalQuestions <= 0 {
		return 0
	}
	return int(math.Round(float64(a.QuestionsAnswered) / float64(a.TotalQuestions) * 100))
}

// EstimateCompletionMinutes projects the minutes needed for the remaining
// questions from the observed pace, or nil before the first answer.
func EstimateCompletionMinutes(a *model.Attempt, now time.Time) *int {
	if a.QuestionsAnswered <= 0 {
		return nil
	}
	elapsedMinutes := now.Sub(a.StartTime).Minutes()
	remaining := a.TotalQuestions - a.QuestionsAnswered
	if remaining < 0 {
		remaining = 0
	}
	estimate := int(math.Round(float64(remaining) * elapsedMinutes / float64(a.QuestionsAnswered)))
	return &estimate
}

// NextAttemptNumber returns max(prior numbers)+1, or 1 with no priors. The
// (user, test, attempt_number) unique index plus the retry loop in
// StartAttempt make the assignment safe under concurrent starts.
func NextAttemptNumber(prior []model.Attempt) int {
	max := 0
	for _, a := range prior {
		if a.AttemptNumber > max {
			max = a.AttemptNumber
		}
	}
	return max + 1
}

// --- Service ----------------------------------------------------------------

type AttemptLifecycleService interface {
	StartAttempt(req dto.StartAttemptRequest) (*dto.AttemptResponse, error)
	RecordAnswer(attemptID uint, req dto.SubmitAnswerRequest) (*dto.AttemptResponse, error)
	FinishAttempt(attemptID uint, req dto.FinishAttemptRequest) (*dto.AttemptResponse, error)
	GetAttempt(attemptID uint) (*dto.AttemptResponse, error)
	GetUserAttemptsForTest(testID uint, userID uint) ([]dto.AttemptSummaryResponse, error)
}

type attemptLifecycleService struct {
	attemptRepo repository.AttemptRepository
	answerRepo  repository.AnswerRepository
	testRepo    repository.TestRepository
	userRepo    repository.UserRepository
	clock       Clock
}

func NewAttemptLifecycleService(
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	testRepo repository.TestRepository,
	userRepo repository.UserRepository,
	clock Clock,
) AttemptLifecycleService {
	return &attemptLifecycleService{
		attemptRepo: attemptRepo,
		answerRepo:  answerRepo,
		testRepo:    testRepo,
		userRepo:    userRepo,
		clock:       clock,
	}
}

func (s *attemptLifecycleService) StartAttempt(req dto.StartAttemptRequest) (*dto.AttemptResponse, error) {
	if _, err := s.userRepo.FindByID(req.UserID); err != nil {
		return nil, apperr.Wrap(apperr.NotFound, err, "user %d not found", req.UserID)
	}
	test, err := s.testRepo.FindByID(req.TestID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, err, "test %d not found", req.TestID)
	}

	now := s.clock.Now()
	var attempt *model.Attempt
	for i := 0; i < startAttemptRetries; i++ {
		maxNumber, err := s.attemptRepo.MaxAttemptNumber(req.UserID, req.TestID)
		if err != nil {
			return nil, err
		}
		candidate := &model.Attempt{
			UUID:           uuid.NewString(),
			UserID:         req.UserID,
			TestID:         req.TestID,
			SessionID:      req.SessionID,
			AttemptNumber:  maxNumber + 1,
			StartTime:      now,
			EndTime:        req.EndTime,
			Status:         model.AttemptStatusStarted,
			TotalQuestions: test.TotalQuestions,
		}
		err = s.attemptRepo.Create(candidate)
		if err == nil {
			attempt = candidate
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		log.Warn().
			Uint("userID", req.UserID).
			Uint("testID", req.TestID).
			Int("attemptNumber", candidate.AttemptNumber).
			Msg("Attempt number collision, retrying")
	}
	if attempt == nil {
		return nil, apperr.New(apperr.Conflict, "could not assign attempt number for user %d on test %d", req.UserID, req.TestID)
	}

	log.Info().
		Str("attemptUUID", attempt.UUID).
		Uint("testID", req.TestID).
		Int("attemptNumber", attempt.AttemptNumber).
		Msg("Attempt started")
	return s.toAttemptResponse(attempt, test, now), nil
}

func (s *attemptLifecycleService) RecordAnswer(attemptID uint, req dto.SubmitAnswerRequest) (*dto.AttemptResponse, error) {
	attempt, err := s.attemptRepo.FindByIDWithTest(attemptID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, err, "attempt %d not found", attemptID)
	}
	now := s.clock.Now()

	if attempt.IsTerminal() {
		return nil, apperr.New(apperr.PreconditionFailed, "attempt %d is already %s", attemptID, attempt.Status)
	}
	if IsExpired(attempt, &attempt.Test, now) {
		s.markExpired(attempt, now)
		return nil, apperr.New(apperr.PreconditionFailed, "attempt %d has expired", attemptID)
	}
	if attempt.TotalQuestions > 0 && attempt.QuestionsAnswered >= attempt.TotalQuestions {
		return nil, apperr.New(apperr.Validation, "attempt %d has no remaining questions", attemptID)
	}

	answer := model.Answer{
		AttemptID:        attempt.ID,
		QuestionID:       req.QuestionID,
		AnswerValue:      req.AnswerValue,
		AnswerPayload:    req.AnswerPayload,
		IsCorrect:        req.IsCorrect,
		Score:            req.Score,
		TimeTakenSeconds: req.TimeTakenSeconds,
	}
	if err := s.answerRepo.Create(&answer); err != nil {
		return nil, err
	}

	attempt.Status = model.AttemptStatusInProgress
	attempt.QuestionsAnswered++
	attempt.TimeSpentSeconds += req.TimeTakenSeconds
	if err := s.attemptRepo.Update(attempt); err != nil {
		return nil, err
	}

	return s.toAttemptResponse(attempt, &attempt.Test, now), nil
}

// FinishAttempt moves a live attempt to the requested terminal status.
// Finishing an already-terminal attempt is an idempotent no-op when the
// statuses match and a conflict when they differ; a lazily-detected timeout
// wins over the request and reports a conflict.
func (s *attemptLifecycleService) FinishAttempt(attemptID uint, req dto.FinishAttemptRequest) (*dto.AttemptResponse, error) {
	target := req.Status
	if target == "" {
		target = model.AttemptStatusCompleted
	}
	if target != model.AttemptStatusCompleted && target != model.AttemptStatusAbandoned {
		return nil, apperr.New(apperr.Validation, "invalid finish status %q", target)
	}

	attempt, err := s.attemptRepo.FindByIDWithTest(attemptID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, err, "attempt %d not found", attemptID)
	}
	now := s.clock.Now()

	if attempt.IsTerminal() {
		if attempt.Status == target {
			return s.toAttemptResponse(attempt, &attempt.Test, now), nil
		}
		return nil, apperr.New(apperr.Conflict, "attempt %d is already %s", attemptID, attempt.Status)
	}
	if IsExpired(attempt, &attempt.Test, now) {
		s.markExpired(attempt, now)
		return nil, apperr.New(apperr.Conflict, "attempt %d expired before it could be marked %s", attemptID, target)
	}

	attempt.Status = target
	attempt.ActualEndTime = &now
	attempt.TimeSpentSeconds = int(now.Sub(attempt.StartTime).Seconds())
	if err := s.attemptRepo.Update(attempt); err != nil {
		return nil, err
	}

	log.Info().Str("attemptUUID", attempt.UUID).Str("status", target).Msg("Attempt finished")
	return s.toAttemptResponse(attempt, &attempt.Test, now), nil
}

func (s *attemptLifecycleService) GetAttempt(attemptID uint) (*dto.AttemptResponse, error) {
	attempt, err := s.attemptRepo.FindByIDWithTest(attemptID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, err, "attempt %d not found", attemptID)
	}
	now := s.clock.Now()
	if !attempt.IsTerminal() && IsExpired(attempt, &attempt.Test, now) {
		s.markExpired(attempt, now)
	}
	return s.toAttemptResponse(attempt, &attempt.Test, now), nil
}

func (s *attemptLifecycleService) GetUserAttemptsForTest(testID uint, userID uint) ([]dto.AttemptSummaryResponse, error) {
	test, err := s.testRepo.FindByID(testID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, err, "test %d not found", testID)
	}
	attempts, err := s.attemptRepo.FindAllByTestAndUser(testID, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	summaries := make([]dto.AttemptSummaryResponse, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]
		summaries = append(summaries, dto.AttemptSummaryResponse{
			ID:                 a.ID,
			UUID:               a.UUID,
			TestID:             a.TestID,
			AttemptNumber:      a.AttemptNumber,
			StartTime:          a.StartTime,
			ActualEndTime:      a.ActualEndTime,
			Status:             a.Status,
			QuestionsAnswered:  a.QuestionsAnswered,
			TotalQuestions:     a.TotalQuestions,
			ProgressPercentage: ProgressPercentage(a),
			IsExpired:          IsExpired(a, test, now),
		})
	}
	return summaries, nil
}

// markExpired persists a lazily-observed timeout. Failures are logged, not
// surfaced: the caller already has its answer and the next read retries.
func (s *attemptLifecycleService) markExpired(attempt *model.Attempt, now time.Time) {
	attempt.Status = model.AttemptStatusExpired
	attempt.ActualEndTime = &now
	if err := s.attemptRepo.Update(attempt); err != nil {
		log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("Failed to persist expired status")
	}
}

func (s *attemptLifecycleService) toAttemptResponse(a *model.Attempt, t *model.Test, now time.Time) *dto.AttemptResponse {
	return &dto.AttemptResponse{
		ID:                   a.ID,
		UUID:                 a.UUID,
		UserID:               a.UserID,
		TestID:               a.TestID,
		TestTitle:            t.Title,
		SessionID:            a.SessionID,
		AttemptNumber:        a.AttemptNumber,
		StartTime:            a.StartTime,
		EndTime:              a.EndTime,
		ActualEndTime:        a.ActualEndTime,
		Status:               a.Status,
		TimeSpentSeconds:     a.TimeSpentSeconds,
		QuestionsAnswered:    a.QuestionsAnswered,
		TotalQuestions:       a.TotalQuestions,
		ProgressPercentage:   ProgressPercentage(a),
		TimeRemainingSeconds: TimeRemaining(a, t, now),
		CanContinue:          CanContinue(a, t, now),
		IsNearlyExpired:      IsNearlyExpired(a, t, now),
		EstimatedMinutesLeft: EstimateCompletionMinutes(a, now),
	}
}
