package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panjiggm/syntegra-app-sub003/internal/apperr"
	"github.com/panjiggm/syntegra-app-sub003/internal/dto"
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"github.com/panjiggm/syntegra-app-sub003/internal/service"
	"github.com/rs/zerolog/log"
)

type AttemptController struct {
	lifecycleService service.AttemptLifecycleService
	scoringService   service.ScoringService
}

func NewAttemptController(ls service.AttemptLifecycleService, ss service.ScoringService) *AttemptController {
	return &AttemptController{
		lifecycleService: ls,
		scoringService:   ss,
	}
}

func respondError(ctx *gin.Context, err error) {
	ctx.JSON(apperr.HTTPStatus(err), dto.ErrorResponse{Message: err.Error()})
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

// StartAttempt godoc
// @Summary Start a test attempt
// @Description Begin a participant's run of a test. Attempt numbers are assigned sequentially per (user, test).
// @Tags Attempts
// @Accept json
// @Produce json
// @Param test_id path int true "Test ID"
// @Param attempt body dto.StartAttemptRequest true "Participant and optional session/deadline"
// @Success 201 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Test or user not found"
// @Router /tests/{test_id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	testID, ok := parseIDParam(ctx, "test_id")
	if !ok {
		return
	}

	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("StartAttempt: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	req.TestID = testID

	attempt, err := c.lifecycleService.StartAttempt(req)
	if err != nil {
		log.Error().Err(err).Uint("testID", testID).Msg("StartAttempt: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, attempt)
}

// SubmitAnswer godoc
// @Summary Submit one answer for an attempt
// @Description Record a graded response and refresh the attempt's lifecycle state. Fails once the attempt is terminal or expired.
// @Tags Attempts
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param answer body dto.SubmitAnswerRequest true "Graded answer"
// @Success 200 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 412 {object} dto.ErrorResponse "Attempt terminal or expired"
// @Router /attempts/{attempt_id}/answers [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	attemptID, ok := parseIDParam(ctx, "attempt_id")
	if !ok {
		return
	}

	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	attempt, err := c.lifecycleService.RecordAnswer(attemptID, req)
	if err != nil {
		log.Warn().Err(err).Uint("attemptID", attemptID).Msg("SubmitAnswer: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// FinishAttempt godoc
// @Summary Finish a test attempt
// @Description Move the attempt to completed or abandoned. Completed attempts are scored synchronously.
// @Tags Attempts
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param finish body dto.FinishAttemptRequest false "Terminal status, defaults to completed"
// @Success 200 {object} dto.AttemptResponse
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already terminal with a different status"
// @Router /attempts/{attempt_id}/finish [post]
func (c *AttemptController) FinishAttempt(ctx *gin.Context) {
	attemptID, ok := parseIDParam(ctx, "attempt_id")
	if !ok {
		return
	}

	var req dto.FinishAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	attempt, err := c.lifecycleService.FinishAttempt(attemptID, req)
	if err != nil {
		log.Warn().Err(err).Uint("attemptID", attemptID).Msg("FinishAttempt: service error")
		respondError(ctx, err)
		return
	}

	// Scoring runs synchronously once the attempt completes. A conflict here
	// means a result already exists (idempotent re-finish), which is fine.
	if attempt.Status == model.AttemptStatusCompleted {
		opts := dto.CalculationOptions{IncludePersonality: true, IncludeIntelligence: true, IncludeRecommendations: true}
		if _, err := c.scoringService.CalculateForAttempt(attemptID, opts, false); err != nil && apperr.KindOf(err) != apperr.Conflict {
			log.Error().Err(err).Uint("attemptID", attemptID).Msg("FinishAttempt: scoring failed")
			respondError(ctx, err)
			return
		}
	}

	ctx.JSON(http.StatusOK, attempt)
}

// GetAttempt godoc
// @Summary Get an attempt with live progress
// @Description Retrieve an attempt together with remaining time, progress, and continuation eligibility. Timed-out attempts are observed as expired here.
// @Tags Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResponse
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /attempts/{attempt_id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	attemptID, ok := parseIDParam(ctx, "attempt_id")
	if !ok {
		return
	}

	attempt, err := c.lifecycleService.GetAttempt(attemptID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// GetUserTestAttempts godoc
// @Summary List a user's attempts for a test
// @Tags Attempts
// @Produce json
// @Param test_id path int true "Test ID"
// @Param user_id query int true "User ID"
// @Success 200 {array} dto.AttemptSummaryResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /tests/{test_id}/my-attempts [get]
func (c *AttemptController) GetUserTestAttempts(ctx *gin.Context) {
	testID, ok := parseIDParam(ctx, "test_id")
	if !ok {
		return
	}
	userID, err := strconv.ParseUint(ctx.Query("user_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid user_id format in query"})
		return
	}

	attempts, err := c.lifecycleService.GetUserAttemptsForTest(testID, uint(userID))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// GetResult godoc
// @Summary Get a result by ID
// @Tags Results
// @Produce json
// @Param result_id path int true "Result ID"
// @Success 200 {object} dto.ResultResponse
// @Failure 404 {object} dto.ErrorResponse "Result not found"
// @Router /results/{result_id} [get]
func (c *AttemptController) GetResult(ctx *gin.Context) {
	resultID, ok := parseIDParam(ctx, "result_id")
	if !ok {
		return
	}

	result, err := c.scoringService.GetResult(resultID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
