package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/panjiggm/syntegra-app-sub003/internal/dto"
	"github.com/panjiggm/syntegra-app-sub003/internal/service"
	"github.com/rs/zerolog/log"
)

type ResultController struct {
	scoringService service.ScoringService
}

func NewResultController(ss service.ScoringService) *ResultController {
	return &ResultController{scoringService: ss}
}

// Recalculate godoc
// @Summary (Admin) Calculate or recalculate a result
// @Description Score a completed attempt, addressed by attempt id or by an existing result id. Without force_recalculate an existing result conflicts; with it the result is overwritten in place. Responds 201 when a result was created and 200 when one was updated.
// @Tags Admin - Results
// @Accept json
// @Produce json
// @Param request body dto.RecalculateRequest true "Attempt or result reference, force flag, calculation options"
// @Success 200 {object} dto.RecalculateResponse "Existing result updated"
// @Success 201 {object} dto.RecalculateResponse "Result created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Attempt or result not found"
// @Failure 409 {object} dto.ErrorResponse "Result exists and force_recalculate not set"
// @Failure 412 {object} dto.ErrorResponse "Attempt not completed"
// @Router /admin/results/recalculate [post]
func (c *ResultController) Recalculate(ctx *gin.Context) {
	var req dto.RecalculateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	if (req.AttemptID == nil) == (req.ResultID == nil) {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Exactly one of attempt_id or result_id is required"})
		return
	}

	opts := dto.CalculationOptions{IncludePersonality: true, IncludeIntelligence: true, IncludeRecommendations: true}
	if req.Options != nil {
		opts = *req.Options
	}

	var resp *dto.RecalculateResponse
	var err error
	if req.AttemptID != nil {
		resp, err = c.scoringService.CalculateForAttempt(*req.AttemptID, opts, req.ForceRecalculate)
	} else {
		resp, err = c.scoringService.CalculateForResult(*req.ResultID, opts, req.ForceRecalculate)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Recalculate: service error")
		respondError(ctx, err)
		return
	}

	status := http.StatusCreated
	if resp.Recalculated {
		status = http.StatusOK
	}
	ctx.JSON(status, resp)
}
