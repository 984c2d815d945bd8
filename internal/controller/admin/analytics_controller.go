package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panjiggm/syntegra-app-sub003/internal/dto"
	"github.com/panjiggm/syntegra-app-sub003/internal/service"
	"github.com/rs/zerolog/log"
)

type AnalyticsController struct {
	analyticsService service.TraitAnalyticsService
}

func NewAnalyticsController(as service.TraitAnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: as}
}

// GetTraitAnalytics godoc
// @Summary (Admin) Trait analytics over stored results
// @Description Aggregate diversity, distribution, correlation, and trend statistics over the trait profiles of recent results. A summary and trend series are always returned; the other sections are opt-in.
// @Tags Admin - Analytics
// @Produce json
// @Param period query string false "Named window: today, week, month, quarter, year"
// @Param from query string false "Window start (RFC3339), used when period is absent"
// @Param to query string false "Window end (RFC3339), used when period is absent"
// @Param test_id query int false "Restrict to one test"
// @Param trait query string false "Restrict to one trait name"
// @Param include_distribution query bool false "Include per-trait distributions"
// @Param include_correlation query bool false "Include pairwise correlations"
// @Param include_demographics query bool false "Include demographic breakdown"
// @Success 200 {object} dto.TraitAnalyticsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid window or filter"
// @Router /admin/analytics/traits [get]
func (c *AnalyticsController) GetTraitAnalytics(ctx *gin.Context) {
	query := dto.TraitAnalyticsQuery{
		Period:    ctx.Query("period"),
		TraitName: ctx.Query("trait"),
	}

	if fromStr := ctx.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid from timestamp, expected RFC3339"})
			return
		}
		query.From = from
	}
	if toStr := ctx.Query("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid to timestamp, expected RFC3339"})
			return
		}
		query.To = to
	}
	if testIDStr := ctx.Query("test_id"); testIDStr != "" {
		val, err := strconv.ParseUint(testIDStr, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid test_id format"})
			return
		}
		testID := uint(val)
		query.TestID = &testID
	}
	query.IncludeDistribution, _ = strconv.ParseBool(ctx.DefaultQuery("include_distribution", "false"))
	query.IncludeCorrelation, _ = strconv.ParseBool(ctx.DefaultQuery("include_correlation", "false"))
	query.IncludeDemographics, _ = strconv.ParseBool(ctx.DefaultQuery("include_demographics", "false"))

	resp, err := c.analyticsService.Analyze(query)
	if err != nil {
		log.Warn().Err(err).Msg("GetTraitAnalytics: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
