package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panjiggm/syntegra-app-sub003/internal/apperr"
	"github.com/panjiggm/syntegra-app-sub003/internal/dto"
	"github.com/panjiggm/syntegra-app-sub003/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminTestController struct {
	testService service.AdminTestService
}

func NewAdminTestController(ts service.AdminTestService) *AdminTestController {
	return &AdminTestController{testService: ts}
}

func respondError(ctx *gin.Context, err error) {
	ctx.JSON(apperr.HTTPStatus(err), dto.ErrorResponse{Message: err.Error()})
}

// CreateTest godoc
// @Summary (Admin) Create a new test
// @Description Create a test with its questions. Total questions is snapshotted from the question list.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param test body dto.CreateTestRequest true "Test definition including questions"
// @Success 201 {object} dto.TestResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests [post]
func (c *AdminTestController) CreateTest(ctx *gin.Context) {
	var req dto.CreateTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("CreateTest: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	test, err := c.testService.CreateTest(req)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("CreateTest: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, test)
}

// GetAllTests godoc
// @Summary (Admin) List all tests
// @Tags Admin - Tests
// @Produce json
// @Success 200 {array} dto.TestSummaryResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests [get]
func (c *AdminTestController) GetAllTests(ctx *gin.Context) {
	tests, err := c.testService.GetAllTests()
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tests)
}

// GetTest godoc
// @Summary (Admin) Get a test with its questions
// @Tags Admin - Tests
// @Produce json
// @Param test_id path int true "Test ID"
// @Success 200 {object} dto.TestResponse
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{test_id} [get]
func (c *AdminTestController) GetTest(ctx *gin.Context) {
	testID, err := strconv.ParseUint(ctx.Param("test_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid test_id format"})
		return
	}

	test, err := c.testService.GetTestWithQuestions(uint(testID))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, test)
}
