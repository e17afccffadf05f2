package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/app/models/dto"
	"github.com/tkaraca/registra/internal/app/services"
	"github.com/tkaraca/registra/internal/middleware"
)

// OfferingController handles course offering lifecycle operations
type OfferingController struct {
	closingService services.ClosingService
}

// NewOfferingController creates a new OfferingController
func NewOfferingController(closingService services.ClosingService) *OfferingController {
	return &OfferingController{
		closingService: closingService,
	}
}

// GetOffering returns one offering with its closing metadata
// @Summary Get a course offering
// @Tags offerings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Success 200 {object} dto.APIResponse{data=dto.OfferingResponse}
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Router /offerings/{id} [get]
func (c *OfferingController) GetOffering(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	offering, err := c.closingService.GetOffering(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(offering))
}

// CloseOffering finalizes an offering and returns the outcome counts
// @Summary Close a course offering
// @Description Assigns terminal statuses to all registered enrollments and seals the offering against further grading.
// @Tags offerings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClosingStats}
// @Failure 403 {object} dto.ErrorResponse "Caller may not close this offering"
// @Failure 409 {object} dto.ErrorResponse "Offering is already closed"
// @Failure 503 {object} dto.ErrorResponse "Closing transaction failed, safe to retry"
// @Router /offerings/{id}/close [post]
func (c *OfferingController) CloseOffering(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	caller, ok := middleware.GetCaller(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	stats, err := c.closingService.CloseOffering(ctx.Request.Context(), caller, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(stats))
}

// ReopenOffering undoes a close, returning all enrollments to REGISTERED
// @Summary Reopen a closed course offering
// @Tags offerings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Failure 409 {object} dto.ErrorResponse "Offering is not closed"
// @Router /offerings/{id}/reopen [post]
func (c *OfferingController) ReopenOffering(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	caller, ok := middleware.GetCaller(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	if err := c.closingService.ReopenOffering(ctx.Request.Context(), caller, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Success:   true,
		Message:   "Course offering reopened",
		Timestamp: time.Now(),
	})
}

// GetAcademicHistory returns one student's term rollup of outcome counts
// @Summary Get a student's academic history for a term
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Param year query int true "Academic year"
// @Param period query string true "Academic period" Enums(FIRST, SECOND, SUMMER)
// @Success 200 {object} dto.APIResponse{data=models.AcademicHistory}
// @Failure 403 {object} dto.ErrorResponse "Students may only read their own history"
// @Failure 404 {object} dto.ErrorResponse "No rollup exists for the term"
// @Router /students/{studentId}/history [get]
func (c *OfferingController) GetAcademicHistory(ctx *gin.Context) {
	studentID, ok := parseIDParam(ctx, "studentId")
	if !ok {
		return
	}
	caller, ok := middleware.GetCaller(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	year, err := strconv.Atoi(ctx.Query("year"))
	if err != nil || year <= 0 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid year parameter").
				WithField("year")))
		return
	}
	period := models.Period(ctx.Query("period"))
	if !period.Valid() {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid period parameter").
				WithField("period").
				WithDetails("period must be one of FIRST, SECOND, SUMMER")))
		return
	}

	rollup, err := c.closingService.GetAcademicHistory(ctx.Request.Context(), caller, studentID, year, period)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(rollup))
}

// parseIDParam parses a positive integer path parameter, writing the error
// response itself when the value is malformed.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter").
			WithDetails(name + " must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
