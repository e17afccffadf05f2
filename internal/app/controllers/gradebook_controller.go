package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tkaraca/registra/internal/app/models/dto"
	"github.com/tkaraca/registra/internal/app/services"
	"github.com/tkaraca/registra/internal/middleware"
)

// GradebookController handles grade recording and weighted aggregate reads
type GradebookController struct {
	gradebookService services.GradebookService
}

// NewGradebookController creates a new GradebookController
func NewGradebookController(gradebookService services.GradebookService) *GradebookController {
	return &GradebookController{
		gradebookService: gradebookService,
	}
}

// RecordGrade appends a score to an enrollment's grade ledger
// @Summary Record a grade
// @Tags gradebook
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RecordGradeRequest true "Grade entry"
// @Success 201 {object} dto.APIResponse{data=models.GradeEntry}
// @Failure 409 {object} dto.ErrorResponse "Component already graded or offering closed"
// @Router /grades [post]
func (c *GradebookController) RecordGrade(ctx *gin.Context) {
	var req dto.RecordGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}
	caller, _ := middleware.GetCaller(ctx)

	entry, err := c.gradebookService.RecordGrade(ctx.Request.Context(), caller, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(entry))
}

// GetWeightedGrade returns the weighted aggregate of an enrollment
// @Summary Get the weighted grade of an enrollment
// @Tags gradebook
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=dto.WeightedGradeResponse}
// @Router /enrollments/{id}/grade [get]
func (c *GradebookController) GetWeightedGrade(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	grade, err := c.gradebookService.GetWeightedGrade(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(grade))
}

// ListEntries returns the raw ledger of an enrollment
// @Summary List grade entries of an enrollment
// @Tags gradebook
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=[]models.GradeEntryDetail}
// @Router /enrollments/{id}/grades [get]
func (c *GradebookController) ListEntries(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	entries, err := c.gradebookService.ListEntries(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(entries))
}
