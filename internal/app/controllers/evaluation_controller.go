package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tkaraca/registra/internal/app/models/dto"
	"github.com/tkaraca/registra/internal/app/services"
	"github.com/tkaraca/registra/internal/middleware"
)

// EvaluationController manages course evaluation schemes
type EvaluationController struct {
	evaluationService services.EvaluationService
}

// NewEvaluationController creates a new EvaluationController
func NewEvaluationController(evaluationService services.EvaluationService) *EvaluationController {
	return &EvaluationController{
		evaluationService: evaluationService,
	}
}

// ListComponents lists a course's evaluation components
// @Summary List evaluation components of a course
// @Tags evaluation
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]models.EvaluationComponent}
// @Router /courses/{courseId}/components [get]
func (c *EvaluationController) ListComponents(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	components, err := c.evaluationService.ListComponents(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(components))
}

// AddComponent adds a component to a course's evaluation scheme
// @Summary Add an evaluation component
// @Tags evaluation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEvaluationComponentRequest true "Component"
// @Success 201 {object} dto.APIResponse{data=models.EvaluationComponent}
// @Failure 400 {object} dto.ErrorResponse "Over-allocation or invalid values"
// @Router /components [post]
func (c *EvaluationController) AddComponent(ctx *gin.Context) {
	var req dto.CreateEvaluationComponentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}
	caller, _ := middleware.GetCaller(ctx)

	component, err := c.evaluationService.AddComponent(ctx.Request.Context(), caller, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(component))
}

// UpdateComponent partially updates a component
// @Summary Update an evaluation component
// @Tags evaluation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Component ID"
// @Param request body dto.UpdateEvaluationComponentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.EvaluationComponent}
// @Router /components/{id} [patch]
func (c *EvaluationController) UpdateComponent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateEvaluationComponentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}
	caller, _ := middleware.GetCaller(ctx)

	component, err := c.evaluationService.UpdateComponent(ctx.Request.Context(), caller, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(component))
}

// DeactivateComponent removes a component from the active scheme
// @Summary Deactivate or delete an evaluation component
// @Description Graded components are deactivated and kept for history; ungraded ones are deleted.
// @Tags evaluation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Component ID"
// @Success 200 {object} dto.APIResponse
// @Router /components/{id} [delete]
func (c *EvaluationController) DeactivateComponent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	caller, _ := middleware.GetCaller(ctx)

	if err := c.evaluationService.DeactivateComponent(ctx.Request.Context(), caller, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Success:   true,
		Message:   "Evaluation component removed from the active scheme",
		Timestamp: time.Now(),
	})
}
