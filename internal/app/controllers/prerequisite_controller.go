package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tkaraca/registra/internal/app/models/dto"
	"github.com/tkaraca/registra/internal/app/services"
	"github.com/tkaraca/registra/internal/middleware"
)

// PrerequisiteController manages the course dependency graph
type PrerequisiteController struct {
	prerequisiteService services.PrerequisiteService
}

// NewPrerequisiteController creates a new PrerequisiteController
func NewPrerequisiteController(prerequisiteService services.PrerequisiteService) *PrerequisiteController {
	return &PrerequisiteController{
		prerequisiteService: prerequisiteService,
	}
}

// AddPrerequisite records a dependency edge for a course
// @Summary Add a prerequisite to a course
// @Tags prerequisites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param request body dto.AddPrerequisiteRequest true "Prerequisite"
// @Success 201 {object} dto.APIResponse{data=models.PrerequisiteEdge}
// @Failure 400 {object} dto.ErrorResponse "Self-reference or ordering violation"
// @Failure 409 {object} dto.ErrorResponse "Edge already exists"
// @Router /courses/{courseId}/prerequisites [post]
func (c *PrerequisiteController) AddPrerequisite(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}
	var req dto.AddPrerequisiteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}
	caller, _ := middleware.GetCaller(ctx)

	edge, err := c.prerequisiteService.AddEdge(ctx.Request.Context(), caller, courseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(edge))
}

// GetPrerequisiteTree expands the transitive prerequisite tree of a course
// @Summary Get the prerequisite tree of a course
// @Tags prerequisites
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.PrerequisiteTree}
// @Router /courses/{courseId}/prerequisites/tree [get]
func (c *PrerequisiteController) GetPrerequisiteTree(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	tree, err := c.prerequisiteService.BuildTree(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(tree))
}

// CheckPrerequisites reports whether a student satisfies a course's
// mandatory prerequisites
// @Summary Check prerequisite satisfaction for a student
// @Tags prerequisites
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.PrerequisiteCheckResponse}
// @Router /courses/{courseId}/prerequisites/check/{studentId} [get]
func (c *PrerequisiteController) CheckPrerequisites(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}
	studentID, ok := parseIDParam(ctx, "studentId")
	if !ok {
		return
	}

	result, err := c.prerequisiteService.CheckSatisfaction(ctx.Request.Context(), studentID, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result))
}
