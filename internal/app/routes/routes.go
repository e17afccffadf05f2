package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tkaraca/registra/internal/app/controllers"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	offeringController *controllers.OfferingController,
	evaluationController *controllers.EvaluationController,
	gradebookController *controllers.GradebookController,
	prerequisiteController *controllers.PrerequisiteController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Offering lifecycle. Closing is open to instructors too; the
		// service checks the assignment record. Reopening is admin-only.
		offerings := authenticated.Group("/offerings")
		{
			offerings.GET("/:id", offeringController.GetOffering)

			staffOnly := offerings.Group("")
			staffOnly.Use(authMiddleware.RequireRoles(models.RoleAdministrator, models.RoleInstructor))
			{
				staffOnly.POST("/:id/close", offeringController.CloseOffering)
			}

			adminOnly := offerings.Group("")
			adminOnly.Use(authMiddleware.RequireRoles(models.RoleAdministrator))
			{
				adminOnly.POST("/:id/reopen", offeringController.ReopenOffering)
			}
		}

		// Evaluation scheme
		courses := authenticated.Group("/courses")
		{
			courses.GET("/:courseId/components", evaluationController.ListComponents)
			courses.GET("/:courseId/prerequisites/tree", prerequisiteController.GetPrerequisiteTree)
			courses.GET("/:courseId/prerequisites/check/:studentId", prerequisiteController.CheckPrerequisites)

			coursesAdmin := courses.Group("")
			coursesAdmin.Use(authMiddleware.RequireRoles(models.RoleAdministrator))
			{
				coursesAdmin.POST("/:courseId/prerequisites", prerequisiteController.AddPrerequisite)
			}
		}

		components := authenticated.Group("/components")
		components.Use(authMiddleware.RequireRoles(models.RoleAdministrator, models.RoleInstructor))
		{
			components.POST("", evaluationController.AddComponent)
			components.PATCH("/:id", evaluationController.UpdateComponent)
			components.DELETE("/:id", evaluationController.DeactivateComponent)
		}

		// Grade ledger
		grades := authenticated.Group("/grades")
		grades.Use(authMiddleware.RequireRoles(models.RoleAdministrator, models.RoleInstructor))
		{
			grades.POST("", gradebookController.RecordGrade)
		}

		enrollments := authenticated.Group("/enrollments")
		{
			enrollments.GET("/:id/grade", gradebookController.GetWeightedGrade)
			enrollments.GET("/:id/grades", gradebookController.ListEntries)
		}

		// Academic history. The service restricts students to their own
		// rollup.
		students := authenticated.Group("/students")
		{
			students.GET("/:studentId/history", offeringController.GetAcademicHistory)
		}
	}
}
