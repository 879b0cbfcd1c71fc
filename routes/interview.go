package routes

import (
	"hirevox/controllers"
	"hirevox/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupInterviewRoutes registers the interview lifecycle endpoints on the
// authenticated router group.
func SetupInterviewRoutes(auth *gin.RouterGroup) {
	employer := auth.Group("/")
	employer.Use(middlewares.RequireRole("employer"))
	{
		employer.POST("/interviews", controllers.CreateInterview)
		employer.GET("/interviews/:id/results", controllers.GetInterviewResults)
		employer.GET("/interviews/:id/proctor", controllers.GetProctorLog)
	}

	auth.GET("/interviews", controllers.ListInterviews)
	auth.GET("/interviews/:id", controllers.GetInterview)
	auth.POST("/interviews/:id/proctor", controllers.IngestProctorEvent)
}
