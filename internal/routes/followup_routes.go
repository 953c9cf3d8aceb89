package routes

import (
	"eco_collect/internal/controllers"
	"eco_collect/internal/middleware"

	"github.com/gin-gonic/gin"
)

func FollowupRoutes(r *gin.Engine) {
	followups := r.Group("/followup-pickups")
	followups.Use(middleware.RequireAuthWithRoles("dispatcher", "admin"))
	{
		followups.GET("", controllers.ListFollowups)
		followups.GET("/pending", controllers.ListPendingFollowups)
		followups.GET("/overdue", controllers.ListOverdueFollowups)
		followups.GET("/:id", controllers.GetFollowup)
		followups.PUT("/:id/assign", controllers.AssignFollowup)
		followups.POST("/:id/complete-assignment", controllers.CompleteFollowupAssignment)
		followups.PUT("/:id/complete", controllers.CompleteFollowup)
		followups.DELETE("/:id", controllers.CancelFollowup)
		followups.POST("/process-existing", controllers.ProcessExistingFailures)
		followups.POST("/update-priority-reason-codes", controllers.UpdateFollowupPriorities)
	}
}
