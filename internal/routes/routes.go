package routes

import (
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	AuthRoutes(r)
	DispatcherRoutes(r)
	CollectorRoutes(r)
	FollowupRoutes(r)
	AdminRoutes(r)
	TrackingRoutes(r)

	return r
}
