package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"attendance-station/internal/auth"
)

// NewRouter builds the operator API.
func NewRouter(app *App) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", app.handleHealth)

	api := r.Group("/api")
	api.POST("/login", app.handleLogin)

	protected := api.Group("")
	protected.Use(auth.RequireAuth(app.Secret))
	{
		protected.GET("/employees", app.handleListEmployees)

		protected.POST("/attendance/identify", app.handleIdentify)
		protected.POST("/attendance/confirm", app.handleConfirm)
		protected.GET("/attendance", app.handleListAttendance)
		protected.GET("/attendance/today", app.handleTodaysRecord)
		protected.GET("/attendance/today/count", app.handleTodaysCount)

		protected.GET("/settings", app.handleGetSettings)
	}

	// Employee management and settings changes are admin-only.
	admin := protected.Group("")
	admin.Use(auth.RequireAdmin())
	{
		admin.POST("/employees", app.handleCreateEmployee)
		admin.POST("/employees/:id/face", app.handleEnrollFace)
		admin.POST("/employees/:id/fingerprint", app.handleEnrollFingerprint)

		admin.PUT("/settings", app.handlePutSettings)
	}

	return r
}
