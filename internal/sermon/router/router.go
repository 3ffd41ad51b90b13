package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pneumalabs/sermon-pages/internal/sermon/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "sermon-api-service",
		})
	})

	// Initialize sermon handler
	sermonHandler := handler.NewSermonHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		sermons := v1.Group("/sermons")
		sermons.Use(AuthMiddleware())
		{
			// POST /api/v1/sermons/process - Process an audio recording
			sermons.POST("/process", sermonHandler.ProcessAudio)

			// POST /api/v1/sermons/process-text - Process pasted transcript text
			sermons.POST("/process-text", sermonHandler.ProcessText)

			// GET /api/v1/sermons - List sermons with filtering and pagination
			sermons.GET("", sermonHandler.ListSermons)

			// GET /api/v1/sermons/:sermon_id - Get sermon details
			sermons.GET("/:sermon_id", sermonHandler.GetSermon)

			// PATCH /api/v1/sermons/:sermon_id - Edit title, pastor name, or tags
			sermons.PATCH("/:sermon_id", sermonHandler.UpdateSermon)

			// DELETE /api/v1/sermons/:sermon_id - Delete a sermon
			sermons.DELETE("/:sermon_id", sermonHandler.DeleteSermon)
		}
	}

	return r
}
