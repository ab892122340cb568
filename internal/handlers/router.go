package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/WiseOwlEnglish/testrun-service/internal/services"
	"github.com/WiseOwlEnglish/testrun-service/internal/utils"
	"github.com/WiseOwlEnglish/testrun-service/internal/validator"
)

type HandlerManager struct {
	testRunHandler *TestRunHandler
	reportHandler  *ReportHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		testRunHandler: NewTestRunHandler(serviceManager.TestRun(), v, logger),
		reportHandler:  NewReportHandler(serviceManager.Report(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(IdentityMiddleware())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.POST("/start", hm.testRunHandler.StartAttempt)
			attempts.GET("/:id", hm.testRunHandler.GetAttempt)
			attempts.POST("/:id/resume", hm.testRunHandler.ResumeAttempt)
			attempts.POST("/:id/navigate", hm.testRunHandler.Navigate)
			attempts.POST("/:id/interact", hm.testRunHandler.Interact)
			attempts.POST("/:id/submit", hm.testRunHandler.SubmitAttempt)
			attempts.GET("/:id/review", hm.testRunHandler.ReviewAttempt)
			attempts.POST("/:id/abandon", hm.testRunHandler.AbandonAttempt)
		}

		// Report routes
		reports := v1.Group("/reports")
		{
			reports.GET("/tests/:test_id/results", hm.reportHandler.ExportTestResults)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "testrun-service",
		})
	})
}
