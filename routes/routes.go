package routes

import (
	"conference-review-api/controllers"
	"conference-review-api/middleware"
	"conference-review-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)
			public.POST("/register", controllers.Register)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Conference Review API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)

				// Only authors create submissions and upload revisions
				submissions.POST("", middleware.RequireRole(models.RoleAuthor), controllers.CreateSubmission)
				submissions.POST("/:id/revision", middleware.RequireRole(models.RoleAuthor), controllers.SubmitRevision)

				// Only organizers approve, decide and audit
				submissions.POST("/:id/approve", middleware.RequireRole(models.RoleOrganizer), controllers.ApproveSubmission)
				submissions.POST("/:id/decision", middleware.RequireRole(models.RoleOrganizer), controllers.RecordDecision)
				submissions.GET("/:id/history", middleware.RequireRole(models.RoleOrganizer), controllers.GetSubmissionHistory)

				// Reviewer workflow on a submission
				submissions.POST("/:id/bids", middleware.RequireRole(models.RoleReviewer), controllers.PlaceBid)
				submissions.GET("/:id/review-eligibility", middleware.RequireRole(models.RoleReviewer), controllers.GetReviewEligibility)
				submissions.POST("/:id/review", middleware.RequireRole(models.RoleReviewer), controllers.CreateOrUpdateReview)
				submissions.GET("/:id/reviews", controllers.GetReviews)
			}

			// Bids
			bids := protected.Group("/bids")
			{
				bids.GET("", middleware.RequireRole(models.RoleReviewer), controllers.GetBids)
				bids.PUT("/:bid_id/status", middleware.RequireRole(models.RoleOrganizer), controllers.SetBidStatus)
			}

			// Conference discovery for reviewers
			protected.GET("/conferences/:id/eligible-submissions",
				middleware.RequireRole(models.RoleReviewer), controllers.GetEligibleSubmissions)

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			}
		}
	}
}
