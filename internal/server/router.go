package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/storyloft/storyloft-backend/internal/handlers"
	"github.com/storyloft/storyloft-backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins    []string
	AuthMiddleware    *middleware.AuthMiddleware
	AuthHandler       *handlers.AuthHandler
	ProfileHandler    *handlers.ProfileHandler
	ManuscriptHandler *handlers.ManuscriptHandler
	ChapterHandler    *handlers.ChapterHandler
	PhaseHandler      *handlers.PhaseHandler
	PublishingHandler *handlers.PublishingHandler
	CheckoutHandler   *handlers.CheckoutHandler
	WordCountHandler  *handlers.WordCountHandler
	RealtimeHandler   *handlers.RealtimeHandler
	AdminHandler      *handlers.AdminHandler
	FeedbackHandler   *handlers.FeedbackHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		// The payment processor authenticates with a signature header,
		// not a bearer token.
		api.POST("/webhooks/checkout", cfg.CheckoutHandler.Webhook)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Profile
	protected.GET("/me", cfg.ProfileHandler.GetMe)
	protected.PATCH("/me", cfg.ProfileHandler.UpdateMe)
	protected.GET("/me/access", cfg.ProfileHandler.GetAccess)
	// SSE
	protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
	protected.POST("/sse/subscribe", cfg.RealtimeHandler.SSESubscribe)
	protected.POST("/sse/unsubscribe", cfg.RealtimeHandler.SSEUnsubscribe)
	// Manuscripts
	protected.POST("/manuscripts", cfg.ManuscriptHandler.Create)
	protected.GET("/manuscripts", cfg.ManuscriptHandler.List)
	protected.GET("/manuscripts/:id", cfg.ManuscriptHandler.Get)
	protected.DELETE("/manuscripts/:id", cfg.ManuscriptHandler.Archive)
	protected.GET("/manuscripts/:id/versions", cfg.ManuscriptHandler.ListVersions)
	// Chapters
	protected.GET("/manuscripts/:id/chapters", cfg.ChapterHandler.List)
	protected.PUT("/manuscripts/:id/chapters/:chapterId", cfg.ChapterHandler.UpdateContent)
	protected.POST("/manuscripts/:id/chapters/:chapterId/approve", cfg.ChapterHandler.Approve)
	// Editing phases
	protected.GET("/manuscripts/:id/phases", cfg.PhaseHandler.List)
	protected.POST("/manuscripts/:id/phases/transition", cfg.PhaseHandler.Transition)
	protected.POST("/manuscripts/:id/snapshot", cfg.PhaseHandler.CreateSnapshot)
	// Publishing
	protected.GET("/manuscripts/:id/publishing", cfg.PublishingHandler.GetProgress)
	protected.POST("/manuscripts/:id/publishing/assessment", cfg.PublishingHandler.CompleteAssessment)
	protected.POST("/manuscripts/:id/publishing/covers", cfg.PublishingHandler.AddCoverDesigns)
	protected.POST("/manuscripts/:id/publishing/covers/select", cfg.PublishingHandler.SelectCover)
	protected.POST("/manuscripts/:id/publishing/steps/complete", cfg.PublishingHandler.CompleteStep)
	// Checkout
	protected.POST("/manuscripts/:id/checkout", cfg.CheckoutHandler.CreateSession)
	// Word count
	protected.POST("/wordcount", cfg.WordCountHandler.Analyze)
	// Beta feedback
	protected.POST("/feedback", cfg.FeedbackHandler.Submit)
	protected.GET("/feedback", cfg.FeedbackHandler.List)
	// Admin
	protected.POST("/admin/users", cfg.AdminHandler.CreateUser)

	return router
}
