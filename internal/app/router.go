package app

import (
	"github.com/gin-gonic/gin"

	"github.com/storyloft/storyloft-backend/internal/server"
)

func wireRouter(cfg Config, h Handlers, m Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AllowedOrigins:    cfg.AllowedOrigins,
		AuthMiddleware:    m.Auth,
		AuthHandler:       h.Auth,
		ProfileHandler:    h.Profile,
		ManuscriptHandler: h.Manuscript,
		ChapterHandler:    h.Chapter,
		PhaseHandler:      h.Phase,
		PublishingHandler: h.Publishing,
		CheckoutHandler:   h.Checkout,
		WordCountHandler:  h.WordCount,
		RealtimeHandler:   h.Realtime,
		AdminHandler:      h.Admin,
		FeedbackHandler:   h.Feedback,
	})
}
