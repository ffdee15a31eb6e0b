package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/requestdata"
	"github.com/storyloft/storyloft-backend/internal/services"
	"github.com/storyloft/storyloft-backend/internal/ssedata"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	emitter     services.SSEEmitter
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, emitter services.SSEEmitter) *AuthMiddleware {
	return &AuthMiddleware{
		log:         log.With("middleware", "AuthMiddleware"),
		authService: authService,
		emitter:     emitter,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		ctx = ssedata.WithSSEData(ctx)
		c.Request = c.Request.WithContext(ctx)
		rd := requestdata.GetRequestData(ctx)
		if rd == nil || rd.AuthorID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()

		// Realtime messages queued during the request go out only now,
		// after every transaction the handler opened has committed.
		if am.emitter != nil {
			if d := ssedata.GetSSEData(ctx); d != nil {
				for _, msg := range d.Drain() {
					am.emitter.Emit(ctx, msg)
				}
			}
		}
	}
}

func extractToken(c *gin.Context) string {
	// the SSE stream cannot set headers, so it passes the token in the query
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
