package app

import (
	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/middleware"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, s.Auth, s.Emitter),
	}
}
