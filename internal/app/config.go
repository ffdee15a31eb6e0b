package app

import (
	"strings"
	"time"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/utils"
)

type Config struct {
	Port            string
	AllowedOrigins  []string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RedisAddr       string
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	origins := utils.GetEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	redisAddr := utils.GetEnv("REDIS_ADDR", "", log)
	return Config{
		Port:            port,
		AllowedOrigins:  strings.Split(origins, ","),
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
		RedisAddr:       redisAddr,
	}
}
