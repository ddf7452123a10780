package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/thereayou/planora/internal/services"
	"github.com/thereayou/planora/pkg/auth"
)

const UserIDKey = "userID"

// AuthMiddleware проверяет токен identity-провайдера и резолвит внешний
// subject во внутреннего пользователя. Запрос без проверенной identity
// отклоняется: все закрытые операции требуют аутентификации.
func AuthMiddleware(jwtManager *auth.JWTManager, redisClient *redis.Client, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			c.Abort()
			return
		}

		resolve(c, token, jwtManager, redisClient, users)
	}
}

// WSAuthMiddleware — вариант для WebSocket: токен приходит в query-параметре
func WSAuthMiddleware(jwtManager *auth.JWTManager, redisClient *redis.Client, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					token = parts[1]
				}
			}
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		resolve(c, token, jwtManager, redisClient, users)
	}
}

func resolve(c *gin.Context, token string, jwtManager *auth.JWTManager, redisClient *redis.Client, users *services.UserService) {
	// Отозванные токены попадают в черный список
	if redisClient != nil {
		exists, err := redisClient.Exists(context.Background(), "blacklist:"+token).Result()
		if err == nil && exists > 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token is revoked"})
			c.Abort()
			return
		}
	}

	claims, err := jwtManager.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return
	}

	user, err := users.ResolveExternal(claims.Subject)
	if err != nil {
		// Identity есть, но пользователь еще не создан вебхуком провайдера
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		c.Abort()
		return
	}

	c.Set(UserIDKey, user.ID)
	c.Next()
}
