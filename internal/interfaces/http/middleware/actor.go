package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inventa/backend/internal/infrastructure/auth"
	"github.com/inventa/backend/internal/infrastructure/logger"
	"github.com/inventa/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Actor context keys
const (
	ActorIDKey    = "actor_id"
	AuthHeaderKey = "Authorization"
)

// Actor resolves the acting user from the bearer token.
// Requests without an Authorization header proceed anonymously; a header that
// does not carry a valid token is rejected with 401.
func Actor(resolver *auth.ActorResolver, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		actorID, err := resolver.Resolve(c.GetHeader(AuthHeaderKey))
		if err != nil {
			log.Debug("Rejected bearer token",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			code := dto.ErrCodeTokenInvalid
			message := "Invalid authentication token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrCodeTokenExpired
				message = "Authentication token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
			return
		}

		if actorID != nil {
			c.Set(ActorIDKey, *actorID)
			c.Request = c.Request.WithContext(logger.WithActorID(c.Request.Context(), *actorID))
		}
		c.Next()
	}
}

// GetActorID returns the resolved actor, or nil for anonymous requests
func GetActorID(c *gin.Context) *uint64 {
	v, ok := c.Get(ActorIDKey)
	if !ok {
		return nil
	}
	id, ok := v.(uint64)
	if !ok {
		return nil
	}
	return &id
}
