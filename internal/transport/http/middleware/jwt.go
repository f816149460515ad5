package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskhub/internal/app"
	"taskhub/internal/model"
	"taskhub/internal/transport/http/response"
)

const ContextUserKey = "current_user"

var errNoUser = errors.New("no authenticated user in context")

type CurrentUserResolver interface {
	ResolveCurrentUser(ctx context.Context, token string) (*model.User, error)
}

// AuthJWT resolves the bearer token to a user and stores it on the context.
func AuthJWT(resolver CurrentUserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "not authenticated")
			return
		}

		const prefix = "bearer "
		if len(authHeader) <= len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "not authenticated")
			return
		}

		token := strings.TrimSpace(authHeader[len(prefix):])
		user, err := resolver.ResolveCurrentUser(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, app.ErrUnauthenticated) {
				response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "not authenticated")
				return
			}
			log.Printf("resolve current user failed: %v", err)
			response.Abort(c, http.StatusInternalServerError, response.CodeInternalServer, "authentication failed")
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*model.User, error) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, errNoUser
	}
	user, ok := value.(*model.User)
	if !ok || user == nil {
		return nil, errNoUser
	}
	return user, nil
}
