package middleware

import (
	"context"
	"strings"

	pkgerrors "duothan/pkg/errors"
	"duothan/pkg/utils/contextkey"
	"duothan/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// TeamInfo is what an Authenticator resolves a bearer token to.
type TeamInfo struct {
	ID   int64
	Name string
	Role string
}

// Authenticator validates a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (TeamInfo, error)
}

// AuthPolicy controls access for a route group.
type AuthPolicy struct {
	Mode  string
	Roles []string
}

// AuthMiddleware enforces JWT validation and role checks for protected routes.
func AuthMiddleware(auth Authenticator, policy AuthPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.ToLower(policy.Mode) == "public" {
			c.Next()
			return
		}
		if auth == nil {
			response.AbortWithErrorCode(c, pkgerrors.ServiceUnavailable, "auth service unavailable")
			return
		}

		token := extractBearerToken(c.GetHeader("Authorization"))
		info, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		if len(policy.Roles) > 0 && !hasRole(info.Role, policy.Roles) {
			response.AbortWithErrorCode(c, pkgerrors.Forbidden, "insufficient role")
			return
		}

		c.Set("team_id", info.ID)
		c.Set("team_name", info.Name)
		c.Set("team_role", info.Role)
		ctx := context.WithValue(c.Request.Context(), contextkey.TeamID, info.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearerToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func hasRole(role string, allowed []string) bool {
	for _, item := range allowed {
		if strings.EqualFold(role, item) {
			return true
		}
	}
	return false
}
