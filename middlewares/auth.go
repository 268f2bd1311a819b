package middlewares

import (
	"context"
	"strings"

	"littlelemon/policy"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

// IdentityResolver turns a bearer token into the caller's identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (policy.Identity, error)
}

// Authenticate stores the caller's identity on the context. It never aborts:
// a missing or bad token leaves the request anonymous and the policy answers
// 401 wherever a signed-in user is required.
func Authenticate(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := policy.Anonymous
		if token := bearerToken(c); token != "" {
			if resolved, err := resolver.Resolve(c.Request.Context(), token); err == nil {
				id = resolved
			}
		}
		utils.SetIdentity(c, id)
		c.Next()
	}
}

// bearerToken reads "Authorization: Bearer <t>" or "Token <t>", falling back
// to ?token= for websocket upgrades, which cannot set headers from browsers.
func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	for _, prefix := range []string{"Bearer ", "Token "} {
		if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
			return strings.TrimSpace(h[len(prefix):])
		}
	}
	if c.IsWebsocket() {
		return c.Query("token")
	}
	return ""
}
