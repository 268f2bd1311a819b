package utils

import (
	"littlelemon/policy"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// SetIdentity stores the caller resolved by the auth middleware.
func SetIdentity(c *gin.Context, id policy.Identity) {
	c.Set(identityKey, id)
}

// CurrentIdentity returns the caller, or the anonymous identity when the auth
// middleware did not run or found no valid token.
func CurrentIdentity(c *gin.Context) policy.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(policy.Identity); ok {
			return id
		}
	}
	return policy.Anonymous
}
