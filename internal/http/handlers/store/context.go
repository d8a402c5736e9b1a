package store

import (
	"github.com/goobits/storefront/internal/auth"

	"github.com/gin-gonic/gin"
)

const sessionClaimsKey = "session_claims"

func getSessionClaims(c *gin.Context) (*auth.SessionClaims, bool) {
	value, ok := c.Get(sessionClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*auth.SessionClaims)
	return claims, ok
}
