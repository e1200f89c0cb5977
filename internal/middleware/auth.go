package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/response"
	"computing-marketplace/api/internal/security"
)

const identityKey = "identity"

// Authenticate requires a valid access token and attaches its identity.
// Refresh tokens are rejected here.
func Authenticate(tokens *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			response.Abort(c, apperr.Unauthorized("Authentication required"))
			return
		}

		claims, err := tokens.ParseAccess(tokenStr)
		if err != nil {
			response.Abort(c, apperr.Unauthorized("Invalid or expired token"))
			return
		}

		c.Set(identityKey, claims.Identity)
		c.Next()
	}
}

// OptionalAuthenticate attaches an identity when a valid access token is
// presented and lets the request through either way.
func OptionalAuthenticate(tokens *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if claims, err := tokens.ParseAccess(tokenStr); err == nil {
				c.Set(identityKey, claims.Identity)
			}
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity attached by Authenticate, if any.
func CurrentIdentity(c *gin.Context) (*security.Identity, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := val.(security.Identity)
	if !ok {
		return nil, false
	}
	return &id, true
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
