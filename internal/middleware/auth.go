package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/conexahub/conexa/internal/auth"
	"github.com/conexahub/conexa/pkg/errors"
	"github.com/conexahub/conexa/pkg/response"
)

const (
	CtxClaimsKey   = "authClaims"
	CtxMemberIDKey = "memberID"
)

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(c *gin.Context) (string, bool) {
	authz := c.GetHeader("Authorization")
	if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(authz[7:]), true
}

// MemberAuth enforces member JWT authentication using the supplied JWT service.
func MemberAuth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwt.ValidateSessionToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		// Propagate identity into request context
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxMemberIDKey, claims.MemberID)

		c.Next()
	}
}

// AdminAuth guards administrative routes with a shared secret. The comparison
// is constant time to keep the token unguessable via timing.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			token = c.GetHeader("X-Admin-Token")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Next()
	}
}
