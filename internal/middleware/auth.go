package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/festivo/festivo/internal/auth"
	"github.com/festivo/festivo/pkg/errors"
	"github.com/festivo/festivo/pkg/response"
)

const (
	CtxClaimsKey     = "authClaims"
	CtxStaffIDKey    = "staffID"
	CtxStaffEmailKey = "staffEmail"
	CtxSessionIDKey  = "sessionID"
)

// Auth enforces JWT authentication on the staff routes.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxStaffIDKey, claims.StaffID)
		c.Set(CtxStaffEmailKey, claims.Email)
		if claims.SessionID != "" {
			c.Set(CtxSessionIDKey, claims.SessionID)
		}

		c.Next()
	}
}
