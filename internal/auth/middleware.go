package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/rental-booking/internal/pkg/apperror"
	"github.com/nekogravitycat/rental-booking/internal/pkg/response"
)

var (
	ErrMissingToken = apperror.New(apperror.KindUnauthorized, "missing Authorization header")
	ErrMalformed    = apperror.New(apperror.KindUnauthorized, "invalid Authorization header format")
	ErrInvalidToken = apperror.New(apperror.KindUnauthorized, "invalid or expired token")
)

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, ErrMissingToken)
			return
		}

		scheme, tokenStr, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || tokenStr == "" {
			response.Abort(c, ErrMalformed)
			return
		}

		claims, err := jwtManager.ParseAndValidate(tokenStr)
		if err != nil {
			response.Abort(c, ErrInvalidToken)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}
