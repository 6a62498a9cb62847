package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey   = "userID"
	userNameKey = "userName"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetUserName returns the display name carried by the token, if any.
func GetUserName(c *gin.Context) string {
	return c.GetString(userNameKey)
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(userIDKey, claims.UserID())
	c.Set(userNameKey, claims.Name)
}
