package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, "idp")

	token, err := m.GenerateAccessToken("user-1", "Ada")
	require.NoError(t, err)

	claims, err := m.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "Ada", claims.Name)
}

func TestParseRejects(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, "idp")

	expired, err := NewJWTManager("secret", -time.Minute, "idp").GenerateAccessToken("user-1", "")
	require.NoError(t, err)
	otherKey, err := NewJWTManager("other", time.Minute, "idp").GenerateAccessToken("user-1", "")
	require.NoError(t, err)
	otherIssuer, err := NewJWTManager("secret", time.Minute, "elsewhere").GenerateAccessToken("user-1", "")
	require.NoError(t, err)
	noSubject, err := m.GenerateAccessToken("", "")
	require.NoError(t, err)
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"no subject":   noSubject,
		"alg none":     noneAlg,
		"garbage":      "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.ParseAndValidate(token)
			assert.Error(t, err)
		})
	}
}

func newAuthRouter(m *JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", AuthRequired(m), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c))
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, "")
	r := newAuthRouter(m)
	token, err := m.GenerateAccessToken("guest-7", "")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + token, http.StatusOK, "guest-7"},
		{"lowercase scheme", "bearer " + token, http.StatusOK, "guest-7"},
		{"missing", "", http.StatusUnauthorized, "missing Authorization header"},
		{"basic", "Basic abc", http.StatusUnauthorized, "invalid Authorization header format"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"kind":"unauthorized"`)
			}
		})
	}
}
