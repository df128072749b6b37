package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/spotdrop/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, userID uint, expires time.Time) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		Email:  "joe@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, uint, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen uint
	handler := JWTAuthMiddleware(testSecret)(func(c echo.Context) error {
		seen, _ = c.Get("userID").(uint)
		return c.NoContent(http.StatusOK)
	})
	return rec, seen, handler(c)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return httpErr.Code
}

func TestJWTAuthMiddlewareSetsUserID(t *testing.T) {
	token := signToken(t, testSecret, 42, time.Now().Add(time.Hour))

	rec, userID, err := runJWT(t, "Bearer "+token)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(42), userID)
}

func TestJWTAuthMiddlewareRejects(t *testing.T) {
	tests := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"garbage":        "Bearer not.a.token",
		"wrong secret":   "Bearer " + signToken(t, "other", 42, time.Now().Add(time.Hour)),
		"expired":        "Bearer " + signToken(t, testSecret, 42, time.Now().Add(-time.Hour)),
		"no user id":     "Bearer " + signToken(t, testSecret, 0, time.Now().Add(time.Hour)),
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			_, userID, err := runJWT(t, header)

			assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
			assert.Zero(t, userID)
		})
	}
}
