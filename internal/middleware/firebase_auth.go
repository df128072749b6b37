package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/spotdrop/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FirebaseAuthMiddleware verifies Firebase ID tokens and maps the Firebase UID
// to the local user, whose id is stored in the context under "userID".
func FirebaseAuthMiddleware(authClient *auth.Client, userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			token, err := authClient.VerifyIDToken(ctx, idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("Invalid or expired ID token: %v", err))
			}

			user, err := userRepo.GetUserByFirebaseUID(ctx, token.UID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "User not registered")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}

			c.Set("firebaseUID", token.UID)
			c.Set("userID", user.ID)

			return next(c)
		}
	}
}
