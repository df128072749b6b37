package handlers

import "github.com/labstack/echo/v4"

// getUserIDFromContext returns the authenticated user id set by the auth middleware, or 0
func getUserIDFromContext(c echo.Context) uint {
	id, _ := c.Get("userID").(uint)
	return id
}
