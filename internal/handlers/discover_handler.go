package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/anonto42/spotdrop/backend/internal/savedview"
	"github.com/labstack/echo/v4"
)

type nearbyFinder interface {
	Nearby(ctx context.Context, viewerID uint, lat, lng float64, limit int) ([]savedview.NearbyLocation, error)
}

// DiscoverHandler serves nearby recommendations
type DiscoverHandler struct {
	discoverer nearbyFinder
}

// NewDiscoverHandler creates a new DiscoverHandler
func NewDiscoverHandler(d nearbyFinder) *DiscoverHandler {
	return &DiscoverHandler{discoverer: d}
}

// RegisterDiscoverRoutes registers discover routes
func (h *DiscoverHandler) RegisterDiscoverRoutes(g *echo.Group) {
	g.GET("/locations/discover", h.GetNearby)
}

// GetNearby returns recommendable locations around lat/lng, closest first
func (h *DiscoverHandler) GetNearby(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid latitude")
	}
	lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err != nil || math.IsNaN(lng) || lng < -180 || lng > 180 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid longitude")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	locations, err := h.discoverer.Nearby(c.Request().Context(), currentUserID, lat, lng, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": locations})
}
