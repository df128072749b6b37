package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/spotdrop/backend/internal/repositories"
	"github.com/anonto42/spotdrop/backend/internal/savedview"
	"github.com/labstack/echo/v4"
)

type savedViewBuilder interface {
	BuildSavedView(ctx context.Context, viewerID uint) (*savedview.SavedView, error)
}

// SavedLocationHandler handles the saved view and explicit saves
type SavedLocationHandler struct {
	savedView               savedViewBuilder
	savedLocationRepository repositories.SavedLocationRepository
	locationRepository      repositories.LocationRepository
}

// NewSavedLocationHandler creates a new SavedLocationHandler
func NewSavedLocationHandler(view savedViewBuilder, savedRepo repositories.SavedLocationRepository, locationRepo repositories.LocationRepository) *SavedLocationHandler {
	return &SavedLocationHandler{
		savedView:               view,
		savedLocationRepository: savedRepo,
		locationRepository:      locationRepo,
	}
}

// RegisterSavedLocationRoutes registers saved location routes
func (h *SavedLocationHandler) RegisterSavedLocationRoutes(g *echo.Group) {
	g.GET("/locations/saved", h.GetSavedView)
	g.POST("/locations/:id/save", h.SaveLocation)
}

// GetSavedView returns the personal, shared and followed saved locations
func (h *SavedLocationHandler) GetSavedView(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	view, err := h.savedView.BuildSavedView(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, view)
}

// SaveLocation adds a location to the user's personal saved list
func (h *SavedLocationHandler) SaveLocation(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	locationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid location ID")
	}

	ctx := c.Request().Context()
	if _, err := h.locationRepository.GetByID(ctx, uint(locationID)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Location not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.savedLocationRepository.SaveLocation(ctx, currentUserID, uint(locationID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"saved": true}})
}
