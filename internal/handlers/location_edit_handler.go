package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/spotdrop/backend/internal/models"
	"github.com/anonto42/spotdrop/backend/internal/overlay"
	"github.com/anonto42/spotdrop/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LocationEditHandler handles per-user location overlays
type LocationEditHandler struct {
	editRepository     repositories.LocationEditRepository
	folderRepository   repositories.FolderRepository
	locationRepository repositories.LocationRepository
}

// NewLocationEditHandler creates a new LocationEditHandler
func NewLocationEditHandler(editRepo repositories.LocationEditRepository, folderRepo repositories.FolderRepository, locationRepo repositories.LocationRepository) *LocationEditHandler {
	return &LocationEditHandler{
		editRepository:     editRepo,
		folderRepository:   folderRepo,
		locationRepository: locationRepo,
	}
}

// RegisterLocationEditRoutes registers location edit routes
func (h *LocationEditHandler) RegisterLocationEditRoutes(g *echo.Group) {
	g.PUT("/locations/:id/edit", h.UpsertEdit)
}

// UpsertEdit merges the given fields into the user's edit of a visible location.
// Fields left out of the request keep their previous override.
func (h *LocationEditHandler) UpsertEdit(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid location ID")
	}
	locationID := uint(id)

	var req models.UpsertLocationEditRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	visible, err := h.folderRepository.IsLocationVisibleTo(ctx, currentUserID, locationID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !visible {
		return echo.NewHTTPError(http.StatusNotFound, "Location not found")
	}

	loc, err := h.locationRepository.GetByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Location not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	edit := &models.LocationEdit{UserID: currentUserID, LocationID: locationID}
	applyEditRequest(edit, &req)
	edit.LastUpdated = time.Now().UTC()

	if err := h.editRepository.MergeEdit(ctx, edit); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	saved, err := h.editRepository.GetEdit(ctx, currentUserID, locationID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, models.LocationEditResponse{
		Edit:     *saved,
		Location: overlay.Merge(*loc, saved, nil),
	})
}

func applyEditRequest(edit *models.LocationEdit, req *models.UpsertLocationEditRequest) {
	set := func(dst **string, v *string) {
		if v != nil {
			*dst = v
		}
	}
	set(&edit.GooglePlaceID, req.GooglePlaceID)
	set(&edit.Title, req.Title)
	set(&edit.Description, req.Description)
	set(&edit.Emoji, req.Emoji)
	set(&edit.WebsiteURL, req.WebsiteURL)
	set(&edit.PhoneNumber, req.PhoneNumber)
	set(&edit.Address, req.Address)
	if req.Latitude != nil && req.Longitude != nil {
		edit.Coordinates = models.NewPoint(*req.Latitude, *req.Longitude)
	}
}
