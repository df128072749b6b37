package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/spotdrop/backend/internal/models"
	"github.com/anonto42/spotdrop/backend/internal/repositories"
	"github.com/anonto42/spotdrop/backend/internal/resolver"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type postResolver interface {
	Resolve(ctx context.Context, url string, userID uint) (*resolver.Result, error)
}

// PostHandler handles sharing post URLs
type PostHandler struct {
	resolver        postResolver
	traceRepository repositories.ResolutionTraceRepository
	log             logrus.FieldLogger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(r postResolver, traceRepo repositories.ResolutionTraceRepository, logger logrus.FieldLogger) *PostHandler {
	return &PostHandler{
		resolver:        r,
		traceRepository: traceRepo,
		log:             logger.WithField("component", "post_handler"),
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts/share", h.SharePost)
	g.GET("/posts/shares/recent", h.GetRecentShares)
}

// SharePost resolves a shared URL into a post attached to a location
func (h *PostHandler) SharePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SharePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.resolver.Resolve(c.Request().Context(), req.URL, currentUserID)
	if err != nil {
		if errors.Is(err, resolver.ErrUnrecognizedPlatform) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unsupported post URL")
		}
		h.log.WithError(err).WithField("user_id", currentUserID).Error("Failed to resolve shared post")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save post")
	}

	return c.JSON(http.StatusCreated, models.SharePostResponse{
		Post:     res.Post,
		Location: res.Location.ToResponse(),
	})
}

// GetRecentShares lists how the user's latest shares were resolved
func (h *PostHandler) GetRecentShares(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	traces, err := h.traceRepository.GetRecentTracesByUser(c.Request().Context(), currentUserID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if traces == nil {
		traces = []models.ResolutionTrace{}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": traces})
}
