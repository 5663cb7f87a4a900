package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/EcoCommute/service-planner/internal/application"
	"github.com/EcoCommute/service-planner/internal/auth"
	"github.com/EcoCommute/service-planner/internal/middleware"
	"github.com/EcoCommute/service-planner/internal/response"
)

// LocationHandler handles HTTP requests for location suggestions.
type LocationHandler struct {
	service *application.PlannerService
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(service *application.PlannerService) *LocationHandler {
	return &LocationHandler{service: service}
}

// RegisterRoutes registers location routes.
func (h *LocationHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	locations := r.Group("/api/v1/locations")
	locations.Use(authMW)
	{
		locations.GET("/suggest", h.Suggest)
	}
}

// Suggest handles GET /api/v1/locations/suggest?q=&city=&limit=.
func (h *LocationHandler) Suggest(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.BadRequest(c, "query parameter q is required")
		return
	}
	city := c.Query("city")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit < 1 {
		limit = 5
	}
	if limit > 10 {
		limit = 10
	}

	result, err := h.service.SuggestLocations(c.Request.Context(), query, city, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
