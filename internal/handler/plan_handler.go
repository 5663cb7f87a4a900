package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/EcoCommute/service-planner/internal/application"
	"github.com/EcoCommute/service-planner/internal/auth"
	"github.com/EcoCommute/service-planner/internal/domain/route"
	"github.com/EcoCommute/service-planner/internal/middleware"
	"github.com/EcoCommute/service-planner/internal/response"
)

// PlanHandler handles HTTP requests for trip plan operations.
type PlanHandler struct {
	service *application.PlannerService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(service *application.PlannerService) *PlanHandler {
	return &PlanHandler{service: service}
}

// RegisterRoutes registers all plan routes on the given router group.
func (h *PlanHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	plans := r.Group("/api/v1/plans")
	plans.Use(authMW)
	{
		plans.POST("", middleware.RequireRole(auth.RoleCommuter), h.CreatePlan)
		plans.GET("", h.ListPlans)
		plans.GET("/:id", h.GetPlan)
		plans.GET("/:id/routes", h.GetPlanRoutes)
		plans.POST("/:id/archive", middleware.RequireRole(auth.RoleCommuter), h.ArchivePlan)
	}
}

// CreatePlan handles POST /api/v1/plans.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreatePlan(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListPlans handles GET /api/v1/plans. Commuters see their own plans.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	result, err := h.service.ListPlans(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetPlan handles GET /api/v1/plans/:id.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid plan ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	result, err := h.service.GetPlan(c.Request.Context(), planID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetPlanRoutes handles GET /api/v1/plans/:id/routes with sort_by and order
// query parameters.
func (h *PlanHandler) GetPlanRoutes(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid plan ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	key, order, err := parseSortParams(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	routes, stats, err := h.service.GetPlanRoutes(c.Request.Context(), planID, userID, role, key, order)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"routes": routes, "best_stats": stats})
}

// ArchivePlan handles POST /api/v1/plans/:id/archive.
func (h *PlanHandler) ArchivePlan(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid plan ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ArchivePlan(c.Request.Context(), planID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parseSortParams extracts the ranking parameters. When no order is given,
// CO2 sorts descending (most saved first) and everything else ascending.
func parseSortParams(c *gin.Context) (route.SortKey, route.SortOrder, error) {
	key, err := route.ParseSortKey(c.DefaultQuery("sort_by", "duration"))
	if err != nil {
		return "", "", err
	}

	raw := c.Query("order")
	if raw == "" {
		if key == route.SortKeyCO2 {
			return key, route.SortDesc, nil
		}
		return key, route.SortAsc, nil
	}

	order, err := route.ParseSortOrder(raw)
	if err != nil {
		return "", "", err
	}
	return key, order, nil
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
